package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gros-dev/gros/internal/config"
	"github.com/gros-dev/gros/internal/models"
	"github.com/gros-dev/gros/internal/tasks"
)

// HandleCartCleanup purges cart items that have not been touched within the
// configured maximum age.
func HandleCartCleanup(ctx context.Context, t *asynq.Task, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) error {
	if _, err := tasks.ParseTaskPayload(t); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(cfg.Worker.CartMaxAgeHours) * time.Hour)

	result := db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&models.CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to purge abandoned carts: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		logger.Info().
			Int64("purged", result.RowsAffected).
			Time("cutoff", cutoff).
			Msg("Abandoned cart items purged")
	}

	return nil
}

// StartCleanupScheduler enqueues cart cleanup tasks on the configured cron
// schedule. It checks every minute whether a run is due.
func StartCleanupScheduler(client *asynq.Client, cfg *config.Config, logger zerolog.Logger) {
	schedule := parseSchedule(cfg.Worker.CartCleanupSchedule)
	if schedule == nil {
		logger.Error().
			Str("schedule", cfg.Worker.CartCleanupSchedule).
			Msg("Invalid cart cleanup schedule, scheduler disabled")
		return
	}

	next := schedule.Next(time.Now())
	logger.Info().
		Str("schedule", cfg.Worker.CartCleanupSchedule).
		Time("next_run", next).
		Msg("Cart cleanup scheduler started")

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for now := range ticker.C {
		if now.Before(next) {
			continue
		}
		next = schedule.Next(now)

		task, err := tasks.NewCartCleanupTask()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create cart cleanup task")
			continue
		}
		if _, err := client.Enqueue(task, asynq.Queue("low")); err != nil {
			logger.Error().Err(err).Msg("Failed to enqueue cart cleanup task")
			continue
		}

		logger.Info().Time("next_run", next).Msg("Cart cleanup task enqueued")
	}
}

// parseSchedule parses a standard 5-field cron expression
func parseSchedule(expr string) cron.Schedule {
	if expr == "" {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil
	}
	return schedule
}
