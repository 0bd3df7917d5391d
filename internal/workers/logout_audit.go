package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gros-dev/gros/internal/models"
	"github.com/gros-dev/gros/internal/tasks"
)

// HandleLogoutAudit writes the audit record for a client-reported logout.
// The client treats the notification as fire-and-forget, so this is the
// only place the event is made durable.
func HandleLogoutAudit(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	if payload.Email == "" {
		// Nothing to record; do not retry
		logger.Warn().Msg("Logout audit task without email")
		return nil
	}

	event := &models.LogoutEvent{
		Email:       payload.Email,
		LoggedOutAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record logout event: %w", err)
	}

	logger.Info().
		Str("email", payload.Email).
		Str("event_id", event.ID).
		Msg("Logout recorded")

	return nil
}
