package workers

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gros-dev/gros/internal/models"
	"github.com/gros-dev/gros/internal/tasks"
)

// HandleOrderConfirm moves a placed order to confirmed. Orders already past
// PLACED are left alone so the task stays safe to retry.
func HandleOrderConfirm(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	var order models.Order
	if err := db.WithContext(ctx).Where("id = ?", payload.OrderID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Order was deleted; nothing to confirm
			logger.Warn().Str("order_id", payload.OrderID).Msg("Order not found for confirmation")
			return nil
		}
		return fmt.Errorf("failed to find order: %w", err)
	}

	if order.Status != models.OrderStatusPlaced {
		logger.Debug().
			Str("order_id", order.ID).
			Str("status", order.Status).
			Msg("Order already past placed, skipping confirmation")
		return nil
	}

	if err := db.WithContext(ctx).Model(&order).Update("status", models.OrderStatusConfirmed).Error; err != nil {
		return fmt.Errorf("failed to confirm order: %w", err)
	}

	logger.Info().Str("order_id", order.ID).Msg("Order confirmed")

	return nil
}
