package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Written when a client reports a logout
	TypeLogoutAudit = "logout:audit"
	// Moves a placed order to confirmed
	TypeOrderConfirm = "order:confirm"
	// Periodic purge of abandoned carts
	TypeCartCleanup = "cart:cleanup"
)

// TaskPayload is the common payload for all tasks
type TaskPayload struct {
	Email   string `json:"email,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

// NewLogoutAuditTask creates a task to record a logout event
func NewLogoutAuditTask(email string) (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{
		Email: email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeLogoutAudit, payload), nil
}

// NewOrderConfirmTask creates a task to confirm a placed order
func NewOrderConfirmTask(orderID string) (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{
		OrderID: orderID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeOrderConfirm, payload), nil
}

// NewCartCleanupTask creates a task to purge abandoned carts
func NewCartCleanupTask() (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeCartCleanup, payload), nil
}

// ParseTaskPayload parses task payload from Asynq task
func ParseTaskPayload(task *asynq.Task) (TaskPayload, error) {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
