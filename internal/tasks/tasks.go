package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Session maintenance
	TypeSweepSessions    = "sessions:sweep"
	TypePurgeUserSession = "sessions:purge_user"
)

// Enqueuer is the part of *asynq.Client producers depend on
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// PurgePayload identifies whose sessions to drop
type PurgePayload struct {
	TenantID int64 `json:"tenant_id"`
	UserID   int64 `json:"user_id"`
}

// NewSweepSessionsTask creates a task that deletes vaults with dead access tokens
func NewSweepSessionsTask() *asynq.Task {
	return asynq.NewTask(TypeSweepSessions, nil)
}

// NewPurgeUserSessionsTask creates a task that deletes every session of a user
func NewPurgeUserSessionsTask(tenantID, userID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(PurgePayload{
		TenantID: tenantID,
		UserID:   userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypePurgeUserSession, payload), nil
}

// ParsePurgePayload parses a purge task payload
func ParsePurgePayload(task *asynq.Task) (PurgePayload, error) {
	var payload PurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
