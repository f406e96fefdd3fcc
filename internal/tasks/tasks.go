package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Stamp last-login and write the audit row after a successful login
	TypeRecordLogin = "login:record"

	// Delete audit rows older than the configured retention
	TypePruneAudit = "audit:prune"
)

// RecordLoginPayload carries one successful authentication event
type RecordLoginPayload struct {
	AdminID string    `json:"admin_id"`
	Email   string    `json:"email"`
	LoginAt time.Time `json:"login_at"`
}

// NewRecordLoginTask creates a task to record a successful login
func NewRecordLoginTask(adminID, email string, loginAt time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(RecordLoginPayload{
		AdminID: adminID,
		Email:   email,
		LoginAt: loginAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeRecordLogin, payload), nil
}

// ParseRecordLoginPayload parses the payload from an Asynq task
func ParseRecordLoginPayload(task *asynq.Task) (RecordLoginPayload, error) {
	var payload RecordLoginPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}

// NewPruneAuditTask creates a task to prune old login audit rows
func NewPruneAuditTask() *asynq.Task {
	return asynq.NewTask(TypePruneAudit, nil)
}
