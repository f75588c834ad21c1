package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGLIntegrity is the task type for the ledger integrity scan.
	TaskGLIntegrity = "gl:integrity"
)

// GLIntegrityPayload scopes an integrity scan. A zero BusinessID scans every
// business.
type GLIntegrityPayload struct {
	BusinessID int64 `json:"business_id,omitempty"`
}

// NewGLIntegrityTask constructs an Asynq task for the integrity scan.
func NewGLIntegrityTask(payload GLIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGLIntegrity, data), nil
}
