// Package jobs hosts the background task types and the Asynq runtime glue.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInventoryConsolidate runs the duplicate inventory repair pass.
	TaskInventoryConsolidate = "inventory:consolidate"
)

// ConsolidatePayload carries the identity of whoever requested the run.
type ConsolidatePayload struct {
	Actor string `json:"actor"`
}

// NewConsolidateTask constructs the Asynq task for one consolidation run.
func NewConsolidateTask(actor string) (*asynq.Task, error) {
	if actor == "" {
		actor = "scheduler"
	}
	body, err := json.Marshal(ConsolidatePayload{Actor: actor})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInventoryConsolidate, body, asynq.Queue(QueueDefault)), nil
}
