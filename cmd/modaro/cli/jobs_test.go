package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modaro-pos/modaro/jobs"
)

func TestBuildTaskConsolidate(t *testing.T) {
	task, err := buildTask(jobs.TaskInventoryConsolidate, "ops")
	require.NoError(t, err)
	require.Equal(t, jobs.TaskInventoryConsolidate, task.Type())

	var payload jobs.ConsolidatePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "ops", payload.Actor)
}

func TestBuildTaskUnknownJob(t *testing.T) {
	_, err := buildTask("inventory:unknown", "ops")
	require.Error(t, err)
}

func TestTriggerWithoutClient(t *testing.T) {
	var c *JobsCLI
	_, err := c.Trigger(context.Background(), jobs.TaskInventoryConsolidate, "ops")
	require.Error(t, err)
}
