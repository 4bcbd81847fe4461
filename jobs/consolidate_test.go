package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/modaro-pos/modaro/internal/inventory"
)

type fakeRunner struct {
	actor  string
	report inventory.ConsolidationReport
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, actor string) (inventory.ConsolidationReport, error) {
	f.actor = actor
	return f.report, f.err
}

func TestConsolidateJobRunsWithActor(t *testing.T) {
	runner := &fakeRunner{report: inventory.ConsolidationReport{RunID: "run-1", DuplicatesFixed: 2}}
	job := NewConsolidateJob(runner, nil, nil)

	task, err := NewConsolidateTask("admin")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, "admin", runner.actor)
}

func TestConsolidateJobDefaultsActor(t *testing.T) {
	runner := &fakeRunner{}
	job := NewConsolidateJob(runner, nil, nil)

	task, err := NewConsolidateTask("")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, "scheduler", runner.actor)
}

func TestConsolidateJobSkipsRetryWhenBusy(t *testing.T) {
	runner := &fakeRunner{err: inventory.ErrConsolidationBusy}
	job := NewConsolidateJob(runner, nil, nil)

	task, err := NewConsolidateTask("admin")
	require.NoError(t, err)

	require.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}

func TestConsolidateJobRejectsMalformedPayload(t *testing.T) {
	job := NewConsolidateJob(&fakeRunner{}, nil, nil)
	task := asynq.NewTask(TaskInventoryConsolidate, []byte("{"))

	require.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}

func TestConsolidateJobPropagatesFailure(t *testing.T) {
	wantErr := errors.New("scan failed")
	job := NewConsolidateJob(&fakeRunner{err: wantErr}, nil, nil)

	task, err := NewConsolidateTask("admin")
	require.NoError(t, err)

	require.ErrorIs(t, job.Handle(context.Background(), task), wantErr)
}
