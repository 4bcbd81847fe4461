package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/modaro-pos/modaro/internal/inventory"
	jobmetrics "github.com/modaro-pos/modaro/internal/jobs"
)

// ConsolidationRunner describes the repair pass the job drives.
type ConsolidationRunner interface {
	Run(ctx context.Context, actor string) (inventory.ConsolidationReport, error)
}

// ConsolidateJob executes the duplicate inventory repair in the worker.
type ConsolidateJob struct {
	Runner  ConsolidationRunner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewConsolidateJob constructs the job handler.
func NewConsolidateJob(runner ConsolidationRunner, logger *slog.Logger, metrics *jobmetrics.Metrics) *ConsolidateJob {
	return &ConsolidateJob{
		Runner:  runner,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the consolidation job. ErrConsolidationBusy is not retried:
// the overlapping run already owns the repair.
func (j *ConsolidateJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Runner == nil {
		return errors.New("consolidate: runner not configured")
	}
	var payload ConsolidatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Actor == "" {
		payload.Actor = "scheduler"
	}

	tracker := j.metrics().Track(TaskInventoryConsolidate)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := j.now()
	report, err := j.Runner.Run(ctx, payload.Actor)
	if err != nil {
		if errors.Is(err, inventory.ErrConsolidationBusy) {
			j.log().Warn("consolidation already running", slog.String("actor", payload.Actor))
			return asynq.SkipRetry
		}
		resultErr = err
		j.log().Error("consolidation run", slog.Any("error", err))
		return resultErr
	}

	j.metrics().AddRepairs("merged", report.DuplicatesFixed)
	j.metrics().AddRepairs("backfilled", report.StoresBackfilled)
	j.log().Info("consolidation run finished",
		slog.String("run_id", report.RunID),
		slog.Int("duplicates_found", report.DuplicatesFound),
		slog.Int("duplicates_fixed", report.DuplicatesFixed),
		slog.Int("stores_backfilled", report.StoresBackfilled),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ConsolidateJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *ConsolidateJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskInventoryConsolidate))
	}
	return slog.Default().With(slog.String("job", TaskInventoryConsolidate))
}

func (j *ConsolidateJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *ConsolidateJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}
