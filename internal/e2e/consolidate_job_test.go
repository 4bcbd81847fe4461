package e2e

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/modaro-pos/modaro/internal/inventory"
	jobmetrics "github.com/modaro-pos/modaro/internal/jobs"
	"github.com/modaro-pos/modaro/jobs"
)

type stubRunner struct {
	actors []string
	report inventory.ConsolidationReport
	err    error
}

func (s *stubRunner) Run(_ context.Context, actor string) (inventory.ConsolidationReport, error) {
	s.actors = append(s.actors, actor)
	return s.report, s.err
}

func TestConsolidateJobRecordsMetrics(t *testing.T) {
	runner := &stubRunner{report: inventory.ConsolidationReport{
		RunID:            "run-1",
		DuplicatesFound:  3,
		DuplicatesFixed:  3,
		StoresBackfilled: 2,
	}}
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)

	job := jobs.NewConsolidateJob(runner, nil, metrics)
	task, err := jobs.NewConsolidateTask("ops")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("job handle: %v", err)
	}
	if len(runner.actors) != 1 || runner.actors[0] != "ops" {
		t.Fatalf("expected one run by ops, got %v", runner.actors)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if !hasCounter(families, "modaro_jobs_total", map[string]string{
		"job":    jobs.TaskInventoryConsolidate,
		"status": "success",
	}, 1) {
		t.Fatalf("expected one successful job run recorded")
	}
	if !hasCounter(families, "modaro_inventory_repairs_total", map[string]string{"kind": "merged"}, 3) {
		t.Fatalf("expected 3 merged repairs recorded")
	}
	if !hasCounter(families, "modaro_inventory_repairs_total", map[string]string{"kind": "backfilled"}, 2) {
		t.Fatalf("expected 2 backfilled repairs recorded")
	}
}

func hasCounter(families []*dto.MetricFamily, name string, labels map[string]string, value float64) bool {
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchLabels(metric.GetLabel(), labels) && metric.GetCounter().GetValue() == value {
				return true
			}
		}
	}
	return false
}

func matchLabels(pairs []*dto.LabelPair, expected map[string]string) bool {
	if len(expected) == 0 {
		return true
	}
	seen := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		seen[pair.GetName()] = pair.GetValue()
	}
	for k, v := range expected {
		if seen[k] != v {
			return false
		}
	}
	return true
}
