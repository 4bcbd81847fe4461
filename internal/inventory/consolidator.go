package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/modaro-pos/modaro/internal/platform/httpx"
	"github.com/modaro-pos/modaro/internal/shared"
)

// ConsolidatorRepository exposes the scan and repair primitives of the pass.
type ConsolidatorRepository interface {
	ListRecords(ctx context.Context) ([]Record, error)
	ApplyRepairs(ctx context.Context, ops []RepairOp) error
	BatchSize() int
}

// RunLog answers whether a repair group already committed.
type RunLog interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// Consolidator restores the one-record-per-(variant, store) invariant. It is
// an on-demand repair pass: non-atomic multi-step client writes can leave
// duplicate inventory rows behind, and this pass merges each duplicate group
// into one authoritative row.
//
// The pass is idempotent and resumable. Each merge records a fingerprint key
// in the run log inside the same transaction, so re-running after an
// interruption skips the groups that already committed, and running against
// a consolidated ledger changes nothing.
type Consolidator struct {
	repo         ConsolidatorRepository
	runLog       RunLog
	audit        AuditPort
	logger       *slog.Logger
	defaultStore int64
}

// NewConsolidator builds the repair pass. runLog and audit may be nil.
func NewConsolidator(repo ConsolidatorRepository, runLog RunLog, audit AuditPort, logger *slog.Logger, defaultStore int64) *Consolidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consolidator{repo: repo, runLog: runLog, audit: audit, logger: logger, defaultStore: defaultStore}
}

// Run scans the whole ledger and merges duplicate rows per variant.
func (c *Consolidator) Run(ctx context.Context, actor string) (ConsolidationReport, error) {
	if c.defaultStore <= 0 {
		return ConsolidationReport{}, shared.ErrNoActiveStore
	}
	records, err := c.repo.ListRecords(ctx)
	if err != nil {
		return ConsolidationReport{}, err
	}

	report := ConsolidationReport{RunID: uuid.NewString()}
	now := time.Now().UTC()

	var ops []RepairOp
	for _, group := range groupByVariant(records) {
		if len(group) == 1 {
			// Singleton with no store assignment: backfill the default
			// store without touching the quantity.
			if group[0].StoreID == 0 {
				fixed := group[0]
				fixed.StoreID = c.defaultStore
				ops = append(ops, RepairOp{Update: fixed})
				report.StoresBackfilled++
			}
			continue
		}

		report.DuplicatesFound++
		op := c.mergeGroup(group, report.RunID, actor, now)
		if c.runLog != nil {
			applied, err := c.runLog.Exists(ctx, op.Key)
			if err != nil {
				return report, err
			}
			if applied {
				continue
			}
		}
		ops = append(ops, op)
		report.DuplicatesFixed++
	}

	if err := c.applyBounded(ctx, ops); err != nil {
		return report, err
	}

	c.logger.Info("consolidation finished",
		slog.String("run_id", report.RunID),
		slog.Int("duplicates_found", report.DuplicatesFound),
		slog.Int("duplicates_fixed", report.DuplicatesFixed),
		slog.Int("stores_backfilled", report.StoresBackfilled))
	if c.audit != nil {
		_ = c.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "inventory:consolidate",
			Entity:   "consolidation_run",
			EntityID: report.RunID,
			Meta: map[string]any{
				"duplicates_found":  report.DuplicatesFound,
				"duplicates_fixed":  report.DuplicatesFixed,
				"stores_backfilled": report.StoresBackfilled,
			},
		})
	}
	return report, nil
}

// mergeGroup decides the authoritative row for one variant's duplicates.
// Canonical store by majority vote, ties broken by first encountered; the
// merged quantity is the sum across the group and min-stock the maximum,
// treating duplicates as fragments of one true stock level.
func (c *Consolidator) mergeGroup(group []Record, runID, actor string, now time.Time) RepairOp {
	counts := map[int64]int{}
	var order []int64
	for _, rec := range group {
		if rec.StoreID == 0 {
			continue
		}
		if counts[rec.StoreID] == 0 {
			order = append(order, rec.StoreID)
		}
		counts[rec.StoreID]++
	}
	canonicalStore := c.defaultStore
	best := 0
	for _, storeID := range order {
		if counts[storeID] > best {
			best = counts[storeID]
			canonicalStore = storeID
		}
	}

	canonical := group[0]
	for _, rec := range group {
		if rec.StoreID == canonicalStore {
			canonical = rec
			break
		}
	}

	var total, minStock int64
	for _, rec := range group {
		total += rec.Quantity
		if rec.MinStock > minStock {
			minStock = rec.MinStock
		}
	}

	op := RepairOp{
		Key: groupFingerprint(group),
		Update: Record{
			ID:       canonical.ID,
			StoreID:  canonicalStore,
			Quantity: total,
			MinStock: minStock,
		},
	}
	for _, rec := range group {
		if rec.ID != canonical.ID {
			op.Deletes = append(op.Deletes, rec.ID)
		}
	}
	if delta := total - canonical.Quantity; delta != 0 {
		op.Movement = &Movement{
			ID:         uuid.NewString(),
			VariantID:  canonical.VariantID,
			StoreID:    canonicalStore,
			Type:       MovementConsolidation,
			Delta:      delta,
			Before:     canonical.Quantity,
			After:      total,
			Reference:  runID,
			Actor:      actor,
			OccurredAt: now,
		}
	}
	return op
}

// applyBounded splits the repair set into commits whose write count stays
// within the backend batch limit. Each commit is atomic; the pass as a whole
// is not, which is why every group carries its own run-log key.
func (c *Consolidator) applyBounded(ctx context.Context, ops []RepairOp) error {
	limit := c.repo.BatchSize()
	var pending []RepairOp
	weight := 0
	for _, op := range ops {
		if weight > 0 && weight+op.Weight() > limit {
			if err := c.repo.ApplyRepairs(ctx, pending); err != nil {
				return err
			}
			pending = nil
			weight = 0
		}
		pending = append(pending, op)
		weight += op.Weight()
	}
	return c.repo.ApplyRepairs(ctx, pending)
}

// groupFingerprint identifies a duplicate group by its member rows, so the
// same group merged twice maps to the same run-log key.
func groupFingerprint(group []Record) string {
	ids := make([]int64, len(group))
	for i, rec := range group {
		ids[i] = rec.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("consolidate:%d:%s", group[0].VariantID, strings.Join(parts, "-"))
}

// groupByVariant buckets records per variant preserving scan order.
func groupByVariant(records []Record) [][]Record {
	index := map[int64]int{}
	var groups [][]Record
	for _, rec := range records {
		i, ok := index[rec.VariantID]
		if !ok {
			i = len(groups)
			index[rec.VariantID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], rec)
	}
	return groups
}

// ErrConsolidationBusy reports an overlapping run detected via run-log
// conflict on a live group.
var ErrConsolidationBusy = fmt.Errorf("%w: consolidation already running", httpx.ErrDuplicate)
