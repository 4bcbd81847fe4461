package variant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanReconciliationThreeWayDiff(t *testing.T) {
	desired := []Plan{
		{SizeID: 1, ColorID: 1, SKU: "P-38-BLACK"},
		{SizeID: 1, ColorID: 2, SKU: "P-38-WHITE"},
	}
	existing := []Variant{
		{ID: 100, SizeID: 1, ColorID: 1, SKU: "P-38-BLACK"},
		{ID: 101, SizeID: 2, ColorID: 1, SKU: "P-40-BLACK"},
	}

	plan, err := PlanReconciliation(desired, existing)
	require.NoError(t, err)

	require.Len(t, plan.Update, 1)
	require.Equal(t, int64(100), plan.Update[0].VariantID)
	require.Equal(t, PairKey{SizeID: 1, ColorID: 1}, plan.Update[0].Plan.Key())

	require.Len(t, plan.Create, 1)
	require.Equal(t, PairKey{SizeID: 1, ColorID: 2}, plan.Create[0].Key())

	require.Len(t, plan.Retire, 1)
	require.Equal(t, int64(101), plan.Retire[0].ID)
}

func TestPlanReconciliationMatchIgnoresSKU(t *testing.T) {
	// SKU drift must not break pair matching; the pair is the identity.
	desired := []Plan{{SizeID: 1, ColorID: 1, SKU: "NEW-38-BLACK"}}
	existing := []Variant{{ID: 5, SizeID: 1, ColorID: 1, SKU: "OLD-38-BLACK"}}

	plan, err := PlanReconciliation(desired, existing)
	require.NoError(t, err)
	require.Empty(t, plan.Create)
	require.Empty(t, plan.Retire)
	require.Len(t, plan.Update, 1)
	require.Equal(t, int64(5), plan.Update[0].VariantID)
}

func TestPlanReconciliationEmptyDesiredRetiresAll(t *testing.T) {
	existing := []Variant{
		{ID: 1, SizeID: 1, ColorID: 1},
		{ID: 2, SizeID: 1, ColorID: 2},
	}
	plan, err := PlanReconciliation(nil, existing)
	require.NoError(t, err)
	require.Empty(t, plan.Create)
	require.Empty(t, plan.Update)
	require.Len(t, plan.Retire, 2)
	require.Equal(t, int64(1), plan.Retire[0].ID)
	require.Equal(t, int64(2), plan.Retire[1].ID)
}

func TestPlanReconciliationEmptyBothWays(t *testing.T) {
	plan, err := PlanReconciliation(nil, nil)
	require.NoError(t, err)
	require.True(t, plan.Empty())
}

func TestPlanReconciliationDuplicatePair(t *testing.T) {
	desired := []Plan{
		{SizeID: 1, ColorID: 1},
		{SizeID: 1, ColorID: 1},
	}
	_, err := PlanReconciliation(desired, nil)
	require.ErrorIs(t, err, ErrDuplicatePair)
}

func TestPlanReconciliationSetsDisjoint(t *testing.T) {
	desired := []Plan{
		{SizeID: 1, ColorID: 1},
		{SizeID: 2, ColorID: 2},
		{SizeID: 3, ColorID: 3},
	}
	existing := []Variant{
		{ID: 1, SizeID: 2, ColorID: 2},
		{ID: 2, SizeID: 9, ColorID: 9},
	}
	plan, err := PlanReconciliation(desired, existing)
	require.NoError(t, err)

	keys := make(map[PairKey]int)
	for _, p := range plan.Create {
		keys[p.Key()]++
	}
	for _, u := range plan.Update {
		keys[u.Plan.Key()]++
	}
	for _, v := range plan.Retire {
		keys[PairKey{SizeID: v.SizeID, ColorID: v.ColorID}]++
	}
	for key, n := range keys {
		require.Equal(t, 1, n, "pair %+v in more than one set", key)
	}
}
