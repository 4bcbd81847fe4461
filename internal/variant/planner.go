package variant

// PlanReconciliation diffs the desired matrix against the persisted variant
// set of one product. Matching is keyed strictly by (SizeID, ColorID):
//
//   - desired pair with a persisted match -> Update, carrying the variant id
//   - desired pair with no match          -> Create
//   - persisted variant not desired       -> Retire
//
// The function is pure; applying the plan is the service's concern.
func PlanReconciliation(desired []Plan, existing []Variant) (ReconciliationPlan, error) {
	seen := make(map[PairKey]struct{}, len(desired))
	for _, plan := range desired {
		if _, dup := seen[plan.Key()]; dup {
			return ReconciliationPlan{}, ErrDuplicatePair
		}
		seen[plan.Key()] = struct{}{}
	}

	byPair := make(map[PairKey]Variant, len(existing))
	for _, v := range existing {
		byPair[PairKey{SizeID: v.SizeID, ColorID: v.ColorID}] = v
	}

	var out ReconciliationPlan
	for _, plan := range desired {
		if current, ok := byPair[plan.Key()]; ok {
			out.Update = append(out.Update, Update{VariantID: current.ID, Plan: plan})
			delete(byPair, plan.Key())
			continue
		}
		out.Create = append(out.Create, plan)
	}
	// Retirement order follows the persisted input order, not map order.
	for _, v := range existing {
		if _, ok := byPair[PairKey{SizeID: v.SizeID, ColorID: v.ColorID}]; ok {
			out.Retire = append(out.Retire, v)
		}
	}
	return out, nil
}
