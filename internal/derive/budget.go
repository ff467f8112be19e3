package derive

import "github.com/roach88/shoplog/internal/ledger"

// Budget sums the activity budget from budget_adjust entries alone.
// Positive amounts add, negative amounts subtract. No other entry kind and
// no order ever contributes - budget is deliberately decoupled from
// per-order profit.
func Budget(snap *ledger.Snapshot) float64 {
	total := 0.0
	for _, e := range snap.Entries {
		if e.Kind == ledger.EntryBudgetAdjust {
			total += e.Amount
		}
	}
	return total
}
