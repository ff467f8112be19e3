package harness

import (
	"math"
	"time"

	"github.com/roach88/shoplog/internal/config"
	"github.com/roach88/shoplog/internal/derive"
	"github.com/roach88/shoplog/internal/ledger"
)

// floatTolerance absorbs binary-fraction noise in prorated amounts.
const floatTolerance = 1e-9

func checkAsserts(result *Result, scenario *Scenario, snap *ledger.Snapshot, cfg config.Config, now time.Time) {
	for i, a := range scenario.Asserts {
		switch a.Type {
		case AssertStock:
			stock := derive.Stock(snap, a.Product)
			if a.Value != nil && stock.Available != int(*a.Value) {
				result.AddError("assert %d: stock %s = %d, want %d", i+1, a.Product, stock.Available, int(*a.Value))
			}
			if a.Negative != nil && stock.Negative != *a.Negative {
				result.AddError("assert %d: stock %s negative = %v, want %v", i+1, a.Product, stock.Negative, *a.Negative)
			}

		case AssertTier:
			tier := derive.Tier(snap, cfg, a.Customer, now)
			if string(tier) != a.Tier {
				result.AddError("assert %d: tier %s = %s, want %s", i+1, a.Customer, tier, a.Tier)
			}

		case AssertPoints:
			customer, ok := snap.Customer(a.Customer)
			if !ok {
				result.AddError("assert %d: customer %s not found", i+1, a.Customer)
				continue
			}
			if a.Value != nil && !closeTo(customer.Points, *a.Value) {
				result.AddError("assert %d: points %s = %g, want %g", i+1, a.Customer, customer.Points, *a.Value)
			}

		case AssertDebt:
			customer, ok := snap.Customer(a.Customer)
			if !ok {
				result.AddError("assert %d: customer %s not found", i+1, a.Customer)
				continue
			}
			if a.Value != nil && !closeTo(customer.Debt, *a.Value) {
				result.AddError("assert %d: debt %s = %g, want %g", i+1, a.Customer, customer.Debt, *a.Value)
			}

		case AssertBudget:
			budget := derive.Budget(snap)
			if a.Value != nil && !closeTo(budget, *a.Value) {
				result.AddError("assert %d: budget = %g, want %g", i+1, budget, *a.Value)
			}

		case AssertDemotion:
			date, ok := derive.DemotionDate(snap, cfg, a.Customer, now)
			switch {
			case a.Date == "none" && ok:
				result.AddError("assert %d: demotion %s = %s, want none", i+1, a.Customer, date.Format("2006-01-02"))
			case a.Date != "none" && !ok:
				result.AddError("assert %d: demotion %s = none, want %s", i+1, a.Customer, a.Date)
			case a.Date != "none" && date.Format("2006-01-02") != a.Date:
				result.AddError("assert %d: demotion %s = %s, want %s", i+1, a.Customer, date.Format("2006-01-02"), a.Date)
			}

		default:
			result.AddError("assert %d: unknown type %q", i+1, a.Type)
		}
	}
}

func closeTo(got, want float64) bool {
	return math.Abs(got-want) <= floatTolerance
}
