package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/shoplog/internal/config"
	"github.com/roach88/shoplog/internal/engine"
	"github.com/roach88/shoplog/internal/ledger"
	"github.com/roach88/shoplog/internal/store"
	"github.com/roach88/shoplog/internal/testutil"
)

// TraceEvent records the outcome of one step, in step order. Exactly one
// of the payload pointers is set on success; Rejected carries the code on
// an expected rejection.
type TraceEvent struct {
	Step       int                  `json:"step"`
	Op         string               `json:"op"`
	Rejected   string               `json:"rejected,omitempty"`
	Receipt    *engine.Receipt      `json:"receipt,omitempty"`
	Refund     *engine.RefundResult `json:"refund,omitempty"`
	Adjustment *engine.Adjustment   `json:"adjustment,omitempty"`
	ClockNow   string               `json:"clock_now,omitempty"` // set by advance steps
}

// Result is the outcome of a scenario execution.
type Result struct {
	Pass   bool         `json:"pass"`
	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes a scenario against an in-memory store with a frozen clock
// and sequential IDs. Step and assertion failures are reported on the
// Result; an error return means the scenario itself could not run.
func Run(scenario *Scenario) (*Result, error) {
	start, err := scenario.startTime()
	if err != nil {
		return nil, err
	}

	cfg := buildConfig(scenario.Config)

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := seed(ctx, st, scenario.Seed); err != nil {
		return nil, err
	}

	clock := testutil.NewClock(start)

	// Each step decides whether the data-integrity prompt is answered yes;
	// the confirmer reads the current step's choice.
	allowConfirm := false
	eng := engine.New(st, cfg,
		engine.WithClock(clock),
		engine.WithIDSource(testutil.NewSequentialIDs()),
		engine.WithConfirmer(func(string) bool { return allowConfirm }),
	)

	result := &Result{Pass: true, Trace: []TraceEvent{}}

	for i, step := range scenario.Steps {
		allowConfirm = step.Confirm
		event := TraceEvent{Step: i + 1, Op: step.Op}

		var stepErr error
		switch step.Op {
		case "advance":
			d, err := time.ParseDuration(step.By)
			if err != nil {
				return nil, fmt.Errorf("step %d: bad advance duration %q: %w", i+1, step.By, err)
			}
			event.ClockNow = clock.Advance(d).Format(time.RFC3339)

		case "cash_sale":
			var receipt engine.Receipt
			receipt, stepErr = eng.CashSale(ctx, step.Customer, step.Product, step.Quantity, step.Note)
			if stepErr == nil {
				event.Receipt = &receipt
			}

		case "points_sale":
			var receipt engine.Receipt
			receipt, stepErr = eng.PointsSale(ctx, step.Customer, step.Product, step.Quantity, step.Note)
			if stepErr == nil {
				event.Receipt = &receipt
			}

		case "refund":
			var refund engine.RefundResult
			refund, stepErr = eng.Refund(ctx, step.Order, step.Quantity, step.Reason)
			if stepErr == nil {
				event.Refund = &refund
			}

		case "adjust_budget":
			var adj engine.Adjustment
			adj, stepErr = eng.AdjustBudget(ctx, step.Amount, step.Reason)
			if stepErr == nil {
				event.Adjustment = &adj
			}

		case "adjust_debt":
			var adj engine.Adjustment
			adj, stepErr = eng.AdjustDebt(ctx, step.Customer, step.Amount, step.Reason)
			if stepErr == nil {
				event.Adjustment = &adj
			}

		case "adjust_points":
			var adj engine.Adjustment
			adj, stepErr = eng.AdjustPoints(ctx, step.Customer, step.Amount, step.Reason)
			if stepErr == nil {
				event.Adjustment = &adj
			}

		case "adjust_inventory":
			var adj engine.Adjustment
			adj, stepErr = eng.AdjustInventory(ctx, step.Product, int(step.Amount), step.Reason)
			if stepErr == nil {
				event.Adjustment = &adj
			}

		default:
			return nil, fmt.Errorf("step %d: unknown op %q", i+1, step.Op)
		}

		code := string(engine.RejectCodeOf(stepErr))
		switch {
		case stepErr != nil && code == "":
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, stepErr)
		case step.ExpectReject != "" && code != step.ExpectReject:
			result.AddError("step %d (%s): expected rejection %s, got %q", i+1, step.Op, step.ExpectReject, code)
		case step.ExpectReject == "" && code != "":
			result.AddError("step %d (%s): unexpected rejection %s: %v", i+1, step.Op, code, stepErr)
		}
		event.Rejected = code

		result.Trace = append(result.Trace, event)
	}

	snap, err := st.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("final snapshot: %w", err)
	}
	checkAsserts(result, scenario, snap, cfg, clock.Now())

	return result, nil
}

func buildConfig(o *ConfigOverride) config.Config {
	cfg := config.Default()
	if o == nil {
		return cfg
	}
	if o.Salt != nil {
		cfg.Salt = *o.Salt
	}
	if o.LookbackDays != nil {
		cfg.LookbackDays = *o.LookbackDays
	}
	if o.TriggerAmount != nil {
		cfg.TriggerAmount = *o.TriggerAmount
	}
	if o.RefundWindowDays != nil {
		cfg.RefundWindowDays = *o.RefundWindowDays
	}
	if o.MaxPoints != nil {
		cfg.MaxPoints = *o.MaxPoints
	}
	for _, id := range o.SpecialUsers {
		cfg.SpecialUsers[id] = true
	}
	for id, date := range o.ManualMembers {
		t, err := time.Parse("2006-01-02", date)
		if err == nil {
			cfg.ManualExpiry[id] = t
		}
	}
	return cfg
}

func seed(ctx context.Context, st *store.Store, s Seed) error {
	for _, p := range s.Promotions {
		promo := ledger.Promotion{
			ID:           p.ID,
			Name:         p.Name,
			Kind:         ledger.PromotionKind(p.Kind),
			Threshold:    p.Threshold,
			RewardPoints: p.RewardPoints,
			WeeklyLimit:  p.WeeklyLimit,
			MemberOnly:   p.MemberOnly,
		}
		if err := st.PutPromotion(ctx, promo); err != nil {
			return fmt.Errorf("seed promotion %s: %w", p.ID, err)
		}
	}
	for _, p := range s.Products {
		product := ledger.Product{
			ID:           p.ID,
			Name:         p.Name,
			Cost:         p.Cost,
			InitialStock: p.InitialStock,
			Price:        seedPrice(p.CashPrice, p.PointsPrice),
			PromoIDs:     p.Promos,
		}
		if err := st.PutProduct(ctx, product); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	for _, c := range s.Customers {
		customer := ledger.Customer{ID: c.ID, Points: c.Points, Debt: c.Debt}
		if err := st.PutCustomer(ctx, customer); err != nil {
			return fmt.Errorf("seed customer %s: %w", c.ID, err)
		}
	}
	return nil
}

func seedPrice(cash, points *float64) ledger.Price {
	switch {
	case cash != nil && points != nil:
		return ledger.DualPrice(*cash, *points)
	case cash != nil:
		return ledger.CashPrice(*cash)
	case points != nil:
		return ledger.PointsPrice(*points)
	default:
		return ledger.Price{}
	}
}
