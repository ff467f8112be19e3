// Package harness executes YAML scenarios against an in-memory store with
// a frozen clock and sequential IDs, producing deterministic event traces
// for assertion and golden comparison.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a ledger test scenario: seed data, a sequence of
// operations, and assertions on the derived state afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario (and its golden file).
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Start is the frozen clock's starting instant (RFC3339). Defaults to
	// 2025-06-02T12:00:00Z, a Monday, so week-window math is predictable.
	Start string `yaml:"start,omitempty"`

	// Config overrides applied on top of the defaults.
	Config *ConfigOverride `yaml:"config,omitempty"`

	// Seed establishes catalog, promotions, and customers.
	Seed Seed `yaml:"seed,omitempty"`

	// Steps is the operation sequence.
	Steps []Step `yaml:"steps"`

	// Asserts validate derived state after all steps ran.
	Asserts []Assert `yaml:"asserts,omitempty"`
}

// ConfigOverride adjusts configuration knobs for one scenario. Nil fields
// keep the default.
type ConfigOverride struct {
	Salt             *string           `yaml:"salt,omitempty"`
	LookbackDays     *int              `yaml:"lookback_days,omitempty"`
	TriggerAmount    *float64          `yaml:"trigger_amount,omitempty"`
	RefundWindowDays *int              `yaml:"refund_window_days,omitempty"`
	MaxPoints        *float64          `yaml:"max_points,omitempty"`
	SpecialUsers     []string          `yaml:"special_users,omitempty"`
	ManualMembers    map[string]string `yaml:"manual_members,omitempty"` // customer -> expiry date (2006-01-02)
}

// Seed is the reference data a scenario starts from.
type Seed struct {
	Products   []SeedProduct   `yaml:"products,omitempty"`
	Promotions []SeedPromotion `yaml:"promotions,omitempty"`
	Customers  []SeedCustomer  `yaml:"customers,omitempty"`
}

type SeedProduct struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Cost         float64  `yaml:"cost"`
	InitialStock int      `yaml:"initial_stock"`
	CashPrice    *float64 `yaml:"cash_price,omitempty"`
	PointsPrice  *float64 `yaml:"points_price,omitempty"`
	Promos       []string `yaml:"promos,omitempty"`
}

type SeedPromotion struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	Kind         string  `yaml:"kind"`
	Threshold    float64 `yaml:"threshold"`
	RewardPoints float64 `yaml:"reward_points"`
	WeeklyLimit  int     `yaml:"weekly_limit,omitempty"`
	MemberOnly   bool    `yaml:"member_only"`
}

type SeedCustomer struct {
	ID     string  `yaml:"id"`
	Points float64 `yaml:"points,omitempty"`
	Debt   float64 `yaml:"debt,omitempty"`
}

// Step is one operation in the sequence. Op selects the operation; the
// other fields apply per-op. The advance op moves the frozen clock.
type Step struct {
	// Op is one of: cash_sale, points_sale, refund, adjust_budget,
	// adjust_debt, adjust_points, adjust_inventory, advance.
	Op string `yaml:"op"`

	Customer string  `yaml:"customer,omitempty"`
	Product  string  `yaml:"product,omitempty"`
	Quantity int     `yaml:"quantity,omitempty"`
	Note     string  `yaml:"note,omitempty"`
	Order    string  `yaml:"order,omitempty"`  // refund target
	Amount   float64 `yaml:"amount,omitempty"` // adjustments
	Reason   string  `yaml:"reason,omitempty"`

	// Confirm answers the data-integrity prompt for this step.
	Confirm bool `yaml:"confirm,omitempty"`

	// By is the advance duration (Go syntax, e.g. "72h").
	By string `yaml:"by,omitempty"`

	// ExpectReject is the rejection code this step must fail with. A step
	// without it must succeed.
	ExpectReject string `yaml:"expect_reject,omitempty"`
}

// Assert validates one derived value after the steps.
type Assert struct {
	// Type is one of: stock, tier, points, debt, budget, demotion.
	Type string `yaml:"type"`

	Product  string `yaml:"product,omitempty"`
	Customer string `yaml:"customer,omitempty"`

	// Value is the expected number (stock available, points, debt,
	// budget).
	Value *float64 `yaml:"value,omitempty"`

	// Negative is the expected stock integrity flag.
	Negative *bool `yaml:"negative,omitempty"`

	// Tier is the expected membership tier.
	Tier string `yaml:"tier,omitempty"`

	// Date is the expected demotion date (2006-01-02); "none" asserts no
	// demotion inside the horizon.
	Date string `yaml:"date,omitempty"`
}

// Assertion type constants.
const (
	AssertStock    = "stock"
	AssertTier     = "tier"
	AssertPoints   = "points"
	AssertDebt     = "debt"
	AssertBudget   = "budget"
	AssertDemotion = "demotion"
)

// DefaultStart is the scenario clock start when none is given.
var DefaultStart = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so a typo fails loudly instead of silently passing.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}

	if scenario.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// startTime resolves the scenario's clock start.
func (s *Scenario) startTime() (time.Time, error) {
	if s.Start == "" {
		return DefaultStart, nil
	}
	t, err := time.Parse(time.RFC3339, s.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("scenario %q: bad start %q: %w", s.Name, s.Start, err)
	}
	return t, nil
}
