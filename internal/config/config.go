// Package config loads and validates shoplog configuration.
//
// Configuration is written in CUE and unified with the embedded schema, so
// defaults and constraints live in one place (schema.cue) and a malformed
// file is rejected with a position-carrying error before any store is
// opened.
package config

import (
	"time"

	"github.com/roach88/shoplog/internal/ledger"
)

// Config is the fully resolved runtime configuration consumed by the
// engine and the derivation functions.
type Config struct {
	// Salt is the shared secret for receipt verification codes.
	Salt string

	// LookbackDays is the sliding-window length for spend-based membership.
	LookbackDays int

	// TriggerAmount is the window spend at which a customer becomes
	// OFFICIAL (inclusive: spend >= trigger qualifies).
	TriggerAmount float64

	// RefundWindowDays bounds refundable order age.
	RefundWindowDays int

	// MaxPoints is the points ceiling gating new reward-earning purchases.
	MaxPoints float64

	// Rates maps tier to reward multiplier.
	Rates map[ledger.Tier]float64

	// SpecialUsers is the SPECIAL customer set.
	SpecialUsers map[string]bool

	// ManualExpiry maps customer ID to a manually granted OFFICIAL expiry.
	ManualExpiry map[string]time.Time
}

// IsSpecial reports whether the customer is in the special-user set.
func (c Config) IsSpecial(customerID string) bool {
	return c.SpecialUsers[customerID]
}

// ManualExpiryFor returns the manual membership expiry for a customer.
func (c Config) ManualExpiryFor(customerID string) (time.Time, bool) {
	t, ok := c.ManualExpiry[customerID]
	return t, ok
}

// Rate returns the reward multiplier for a tier, floored at zero. An
// unconfigured tier earns nothing.
func (c Config) Rate(t ledger.Tier) float64 {
	r, ok := c.Rates[t]
	if !ok || r < 0 {
		return 0
	}
	return r
}

// Default returns a configuration with the schema defaults and a
// placeholder salt. Intended for tests; production loads a CUE file.
func Default() Config {
	return Config{
		Salt:             "shoplog-dev-salt",
		LookbackDays:     14,
		TriggerAmount:    50,
		RefundWindowDays: 7,
		MaxPoints:        5,
		Rates: map[ledger.Tier]float64{
			ledger.TierSpecial:  0,
			ledger.TierTrainee:  0.2,
			ledger.TierOfficial: 1.0,
		},
		SpecialUsers: map[string]bool{},
		ManualExpiry: map[string]time.Time{},
	}
}
