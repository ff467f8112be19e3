package derive

import (
	"time"

	"github.com/roach88/shoplog/internal/config"
	"github.com/roach88/shoplog/internal/ledger"
)

// DemotionHorizonDays bounds the forward scan in DemotionDate.
const DemotionHorizonDays = 365

// Tier classifies a customer at a reference instant. Rules are evaluated
// in a fixed order, first match wins:
//
//  1. SPECIAL - customer is in the special-user set.
//  2. OFFICIAL - a manual expiry exists and is strictly after ref, or the
//     sliding-window spend at ref meets the trigger amount (>=, not >).
//  3. TRAINEE - everyone else. There is no non-member state.
func Tier(snap *ledger.Snapshot, cfg config.Config, customerID string, ref time.Time) ledger.Tier {
	if cfg.IsSpecial(customerID) {
		return ledger.TierSpecial
	}
	if isOfficial(snap, cfg, customerID, ref) {
		return ledger.TierOfficial
	}
	return ledger.TierTrainee
}

func isOfficial(snap *ledger.Snapshot, cfg config.Config, customerID string, ref time.Time) bool {
	if expiry, ok := cfg.ManualExpiryFor(customerID); ok && expiry.After(ref) {
		return true
	}
	return WindowSpend(snap, customerID, ref, cfg.LookbackDays) >= cfg.TriggerAmount
}

// DemotionDate projects when an OFFICIAL customer will stop qualifying.
//
// A manual override returns its expiry date directly. A spend-qualified
// customer is re-evaluated day by day from tomorrow: the first date at
// which the tier is no longer OFFICIAL is the demotion date. The scan is
// linear rather than closed-form because window membership is
// order-dependent and non-monotonic as old orders age out.
//
// ok is false when the customer is not currently OFFICIAL, or no demotion
// occurs within DemotionHorizonDays.
func DemotionDate(snap *ledger.Snapshot, cfg config.Config, customerID string, now time.Time) (date time.Time, ok bool) {
	if Tier(snap, cfg, customerID, now) != ledger.TierOfficial {
		return time.Time{}, false
	}

	if expiry, hasManual := cfg.ManualExpiryFor(customerID); hasManual && expiry.After(now) {
		return expiry, true
	}

	for d := 1; d <= DemotionHorizonDays; d++ {
		candidate := now.AddDate(0, 0, d)
		if Tier(snap, cfg, customerID, candidate) != ledger.TierOfficial {
			return candidate, true
		}
	}
	return time.Time{}, false
}
