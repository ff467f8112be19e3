package derive

import (
	"time"

	"github.com/roach88/shoplog/internal/ledger"
)

// WindowSpend computes a customer's net cash spend inside the trailing
// window [ref - lookbackDays, ref].
//
// Only cash-channel orders count. Each order contributes its paid cash
// minus the cash refunded against it, floored at zero per order - a refund
// can never make one order's net contribution negative, and refunds on one
// order never offset spend on another.
//
// The window slides relative to an arbitrary reference instant rather than
// a calendar week, because the membership classifier evaluates it at
// future dates for demotion projection.
func WindowSpend(snap *ledger.Snapshot, customerID string, ref time.Time, lookbackDays int) float64 {
	start := ref.AddDate(0, 0, -lookbackDays)

	total := 0.0
	for _, o := range snap.Orders {
		if o.CustomerID != customerID || o.Channel != ledger.ChannelCash {
			continue
		}
		if o.Timestamp.Before(start) || o.Timestamp.After(ref) {
			continue
		}
		total += netCash(snap, o)
	}
	return total
}

// netCash is one order's cash contribution after refunds, floored at zero.
func netCash(snap *ledger.Snapshot, o ledger.Order) float64 {
	refunded := 0.0
	for _, r := range snap.Refunds {
		if r.OrderID == o.ID {
			refunded += r.RefundCash
		}
	}
	if net := o.PaidCash - refunded; net > 0 {
		return net
	}
	return 0
}
