package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/shoplog/internal/ledger"
)

// RefundPreview shows what a refund would do before it is applied.
type RefundPreview struct {
	OrderID         string  `json:"order_id"`
	Quantity        int     `json:"quantity"`
	AlreadyRefunded int     `json:"already_refunded"`
	Refundable      int     `json:"refundable"`
	RefundCash      float64 `json:"refund_cash"`
	RefundPoints    float64 `json:"refund_points"`
	DeductPoints    float64 `json:"deduct_points"`
	CurrentPoints   float64 `json:"current_points"`
	ProjectedPoints float64 `json:"projected_points"`
	NegativeWarning bool    `json:"negative_warning"`
	DebtOutstanding float64 `json:"debt_outstanding"`
}

// RefundResult is a preview that was applied, with the minted refund ID.
type RefundResult struct {
	RefundID string `json:"refund_id"`
	RefundPreview
}

// PreviewRefund validates and prices a refund without applying it.
//
// Proration is against the original order totals, never net of prior
// refunds, so partial refunds summing to the full quantity reconstitute
// the original amounts exactly. The cash figure is record-only: the points
// balance moves by refundPoints minus the reward claw-back, and cash
// changes hands outside the system.
func (e *Engine) PreviewRefund(ctx context.Context, orderID string, qty int) (RefundPreview, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return RefundPreview{}, err
	}
	return e.previewRefund(snap, orderID, qty, e.clock.Now())
}

func (e *Engine) previewRefund(snap *ledger.Snapshot, orderID string, qty int, now time.Time) (RefundPreview, error) {
	order, ok := snap.Order(orderID)
	if !ok {
		return RefundPreview{}, &RejectError{
			Code:    ErrCodeUnknownOrder,
			Message: "order does not exist",
			OrderID: orderID,
		}
	}

	age := now.Sub(order.Timestamp)
	window := time.Duration(e.cfg.RefundWindowDays) * 24 * time.Hour
	if age > window {
		return RefundPreview{}, &RejectError{
			Code:    ErrCodeRefundWindow,
			Message: fmt.Sprintf("order is older than the %d-day refund window", e.cfg.RefundWindowDays),
			OrderID: orderID,
		}
	}

	if qty <= 0 {
		return RefundPreview{}, &RejectError{
			Code:    ErrCodeValidation,
			Message: "refund quantity must be a positive integer",
			OrderID: orderID,
		}
	}

	already := snap.RefundedQuantity(orderID)
	if qty+already > order.Quantity {
		return RefundPreview{}, &RejectError{
			Code:    ErrCodeRefundExcess,
			Message: fmt.Sprintf("only %d of %d units are still refundable", order.Quantity-already, order.Quantity),
			OrderID: orderID,
		}
	}

	if order.Quantity == 0 {
		return RefundPreview{}, &RejectError{
			Code:    ErrCodeValidation,
			Message: "order quantity is zero, cannot compute a refund ratio",
			OrderID: orderID,
		}
	}

	customer, ok := snap.Customer(order.CustomerID)
	if !ok {
		return RefundPreview{}, &RejectError{
			Code:       ErrCodeUnknownCustomer,
			Message:    "order references a customer that is not registered",
			OrderID:    orderID,
			CustomerID: order.CustomerID,
		}
	}

	ratio := float64(qty) / float64(order.Quantity)

	p := RefundPreview{
		OrderID:         orderID,
		Quantity:        qty,
		AlreadyRefunded: already,
		Refundable:      order.Quantity - already - qty,
		RefundCash:      order.PaidCash * ratio,
		RefundPoints:    order.PaidPoints * ratio,
		DeductPoints:    order.RewardPoints * ratio,
		CurrentPoints:   customer.Points,
		DebtOutstanding: customer.Debt,
	}
	p.ProjectedPoints = customer.Points + p.RefundPoints - p.DeductPoints
	p.NegativeWarning = p.ProjectedPoints < 0
	return p, nil
}

// Refund applies a refund of qty units against an order.
//
// A refund projecting a negative points balance is a data-integrity
// warning: it goes through the confirmer, and without an affirmative
// answer the refund is rejected with ErrCodeNotConfirmed. Debt is never
// touched; a remaining debt is reported on the result for manual
// follow-up.
func (e *Engine) Refund(ctx context.Context, orderID string, qty int, reason string) (RefundResult, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return RefundResult{}, err
	}

	now := e.clock.Now()
	preview, err := e.previewRefund(snap, orderID, qty, now)
	if err != nil {
		return RefundResult{}, err
	}

	if preview.NegativeWarning {
		warning := fmt.Sprintf("refund would leave points balance at %.2f", preview.ProjectedPoints)
		if !e.confirm(warning) {
			return RefundResult{}, &RejectError{
				Code:    ErrCodeNotConfirmed,
				Message: warning,
				OrderID: orderID,
			}
		}
	}

	order, _ := snap.Order(orderID)
	customer, _ := snap.Customer(order.CustomerID)
	customer.Points = preview.ProjectedPoints

	refund := ledger.Refund{
		ID:           e.ids.NewID(ledger.PrefixRefund, now),
		OrderID:      orderID,
		Timestamp:    now,
		CustomerID:   order.CustomerID,
		Quantity:     qty,
		RefundCash:   preview.RefundCash,
		RefundPoints: preview.RefundPoints,
		DeductPoints: preview.DeductPoints,
		Reason:       reason,
	}

	audit := e.audit("refund", fmt.Sprintf("refund=%s order=%s customer=%s qty=%d", refund.ID, orderID, order.CustomerID, qty))
	if err := e.store.ApplyRefund(ctx, refund, customer, audit); err != nil {
		return RefundResult{}, err
	}

	e.log.Info("refund applied",
		"refund", refund.ID,
		"order", orderID,
		"customer", order.CustomerID,
		"quantity", qty,
		"refund_cash", preview.RefundCash,
		"refund_points", preview.RefundPoints,
		"deduct_points", preview.DeductPoints,
		"projected_points", preview.ProjectedPoints,
	)

	return RefundResult{RefundID: refund.ID, RefundPreview: preview}, nil
}
