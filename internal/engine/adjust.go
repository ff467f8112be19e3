package engine

import (
	"context"
	"fmt"

	"github.com/roach88/shoplog/internal/derive"
	"github.com/roach88/shoplog/internal/ledger"
)

// Adjustment reports an applied manual adjustment. After is the resulting
// authoritative value for the adjusted quantity: the budget total, the
// customer's debt or points balance, or the product's stock baseline.
type Adjustment struct {
	EntryID string           `json:"entry_id"`
	Kind    ledger.EntryKind `json:"kind"`
	Amount  float64          `json:"amount"`
	After   float64          `json:"after"`
}

// AdjustBudget appends a budget_adjust entry. Positive amounts grow the
// activity budget, negative amounts spend it. The budget may go negative;
// it is a planning figure, not a balance the engine guards.
func (e *Engine) AdjustBudget(ctx context.Context, amount float64, reason string) (Adjustment, error) {
	if amount == 0 {
		return Adjustment{}, &RejectError{Code: ErrCodeValidation, Message: "adjustment amount is zero"}
	}

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return Adjustment{}, err
	}

	now := e.clock.Now()
	entry := ledger.Entry{
		ID:        e.ids.NewID(ledger.PrefixManual, now),
		Timestamp: now,
		Kind:      ledger.EntryBudgetAdjust,
		Amount:    amount,
		Reason:    reason,
	}

	audit := e.audit("budget_adjust", fmt.Sprintf("entry=%s amount=%.2f", entry.ID, amount))
	if err := e.store.ApplyEntry(ctx, entry, nil, audit); err != nil {
		return Adjustment{}, err
	}

	after := derive.Budget(snap) + amount
	e.log.Info("budget adjusted", "entry", entry.ID, "amount", amount, "budget", after)

	return Adjustment{EntryID: entry.ID, Kind: entry.Kind, Amount: amount, After: after}, nil
}

// AdjustDebt moves a customer's debt balance by amount. Positive amounts
// grow what the customer owes. The entry is an audit record; the balance
// on the customer row is authoritative.
func (e *Engine) AdjustDebt(ctx context.Context, customerID string, amount float64, reason string) (Adjustment, error) {
	return e.adjustCustomer(ctx, ledger.EntryDebtAdjust, customerID, amount, reason)
}

// AdjustPoints moves a customer's points balance by amount. The balance
// is not clamped in either direction; a correction may push it negative
// or past the earning ceiling.
func (e *Engine) AdjustPoints(ctx context.Context, customerID string, amount float64, reason string) (Adjustment, error) {
	return e.adjustCustomer(ctx, ledger.EntryPointsAdjust, customerID, amount, reason)
}

func (e *Engine) adjustCustomer(ctx context.Context, kind ledger.EntryKind, customerID string, amount float64, reason string) (Adjustment, error) {
	if customerID == "" {
		return Adjustment{}, &RejectError{Code: ErrCodeValidation, Message: "customer id is empty"}
	}
	if amount == 0 {
		return Adjustment{}, &RejectError{
			Code:       ErrCodeValidation,
			Message:    "adjustment amount is zero",
			CustomerID: customerID,
		}
	}

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return Adjustment{}, err
	}

	customer, ok := snap.Customer(customerID)
	if !ok {
		return Adjustment{}, &RejectError{
			Code:       ErrCodeUnknownCustomer,
			Message:    "customer is not registered",
			CustomerID: customerID,
		}
	}

	var after float64
	switch kind {
	case ledger.EntryDebtAdjust:
		customer.Debt += amount
		after = customer.Debt
	case ledger.EntryPointsAdjust:
		customer.Points += amount
		after = customer.Points
	default:
		return Adjustment{}, &RejectError{Code: ErrCodeValidation, Message: fmt.Sprintf("unsupported adjustment kind %q", kind)}
	}

	now := e.clock.Now()
	entry := ledger.Entry{
		ID:         e.ids.NewID(ledger.PrefixManual, now),
		Timestamp:  now,
		Kind:       kind,
		Amount:     amount,
		Reason:     reason,
		CustomerID: customerID,
	}

	audit := e.audit(string(kind), fmt.Sprintf("entry=%s customer=%s amount=%.2f after=%.2f", entry.ID, customerID, amount, after))
	if err := e.store.ApplyEntry(ctx, entry, &customer, audit); err != nil {
		return Adjustment{}, err
	}

	e.log.Info("customer balance adjusted",
		"entry", entry.ID,
		"kind", string(kind),
		"customer", customerID,
		"amount", amount,
		"after", after,
	)

	return Adjustment{EntryID: entry.ID, Kind: kind, Amount: amount, After: after}, nil
}

// AdjustInventory moves a product's stock baseline by amount units
// (positive restock, negative shrinkage). The baseline may not go
// negative; derived stock still can, through oversold history.
func (e *Engine) AdjustInventory(ctx context.Context, productID string, amount int, reason string) (Adjustment, error) {
	if productID == "" {
		return Adjustment{}, &RejectError{Code: ErrCodeValidation, Message: "product id is empty"}
	}
	if amount == 0 {
		return Adjustment{}, &RejectError{
			Code:      ErrCodeValidation,
			Message:   "adjustment amount is zero",
			ProductID: productID,
		}
	}

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return Adjustment{}, err
	}

	product, ok := snap.Product(productID)
	if !ok {
		return Adjustment{}, &RejectError{
			Code:      ErrCodeUnknownProduct,
			Message:   "product is not in the catalog",
			ProductID: productID,
		}
	}

	newBaseline := product.InitialStock + amount
	if newBaseline < 0 {
		return Adjustment{}, &RejectError{
			Code:      ErrCodeValidation,
			Message:   fmt.Sprintf("baseline would go negative (%d%+d)", product.InitialStock, amount),
			ProductID: productID,
		}
	}
	product.InitialStock = newBaseline

	now := e.clock.Now()
	entry := ledger.Entry{
		ID:        e.ids.NewID(ledger.PrefixManual, now),
		Timestamp: now,
		Kind:      ledger.EntryInventoryAdjust,
		Amount:    float64(amount),
		Reason:    reason,
		ProductID: productID,
	}

	audit := e.audit("inventory_adjust", fmt.Sprintf("entry=%s product=%s amount=%d baseline=%d", entry.ID, productID, amount, newBaseline))
	if err := e.store.ApplyInventory(ctx, entry, product, audit); err != nil {
		return Adjustment{}, err
	}

	e.log.Info("inventory adjusted",
		"entry", entry.ID,
		"product", productID,
		"amount", amount,
		"baseline", newBaseline,
	)

	return Adjustment{EntryID: entry.ID, Kind: entry.Kind, Amount: float64(amount), After: float64(newBaseline)}, nil
}
