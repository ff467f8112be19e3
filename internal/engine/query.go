package engine

import (
	"context"

	"github.com/roach88/shoplog/internal/derive"
	"github.com/roach88/shoplog/internal/ledger"
	"github.com/roach88/shoplog/internal/verify"
)

// StockView is the derived stock level for one product.
type StockView struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Baseline    int    `json:"baseline"`
	Available   int    `json:"available"`
	Negative    bool   `json:"negative"`
	WeeklySales int    `json:"weekly_sales"`
}

// Stock derives current stock for every product, or for one product when
// productID is non-empty.
func (e *Engine) Stock(ctx context.Context, productID string) ([]StockView, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	var views []StockView
	for _, p := range snap.Products {
		if productID != "" && p.ID != productID {
			continue
		}
		stock := derive.Stock(snap, p.ID)
		views = append(views, StockView{
			ProductID:   p.ID,
			ProductName: p.Name,
			Baseline:    p.InitialStock,
			Available:   stock.Available,
			Negative:    stock.Negative,
			WeeklySales: derive.WeeklySales(snap, p.ID, now),
		})
	}

	if productID != "" && len(views) == 0 {
		return nil, &RejectError{
			Code:      ErrCodeUnknownProduct,
			Message:   "product is not in the catalog",
			ProductID: productID,
		}
	}
	return views, nil
}

// CustomerView is a customer's derived standing at query time.
type CustomerView struct {
	CustomerID   string      `json:"customer_id"`
	Tier         ledger.Tier `json:"tier"`
	Points       float64     `json:"points"`
	Debt         float64     `json:"debt"`
	WindowSpend  float64     `json:"window_spend"`
	DemotionDate string      `json:"demotion_date,omitempty"`
}

// Customers derives tier, window spend, and projected demotion for every
// customer, or for one when customerID is non-empty.
func (e *Engine) Customers(ctx context.Context, customerID string) ([]CustomerView, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	var views []CustomerView
	for _, c := range snap.Customers {
		if customerID != "" && c.ID != customerID {
			continue
		}
		v := CustomerView{
			CustomerID:  c.ID,
			Tier:        derive.Tier(snap, e.cfg, c.ID, now),
			Points:      c.Points,
			Debt:        c.Debt,
			WindowSpend: derive.WindowSpend(snap, c.ID, now, e.cfg.LookbackDays),
		}
		if date, ok := derive.DemotionDate(snap, e.cfg, c.ID, now); ok {
			v.DemotionDate = date.Format("2006-01-02")
		}
		views = append(views, v)
	}

	if customerID != "" && len(views) == 0 {
		return nil, &RejectError{
			Code:       ErrCodeUnknownCustomer,
			Message:    "customer is not registered",
			CustomerID: customerID,
		}
	}
	return views, nil
}

// Budget derives the current activity budget.
func (e *Engine) Budget(ctx context.Context) (float64, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return derive.Budget(snap), nil
}

// Revenue builds the revenue overview at query time.
func (e *Engine) Revenue(ctx context.Context) (derive.RevenueReport, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return derive.RevenueReport{}, err
	}
	return derive.Revenue(snap, e.cfg, e.clock.Now()), nil
}

// Debtors lists customers with outstanding debt.
func (e *Engine) Debtors(ctx context.Context) ([]derive.Debtor, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return derive.Debtors(snap), nil
}

// VerifyOrder recomputes the verification code for a stored order.
func (e *Engine) VerifyOrder(ctx context.Context, orderID string) (string, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	order, ok := snap.Order(orderID)
	if !ok {
		return "", &RejectError{
			Code:    ErrCodeUnknownOrder,
			Message: "order does not exist",
			OrderID: orderID,
		}
	}
	return verify.ForOrder(e.cfg.Salt, order), nil
}

// Lookup finds the order behind a receipt code, newest first.
func (e *Engine) Lookup(ctx context.Context, code string) (ledger.Order, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return ledger.Order{}, err
	}
	order, ok := verify.Lookup(snap, e.cfg.Salt, code)
	if !ok {
		return ledger.Order{}, &RejectError{
			Code:    ErrCodeUnknownOrder,
			Message: "no order matches the verification code",
		}
	}
	return order, nil
}
