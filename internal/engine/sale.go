package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/shoplog/internal/derive"
	"github.com/roach88/shoplog/internal/ledger"
	"github.com/roach88/shoplog/internal/promo"
	"github.com/roach88/shoplog/internal/verify"
)

// Receipt is the outcome of a completed sale, carrying the fields a
// handwritten receipt needs plus the verification code over them.
type Receipt struct {
	OrderID       string      `json:"order_id"`
	Timestamp     time.Time   `json:"timestamp"`
	CustomerID    string      `json:"customer_id"`
	ProductID     string      `json:"product_id"`
	ProductName   string      `json:"product_name"`
	Quantity      int         `json:"quantity"`
	PaidCash      float64     `json:"paid_cash"`
	PaidPoints    float64     `json:"paid_points"`
	RewardPoints  float64     `json:"reward_points"`
	Tier          ledger.Tier `json:"tier"`
	PromotionName string      `json:"promotion_name,omitempty"`
	VerifyCode    string      `json:"verify_code"`
	StockAfter    int         `json:"stock_after"`
}

// CashSale sells qty units of a product on the cash shelf.
//
// Special users pay zero cash; the cost snapshot still records what the
// sale cost the shop. Reward points are computed from the product's
// promotions at the order instant and credited immediately. A buyer at or
// over the points ceiling is rejected when the sale would earn more
// points, but an earning sale may still push the balance past the ceiling.
func (e *Engine) CashSale(ctx context.Context, customerID, productID string, qty int, note string) (Receipt, error) {
	if err := validateSaleInput(customerID, productID, qty); err != nil {
		return Receipt{}, err
	}

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return Receipt{}, err
	}

	customer, ok := snap.Customer(customerID)
	if !ok {
		return Receipt{}, &RejectError{
			Code:       ErrCodeUnknownCustomer,
			Message:    "customer is not registered",
			CustomerID: customerID,
		}
	}

	product, ok := snap.Product(productID)
	if !ok {
		return Receipt{}, &RejectError{
			Code:      ErrCodeUnknownProduct,
			Message:   "product is not in the catalog",
			ProductID: productID,
		}
	}

	price, ok := product.Price.Cash()
	if !ok {
		return Receipt{}, &RejectError{
			Code:      ErrCodeValidation,
			Message:   "product is not on the cash shelf",
			ProductID: productID,
		}
	}

	if err := e.checkStock(snap, productID, qty); err != nil {
		return Receipt{}, err
	}

	now := e.clock.Now()
	tier := derive.Tier(snap, e.cfg, customerID, now)
	total := price * float64(qty)

	var rewardPoints float64
	var promoName string
	if result, ok := promo.ForOrder(snap, e.cfg, product, qty, total, tier); ok {
		rewardPoints = result.Points
		promoName = result.PromotionName
	}
	// Special users never accrue points, even if their reward rate is
	// configured to something other than zero.
	if tier == ledger.TierSpecial {
		rewardPoints = 0
	}

	if rewardPoints > 0 && customer.Points >= e.cfg.MaxPoints {
		return Receipt{}, &RejectError{
			Code:       ErrCodePointsCeiling,
			Message:    fmt.Sprintf("points balance %.2f is at the ceiling %.2f, spend points before earning more", customer.Points, e.cfg.MaxPoints),
			CustomerID: customerID,
			ProductID:  productID,
		}
	}

	// Special users take goods at zero price.
	paidCash := total
	if tier == ledger.TierSpecial {
		paidCash = 0
	}

	order := ledger.Order{
		ID:           e.ids.NewID(ledger.PrefixCashOrder, now),
		Timestamp:    now,
		CustomerID:   customerID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		Quantity:     qty,
		Cost:         product.Cost * float64(qty),
		PaidCash:     paidCash,
		PaidPoints:   0,
		RewardPoints: rewardPoints,
		Channel:      ledger.ChannelCash,
		Note:         note,
	}

	customer.Points += rewardPoints

	audit := e.audit("cash_sale", fmt.Sprintf("order=%s customer=%s product=%s qty=%d", order.ID, customerID, productID, qty))
	if err := e.store.ApplyOrder(ctx, order, customer, audit); err != nil {
		return Receipt{}, err
	}

	e.log.Info("cash sale applied",
		"order", order.ID,
		"customer", customerID,
		"product", productID,
		"quantity", qty,
		"paid_cash", paidCash,
		"reward_points", rewardPoints,
		"tier", string(tier),
	)

	return e.receipt(snap, order, tier, promoName), nil
}

// PointsSale redeems qty units of a product on the points shelf. Points
// purchases never earn rewards, and special users cannot redeem.
func (e *Engine) PointsSale(ctx context.Context, customerID, productID string, qty int, note string) (Receipt, error) {
	if err := validateSaleInput(customerID, productID, qty); err != nil {
		return Receipt{}, err
	}

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return Receipt{}, err
	}

	customer, ok := snap.Customer(customerID)
	if !ok {
		return Receipt{}, &RejectError{
			Code:       ErrCodeUnknownCustomer,
			Message:    "customer is not registered",
			CustomerID: customerID,
		}
	}

	now := e.clock.Now()
	tier := derive.Tier(snap, e.cfg, customerID, now)
	if tier == ledger.TierSpecial {
		return Receipt{}, &RejectError{
			Code:       ErrCodeSpecialRedeem,
			Message:    "special users cannot redeem points",
			CustomerID: customerID,
		}
	}

	product, ok := snap.Product(productID)
	if !ok {
		return Receipt{}, &RejectError{
			Code:      ErrCodeUnknownProduct,
			Message:   "product is not in the catalog",
			ProductID: productID,
		}
	}

	price, ok := product.Price.Points()
	if !ok {
		return Receipt{}, &RejectError{
			Code:      ErrCodeValidation,
			Message:   "product is not on the points shelf",
			ProductID: productID,
		}
	}

	if err := e.checkStock(snap, productID, qty); err != nil {
		return Receipt{}, err
	}

	total := price * float64(qty)
	if customer.Points < total {
		return Receipt{}, &RejectError{
			Code:       ErrCodeInsufficientPoints,
			Message:    fmt.Sprintf("points balance %.2f cannot cover %.2f", customer.Points, total),
			CustomerID: customerID,
			ProductID:  productID,
		}
	}

	order := ledger.Order{
		ID:           e.ids.NewID(ledger.PrefixPointsOrder, now),
		Timestamp:    now,
		CustomerID:   customerID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		Quantity:     qty,
		Cost:         product.Cost * float64(qty),
		PaidCash:     0,
		PaidPoints:   total,
		RewardPoints: 0,
		Channel:      ledger.ChannelPoints,
		Note:         note,
	}

	customer.Points -= total

	audit := e.audit("points_sale", fmt.Sprintf("order=%s customer=%s product=%s qty=%d", order.ID, customerID, productID, qty))
	if err := e.store.ApplyOrder(ctx, order, customer, audit); err != nil {
		return Receipt{}, err
	}

	e.log.Info("points sale applied",
		"order", order.ID,
		"customer", customerID,
		"product", productID,
		"quantity", qty,
		"paid_points", total,
	)

	return e.receipt(snap, order, tier, ""), nil
}

func validateSaleInput(customerID, productID string, qty int) error {
	if customerID == "" {
		return &RejectError{Code: ErrCodeValidation, Message: "customer id is empty"}
	}
	if productID == "" {
		return &RejectError{Code: ErrCodeValidation, Message: "product id is empty"}
	}
	if qty <= 0 {
		return &RejectError{
			Code:      ErrCodeValidation,
			Message:   "quantity must be a positive integer",
			ProductID: productID,
		}
	}
	return nil
}

func (e *Engine) checkStock(snap *ledger.Snapshot, productID string, qty int) error {
	stock := derive.Stock(snap, productID)
	if qty > stock.Available {
		return &RejectError{
			Code:      ErrCodeInsufficientStock,
			Message:   fmt.Sprintf("requested %d but only %d available", qty, stock.Available),
			ProductID: productID,
		}
	}
	return nil
}

// receipt assembles the Receipt for a just-applied order. snap predates
// the order, so the derived stock is adjusted by the sold quantity.
func (e *Engine) receipt(snap *ledger.Snapshot, o ledger.Order, tier ledger.Tier, promoName string) Receipt {
	stock := derive.Stock(snap, o.ProductID)
	return Receipt{
		OrderID:       o.ID,
		Timestamp:     o.Timestamp,
		CustomerID:    o.CustomerID,
		ProductID:     o.ProductID,
		ProductName:   o.ProductName,
		Quantity:      o.Quantity,
		PaidCash:      o.PaidCash,
		PaidPoints:    o.PaidPoints,
		RewardPoints:  o.RewardPoints,
		Tier:          tier,
		PromotionName: promoName,
		VerifyCode:    verify.ForOrder(e.cfg.Salt, o),
		StockAfter:    stock.Available - o.Quantity,
	}
}
