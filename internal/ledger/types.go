package ledger

import "time"

// Channel identifies which shelf an order was placed on.
type Channel string

const (
	ChannelCash   Channel = "cash"
	ChannelPoints Channel = "points"
)

// Tier is a customer's membership classification. Tiers are never stored;
// they are recomputed on every query from the event log and member config.
type Tier string

const (
	TierSpecial  Tier = "SPECIAL"
	TierOfficial Tier = "OFFICIAL"
	TierTrainee  Tier = "TRAINEE"
)

// EntryKind categorizes a manual ledger entry.
//
// budget_adjust is authoritative: the activity budget is derived from
// those entries alone. The other kinds are audit records for mutations
// applied elsewhere - debt and points live on the Customer record, the
// stock baseline on the Product record.
type EntryKind string

const (
	EntryBudgetAdjust    EntryKind = "budget_adjust"
	EntryDebtAdjust      EntryKind = "debt_adjust"
	EntryPointsAdjust    EntryKind = "points_adjust"
	EntryInventoryAdjust EntryKind = "inventory_adjust"
)

// PromotionKind selects how a promotion's threshold is interpreted.
type PromotionKind string

const (
	PromoQuantityBased PromotionKind = "quantity_based"
	PromoAmountBased   PromotionKind = "amount_based"
)

// Product is a catalog item. InitialStock is a baseline count moved only by
// inventory_adjust entries, never by sales; available stock is derived from
// it and the order/refund history.
type Product struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Cost         float64  `json:"cost"` // unit cost in yuan
	InitialStock int      `json:"initial_stock"`
	Price        Price    `json:"-"`
	PromoIDs     []string `json:"promo_ids,omitempty"`
}

// Order is an immutable sale record. Cost, PaidCash, PaidPoints, and
// RewardPoints are snapshots taken at sale time and must never be
// recomputed from current catalog prices. Refunds reference an order but
// never mutate it.
type Order struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	CustomerID   string    `json:"customer_id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Quantity     int       `json:"quantity"`
	Cost         float64   `json:"cost"` // unit cost x quantity at sale time
	PaidCash     float64   `json:"paid_cash"`
	PaidPoints   float64   `json:"paid_points"`
	RewardPoints float64   `json:"reward_points"`
	Channel      Channel   `json:"channel"`
	Note         string    `json:"note,omitempty"`
}

// Refund is an immutable partial or full reversal of one order. Multiple
// refunds may exist per order; their quantities may never cumulatively
// exceed the order's quantity.
type Refund struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	Timestamp    time.Time `json:"timestamp"`
	CustomerID   string    `json:"customer_id"`
	Quantity     int       `json:"quantity"`
	RefundCash   float64   `json:"refund_cash"`
	RefundPoints float64   `json:"refund_points"`
	DeductPoints float64   `json:"deduct_points"` // reward points clawed back
	Reason       string    `json:"reason,omitempty"`
}

// Entry is an append-only record of a manual adjustment.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Kind       EntryKind `json:"kind"`
	Amount     float64   `json:"amount"`
	Reason     string    `json:"reason,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"` // set for debt_adjust / points_adjust
	ProductID  string    `json:"product_id,omitempty"`  // set for inventory_adjust
}

// Customer holds the two balances the system mutates in place. Both are
// signed: points may go negative after a refund claw-back, and a positive
// debt means the customer owes the shop.
type Customer struct {
	ID     string  `json:"id"`
	Points float64 `json:"points"`
	Debt   float64 `json:"debt"`
}

// Promotion is a reward rule bound to products by ID.
//
// WeeklyLimit is carried for catalog compatibility but does not gate reward
// computation: rewards are evaluated over the full eligible quantity or
// amount of an order.
type Promotion struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Kind         PromotionKind `json:"kind"`
	Threshold    float64       `json:"threshold"`
	RewardPoints float64       `json:"reward_points"`
	WeeklyLimit  int           `json:"weekly_limit"`
	MemberOnly   bool          `json:"member_only"`
}
