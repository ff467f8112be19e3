package ledger

// Price is a tagged variant over the two sale channels. A product may be
// priced on the cash shelf, the points shelf, or both; an absent channel is
// represented structurally rather than by a zero value, so callers cannot
// mistake "free" for "not sold here".
//
// The zero Price has no channels and the product is not purchasable.
type Price struct {
	cash      float64
	points    float64
	hasCash   bool
	hasPoints bool
}

// CashPrice returns a Price sold on the cash shelf only.
func CashPrice(amount float64) Price {
	return Price{cash: amount, hasCash: true}
}

// PointsPrice returns a Price sold on the points shelf only.
func PointsPrice(amount float64) Price {
	return Price{points: amount, hasPoints: true}
}

// DualPrice returns a Price sold on both shelves.
func DualPrice(cash, points float64) Price {
	return Price{cash: cash, points: points, hasCash: true, hasPoints: true}
}

// Cash returns the cash price and whether the product is on the cash shelf.
func (p Price) Cash() (float64, bool) {
	return p.cash, p.hasCash
}

// Points returns the points price and whether the product is on the points
// shelf.
func (p Price) Points() (float64, bool) {
	return p.points, p.hasPoints
}
