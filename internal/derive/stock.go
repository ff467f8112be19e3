package derive

import "github.com/roach88/shoplog/internal/ledger"

// StockResult carries a derived stock level together with its integrity
// flag. A negative level is not an error - it is returned as computed so
// downstream tooling can detect lost inventory - but Negative marks it as
// a data-integrity warning the caller must surface.
type StockResult struct {
	Available int
	Negative  bool
}

// Stock recomputes a product's available quantity from the order and
// refund history:
//
//	initialStock - sum(order quantities) + sum(refund quantities)
//
// restricted to orders for the product and refunds whose original order is
// for the product. Refund contributions use the refund's own recorded
// quantity directly, not a cash or points ratio, to avoid compounding
// rounding error. An unknown product derives to zero stock.
func Stock(snap *ledger.Snapshot, productID string) StockResult {
	product, ok := snap.Product(productID)
	if !ok {
		return StockResult{}
	}

	available := product.InitialStock
	for _, o := range snap.Orders {
		if o.ProductID == productID {
			available -= o.Quantity
		}
	}
	for _, r := range snap.Refunds {
		original, ok := snap.Order(r.OrderID)
		if ok && original.ProductID == productID {
			available += r.Quantity
		}
	}

	return StockResult{Available: available, Negative: available < 0}
}
