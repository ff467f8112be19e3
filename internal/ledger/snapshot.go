package ledger

// Snapshot is a full read of the event collections and reference tables at
// one instant. Every derivation takes a Snapshot explicitly; no component
// reads ambient state. The host (store) is responsible for producing
// snapshots with deterministic ordering: orders, refunds, and entries sorted
// by timestamp ascending, then ID ascending.
type Snapshot struct {
	Products   []Product
	Customers  []Customer
	Orders     []Order
	Refunds    []Refund
	Entries    []Entry
	Promotions []Promotion
}

// Product returns the catalog record for id.
func (s *Snapshot) Product(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Customer returns the customer record for id.
func (s *Snapshot) Customer(id string) (Customer, bool) {
	for _, c := range s.Customers {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

// Order returns the order record for id.
func (s *Snapshot) Order(id string) (Order, bool) {
	for _, o := range s.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Promotion returns the promotion record for id.
func (s *Snapshot) Promotion(id string) (Promotion, bool) {
	for _, p := range s.Promotions {
		if p.ID == id {
			return p, true
		}
	}
	return Promotion{}, false
}

// RefundsFor returns all refunds recorded against one order, in snapshot
// order.
func (s *Snapshot) RefundsFor(orderID string) []Refund {
	var out []Refund
	for _, r := range s.Refunds {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out
}

// RefundedQuantity returns the cumulative quantity already refunded against
// one order.
func (s *Snapshot) RefundedQuantity(orderID string) int {
	total := 0
	for _, r := range s.Refunds {
		if r.OrderID == orderID {
			total += r.Quantity
		}
	}
	return total
}
