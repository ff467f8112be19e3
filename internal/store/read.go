package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/shoplog/internal/ledger"
)

// Snapshot reads every table into memory at call time. The log tables are
// ordered deterministically (ORDER BY ts ASC, id COLLATE BINARY ASC) so
// derivations and reverse lookups see one canonical sequence regardless of
// insert interleaving.
func (s *Store) Snapshot(ctx context.Context) (*ledger.Snapshot, error) {
	snap := &ledger.Snapshot{}
	var err error

	if snap.Products, err = s.readProducts(ctx); err != nil {
		return nil, err
	}
	if snap.Promotions, err = s.readPromotions(ctx); err != nil {
		return nil, err
	}
	if snap.Customers, err = s.readCustomers(ctx); err != nil {
		return nil, err
	}
	if snap.Orders, err = s.readOrders(ctx); err != nil {
		return nil, err
	}
	if snap.Refunds, err = s.readRefunds(ctx); err != nil {
		return nil, err
	}
	if snap.Entries, err = s.readEntries(ctx); err != nil {
		return nil, err
	}

	return snap, nil
}

func (s *Store) readProducts(ctx context.Context) ([]ledger.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, cost, initial_stock, cash_price, points_price, promo_ids
		FROM products
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []ledger.Product{}
	for rows.Next() {
		var (
			p         ledger.Product
			cash, pts sql.NullFloat64
			promosRaw string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Cost, &p.InitialStock, &cash, &pts, &promosRaw); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Price = priceFromColumns(cash, pts)
		if p.PromoIDs, err = unmarshalPromoIDs(promosRaw); err != nil {
			return nil, fmt.Errorf("scan product %s: %w", p.ID, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (s *Store) readPromotions(ctx context.Context) ([]ledger.Promotion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, threshold, reward_points, weekly_limit, member_only
		FROM promotions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	promos := []ledger.Promotion{}
	for rows.Next() {
		var (
			p    ledger.Promotion
			kind string
		)
		if err := rows.Scan(&p.ID, &p.Name, &kind, &p.Threshold, &p.RewardPoints, &p.WeeklyLimit, &p.MemberOnly); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		p.Kind = ledger.PromotionKind(kind)
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotions: %w", err)
	}

	return promos, nil
}

func (s *Store) readCustomers(ctx context.Context) ([]ledger.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, points, debt
		FROM customers
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := []ledger.Customer{}
	for rows.Next() {
		var c ledger.Customer
		if err := rows.Scan(&c.ID, &c.Points, &c.Debt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}

func (s *Store) readOrders(ctx context.Context) ([]ledger.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, customer_id, product_id, product_name, quantity, cost, paid_cash, paid_points, reward_points, channel, note
		FROM orders
		ORDER BY ts ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []ledger.Order{}
	for rows.Next() {
		var (
			o           ledger.Order
			ts, channel string
		)
		if err := rows.Scan(&o.ID, &ts, &o.CustomerID, &o.ProductID, &o.ProductName, &o.Quantity, &o.Cost, &o.PaidCash, &o.PaidPoints, &o.RewardPoints, &channel, &o.Note); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("scan order %s: %w", o.ID, err)
		}
		o.Channel = ledger.Channel(channel)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

func (s *Store) readRefunds(ctx context.Context) ([]ledger.Refund, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, ts, customer_id, quantity, refund_cash, refund_points, deduct_points, reason
		FROM refunds
		ORDER BY ts ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query refunds: %w", err)
	}
	defer rows.Close()

	refunds := []ledger.Refund{}
	for rows.Next() {
		var (
			r  ledger.Refund
			ts string
		)
		if err := rows.Scan(&r.ID, &r.OrderID, &ts, &r.CustomerID, &r.Quantity, &r.RefundCash, &r.RefundPoints, &r.DeductPoints, &r.Reason); err != nil {
			return nil, fmt.Errorf("scan refund: %w", err)
		}
		if r.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("scan refund %s: %w", r.ID, err)
		}
		refunds = append(refunds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refunds: %w", err)
	}

	return refunds, nil
}

func (s *Store) readEntries(ctx context.Context) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, kind, amount, reason, customer_id, product_id
		FROM ledger_entries
		ORDER BY ts ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []ledger.Entry{}
	for rows.Next() {
		var (
			e        ledger.Entry
			ts, kind string
		)
		if err := rows.Scan(&e.ID, &ts, &kind, &e.Amount, &e.Reason, &e.CustomerID, &e.ProductID); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("scan ledger entry %s: %w", e.ID, err)
		}
		e.Kind = ledger.EntryKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}

	return entries, nil
}

// ReadAudit returns audit rows in insertion order, newest last. limit <= 0
// returns everything.
func (s *Store) ReadAudit(ctx context.Context, limit int) ([]Audit, error) {
	q := `
		SELECT id, ts, action, detail
		FROM audit_log
		ORDER BY id COLLATE BINARY ASC
	`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, q+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var audits []Audit
	for rows.Next() {
		var (
			a  Audit
			ts string
		)
		if err := rows.Scan(&a.ID, &ts, &a.Action, &a.Detail); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		if a.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("scan audit %s: %w", a.ID, err)
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", err)
	}

	return audits, nil
}
