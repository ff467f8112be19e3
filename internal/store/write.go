package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/shoplog/internal/ledger"
)

// Audit is one row of the audit trail. ID is a UUIDv7 minted by the
// caller so audit rows sort by creation time.
type Audit struct {
	ID        string
	Timestamp time.Time
	Action    string
	Detail    string
}

// PutProduct upserts a catalog product.
func (s *Store) PutProduct(ctx context.Context, p ledger.Product) error {
	promoJSON, err := json.Marshal(p.PromoIDs)
	if err != nil {
		return fmt.Errorf("put product: %w", err)
	}

	cash, points := priceColumns(p.Price)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products
		(id, name, cost, initial_stock, cash_price, points_price, promo_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			cost = excluded.cost,
			initial_stock = excluded.initial_stock,
			cash_price = excluded.cash_price,
			points_price = excluded.points_price,
			promo_ids = excluded.promo_ids
	`,
		p.ID,
		p.Name,
		p.Cost,
		p.InitialStock,
		cash,
		points,
		string(promoJSON),
	)
	if err != nil {
		return fmt.Errorf("put product: %w", err)
	}

	return nil
}

// PutPromotion upserts a promotion rule.
func (s *Store) PutPromotion(ctx context.Context, p ledger.Promotion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO promotions
		(id, name, kind, threshold, reward_points, weekly_limit, member_only)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			threshold = excluded.threshold,
			reward_points = excluded.reward_points,
			weekly_limit = excluded.weekly_limit,
			member_only = excluded.member_only
	`,
		p.ID,
		p.Name,
		string(p.Kind),
		p.Threshold,
		p.RewardPoints,
		p.WeeklyLimit,
		p.MemberOnly,
	)
	if err != nil {
		return fmt.Errorf("put promotion: %w", err)
	}

	return nil
}

// PutCustomer upserts a customer record including both balances.
func (s *Store) PutCustomer(ctx context.Context, c ledger.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, points, debt)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			points = excluded.points,
			debt = excluded.debt
	`, c.ID, c.Points, c.Debt)
	if err != nil {
		return fmt.Errorf("put customer: %w", err)
	}

	return nil
}

// AppendAudit inserts an audit row. Duplicate IDs are silently ignored.
func (s *Store) AppendAudit(ctx context.Context, a Audit) error {
	if err := appendAuditTx(ctx, s.db, a); err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// txExecer covers both *sql.DB and *sql.Tx.
type txExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ApplyOrder atomically appends an order, sets the buyer's points balance,
// and records the audit row. The order insert uses ON CONFLICT(id) DO
// NOTHING so a retried write with the same ID is idempotent.
func (s *Store) ApplyOrder(ctx context.Context, o ledger.Order, buyer ledger.Customer, audit Audit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply order: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders
		(id, ts, customer_id, product_id, product_name, quantity, cost, paid_cash, paid_points, reward_points, channel, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		o.ID,
		o.Timestamp.Format(timeLayout),
		o.CustomerID,
		o.ProductID,
		o.ProductName,
		o.Quantity,
		o.Cost,
		o.PaidCash,
		o.PaidPoints,
		o.RewardPoints,
		string(o.Channel),
		o.Note,
	)
	if err != nil {
		return fmt.Errorf("apply order: insert order: %w", err)
	}

	if err := upsertCustomerTx(ctx, tx, buyer); err != nil {
		return fmt.Errorf("apply order: update customer: %w", err)
	}

	if err := appendAuditTx(ctx, tx, audit); err != nil {
		return fmt.Errorf("apply order: audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply order: commit: %w", err)
	}

	return nil
}

// ApplyRefund atomically appends a refund, sets the customer's points
// balance, and records the audit row. The referenced order must exist
// (foreign key constraint).
func (s *Store) ApplyRefund(ctx context.Context, r ledger.Refund, customer ledger.Customer, audit Audit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply refund: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO refunds
		(id, order_id, ts, customer_id, quantity, refund_cash, refund_points, deduct_points, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.OrderID,
		r.Timestamp.Format(timeLayout),
		r.CustomerID,
		r.Quantity,
		r.RefundCash,
		r.RefundPoints,
		r.DeductPoints,
		r.Reason,
	)
	if err != nil {
		return fmt.Errorf("apply refund: insert refund: %w", err)
	}

	if err := upsertCustomerTx(ctx, tx, customer); err != nil {
		return fmt.Errorf("apply refund: update customer: %w", err)
	}

	if err := appendAuditTx(ctx, tx, audit); err != nil {
		return fmt.Errorf("apply refund: audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply refund: commit: %w", err)
	}

	return nil
}

// ApplyEntry atomically appends a ledger entry and records the audit row.
// When customer is non-nil the customer's balances are set in the same
// transaction (used by debt and points adjustments, where the entry is an
// audit record and the balance on the customer row is authoritative).
func (s *Store) ApplyEntry(ctx context.Context, e ledger.Entry, customer *ledger.Customer, audit Audit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply entry: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries
		(id, ts, kind, amount, reason, customer_id, product_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.Timestamp.Format(timeLayout),
		string(e.Kind),
		e.Amount,
		e.Reason,
		e.CustomerID,
		e.ProductID,
	)
	if err != nil {
		return fmt.Errorf("apply entry: insert entry: %w", err)
	}

	if customer != nil {
		if err := upsertCustomerTx(ctx, tx, *customer); err != nil {
			return fmt.Errorf("apply entry: update customer: %w", err)
		}
	}

	if err := appendAuditTx(ctx, tx, audit); err != nil {
		return fmt.Errorf("apply entry: audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply entry: commit: %w", err)
	}

	return nil
}

// ApplyInventory atomically appends an inventory_adjust entry, writes the
// product's new stock baseline, and records the audit row.
func (s *Store) ApplyInventory(ctx context.Context, e ledger.Entry, p ledger.Product, audit Audit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply inventory: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries
		(id, ts, kind, amount, reason, customer_id, product_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.Timestamp.Format(timeLayout),
		string(e.Kind),
		e.Amount,
		e.Reason,
		e.CustomerID,
		e.ProductID,
	)
	if err != nil {
		return fmt.Errorf("apply inventory: insert entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products SET initial_stock = ? WHERE id = ?
	`, p.InitialStock, p.ID)
	if err != nil {
		return fmt.Errorf("apply inventory: update product: %w", err)
	}

	if err := appendAuditTx(ctx, tx, audit); err != nil {
		return fmt.Errorf("apply inventory: audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply inventory: commit: %w", err)
	}

	return nil
}

func upsertCustomerTx(ctx context.Context, tx txExecer, c ledger.Customer) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO customers (id, points, debt)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			points = excluded.points,
			debt = excluded.debt
	`, c.ID, c.Points, c.Debt)
	return err
}

func appendAuditTx(ctx context.Context, tx txExecer, a Audit) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_log (id, ts, action, detail)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, a.ID, a.Timestamp.Format(timeLayout), a.Action, a.Detail)
	return err
}
