// Package sqlite provides a SQLite-backed implementation of
// ports.OrderGateway.
//
// The conditional UPDATE in MarkPaid/UpdateStatus is what delivers the
// "verify-then-transition is effectively atomic per order" guarantee the
// bridge relies on: two concurrent deliveries of the same success webhook
// race on a single guarded statement, and exactly one reports applied.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/domain/entity"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/ports"

	// Pure-Go SQLite driver, no CGO. Use driver name "sqlite", not "sqlite3".
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id             INTEGER PRIMARY KEY,

    -- Decimal amount stored as TEXT so the original scale survives.
    -- "19.99" must stay "19.99": its string form is part of the signed
    -- payload.
    total          TEXT    NOT NULL,

    currency       TEXT    NOT NULL,
    billing_email  TEXT    NOT NULL,
    status         TEXT    NOT NULL DEFAULT 'pending',
    reason         TEXT    NOT NULL DEFAULT '',

    -- How many times stock was reserved for this order. The bridge only
    -- forwards the reservation request; real inventory lives in the shop.
    stock_reductions INTEGER NOT NULL DEFAULT 0,

    created_at     TEXT    NOT NULL,
    updated_at     TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS order_notes (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id  INTEGER NOT NULL REFERENCES orders(id),
    note      TEXT    NOT NULL,
    created_at TEXT   NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_notes_order_id ON order_notes(order_id, id);
`

var _ ports.OrderGateway = (*Store)(nil)

// Store is the SQLite implementation of ports.OrderGateway.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// WAL mode keeps callback writes from blocking checkout reads.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer connection; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Seed inserts an order if it does not exist yet. Used by tooling and
// tests; real orders arrive through the shop's own pipeline.
func (s *Store) Seed(ctx context.Context, order *entity.Order) error {
	const q = `
		INSERT OR IGNORE INTO orders
			(id, total, currency, billing_email, status, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	now := timestamp(time.Now())
	status := order.Status
	if status == "" {
		status = entity.StatusPending
	}
	_, err := s.db.ExecContext(ctx, q,
		order.ID,
		order.Total.String(),
		order.Currency,
		order.BillingEmail,
		string(status),
		order.Reason,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: seed order %d: %w", order.ID, err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, id int64) (*entity.Order, error) {
	const q = `
		SELECT id, total, currency, billing_email, status, reason, created_at, updated_at
		FROM   orders
		WHERE  id = ?`

	row := s.db.QueryRowContext(ctx, q, id)

	var order entity.Order
	var total, status, createdAt, updatedAt string
	err := row.Scan(&order.ID, &total, &order.Currency, &order.BillingEmail, &status, &order.Reason, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ports.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order %d: %w", id, err)
	}

	order.Total, err = decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("sqlite: order %d has bad total %q: %w", id, total, err)
	}
	order.Status = entity.OrderStatus(status)
	if order.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	if order.UpdatedAt, err = parseRFC3339(updatedAt); err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid transitions the order to paid unless it already is. The WHERE
// clause is the per-order atomicity guard.
func (s *Store) MarkPaid(ctx context.Context, id int64) (bool, error) {
	const q = `
		UPDATE orders
		SET    status = ?, reason = '', updated_at = ?
		WHERE  id = ? AND status != ?`

	res, err := s.db.ExecContext(ctx, q, string(entity.StatusPaid), timestamp(time.Now()), id, string(entity.StatusPaid))
	if err != nil {
		return false, fmt.Errorf("sqlite: mark order %d paid: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: mark order %d paid: %w", id, err)
	}
	if n == 0 {
		return false, s.mustExist(ctx, id)
	}
	return true, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus, reason string) (bool, error) {
	const q = `
		UPDATE orders
		SET    status = ?, reason = ?, updated_at = ?
		WHERE  id = ? AND status != ?`

	res, err := s.db.ExecContext(ctx, q, string(status), reason, timestamp(time.Now()), id, string(status))
	if err != nil {
		return false, fmt.Errorf("sqlite: update order %d status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: update order %d status: %w", id, err)
	}
	if n == 0 {
		return false, s.mustExist(ctx, id)
	}
	return true, nil
}

func (s *Store) AddNote(ctx context.Context, id int64, note string) error {
	if err := s.mustExist(ctx, id); err != nil {
		return err
	}

	const q = `INSERT INTO order_notes (order_id, note, created_at) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, id, note, timestamp(time.Now())); err != nil {
		return fmt.Errorf("sqlite: add note to order %d: %w", id, err)
	}
	return nil
}

func (s *Store) ReduceStock(ctx context.Context, id int64) error {
	const q = `UPDATE orders SET stock_reductions = stock_reductions + 1, updated_at = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, q, timestamp(time.Now()), id)
	if err != nil {
		return fmt.Errorf("sqlite: reduce stock for order %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reduce stock for order %d: %w", id, err)
	}
	if n == 0 {
		return ports.ErrOrderNotFound
	}
	return nil
}

// Notes returns the audit notes for an order, oldest first.
func (s *Store) Notes(ctx context.Context, id int64) ([]string, error) {
	const q = `SELECT note FROM order_notes WHERE order_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: notes for order %d: %w", id, err)
	}
	defer rows.Close()

	var notes []string
	for rows.Next() {
		var note string
		if err := rows.Scan(&note); err != nil {
			return nil, fmt.Errorf("sqlite: scan note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// mustExist distinguishes "no rows updated because already in that
// status" from "no such order".
func (s *Store) mustExist(ctx context.Context, id int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return ports.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("sqlite: check order %d: %w", id, err)
	}
	return nil
}

func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.999999999Z")
}
