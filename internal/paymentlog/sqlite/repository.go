// Package sqlite provides a SQLite-backed implementation of
// paymentlog.Repository.
//
// WAL mode is enabled on Open so that readers never block the request
// goroutines appending audit rows.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/fiatpay-bridge/internal/paymentlog"

	// Pure-Go SQLite driver; no CGO, builds cleanly on Alpine images.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. The table is append-only:
// each row is an immutable record of one webhook delivery.
const schema = `
CREATE TABLE IF NOT EXISTS callback_logs (
    id          TEXT PRIMARY KEY,
    order_id    INTEGER NOT NULL,
    status      TEXT    NOT NULL,
    outcome     TEXT    NOT NULL,
    reason      TEXT    NOT NULL DEFAULT '',
    trace_id    TEXT    NOT NULL DEFAULT '',
    span_id     TEXT    NOT NULL DEFAULT '',
    created_at  TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_callback_logs_order_id ON callback_logs(order_id, created_at);
CREATE INDEX IF NOT EXISTS idx_callback_logs_outcome  ON callback_logs(outcome);
`

// Repository is the SQLite implementation of paymentlog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new callback log entry. Safe for concurrent use.
func (r *Repository) Save(ctx context.Context, entry *paymentlog.Entry) error {
	const q = `
		INSERT INTO callback_logs
			(id, order_id, status, outcome, reason, trace_id, span_id, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.ID,
		entry.OrderID,
		entry.Status,
		string(entry.Outcome),
		entry.Reason,
		entry.TraceID,
		entry.SpanID,
		entry.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z"),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save callback log for order %d: %w", entry.OrderID, err)
	}
	return nil
}

// ByOrder returns all delivery records for an order, oldest first.
func (r *Repository) ByOrder(ctx context.Context, orderID int64) ([]*paymentlog.Entry, error) {
	const q = `
		SELECT id, order_id, status, outcome, reason, trace_id, span_id, created_at
		FROM   callback_logs
		WHERE  order_id = ?
		ORDER  BY created_at, rowid`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list callback logs for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var entries []*paymentlog.Entry
	for rows.Next() {
		var entry paymentlog.Entry
		var createdAt string
		if err := rows.Scan(
			&entry.ID,
			&entry.OrderID,
			&entry.Status,
			&entry.Outcome,
			&entry.Reason,
			&entry.TraceID,
			&entry.SpanID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan callback log: %w", err)
		}
		entry.CreatedAt, err = parseRFC3339(createdAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
