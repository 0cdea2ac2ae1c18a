package paymentlog

import "context"

// Repository is the port for persisting callback audit entries. The
// processor depends on this abstraction, not on SQLite directly, so the
// implementation can be swapped (or omitted — callers treat a nil
// repository as "don't audit").
type Repository interface {
	// Save appends a new entry. The log is append-only, never an upsert.
	Save(ctx context.Context, entry *Entry) error
}
