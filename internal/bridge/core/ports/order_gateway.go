package ports

import (
	"context"
	"errors"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/domain/entity"
)

// ErrOrderNotFound is returned by Find when no order exists for the id.
var ErrOrderNotFound = errors.New("order not found")

// OrderGateway is the port to the shop that owns order state. The bridge
// only reads orders and requests mutations; persistence, locking, and
// inventory rules live behind this interface.
//
// MarkPaid and UpdateStatus must be conditional updates: each reports
// whether the transition actually applied, so that duplicate webhook
// deliveries for the same order stay safe no-ops (the store's atomicity
// is the only lock the bridge relies on).
type OrderGateway interface {
	Find(ctx context.Context, id int64) (*entity.Order, error)
	MarkPaid(ctx context.Context, id int64) (applied bool, err error)
	UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus, reason string) (applied bool, err error)
	AddNote(ctx context.Context, id int64, note string) error
	ReduceStock(ctx context.Context, id int64) error
}
