// Package callback applies verified webhook results to orders.
//
// The processing order is a security invariant, not a convenience:
// validate the request, resolve the order, verify the signature, and only
// then mutate anything. A request that fails any gate leaves the order
// untouched.
package callback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/domain/entity"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/ports"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/signing"
	"github.com/jcmexdev/fiatpay-bridge/internal/paymentlog"
	"github.com/jcmexdev/fiatpay-bridge/internal/pkg/cache"
)

var (
	// ErrInvalidRequest means order_id or signature was missing.
	ErrInvalidRequest = errors.New("callback: missing parameters")

	// ErrSignatureMismatch means the supplied signature did not match the
	// one recomputed from the order's stored values. Callers must not leak
	// anything beyond the fact of the mismatch.
	ErrSignatureMismatch = errors.New("callback: signature mismatch")
)

// Destination names where the boundary should redirect the caller after
// a verified callback.
type Destination string

const (
	DestinationSuccess Destination = "success"
	DestinationFailed  Destination = "failed"
)

// Outcome is the structured result of a verified callback. The processor
// computes it; a thin transport layer turns it into an HTTP redirect.
type Outcome struct {
	OrderID     int64
	Destination Destination
}

// dedupTTL bounds how long a delivery is remembered for duplicate
// detection. Processors retry within minutes, not days.
const dedupTTL = 24 * time.Hour

// Processor runs the callback state machine. audit and dedup may be nil;
// processing then proceeds without the audit trail or duplicate marker.
type Processor struct {
	orders   ports.OrderGateway
	verifier *signing.Verifier
	audit    paymentlog.Repository
	dedup    cache.Cache
}

func NewProcessor(orders ports.OrderGateway, verifier *signing.Verifier, audit paymentlog.Repository, dedup cache.Cache) *Processor {
	return &Processor{
		orders:   orders,
		verifier: verifier,
		audit:    audit,
		dedup:    dedup,
	}
}

// Process validates, verifies, and enacts one callback delivery.
//
// Error mapping for the boundary: ErrInvalidRequest (400),
// ports.ErrOrderNotFound (404), ErrSignatureMismatch (403). Anything else
// is an internal failure. On a nil error the returned Outcome tells the
// caller which destination to redirect to.
func (p *Processor) Process(ctx context.Context, result entity.CallbackResult) (*Outcome, error) {
	if result.OrderID == 0 || result.Signature == "" {
		p.record(ctx, result, paymentlog.OutcomeRejectedRequest, "")
		return nil, ErrInvalidRequest
	}

	order, err := p.orders.Find(ctx, result.OrderID)
	if err != nil {
		if errors.Is(err, ports.ErrOrderNotFound) {
			p.record(ctx, result, paymentlog.OutcomeUnknownOrder, "")
		}
		return nil, err
	}

	ok, err := p.verifier.Verify(order, result.Signature)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Logged as a potential tampering signal; nothing about the
		// mismatch goes back to the caller.
		slog.WarnContext(ctx, "callback signature mismatch", "order_id", result.OrderID, "status", result.Status)
		p.record(ctx, result, paymentlog.OutcomeBadSignature, "")
		return nil, ErrSignatureMismatch
	}

	if first := p.markDelivery(ctx, result); !first {
		slog.InfoContext(ctx, "duplicate callback delivery", "order_id", result.OrderID, "status", result.Status)
	}

	switch result.Status {
	case entity.CallbackFailed:
		return p.fail(ctx, result)
	default:
		return p.confirm(ctx, result)
	}
}

func (p *Processor) confirm(ctx context.Context, result entity.CallbackResult) (*Outcome, error) {
	applied, err := p.orders.MarkPaid(ctx, result.OrderID)
	if err != nil {
		return nil, fmt.Errorf("callback: mark order %d paid: %w", result.OrderID, err)
	}

	if applied {
		if err := p.orders.AddNote(ctx, result.OrderID, "Payment confirmed via FiatPay."); err != nil {
			slog.ErrorContext(ctx, "failed to add confirmation note", "order_id", result.OrderID, "error", err)
		}
		slog.InfoContext(ctx, "order paid", "order_id", result.OrderID)
		p.record(ctx, result, paymentlog.OutcomeConfirmed, "")
	} else {
		// Already paid: a repeated verified success is a safe
		// re-confirmation, not an error. No second substantive note.
		slog.DebugContext(ctx, "order already paid, no-op re-confirmation", "order_id", result.OrderID)
		p.record(ctx, result, paymentlog.OutcomeDuplicate, "")
	}

	return &Outcome{OrderID: result.OrderID, Destination: DestinationSuccess}, nil
}

func (p *Processor) fail(ctx context.Context, result entity.CallbackResult) (*Outcome, error) {
	reason := sanitizeReason(result.Reason)
	if reason == "" {
		reason = "Unknown"
	}

	applied, err := p.orders.UpdateStatus(ctx, result.OrderID, entity.StatusFailed, "Payment failed: "+reason)
	if err != nil {
		return nil, fmt.Errorf("callback: fail order %d: %w", result.OrderID, err)
	}

	if applied {
		slog.InfoContext(ctx, "order failed", "order_id", result.OrderID, "reason", reason)
		p.record(ctx, result, paymentlog.OutcomeFailed, reason)
	} else {
		slog.DebugContext(ctx, "order already failed, no-op", "order_id", result.OrderID)
		p.record(ctx, result, paymentlog.OutcomeDuplicate, reason)
	}

	return &Outcome{OrderID: result.OrderID, Destination: DestinationFailed}, nil
}

// markDelivery notes the delivery in the dedup cache. Advisory only: a
// cache outage must never block payment processing, so errors are logged
// and the delivery is treated as first.
func (p *Processor) markDelivery(ctx context.Context, result entity.CallbackResult) bool {
	if p.dedup == nil {
		return true
	}
	key := p.dedup.GenerateKey("callback", fmt.Sprintf("%d:%s:%s", result.OrderID, result.Status, result.Signature))
	first, err := p.dedup.MarkOnce(ctx, key, dedupTTL)
	if err != nil {
		slog.DebugContext(ctx, "dedup cache unavailable", "error", err)
		return true
	}
	return first
}

func (p *Processor) record(ctx context.Context, result entity.CallbackResult, outcome paymentlog.Outcome, reason string) {
	if p.audit == nil {
		return
	}
	entry := paymentlog.NewEntry(ctx, result.OrderID, string(result.Status), outcome, reason)
	if err := p.audit.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to save callback audit entry", "order_id", result.OrderID, "error", err)
	}
}
