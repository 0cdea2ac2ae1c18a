package paymentlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo reads the active OpenTelemetry span from ctx and
// returns its ids as hex strings. Both come back empty when no span is
// active (e.g. unit tests); callers should store them as-is.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an Entry with a fresh id and the trace info taken from
// ctx.
func NewEntry(ctx context.Context, orderID int64, status string, outcome Outcome, reason string) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Status:    status,
		Outcome:   outcome,
		Reason:    reason,
		TraceID:   ti.TraceID,
		SpanID:    ti.SpanID,
		CreatedAt: time.Now().UTC(),
	}
}
