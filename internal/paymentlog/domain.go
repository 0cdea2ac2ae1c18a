// Package paymentlog defines the append-only audit trail of webhook
// deliveries. Every callback the bridge processes — accepted or rejected —
// becomes one immutable row, correlated with the distributed trace that
// handled it. Rejected signatures land here too: they are the tampering
// signal an operator wants to query for.
package paymentlog

import "time"

// Outcome is the terminal result of processing one callback delivery.
type Outcome string

const (
	OutcomeConfirmed       Outcome = "CONFIRMED"
	OutcomeFailed          Outcome = "FAILED"
	OutcomeDuplicate       Outcome = "DUPLICATE"
	OutcomeRejectedRequest Outcome = "REJECTED_REQUEST"
	OutcomeUnknownOrder    Outcome = "UNKNOWN_ORDER"
	OutcomeBadSignature    Outcome = "BAD_SIGNATURE"
)

// Entry is a single row in the callback_logs table.
type Entry struct {
	// ID is a random identifier for this delivery record.
	ID string

	// OrderID is the order the callback claimed to be about. Zero when the
	// request was rejected before an order id could be parsed.
	OrderID int64

	// Status is the processor-declared result ("success" or "failed").
	Status string

	// Outcome is what the bridge decided after verification.
	Outcome Outcome

	// Reason carries the sanitized failure reason, if the processor sent one.
	Reason string

	// TraceID and SpanID come from the OpenTelemetry span that was active
	// while the callback was handled, so a log row can be joined with the
	// full trace.
	TraceID string
	SpanID  string

	// CreatedAt is the wall-clock time of this delivery.
	CreatedAt time.Time
}
