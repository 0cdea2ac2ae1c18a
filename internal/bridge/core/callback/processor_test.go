package callback

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/domain/entity"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/ports"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/signing"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/infra/adapters/orderstore"
	"github.com/jcmexdev/fiatpay-bridge/internal/paymentlog"
)

const (
	testSecret   = "s3cret"
	testMerchant = "shop.example"
)

// memoryAudit collects paymentlog entries in memory.
type memoryAudit struct {
	entries []*paymentlog.Entry
}

func (m *memoryAudit) Save(ctx context.Context, entry *paymentlog.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAudit) outcomes() []paymentlog.Outcome {
	out := make([]paymentlog.Outcome, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Outcome
	}
	return out
}

type fixture struct {
	store     *orderstore.MemoryStore
	signer    *signing.Signer
	audit     *memoryAudit
	processor *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	signer, err := signing.NewSigner(testSecret)
	require.NoError(t, err)

	store := orderstore.NewMemoryStore()
	store.Put(&entity.Order{
		ID:           42,
		Total:        decimal.RequireFromString("19.99"),
		Currency:     "USD",
		BillingEmail: "a@b.com",
		Status:       entity.StatusPending,
	})

	audit := &memoryAudit{}
	return &fixture{
		store:     store,
		signer:    signer,
		audit:     audit,
		processor: NewProcessor(store, signing.NewVerifier(signer, testMerchant), audit, nil),
	}
}

func (f *fixture) signatureFor(t *testing.T, orderID int64) string {
	t.Helper()
	order, err := f.store.Find(context.Background(), orderID)
	require.NoError(t, err)
	sig, err := f.signer.Sign(signing.RequestFrom(order, testMerchant))
	require.NoError(t, err)
	return sig
}

func (f *fixture) status(t *testing.T, orderID int64) entity.OrderStatus {
	t.Helper()
	order, err := f.store.Find(context.Background(), orderID)
	require.NoError(t, err)
	return order.Status
}

func TestProcess_MissingParameters(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		result entity.CallbackResult
	}{
		{"no order id", entity.CallbackResult{Signature: "abc", Status: entity.CallbackSuccess}},
		{"no signature", entity.CallbackResult{OrderID: 42, Status: entity.CallbackSuccess}},
		{"neither", entity.CallbackResult{Status: entity.CallbackFailed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.processor.Process(context.Background(), tt.result)
			require.ErrorIs(t, err, ErrInvalidRequest)
			assert.Equal(t, entity.StatusPending, f.status(t, 42))
		})
	}
}

func TestProcess_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.processor.Process(context.Background(), entity.CallbackResult{
		OrderID:   999,
		Signature: "whatever",
		Status:    entity.CallbackSuccess,
	})
	require.ErrorIs(t, err, ports.ErrOrderNotFound)
	assert.Equal(t, []paymentlog.Outcome{paymentlog.OutcomeUnknownOrder}, f.audit.outcomes())
}

func TestProcess_SignatureMismatch_NoMutation(t *testing.T) {
	f := newFixture(t)

	_, err := f.processor.Process(context.Background(), entity.CallbackResult{
		OrderID:   42,
		Signature: "deadbeef",
		Status:    entity.CallbackSuccess,
	})
	require.ErrorIs(t, err, ErrSignatureMismatch)
	assert.Equal(t, entity.StatusPending, f.status(t, 42))
	assert.Empty(t, f.store.Notes(42))
	assert.Equal(t, []paymentlog.Outcome{paymentlog.OutcomeBadSignature}, f.audit.outcomes())
}

// A signature over forged order data is just as invalid as garbage: the
// verifier recomputes from stored values only.
func TestProcess_ForgedAmountSignatureRejected(t *testing.T) {
	f := newFixture(t)

	forged, err := f.signer.Sign(entity.PaymentRequest{
		OrderID:  42,
		Amount:   "0.01",
		Currency: "USD",
		Email:    "a@b.com",
		Merchant: testMerchant,
	})
	require.NoError(t, err)

	_, err = f.processor.Process(context.Background(), entity.CallbackResult{
		OrderID:   42,
		Signature: forged,
		Status:    entity.CallbackSuccess,
	})
	require.ErrorIs(t, err, ErrSignatureMismatch)
	assert.Equal(t, entity.StatusPending, f.status(t, 42))
}

func TestProcess_Success(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.processor.Process(context.Background(), entity.CallbackResult{
		OrderID:   42,
		Signature: f.signatureFor(t, 42),
		Status:    entity.CallbackSuccess,
	})
	require.NoError(t, err)
	assert.Equal(t, DestinationSuccess, outcome.Destination)
	assert.Equal(t, int64(42), outcome.OrderID)
	assert.Equal(t, entity.StatusPaid, f.status(t, 42))
	assert.Equal(t, []string{"Payment confirmed via FiatPay."}, f.store.Notes(42))
	assert.Equal(t, []paymentlog.Outcome{paymentlog.OutcomeConfirmed}, f.audit.outcomes())
}

func TestProcess_Success_Idempotent(t *testing.T) {
	f := newFixture(t)

	result := entity.CallbackResult{
		OrderID:   42,
		Signature: f.signatureFor(t, 42),
		Status:    entity.CallbackSuccess,
	}

	first, err := f.processor.Process(context.Background(), result)
	require.NoError(t, err)
	second, err := f.processor.Process(context.Background(), result)
	require.NoError(t, err)

	assert.Equal(t, DestinationSuccess, first.Destination)
	assert.Equal(t, DestinationSuccess, second.Destination)
	assert.Equal(t, entity.StatusPaid, f.status(t, 42))
	// Exactly one substantive note; the repeat is a no-op.
	assert.Equal(t, []string{"Payment confirmed via FiatPay."}, f.store.Notes(42))
	assert.Equal(t,
		[]paymentlog.Outcome{paymentlog.OutcomeConfirmed, paymentlog.OutcomeDuplicate},
		f.audit.outcomes())
}

// Verification gates before any transition logic, including for orders
// already terminal: a bad signature on a paid order is still 403 material
// and mutates nothing.
func TestProcess_BadSignatureOnPaidOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.processor.Process(context.Background(), entity.CallbackResult{
		OrderID:   42,
		Signature: f.signatureFor(t, 42),
		Status:    entity.CallbackSuccess,
	})
	require.NoError(t, err)
	require.Equal(t, entity.StatusPaid, f.status(t, 42))

	_, err = f.processor.Process(context.Background(), entity.CallbackResult{
		OrderID:   42,
		Signature: "deadbeef",
		Status:    entity.CallbackSuccess,
	})
	require.ErrorIs(t, err, ErrSignatureMismatch)
	assert.Equal(t, entity.StatusPaid, f.status(t, 42))
	assert.Equal(t, []string{"Payment confirmed via FiatPay."}, f.store.Notes(42))
}

func TestProcess_Failed(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.processor.Process(context.Background(), entity.CallbackResult{
		OrderID:   42,
		Signature: f.signatureFor(t, 42),
		Status:    entity.CallbackFailed,
		Reason:    "Card declined",
	})
	require.NoError(t, err)
	assert.Equal(t, DestinationFailed, outcome.Destination)

	order, err := f.store.Find(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, order.Status)
	assert.Equal(t, "Payment failed: Card declined", order.Reason)
}

func TestProcess_Failed_ReasonSanitized(t *testing.T) {
	f := newFixture(t)

	_, err := f.processor.Process(context.Background(), entity.CallbackResult{
		OrderID:   42,
		Signature: f.signatureFor(t, 42),
		Status:    entity.CallbackFailed,
		Reason:    "  <b>Card</b>\tdeclined\x00\x01  by <i>issuer</i> ",
	})
	require.NoError(t, err)

	order, err := f.store.Find(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Payment failed: Card declined by issuer", order.Reason)
}

func TestProcess_Failed_NoReason(t *testing.T) {
	f := newFixture(t)

	_, err := f.processor.Process(context.Background(), entity.CallbackResult{
		OrderID:   42,
		Signature: f.signatureFor(t, 42),
		Status:    entity.CallbackFailed,
	})
	require.NoError(t, err)

	order, err := f.store.Find(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Payment failed: Unknown", order.Reason)
}
