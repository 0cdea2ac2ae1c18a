package signing

import (
	"crypto/hmac"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/domain/entity"
)

// RequestFrom builds the canonical payment request from an order's stored
// values. Checkout initiation and callback verification both go through
// this one constructor, which is what keeps the two sides of the protocol
// byte-identical.
func RequestFrom(order *entity.Order, merchant string) entity.PaymentRequest {
	return entity.PaymentRequest{
		OrderID:  order.ID,
		Amount:   order.Total.String(),
		Currency: order.Currency,
		Email:    order.BillingEmail,
		Merchant: merchant,
	}
}

// Verifier authenticates inbound callbacks. The expected signature is
// recomputed from the order's stored values plus the configured merchant
// domain; amount, currency, and email supplied by the caller are ignored
// so a tampered request body cannot influence verification.
type Verifier struct {
	signer   *Signer
	merchant string
}

func NewVerifier(signer *Signer, merchant string) *Verifier {
	return &Verifier{signer: signer, merchant: merchant}
}

// Verify reports whether supplied matches the signature of the order's
// authoritative payment request. The comparison is constant-time; no side
// effects, no detail about why a mismatch mismatched.
func (v *Verifier) Verify(order *entity.Order, supplied string) (bool, error) {
	expected, err := v.signer.Sign(RequestFrom(order, v.merchant))
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(expected), []byte(supplied)), nil
}
