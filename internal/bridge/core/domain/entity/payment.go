package entity

// PaymentRequest is the ephemeral set of fields sent to the payment
// processor. It exists only long enough to be signed and encoded.
type PaymentRequest struct {
	OrderID  int64  `json:"order_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Email    string `json:"email"`
	Merchant string `json:"merchant"`
}

// SignedPayload is a PaymentRequest plus its HMAC signature. Field order
// matters: the JSON encoding of the embedded request is the canonical
// byte string the signature was computed over.
type SignedPayload struct {
	PaymentRequest
	Signature string `json:"signature"`
}

type CallbackStatus string

const (
	CallbackSuccess CallbackStatus = "success"
	CallbackFailed  CallbackStatus = "failed"
)

// CallbackResult is a parsed webhook delivery from the processor. Only
// OrderID and Signature are ever trusted; everything else about the order
// is re-derived server-side.
type CallbackResult struct {
	OrderID   int64
	Signature string
	Status    CallbackStatus
	Reason    string
}
