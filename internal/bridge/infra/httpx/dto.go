package httpx

// CallbackRequest is the webhook body the processor POSTs. Only order_id
// and signature are trusted; reason is sanitized before use. Any other
// fields in the body are ignored by design.
type CallbackRequest struct {
	OrderID   int64  `json:"order_id"`
	Signature string `json:"signature"`
	Reason    string `json:"reason,omitempty"`
}

// CheckoutResponse mirrors what the storefront expects from a payment
// gateway: a result flag and the URL to send the shopper to.
type CheckoutResponse struct {
	Result   string `json:"result"`
	Redirect string `json:"redirect"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
