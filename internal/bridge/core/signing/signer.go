// Package signing implements the HMAC protocol shared with the payment
// processor: a canonical JSON serialization of the payment fields,
// HMAC-SHA256 over those bytes, and constant-time verification.
//
// Canonicalization is the load-bearing invariant. The producer and the
// verifier must emit byte-identical JSON for the same fields, so the
// field order is fixed by the entity.PaymentRequest struct and the amount
// is always the order's native decimal string, never reformatted.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/domain/entity"
)

// ErrEmptySecret rejects construction with a missing key. Signing with an
// empty secret would make every signature forgeable, so this is treated
// as a fatal misconfiguration, not a soft failure.
var ErrEmptySecret = errors.New("signing: hmac secret is empty")

// Signer computes signatures over canonical payment payloads with a
// shared symmetric key. It is immutable and safe for concurrent use.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign returns the lowercase-hex HMAC-SHA256 digest of the canonical
// serialization of req. Pure: identical input always yields the identical
// signature.
func (s *Signer) Sign(req entity.PaymentRequest) (string, error) {
	canonical, err := Canonical(req)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Canonical serializes req to the byte string that gets signed: a JSON
// object with the fields in fixed order (order_id, amount, currency,
// email, merchant).
func Canonical(req entity.PaymentRequest) ([]byte, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("signing: canonical serialization: %w", err)
	}
	return b, nil
}
