package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/domain/entity"
)

func testRequest() entity.PaymentRequest {
	return entity.PaymentRequest{
		OrderID:  42,
		Amount:   "19.99",
		Currency: "USD",
		Email:    "a@b.com",
		Merchant: "shop.example",
	}
}

func TestNewSigner_EmptySecret(t *testing.T) {
	_, err := NewSigner("")
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestCanonical_FieldOrderAndFormatting(t *testing.T) {
	b, err := Canonical(testRequest())
	require.NoError(t, err)
	assert.Equal(t,
		`{"order_id":42,"amount":"19.99","currency":"USD","email":"a@b.com","merchant":"shop.example"}`,
		string(b))
}

func TestSign_MatchesManualHMAC(t *testing.T) {
	signer, err := NewSigner("s3cret")
	require.NoError(t, err)

	sig, err := signer.Sign(testRequest())
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write([]byte(`{"order_id":42,"amount":"19.99","currency":"USD","email":"a@b.com","merchant":"shop.example"}`))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), sig)
	assert.Len(t, sig, 64)
	assert.Equal(t, strings.ToLower(sig), sig)
}

func TestSign_Deterministic(t *testing.T) {
	signer, err := NewSigner("s3cret")
	require.NoError(t, err)

	first, err := signer.Sign(testRequest())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := signer.Sign(testRequest())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSign_SecretSensitivity(t *testing.T) {
	secrets := []string{"s3cret", "s3cret ", "S3cret", "another", "s3cret2"}
	seen := make(map[string]string)
	for _, secret := range secrets {
		signer, err := NewSigner(secret)
		require.NoError(t, err)
		sig, err := signer.Sign(testRequest())
		require.NoError(t, err)
		for other, otherSig := range seen {
			assert.NotEqual(t, otherSig, sig, "secrets %q and %q produced the same signature", other, secret)
		}
		seen[secret] = sig
	}
}

func TestRequestFrom_PreservesDecimalString(t *testing.T) {
	total, err := decimal.NewFromString("19.90")
	require.NoError(t, err)

	order := &entity.Order{
		ID:           7,
		Total:        total,
		Currency:     "EUR",
		BillingEmail: "x@y.z",
	}

	req := RequestFrom(order, "shop.example")
	// Trailing zero must survive: "19.90", not "19.9".
	assert.Equal(t, "19.90", req.Amount)
	assert.Equal(t, int64(7), req.OrderID)
	assert.Equal(t, "shop.example", req.Merchant)
}
