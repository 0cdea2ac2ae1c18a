// Package checkout builds the outbound side of the bridge: a signed,
// encoded payment payload appended to the processor's URL.
package checkout

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/domain/entity"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/ports"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/signing"
)

// ErrProcessorNotConfigured is returned when no processor base URL is
// set. A configuration error for the merchant, never shown to shoppers.
var ErrProcessorNotConfigured = errors.New("checkout: payment processor URL is not configured")

// Redirect tells the transport boundary where to send the shopper.
// The initiator never writes an HTTP response itself.
type Redirect struct {
	URL string
}

// Initiator assembles, signs, and encodes payment requests. Immutable
// after construction; safe for concurrent use.
type Initiator struct {
	orders       ports.OrderGateway
	signer       *signing.Signer
	processorURL string
	merchant     string
}

func NewInitiator(orders ports.OrderGateway, signer *signing.Signer, processorURL, merchant string) *Initiator {
	return &Initiator{
		orders:       orders,
		signer:       signer,
		processorURL: processorURL,
		merchant:     merchant,
	}
}

// Initiate produces the redirect target for an order's payment.
//
// The encoded segment is base64(JSON) of the payment request plus its
// signature, appended as a path segment to the processor URL. Stock is
// reserved synchronously before returning, ahead of payment confirmation;
// a later failed payment does not restore it here (the shop owns any
// compensation).
func (i *Initiator) Initiate(ctx context.Context, orderID int64) (*Redirect, error) {
	if i.processorURL == "" {
		return nil, ErrProcessorNotConfigured
	}

	order, err := i.orders.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	req := signing.RequestFrom(order, i.merchant)
	sig, err := i.signer.Sign(req)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(entity.SignedPayload{PaymentRequest: req, Signature: sig})
	if err != nil {
		return nil, fmt.Errorf("checkout: encode payload: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(payload)

	if err := i.orders.ReduceStock(ctx, orderID); err != nil {
		return nil, fmt.Errorf("checkout: reserve stock for order %d: %w", orderID, err)
	}

	return &Redirect{URL: strings.TrimRight(i.processorURL, "/") + "/" + encoded}, nil
}
