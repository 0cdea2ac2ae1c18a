package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/callback"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/checkout"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/domain/entity"
	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/core/ports"
)

// Redirect destinations for verified callbacks, served by this process.
const (
	SuccessPath = "/fiatpay-success"
	FailedPath  = "/fiatpay-failed"
)

// Handler is the thin transport layer over the checkout initiator and
// the callback processor. The core computes structured outcomes; this is
// where they become status codes and redirects.
type Handler struct {
	initiator *checkout.Initiator
	processor *callback.Processor
}

func NewHandler(initiator *checkout.Initiator, processor *callback.Processor) *Handler {
	return &Handler{initiator: initiator, processor: processor}
}

// Checkout produces the redirect target for an order's payment.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "order id must be a positive integer")
		return
	}

	redirect, err := h.initiator.Initiate(r.Context(), orderID)
	switch {
	case errors.Is(err, ports.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "invalid_order", "Order not found")
		return
	case errors.Is(err, checkout.ErrProcessorNotConfigured):
		// Operator problem, not the shopper's. Detail stays in the logs.
		slog.ErrorContext(r.Context(), "checkout rejected", "order_id", orderID, "error", err)
		writeError(w, http.StatusInternalServerError, "configuration_error", "")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "checkout failed", "order_id", orderID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{Result: "success", Redirect: redirect.URL})
}

// PaymentConfirm handles the processor's success webhook.
func (h *Handler) PaymentConfirm(w http.ResponseWriter, r *http.Request) {
	h.handleCallback(w, r, entity.CallbackSuccess)
}

// PaymentFailed handles the processor's failure webhook.
func (h *Handler) PaymentFailed(w http.ResponseWriter, r *http.Request) {
	h.handleCallback(w, r, entity.CallbackFailed)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request, status entity.CallbackStatus) {
	var req CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Missing parameters")
		return
	}

	outcome, err := h.processor.Process(r.Context(), entity.CallbackResult{
		OrderID:   req.OrderID,
		Signature: req.Signature,
		Status:    status,
		Reason:    req.Reason,
	})
	switch {
	case errors.Is(err, callback.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", "Missing parameters")
		return
	case errors.Is(err, ports.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "invalid_order", "Order not found")
		return
	case errors.Is(err, callback.ErrSignatureMismatch):
		writeError(w, http.StatusForbidden, "invalid_signature", "Signature mismatch")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "callback processing failed", "order_id", req.OrderID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	http.Redirect(w, r, destinationPath(outcome.Destination), http.StatusFound)
}

func destinationPath(d callback.Destination) string {
	if d == callback.DestinationFailed {
		return FailedPath
	}
	return SuccessPath
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
