package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/fiatpay-bridge/internal/bridge/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.Trace)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/checkout/{id}", handler.Checkout)

	r.Route("/fiatpay/v1", func(r chi.Router) {
		r.Post("/payment-confirm", handler.PaymentConfirm)
		r.Post("/payment-failed", handler.PaymentFailed)
	})

	r.Get(SuccessPath, handler.SuccessPage)
	r.Get(FailedPath, handler.FailedPage)

	return r
}
