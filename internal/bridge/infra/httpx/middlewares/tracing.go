package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Trace starts a server span per request so callback handling shows up
// in the distributed trace and the payment log can capture trace ids.
func Trace(next http.Handler) http.Handler {
	tracer := otel.Tracer("fiatpay-bridge/httpx")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()

		if reqID := middleware.GetReqID(ctx); reqID != "" {
			span.SetAttributes(attribute.String("http.request_id", reqID))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
