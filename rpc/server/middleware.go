package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	gometrics "github.com/rcrowley/go-metrics"
)

// timerMiddleware records the duration of every request in a go-metrics timer
// named after the method and the matched route pattern (e.g. "GET /kv/{key}").
func timerMiddleware(registry gometrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			pattern := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			gometrics.GetOrRegisterTimer(r.Method+" "+pattern, registry).UpdateSince(start)
		})
	}
}
