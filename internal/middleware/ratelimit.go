package middleware

import (
	"net/http"
	"time"

	"inkwell/internal/api"

	"github.com/go-chi/httprate"
)

// RateLimit limits each client IP to rpm requests per minute. Zero disables it.
func RateLimit(rpm int) func(http.Handler) http.Handler {
	if rpm <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		rpm,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			api.WriteDetails(w, http.StatusTooManyRequests, "Request was throttled.")
		}),
	)
}
