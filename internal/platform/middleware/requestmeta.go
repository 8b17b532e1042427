package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"timeclock/pkg/requestcontext"
)

// RequestMeta stamps every request with a correlation ID and a request-scoped
// "now". All operations within one request observe the same timestamp, which
// keeps audit rows and derived durations consistent.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
