package httpapi

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/roomedit/internal/metrics"
)

// withOriginVerify rejects requests lacking the x-origin-verify header that
// the CDN in front of the API injects. An empty secret disables the check.
func withOriginVerify(secret string, next http.Handler) http.Handler {
	if secret == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-origin-verify") != secret {
			log.Warn().Str("path", r.URL.Path).Msg("Blocked request: missing or invalid x-origin-verify header")
			httpError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// withMetrics emits per-request EMF metrics with an Endpoint dimension taken
// from the matched route pattern.
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(sr, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.New(metrics.Namespace).
			Dimension("Endpoint", endpoint).
			Duration("RequestLatencyMs", elapsed).
			Count("RequestCount").
			Property("method", r.Method).
			Property("statusCode", sr.statusCode).
			Property("path", r.URL.Path).
			Flush()

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sr.statusCode).
			Dur("duration", elapsed).
			Msg("Request handled")
	})
}
