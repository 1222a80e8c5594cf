package httpx

import (
	"net/http"
	"strconv"
	"time"

	"bookshelf/internal/platform/metrics"
)

// MetricsMiddleware must wrap the ServeMux directly: it reads r.Pattern,
// which the mux sets on the request it is handed.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrapResponseWriter(w)

		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(route, strconv.Itoa(rw.statusCode), time.Since(start))
	})
}
