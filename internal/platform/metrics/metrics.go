package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookshelf_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	CatalogRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_catalog_requests_total",
			Help: "Catalog provider calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	BooksAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookshelf_books_added_total",
			Help: "Books added to user collections",
		},
	)

	AvatarUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_avatar_uploads_total",
			Help: "Avatar uploads by result (stored, rejected)",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		CatalogRequests,
		BooksAdded,
		AvatarUploads,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordRequest(route, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(route, status).Inc()
	RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func RecordCatalog(operation, outcome string) {
	CatalogRequests.WithLabelValues(operation, outcome).Inc()
}
