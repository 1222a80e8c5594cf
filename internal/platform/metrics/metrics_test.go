package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET /", "200"))
	RecordRequest("GET /", "200", 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("GET /", "200")))
}

func TestRecordCatalog(t *testing.T) {
	before := testutil.ToFloat64(CatalogRequests.WithLabelValues("search", "ok"))
	RecordCatalog("search", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(CatalogRequests.WithLabelValues("search", "ok")))
}

func TestHandler(t *testing.T) {
	RecordCatalog("fetch", "not_found")

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "bookshelf_catalog_requests_total"))
}
