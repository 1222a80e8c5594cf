package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, retries int) *Client {
	return NewClient(Options{
		BaseURL:    url,
		Timeout:    time.Second,
		MaxRetries: retries,
		Backoff:    time.Millisecond,
	})
}

func TestClient_SearchVolumes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		assert.Equal(t, "dune herbert", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalItems":1,"items":[{"id":"abc123","volumeInfo":{"title":"Dune","authors":["Frank Herbert"],"imageLinks":{"thumbnail":"http://img/1"}}}]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL, 0).SearchVolumes(context.Background(), "dune herbert", 5)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "abc123", res.Items[0].ID)
	assert.Equal(t, "Dune", res.Items[0].VolumeInfo.Title)
	assert.Equal(t, []string{"Frank Herbert"}, res.Items[0].VolumeInfo.Authors)
	assert.Equal(t, "http://img/1", res.Items[0].VolumeInfo.ImageLinks.Thumbnail)
}

func TestClient_SearchVolumes_APIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"totalItems":0}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, APIKey: "secret"})
	res, err := c.SearchVolumes(context.Background(), "x", 0)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestClient_GetVolume(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/volumes/abc123":
			_, _ = w.Write([]byte(`{"id":"abc123","volumeInfo":{"title":"Dune","authors":["Frank Herbert"],"publishedDate":"1965"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 0)

	t.Run("found", func(t *testing.T) {
		v, err := c.GetVolume(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "Dune", v.VolumeInfo.Title)
		assert.Equal(t, "1965", v.VolumeInfo.PublishedDate)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := c.GetVolume(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"abc123","volumeInfo":{"title":"Dune"}}`))
	}))
	defer srv.Close()

	v, err := newTestClient(srv.URL, 2).GetVolume(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Dune", v.VolumeInfo.Title)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 1).SearchVolumes(context.Background(), "x", 5)
	require.Error(t, err)

	var statusErr *StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).SearchVolumes(context.Background(), "x", 5)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).SearchVolumes(context.Background(), "x", 5)
	assert.Error(t, err)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := c.SearchVolumes(context.Background(), "x", 5)
	assert.Error(t, err)
}
