package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/platform/googlebooks"
)

func TestHTTPHandler_Search(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, provider := newTestService(t)
		handler := NewHTTPHandler(svc)
		vol := dune()
		vol.VolumeInfo.Authors = []string{"Frank Herbert", "Brian Herbert"}
		provider.EXPECT().SearchVolumes(gomock.Any(), "dune", QuickSearchLimit).
			Return(&googlebooks.VolumesResponse{Items: []googlebooks.Volume{vol}}, nil)

		w := httptest.NewRecorder()
		handler.Search(w, httptest.NewRequest(http.MethodGet, "/search_books?q=dune", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var items []map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&items))
		require.Len(t, items, 1)
		assert.Equal(t, "abc123", items[0]["google_id"])
		assert.Equal(t, "Frank Herbert, Brian Herbert", items[0]["authors"])
		assert.Equal(t, DescriptionPlaceholder, items[0]["description"])
	})

	t.Run("missing query", func(t *testing.T) {
		svc, _ := newTestService(t)
		handler := NewHTTPHandler(svc)

		w := httptest.NewRecorder()
		handler.Search(w, httptest.NewRequest(http.MethodGet, "/search_books", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("provider failure", func(t *testing.T) {
		svc, provider := newTestService(t)
		handler := NewHTTPHandler(svc)
		provider.EXPECT().SearchVolumes(gomock.Any(), "dune", QuickSearchLimit).Return(nil, errors.New("boom"))

		w := httptest.NewRecorder()
		handler.Search(w, httptest.NewRequest(http.MethodGet, "/search_books?q=dune", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}
