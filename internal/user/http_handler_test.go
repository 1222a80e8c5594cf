package user

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"bookshelf/internal/testutil"
	"bookshelf/internal/web"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	return NewHTTPHandler(NewService(repo), web.MustNewRenderer(), testutil.QuietLogger()), repo
}

func TestHTTPHandler_RegisterPage(t *testing.T) {
	h, _ := newTestHandler(t)
	w := httptest.NewRecorder()

	h.RegisterPage(w, httptest.NewRequest(http.MethodGet, "/register", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/register"`)
}

func TestHTTPHandler_Register(t *testing.T) {
	form := url.Values{"username": {"alice"}, "password": {"pw1"}}

	t.Run("redirects to login", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(User{}, ErrNotFound)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		h.Register(w, testutil.NewFormRequest(http.MethodPost, "/register", form))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("json for api callers", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(User{}, ErrNotFound)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, u *User) error {
			u.ID = 4
			return nil
		})

		w := httptest.NewRecorder()
		h.Register(w, testutil.AsAPI(testutil.NewFormRequest(http.MethodPost, "/register", form)))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusCreated, resp.Code)
		data := resp.Body["data"].(map[string]any)
		assert.EqualValues(t, 4, data["id"])
		assert.Equal(t, "alice", data["username"])
	})

	t.Run("duplicate username", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(User{ID: 1}, nil)

		w := httptest.NewRecorder()
		h.Register(w, testutil.NewFormRequest(http.MethodPost, "/register", form))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "Username already exists!")
	})

	t.Run("duplicate username json", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(User{ID: 1}, nil)

		w := httptest.NewRecorder()
		h.Register(w, testutil.AsAPI(testutil.NewFormRequest(http.MethodPost, "/register", form)))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "CONFLICT", resp.ErrorCode())
	})

	t.Run("validation", func(t *testing.T) {
		h, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		bad := url.Values{"username": {"al ice"}, "password": {"pw"}}
		h.Register(w, testutil.NewFormRequest(http.MethodPost, "/register", bad))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "must not contain whitespace")
	})

	t.Run("missing password", func(t *testing.T) {
		h, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		h.Register(w, testutil.AsAPI(testutil.NewFormRequest(http.MethodPost, "/register", url.Values{"username": {"bob"}})))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode())
	})
}
