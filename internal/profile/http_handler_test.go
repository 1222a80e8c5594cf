package profile

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/book"
	"bookshelf/internal/testutil"
	"bookshelf/internal/user"
	"bookshelf/internal/web"
)

func newHandlerFixture(t *testing.T) (*HTTPHandler, fixture) {
	t.Helper()
	f := newFixture(t)
	return NewHTTPHandler(f.svc, web.MustNewRenderer(), testutil.QuietLogger(), 8<<20), f
}

func asAlice(r *http.Request) *http.Request {
	return testutil.WithIdentity(r, alice.UserID, alice.Username)
}

func multipartRequest(t *testing.T, bio, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("bio", bio))
	if filename != "" {
		fw, err := mw.CreateFormFile("profile_pic", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/edit_profile", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestHTTPHandler_Show(t *testing.T) {
	t.Run("renders profile and books", func(t *testing.T) {
		h, f := newHandlerFixture(t)
		u := aliceUser()
		u.Bio = "Loves sci-fi"
		f.users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(u, nil)
		f.books.EXPECT().ListByOwner(gomock.Any(), int64(1)).Return([]book.Book{{ID: 3, OwnerID: 1, Title: "Dune"}}, nil)

		r := httptest.NewRequest(http.MethodGet, "/profile/alice", nil)
		r.SetPathValue("username", "alice")
		w := httptest.NewRecorder()
		h.Show(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Loves sci-fi")
		assert.Contains(t, w.Body.String(), "Dune")
		assert.NotContains(t, w.Body.String(), `href="/edit_profile">Edit profile`)
	})

	t.Run("owner sees edit link", func(t *testing.T) {
		h, f := newHandlerFixture(t)
		f.users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(aliceUser(), nil)
		f.books.EXPECT().ListByOwner(gomock.Any(), int64(1)).Return(nil, nil)

		r := httptest.NewRequest(http.MethodGet, "/profile/alice", nil)
		r.SetPathValue("username", "alice")
		w := httptest.NewRecorder()
		h.Show(w, asAlice(r))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `href="/edit_profile">Edit profile`)
	})

	t.Run("unknown user", func(t *testing.T) {
		h, f := newHandlerFixture(t)
		f.users.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(user.User{}, user.ErrNotFound)

		r := httptest.NewRequest(http.MethodGet, "/profile/ghost", nil)
		r.SetPathValue("username", "ghost")
		w := httptest.NewRecorder()
		h.Show(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "User not found")
	})
}

func TestHTTPHandler_EditForm(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		h, _ := newHandlerFixture(t)
		w := httptest.NewRecorder()
		h.EditForm(w, httptest.NewRequest(http.MethodGet, "/edit_profile", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("prefills bio", func(t *testing.T) {
		h, f := newHandlerFixture(t)
		u := aliceUser()
		u.Bio = "Loves sci-fi"
		f.users.EXPECT().GetByID(gomock.Any(), int64(1)).Return(u, nil)

		w := httptest.NewRecorder()
		h.EditForm(w, asAlice(httptest.NewRequest(http.MethodGet, "/edit_profile", nil)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Loves sci-fi")
	})
}

func TestHTTPHandler_Edit(t *testing.T) {
	t.Run("anonymous is sent to login", func(t *testing.T) {
		h, _ := newHandlerFixture(t)
		w := httptest.NewRecorder()
		h.Edit(w, multipartRequest(t, "hi", "", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("anonymous api call", func(t *testing.T) {
		h, _ := newHandlerFixture(t)
		w := httptest.NewRecorder()
		h.Edit(w, testutil.AsAPI(multipartRequest(t, "hi", "", nil)))

		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusForbidden, res.Code)
		assert.Equal(t, "AUTH_REQUIRED", res.ErrorCode())
	})

	t.Run("bio and avatar", func(t *testing.T) {
		h, f := newHandlerFixture(t)
		f.users.EXPECT().UpdateProfile(gomock.Any(), int64(1), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, upd user.ProfileUpdate) (user.User, error) {
				require.NotNil(t, upd.Bio)
				require.NotNil(t, upd.AvatarRef)
				assert.Equal(t, "Loves sci-fi", *upd.Bio)
				u := aliceUser()
				u.Bio, u.AvatarRef = *upd.Bio, *upd.AvatarRef
				return u, nil
			})

		w := httptest.NewRecorder()
		h.Edit(w, asAlice(multipartRequest(t, "Loves sci-fi", "me.png", pngBytes)))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/profile/alice", w.Header().Get("Location"))
	})

	t.Run("bad picture is ignored", func(t *testing.T) {
		h, f := newHandlerFixture(t)
		f.users.EXPECT().UpdateProfile(gomock.Any(), int64(1), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, upd user.ProfileUpdate) (user.User, error) {
				assert.Nil(t, upd.AvatarRef)
				return aliceUser(), nil
			})

		w := httptest.NewRecorder()
		h.Edit(w, testutil.AsAPI(asAlice(multipartRequest(t, "new bio", "me.exe", pngBytes))))

		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, true, res.Body["success"])
	})

	t.Run("body over the cap", func(t *testing.T) {
		f := newFixture(t)
		h := NewHTTPHandler(f.svc, web.MustNewRenderer(), testutil.QuietLogger(), 512)

		w := httptest.NewRecorder()
		h.Edit(w, asAlice(multipartRequest(t, "bio", "me.png", make([]byte, 4096))))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	})

	t.Run("malformed form", func(t *testing.T) {
		malformed := func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/edit_profile", strings.NewReader("bio=x"))
			r.Header.Set("Content-Type", "multipart/form-data")
			return asAlice(r)
		}

		h, _ := newHandlerFixture(t)
		w := httptest.NewRecorder()
		h.Edit(w, malformed())
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "Invalid form", w.Body.String())

		w = httptest.NewRecorder()
		h.Edit(w, testutil.AsAPI(malformed()))
		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, false, res.Body["success"])
	})
}

func TestHTTPHandler_Avatar(t *testing.T) {
	h, f := newHandlerFixture(t)
	require.NoError(t, f.blobs.Put(context.Background(), "1/abc.png", bytes.NewReader(pngBytes), int64(len(pngBytes)), "image/png"))

	get := func(key string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/avatars/"+key, nil)
		r.SetPathValue("key", key)
		w := httptest.NewRecorder()
		h.Avatar(w, r)
		return w
	}

	w := get("1/abc.png")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, w.Body.Bytes())

	assert.Equal(t, http.StatusNotFound, get("1/missing.png").Code)
	assert.Equal(t, http.StatusNotFound, get("default").Code)
	assert.Equal(t, http.StatusNotFound, get("../secret").Code)
}
