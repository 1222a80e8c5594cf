package session

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/platform/crypto"
)

const testSecret = "test-secret"

type ownedThing struct{ owner int64 }

func (o ownedThing) Owner() int64 { return o.owner }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestIdentity(t *testing.T) {
	anon := Identity{}
	assert.False(t, anon.Authenticated())
	assert.ErrorIs(t, anon.Require(), ErrAuthRequired)
	assert.Equal(t, "anonymous", anon.Label())

	alice := Identity{UserID: 7, Username: "alice"}
	assert.True(t, alice.Authenticated())
	assert.NoError(t, alice.Require())
	assert.Equal(t, "7", alice.Label())
}

func TestOwns(t *testing.T) {
	alice := Identity{UserID: 7, Username: "alice"}

	assert.True(t, Owns(alice, ownedThing{owner: 7}))
	assert.False(t, Owns(alice, ownedThing{owner: 8}))
	assert.False(t, Owns(Identity{}, ownedThing{owner: 0}))
}

func TestFromContext_DefaultsToAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, Identity{}, FromContext(req.Context()))
}

func TestManager_IssueAndResolve(t *testing.T) {
	m := NewManager(Options{Secret: testSecret, TTL: time.Hour, CookieName: "sid"})

	w := httptest.NewRecorder()
	require.NoError(t, m.Issue(w, Identity{UserID: 3, Username: "bob"}))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	id, present, err := m.Resolve(req)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, Identity{UserID: 3, Username: "bob"}, id)
}

func TestManager_IssueRejectsAnonymous(t *testing.T) {
	m := NewManager(Options{Secret: testSecret})
	assert.ErrorIs(t, m.Issue(httptest.NewRecorder(), Identity{}), ErrAuthRequired)
}

func TestManager_ResolveRejectsForeignSignature(t *testing.T) {
	m := NewManager(Options{Secret: testSecret, CookieName: "sid"})
	token, err := crypto.GenerateToken("other-secret", "3", "bob", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: token})

	id, present, err := m.Resolve(req)
	assert.Error(t, err)
	assert.True(t, present)
	assert.False(t, id.Authenticated())
}

func TestManager_ResolveRejectsNonNumericSubject(t *testing.T) {
	m := NewManager(Options{Secret: testSecret, CookieName: "sid"})
	token, err := crypto.GenerateToken(testSecret, "abc", "bob", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: token})

	_, _, err = m.Resolve(req)
	assert.ErrorIs(t, err, errMalformedSubject)
}

func TestMiddleware(t *testing.T) {
	m := NewManager(Options{Secret: testSecret, CookieName: "sid"})
	var got Identity
	handler := m.Middleware(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	t.Run("no cookie is anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, got.Authenticated())
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("valid cookie resolves identity", func(t *testing.T) {
		issued := httptest.NewRecorder()
		require.NoError(t, m.Issue(issued, Identity{UserID: 9, Username: "carol"}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(issued.Result().Cookies()[0])
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, Identity{UserID: 9, Username: "carol"}, got)
		assert.Equal(t, "9", UserLabel(req.WithContext(WithIdentity(req.Context(), got))))
	})

	t.Run("garbage cookie is cleared", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-token"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.False(t, got.Authenticated())
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}
