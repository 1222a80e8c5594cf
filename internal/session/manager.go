package session

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bookshelf/internal/platform/crypto"
)

var errMalformedSubject = errors.New("session: malformed subject")

type Options struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Manager issues and resolves the signed session cookie.
type Manager struct {
	secret string
	ttl    time.Duration
	name   string
	secure bool
}

func NewManager(opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "bookshelf_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	return &Manager{
		secret: opts.Secret,
		ttl:    opts.TTL,
		name:   opts.CookieName,
		secure: opts.Secure,
	}
}

func (m *Manager) CookieName() string {
	return m.name
}

// Issue signs id into a fresh cookie on w.
func (m *Manager) Issue(w http.ResponseWriter, id Identity) error {
	if err := id.Require(); err != nil {
		return err
	}
	token, err := crypto.GenerateToken(m.secret, strconv.FormatInt(id.UserID, 10), id.Username, m.ttl)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Resolve returns the identity carried by r. present reports whether a cookie
// was sent at all, so callers can clear one that failed verification.
func (m *Manager) Resolve(r *http.Request) (id Identity, present bool, err error) {
	c, err := r.Cookie(m.name)
	if err != nil || c.Value == "" {
		return Identity{}, false, nil
	}
	claims, err := crypto.ParseToken(m.secret, c.Value)
	if err != nil {
		return Identity{}, true, err
	}
	userID, err := strconv.ParseInt(claims.Sub, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, true, errMalformedSubject
	}
	return Identity{UserID: userID, Username: claims.Username}, true, nil
}
