package session

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Middleware attaches the caller's Identity to the request context. A bad or
// expired cookie downgrades the request to anonymous and is cleared.
func (m *Manager) Middleware(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _, err := m.Resolve(r)
			if err != nil {
				logger.WithError(err).Debug("discarding invalid session cookie")
				m.Clear(w)
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// UserLabel is the access log hook for the current caller.
func UserLabel(r *http.Request) string {
	return FromContext(r.Context()).Label()
}
