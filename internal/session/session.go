// Package session owns the auth cookie. All cookie reads and writes
// go through a single Manager so no other component touches the raw
// cookie string.
package session

import (
	"net/http"
	"time"
)

// Manager reads, issues, and clears the session cookie. The token is
// opaque to the console; validity is only ever checked by the backend
// at login time.
type Manager struct {
	cookieName string
	maxAge     time.Duration
}

// NewManager creates a session manager for the named cookie.
func NewManager(cookieName string, maxAge time.Duration) *Manager {
	return &Manager{cookieName: cookieName, maxAge: maxAge}
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Token returns the session token from the request, and whether one
// was present.
func (m *Manager) Token(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Issue sets the session cookie on the response.
func (m *Manager) Issue(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie (max-age zero).
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
}
