package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

// DefaultCookieName is the cookie carrying the session id.
const DefaultCookieName = "finsummary_session"

// Manager issues session ids and attaches them to requests.
type Manager struct {
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewManager creates a Manager. Empty or non-positive values use defaults.
func NewManager(cookieName string, ttl time.Duration, secure bool) *Manager {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{cookieName: cookieName, ttl: ttl, secure: secure}
}

// Middleware ensures every request carries a session id in its context,
// issuing a new one when the cookie is missing or malformed. The cookie is
// refreshed on every response so active sessions do not expire.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.idFromRequest(r)
		if !ok {
			id = uuid.NewString()
		}

		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(m.ttl.Seconds()),
		})

		ctx := core.ContextWithSessionID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Manager) idFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
