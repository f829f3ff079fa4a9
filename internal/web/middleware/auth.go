package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
)

// MetricsToken guards operational endpoints with a bearer token. With no
// tokens configured every request passes.
func MetricsToken(tokens []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(tokens) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				slog.Warn("metrics: missing bearer token",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="metrics"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			if !validToken(token, tokens) {
				slog.Warn("metrics: invalid bearer token",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// validToken compares against every configured token in constant time.
func validToken(token string, valid []string) bool {
	match := 0
	for _, v := range valid {
		match |= subtle.ConstantTimeCompare([]byte(token), []byte(v))
	}
	return match == 1
}
