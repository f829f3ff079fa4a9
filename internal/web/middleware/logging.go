// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/FinSummary/internal/core"
	"github.com/JonMunkholm/FinSummary/internal/logging"
)

// Logger writes one structured access entry per request. Install it after
// ClientIP and the session middleware so entries carry both.
//
// Fields besides request_id and session:
//   - method, path
//   - status: 5xx responses are logged at error level
//   - bytes: response body size
//   - duration_ms
//   - ip: ClientIP's address, else RemoteAddr
//   - user_agent
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			ip := core.IPAddressFromContext(r.Context())
			if ip == "" {
				ip = r.RemoteAddr
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			logging.FromContext(r.Context()).Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"ip", ip,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
