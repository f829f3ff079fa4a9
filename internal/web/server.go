// Package web provides the HTTP server and handlers for the financial summary table.
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/secure"

	"github.com/JonMunkholm/FinSummary/internal/config"
	"github.com/JonMunkholm/FinSummary/internal/core"
	"github.com/JonMunkholm/FinSummary/internal/observability"
	"github.com/JonMunkholm/FinSummary/internal/session"
	"github.com/JonMunkholm/FinSummary/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// contentSecurityPolicy allows same-origin resources, the htmx CDN and
// scripts carrying the per-request nonce.
const contentSecurityPolicy = "default-src 'self'; script-src 'self' https://unpkg.com $NONCE; style-src 'self'; " +
	"img-src 'self' data:; connect-src 'self'; form-action 'self'; frame-ancestors 'none'; base-uri 'self'"

var errRateLimited = errors.New("rate limit exceeded")

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server needs besides the view service.
// Nil fields fall back to in-process defaults.
type Deps struct {
	Sessions *session.Manager
	Metrics  *observability.Metrics
	Store    Pinger
}

// Server is the HTTP server for the financial summary table.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	sessions *session.Manager
	metrics  *observability.Metrics
	store    Pinger
	validate *validator.Validate
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, deps Deps) *Server {
	sessions := deps.Sessions
	if sessions == nil {
		sessions = session.NewManager(cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.Secure)
	}

	s := &Server{
		service:  service,
		cfg:      cfg,
		sessions: sessions,
		metrics:  deps.Metrics,
		store:    deps.Store,
		validate: validator.New(),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes. The client IP and
// session id are resolved before the logger so every entry carries them.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.ClientIP(s.cfg.Security.TrustedProxies))
	s.router.Use(s.sessions.Middleware)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}

	s.router.Use(s.secureHeaders().Handler)

	if s.cfg.Rate.Enabled {
		s.router.Use(httprate.Limit(s.cfg.Rate.RequestsPerMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(s.handleRateLimited),
		))
	}

	s.router.Use(s.metrics.Middleware)
}

// secureHeaders builds the security header middleware. With a CSP enabled
// each request gets a fresh nonce, read back by the page template.
func (s *Server) secureHeaders() *secure.Secure {
	opts := secure.Options{
		AllowedHosts:       s.cfg.Security.AllowedHosts,
		SSLRedirect:        s.cfg.Security.SSLRedirect,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      s.cfg.Security.Development,
	}
	if s.cfg.Security.EnableCSP {
		opts.ContentSecurityPolicy = contentSecurityPolicy
	}
	return secure.New(opts)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	events := s.eventLimiter()

	// Static files (stylesheet, page script)
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatal(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Page
	s.router.Get("/", s.handleIndex)

	// Form posts: htmx gets the table partial, plain forms a redirect
	s.router.Route("/view", func(r chi.Router) {
		r.Use(events)
		r.Post("/currency", s.handleCurrencyForm)
		r.Post("/precision", s.handlePrecisionForm)
		r.Post("/page/{direction}", s.handlePageForm)
		r.Post("/move", s.handleMoveForm)
		r.Post("/reset", s.handleResetForm)
	})

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/view", s.handleAPIView)
		r.With(events).Post("/events", s.handleAPIEvent)
		r.Get("/export", s.handleExport)
		r.Get("/options", s.handleOptions)
	})

	// Operations
	s.router.Get("/healthz", s.handleHealth)
	s.router.With(middleware.MetricsToken(s.cfg.Security.MetricsTokens)).
		Method(http.MethodGet, "/metrics", s.metrics.Handler())
}

// eventLimiter applies the stricter per-session limit to state-changing
// routes. One limiter is shared so form posts and API events draw on the
// same budget.
func (s *Server) eventLimiter() func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled || s.cfg.Rate.EventLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(s.cfg.Rate.EventLimit, time.Minute,
		httprate.WithKeyFuncs(eventLimitKey),
		httprate.WithLimitHandler(s.handleRateLimited),
	)
}

func eventLimitKey(r *http.Request) (string, error) {
	if id := core.SessionIDFromContext(r.Context()); id != "" {
		return "session:" + id, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	if w.Header().Get("Retry-After") == "" {
		w.Header().Set("Retry-After", "60")
	}
	s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
