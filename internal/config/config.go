// Package config provides centralized configuration management for the server.
// It loads configuration from environment variables with defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	View     ViewConfig
	Session  SessionConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 15s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"15s"`
}

// DataConfig selects and configures the dataset source.
type DataConfig struct {
	// Source is one of: embedded, json, csv, postgres (default: embedded)
	Source string `env:"DATA_SOURCE" default:"embedded"`

	// Path is the file read by the json and csv sources
	Path string `env:"DATA_PATH"`

	// DatabaseURL is the PostgreSQL connection string for the postgres source
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// Table is the table read by the postgres source (default: overhead_summary)
	Table string `env:"DATA_TABLE" default:"overhead_summary"`

	// MaxConns caps the pool used while loading (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// LoadTimeout bounds the initial dataset load (default: 30s)
	LoadTimeout time.Duration `env:"DATA_LOAD_TIMEOUT" default:"30s"`
}

// ViewConfig holds the defaults every new view starts with.
type ViewConfig struct {
	Title string `env:"VIEW_TITLE" default:"Financial Summary Table"`

	// PageSize is rows per page (default: 10)
	PageSize int `env:"VIEW_PAGE_SIZE" default:"10"`

	// DefaultCurrency is a symbol or ISO code: $, €, £, USD, EUR, GBP (default: $)
	DefaultCurrency string `env:"VIEW_DEFAULT_CURRENCY" default:"$"`

	// DefaultPrecision is 0, 1 or 2 (default: 2)
	DefaultPrecision string `env:"VIEW_DEFAULT_PRECISION" default:"2"`
}

// SessionConfig holds per-browser view persistence settings.
type SessionConfig struct {
	// Backend is memory or redis (default: memory)
	Backend string `env:"SESSION_BACKEND" default:"memory"`

	// RedisURL is required when Backend is redis, e.g. redis://localhost:6379/0
	RedisURL string `env:"REDIS_URL"`

	CookieName string `env:"SESSION_COOKIE_NAME" default:"finsummary_session"`

	// TTL is how long an idle view is kept (default: 24h)
	TTL time.Duration `env:"SESSION_TTL" default:"24h"`

	// Secure marks the cookie Secure; enable behind HTTPS (default: false)
	Secure bool `env:"SESSION_COOKIE_SECURE" default:"false"`

	// SweepInterval is how often expired in-memory views are removed (default: 1m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit per client IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// EventLimit is requests per minute for event endpoints (default: 60)
	EventLimit int `env:"RATE_LIMIT_EVENTS" default:"60"`
}

// SecurityConfig holds security header and proxy settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are believed
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// MetricsTokens are bearer tokens accepted on /metrics; empty leaves it open
	MetricsTokens []string `env:"METRICS_TOKENS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// AllowedHosts restricts the Host header when set (comma-separated)
	AllowedHosts []string `env:"SECURITY_ALLOWED_HOSTS"`

	// SSLRedirect redirects plain HTTP to HTTPS (default: false)
	SSLRedirect bool `env:"SECURITY_SSL_REDIRECT" default:"false"`

	// Development relaxes host and SSL checks for local work (default: false)
	Development bool `env:"SECURITY_DEVELOPMENT" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
