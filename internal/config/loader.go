package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// normalize folds the enum-like settings so every consumer can compare
// them exactly.
func (c *Config) normalize() {
	for _, s := range []*string{&c.Data.Source, &c.Session.Backend, &c.Logging.Level, &c.Logging.Format} {
		*s = strings.ToLower(strings.TrimSpace(*s))
	}
}

var durationType = reflect.TypeOf(time.Duration(0))

// loadStruct fills tagged fields of v from the environment, descending into
// nested sections. Every bad or missing variable is reported, not just the
// first.
//
// Tags:
//   - env: primary variable name
//   - envAlt: comma-separated fallback names, tried in order
//   - default: used when no variable is set
//   - required: "true" fails the load instead of falling back
func loadStruct(v reflect.Value) error {
	var errs []error
	t := v.Type()

	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			if err := loadStruct(fv); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}

		raw, found := lookupEnv(name, sf.Tag.Get("envAlt"))
		if !found {
			if sf.Tag.Get("required") == "true" {
				errs = append(errs, fmt.Errorf("required environment variable %s is not set", name))
				continue
			}
			raw = sf.Tag.Get("default")
		}
		if raw == "" {
			continue
		}

		if err := setField(fv, raw); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", name, raw, err))
		}
	}

	return errors.Join(errs...)
}

// lookupEnv returns the first non-empty value among name and its fallbacks.
func lookupEnv(name, alts string) (string, bool) {
	names := []string{name}
	if alts != "" {
		names = append(names, strings.Split(alts, ",")...)
	}
	for _, n := range names {
		if val := os.Getenv(strings.TrimSpace(n)); val != "" {
			return val, true
		}
	}
	return "", false
}

// setField parses raw into field according to its type.
func setField(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem())
		}
		field.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}
	return nil
}

// splitList splits a comma-separated list, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Data validation
	switch c.Data.Source {
	case "embedded":
	case "json", "csv":
		if c.Data.Path == "" {
			errs = append(errs, fmt.Sprintf("DATA_PATH is required when DATA_SOURCE is %s", c.Data.Source))
		}
	case "postgres":
		if c.Data.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when DATA_SOURCE is postgres")
		}
		if c.Data.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
	default:
		errs = append(errs, fmt.Sprintf("DATA_SOURCE (%q) must be one of: embedded, json, csv, postgres", c.Data.Source))
	}
	if c.Data.LoadTimeout <= 0 {
		errs = append(errs, "DATA_LOAD_TIMEOUT must be positive")
	}

	// View validation
	if c.View.PageSize <= 0 {
		errs = append(errs, "VIEW_PAGE_SIZE must be positive")
	}
	if _, err := core.ParseCurrency(c.View.DefaultCurrency); err != nil {
		errs = append(errs, fmt.Sprintf("VIEW_DEFAULT_CURRENCY (%q) must be one of: $, €, £, USD, EUR, GBP", c.View.DefaultCurrency))
	}
	if _, err := core.ParsePrecision(c.View.DefaultPrecision); err != nil {
		errs = append(errs, fmt.Sprintf("VIEW_DEFAULT_PRECISION (%q) must be 0, 1 or 2", c.View.DefaultPrecision))
	}

	// Session validation
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			errs = append(errs, "REDIS_URL is required when SESSION_BACKEND is redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("SESSION_BACKEND (%q) must be one of: memory, redis", c.Session.Backend))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, "SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Session.CookieName == "" {
		errs = append(errs, "SESSION_COOKIE_NAME must not be empty")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.EventLimit <= 0 {
		errs = append(errs, "RATE_LIMIT_EVENTS must be positive when rate limiting is enabled")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// DefaultView returns the view state new sessions start with.
// Call only on a validated Config.
func (c *Config) DefaultView() core.ViewState {
	vs := core.DefaultViewState()
	if cur, err := core.ParseCurrency(c.View.DefaultCurrency); err == nil {
		vs.Currency = cur
	}
	if p, err := core.ParsePrecision(c.View.DefaultPrecision); err == nil {
		vs.Precision = p
	}
	return vs
}

// String returns a safe string representation of the config for logging.
// Connection strings are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Data: {Source: %q, Path: %q, DatabaseURL: %s}, ",
		c.Data.Source, c.Data.Path, mask(c.Data.DatabaseURL)))
	b.WriteString(fmt.Sprintf("View: {PageSize: %d, Currency: %q, Precision: %q}, ",
		c.View.PageSize, c.View.DefaultCurrency, c.View.DefaultPrecision))
	b.WriteString(fmt.Sprintf("Session: {Backend: %q, RedisURL: %s, TTL: %s}, ",
		c.Session.Backend, mask(c.Session.RedisURL), c.Session.TTL))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return `""`
	}
	return "[MASKED]"
}
