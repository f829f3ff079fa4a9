// Package source loads the read-only dataset the financial summary is built
// from. Each backend is a Provider registered under a name; the server picks
// one from configuration at startup.
package source

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

// Provider loads a dataset. Implementations validate what they return.
type Provider interface {
	Load(ctx context.Context) (core.Dataset, error)
}

// Options configures a provider. Fields a provider does not need are ignored.
type Options struct {
	Path        string
	DatabaseURL string
	Table       string
	MaxConns    int32
}

// Factory builds a Provider from Options.
type Factory func(opts Options) (Provider, error)

var (
	registry   = make(map[string]Factory)
	registryMu sync.RWMutex
)

// Register adds a provider factory under name.
// Panics if the name is already taken.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("data source already registered: %s", name))
	}
	registry[name] = f
}

// Names returns the registered source names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the provider registered under name.
func New(name string, opts Options) (Provider, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("data source %q is not registered (have %v)", name, Names())
	}
	return f(opts)
}

// Load builds the named provider and loads its dataset.
func Load(ctx context.Context, name string, opts Options) (core.Dataset, error) {
	p, err := New(name, opts)
	if err != nil {
		return core.Dataset{}, err
	}

	ds, err := p.Load(ctx)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("load dataset from %s: %w", name, err)
	}
	return ds, nil
}

func init() {
	Register("embedded", func(Options) (Provider, error) { return Embedded(), nil })
	Register("json", func(o Options) (Provider, error) { return NewJSONFile(o.Path) })
	Register("csv", func(o Options) (Provider, error) { return NewCSVFile(o.Path) })
	Register("postgres", func(o Options) (Provider, error) {
		return NewPostgres(o.DatabaseURL, o.Table, o.MaxConns)
	})
}
