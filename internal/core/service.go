package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// StateStore persists view snapshots for the lifetime of a session.
// Load returns (nil, nil) when no snapshot exists for id.
type StateStore interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, st State) error
	Delete(ctx context.Context, id string) error
	Sweep(ctx context.Context) (int, error)
}

// EventObserver is notified of every event a view handles.
type EventObserver interface {
	ObserveEvent(kind EventKind, applied bool)
}

// ServiceConfig holds the view defaults applied to new sessions.
type ServiceConfig struct {
	Title       string
	PageSize    int
	DefaultView ViewState

	// Logger returns the logger for work done on behalf of ctx. When nil,
	// the default logger tagged with the session id is used.
	Logger func(ctx context.Context) *slog.Logger
}

// Service hosts one independent view per session over a shared, read-only
// dataset.
type Service struct {
	dataset  Dataset
	store    StateStore
	cfg      ServiceConfig
	observer EventObserver

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewService creates a Service. The dataset is never modified.
func NewService(ds Dataset, store StateStore, cfg ServiceConfig) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("new service: session store is required")
	}
	if len(ds.Periods) == 0 {
		return nil, fmt.Errorf("new service: dataset has no periods")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.DefaultView == (ViewState{}) {
		cfg.DefaultView = DefaultViewState()
	}

	return &Service{
		dataset: ds,
		store:   store,
		cfg:     cfg,
		locks:   make(map[string]*sessionLock),
	}, nil
}

// SetObserver registers an observer for handled events.
func (s *Service) SetObserver(o EventObserver) {
	s.observer = o
}

// Dataset returns the shared dataset.
func (s *Service) Dataset() Dataset {
	return s.dataset
}

// View renders the current page of the session's view.
func (s *Service) View(ctx context.Context, sessionID string) (View, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	c, err := s.composer(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return c.Render(), nil
}

// Apply validates e, applies it to the session's view and persists the new
// state. Events for one session are applied strictly in arrival order.
//
// A move naming an unknown row is a no-op: the unchanged view is returned
// together with an error wrapping ErrUnknownRow so callers can report it.
func (s *Service) Apply(ctx context.Context, sessionID string, e Event) (View, bool, error) {
	if err := e.Validate(); err != nil {
		s.observe(e.Kind, false)
		return View{}, false, err
	}

	unlock := s.lock(sessionID)
	defer unlock()

	c, err := s.composer(ctx, sessionID)
	if err != nil {
		return View{}, false, err
	}
	return s.apply(ctx, sessionID, c, e)
}

// ApplyVisibleMove resolves a drag between two positions on the session's
// current page to row identities and applies the move against the full order.
func (s *Service) ApplyVisibleMove(ctx context.Context, sessionID string, from, to int) (View, bool, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	c, err := s.composer(ctx, sessionID)
	if err != nil {
		return View{}, false, err
	}

	moved, target, ok := c.ResolveVisibleMove(from, to)
	if !ok {
		s.observe(RowMoved, false)
		return c.Render(), false, fmt.Errorf("%w: positions %d -> %d are not on the current page", ErrInvalidEvent, from, to)
	}
	return s.apply(ctx, sessionID, c, MoveEvent(moved, target))
}

// apply runs e on c and saves the result. The session lock must be held.
func (s *Service) apply(ctx context.Context, sessionID string, c *Composer, e Event) (View, bool, error) {
	if err := c.CheckRows(e); err != nil {
		s.observe(e.Kind, false)
		return c.Render(), false, err
	}

	applied := c.Apply(e)
	s.observe(e.Kind, applied)

	if applied {
		if err := s.store.Save(ctx, sessionID, c.State()); err != nil {
			return View{}, false, fmt.Errorf("session store save: %w", err)
		}
	}

	return c.Render(), applied, nil
}

// Export returns every row in the session's full order, formatted with the
// session's current currency and precision.
func (s *Service) Export(ctx context.Context, sessionID string) ([]string, []RenderedRow, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	c, err := s.composer(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return s.dataset.Periods, c.Export(), nil
}

// Reset discards the session's view so the next render starts from defaults.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("session store delete: %w", err)
	}
	return nil
}

// composer loads the session's snapshot, or starts a fresh view.
func (s *Service) composer(ctx context.Context, sessionID string) (*Composer, error) {
	st, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session store load: %w", err)
	}

	opts := []ComposerOption{
		WithTitle(s.cfg.Title),
		WithPageSize(s.cfg.PageSize),
		WithLogger(s.logger(ctx, sessionID)),
	}
	if st == nil {
		opts = append(opts, WithViewState(s.cfg.DefaultView))
		return NewComposer(s.dataset, opts...), nil
	}
	return NewComposerFromState(s.dataset, *st, opts...), nil
}

func (s *Service) logger(ctx context.Context, sessionID string) *slog.Logger {
	if s.cfg.Logger != nil {
		return s.cfg.Logger(ctx)
	}
	return slog.Default().With("session", sessionID)
}

func (s *Service) observe(kind EventKind, applied bool) {
	if s.observer != nil {
		s.observer.ObserveEvent(kind, applied)
	}
}

// lock serialises work on one session and returns the matching unlock.
func (s *Service) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}
