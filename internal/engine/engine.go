package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/shoplog/internal/config"
	"github.com/roach88/shoplog/internal/ledger"
	"github.com/roach88/shoplog/internal/store"
)

// ConfirmFunc answers a data-integrity warning. Returning false cancels
// the operation with ErrCodeNotConfirmed. The default confirmer denies
// everything, so a non-interactive caller can never silently push a
// balance negative.
type ConfirmFunc func(warning string) bool

// DenyAll is the default confirmer.
func DenyAll(string) bool { return false }

// Engine applies shoplog operations against a store.
type Engine struct {
	store   *store.Store
	cfg     config.Config
	clock   Clock
	ids     IDSource
	confirm ConfirmFunc
	log     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, for tests.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithIDSource replaces the ID source, for tests.
func WithIDSource(ids IDSource) Option {
	return func(e *Engine) { e.ids = ids }
}

// WithConfirmer sets the confirmation hook for operations that project a
// negative balance.
func WithConfirmer(f ConfirmFunc) Option {
	return func(e *Engine) { e.confirm = f }
}

// WithLogger sets the structured logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine over the given store and configuration.
func New(s *store.Store, cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		cfg:     cfg,
		clock:   SystemClock{},
		ids:     NewTimestampIDs(),
		confirm: DenyAll,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Snapshot reads the full event history from the store.
func (e *Engine) Snapshot(ctx context.Context) (*ledger.Snapshot, error) {
	snap, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return snap, nil
}

func (e *Engine) audit(action, detail string) store.Audit {
	return store.Audit{
		ID:        e.ids.AuditID(),
		Timestamp: e.clock.Now(),
		Action:    action,
		Detail:    detail,
	}
}
