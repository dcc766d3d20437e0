// Package knowledge implements the store engine: topic resolution, the
// review gate, the three store writers, and the status reporter. Every
// mutation of the knowledge tree goes through an Engine; collaborators
// never touch the files directly.
package knowledge

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/munin/internal/gate"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/storage"
)

// DefaultTopic is the note partition every unrecognized topic resolves to.
// Engine construction fails when it is missing from configuration.
const DefaultTopic = "default"

// Store kinds reported in receipts and commit events.
const (
	StoreContext  = "context"
	StoreURLIndex = "url_index"
	StoreNotes    = "notes"
)

// Config holds the resolved paths and thresholds the engine operates on.
// All paths are relative to the storage provider's root.
type Config struct {
	Thresholds   gate.Thresholds
	ContextFile  string
	URLIndexFile string
	Topics       map[string]models.TopicConfig
}

// CommitHook is called after every durable commit with the store kind and
// the committed location.
type CommitHook func(store, location string)

// Engine is the single writer for all knowledge stores. Methods are safe
// for concurrent use: each store file is serialized by an in-process mutex
// plus an advisory file lock.
type Engine struct {
	store    storage.Provider
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
	onCommit CommitHook
	locks    *lockSet
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithCommitHook registers a hook invoked after every commit.
func WithCommitHook(hook CommitHook) Option {
	return func(e *Engine) { e.onCommit = hook }
}

// New creates an Engine. It fails fast when the default topic is missing
// so that topic fallback can never error at write time.
func New(store storage.Provider, cfg Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg.ContextFile == "" || cfg.URLIndexFile == "" {
		return nil, fmt.Errorf("knowledge: context and url index paths are required")
	}
	if _, ok := cfg.Topics[DefaultTopic]; !ok {
		return nil, fmt.Errorf("knowledge: %q topic is missing from configuration", DefaultTopic)
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		locks:  newLockSet(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) committed(store, location string) {
	e.logger.Info("commit",
		slog.String("store", store),
		slog.String("location", location))
	if e.onCommit != nil {
		e.onCommit(store, location)
	}
}
