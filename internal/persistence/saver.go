// Package persistence runs saves of the global state off the request path.
package persistence

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/brettonwoods/internal/dependencies/clock"
	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/storage"
)

// DefaultInterval is how often state is saved even without a trigger
const DefaultInterval = 2 * time.Minute

// SnapshotFunc produces a deep copy of the state to save
type SnapshotFunc func() *model.GlobalState

// SaveObserver is notified of every save attempt
type SaveObserver interface {
	ObserveSave(ok bool, d time.Duration)
}

// Saver saves state in a background goroutine. Trigger never blocks;
// triggers that arrive while a save is pending coalesce into one save.
type Saver struct {
	store    storage.Storage
	snapshot SnapshotFunc
	clock    clock.Clock
	logger   *slog.Logger
	interval time.Duration
	observer SaveObserver

	trigger chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	started atomic.Bool
}

// Option configures a Saver
type Option func(*Saver)

// WithInterval overrides the periodic save interval
func WithInterval(d time.Duration) Option {
	return func(s *Saver) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithObserver reports every save to o
func WithObserver(o SaveObserver) Option {
	return func(s *Saver) { s.observer = o }
}

// New creates a Saver. Call Start to begin the background loop.
func New(store storage.Storage, snapshot SnapshotFunc, clock clock.Clock, logger *slog.Logger, opts ...Option) *Saver {
	s := &Saver{
		store:    store,
		snapshot: snapshot,
		clock:    clock,
		logger:   logger.With(slog.String("component", "saver")),
		interval: DefaultInterval,
		trigger:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the save loop
func (s *Saver) Start() {
	if s.started.Swap(true) {
		return
	}
	go s.run()
}

// Trigger requests a save without waiting for it
func (s *Saver) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Saver) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.trigger:
			s.save(context.Background())
		case <-ticker.C:
			s.save(context.Background())
		case <-s.stop:
			return
		}
	}
}

// SaveNow saves synchronously and returns the backend error, if any
func (s *Saver) SaveNow(ctx context.Context) error {
	return s.save(ctx)
}

func (s *Saver) save(ctx context.Context) error {
	start := time.Now()
	state := s.snapshot()
	state.SavedAt = s.clock.Now()

	err := s.store.Save(ctx, state)
	if s.observer != nil {
		s.observer.ObserveSave(err == nil, time.Since(start))
	}
	if err != nil {
		s.logger.Error("state save failed", slog.Any("error", err))
		return err
	}
	s.logger.Debug("state saved",
		slog.Int("rooms", len(state.Rooms)),
		slog.Int("users", len(state.Users)))
	return nil
}

// Close stops the loop and performs a final save, waiting for both. The
// final save is bounded by ctx.
func (s *Saver) Close(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		if s.started.Load() {
			select {
			case <-s.done:
			case <-ctx.Done():
				err = ctx.Err()
				return
			}
		}
		err = s.save(ctx)
	})
	return err
}
