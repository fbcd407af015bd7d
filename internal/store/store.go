// Package store memoizes the incident table for the lifetime of the process.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/sf-danger-zones/internal/dataset"
	"github.com/couchcryptid/sf-danger-zones/internal/observability"
)

// Loader produces a fresh table, typically by reading a workbook.
type Loader interface {
	Load(ctx context.Context) (*dataset.Table, error)
}

// ModTimer is implemented by loaders that can report when their source changed.
type ModTimer interface {
	ModTime() (time.Time, error)
}

// ErrNotLoaded is reported by CheckReadiness before the first successful load.
var ErrNotLoaded = errors.New("incident table not loaded")

// Snapshot is a loaded table together with its load metadata.
type Snapshot struct {
	Table      *dataset.Table
	Generation uint64
	LoadedAt   time.Time
}

// Store is a lazily initialized, explicitly invalidated table cache.
type Store struct {
	loader  Loader
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	mu         sync.Mutex
	current    *Snapshot
	sourceTime time.Time
	generation uint64
}

// New creates a Store. Nothing is read until the first call to Table.
func New(loader Loader, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		loader:  loader,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Snapshot returns the cached table, loading it on first use. Load errors
// are returned and not cached.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.metrics.TableCache.WithLabelValues("hit").Inc()
		return *s.current, nil
	}
	s.metrics.TableCache.WithLabelValues("miss").Inc()
	return s.loadLocked(ctx)
}

// Invalidate drops the cached table; the next Snapshot call reloads it.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.logger.Info("incident table invalidated")
}

// Reload invalidates and loads immediately.
func (s *Store) Reload(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	return s.loadLocked(ctx)
}

// RefreshIfChanged reloads when the loader reports a modification time
// different from the one seen at the last load. It reports whether a reload
// happened. Loaders without ModTime never refresh.
func (s *Store) RefreshIfChanged(ctx context.Context) (bool, error) {
	mt, ok := s.loader.(ModTimer)
	if !ok {
		return false, nil
	}
	modTime, err := mt.ModTime()
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && modTime.Equal(s.sourceTime) {
		return false, nil
	}
	s.logger.Info("incident source changed, reloading", "mod_time", modTime)
	s.current = nil
	if _, err := s.loadLocked(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// CheckReadiness returns nil once a table has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNotLoaded
	}
	return nil
}

func (s *Store) loadLocked(ctx context.Context) (Snapshot, error) {
	start := s.clock.Now()

	var sourceTime time.Time
	if mt, ok := s.loader.(ModTimer); ok {
		if t, err := mt.ModTime(); err == nil {
			sourceTime = t
		}
	}

	table, err := s.loader.Load(ctx)
	if err != nil {
		s.metrics.TableLoads.WithLabelValues("error").Inc()
		s.logger.Error("incident table load failed", "error", err)
		return Snapshot{}, err
	}

	s.generation++
	snap := &Snapshot{
		Table:      table,
		Generation: s.generation,
		LoadedAt:   s.clock.Now(),
	}
	s.current = snap
	s.sourceTime = sourceTime

	s.metrics.TableLoads.WithLabelValues("success").Inc()
	s.metrics.TableLoadDuration.Observe(s.clock.Since(start).Seconds())
	s.metrics.TableRows.Set(float64(table.Len()))
	s.logger.Info("incident table ready", "rows", table.Len(), "generation", snap.Generation)

	return *snap, nil
}
