package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/artwork-table/pkg/logging"
	"github.com/Sternrassler/artwork-table/pkg/metrics"
	"github.com/Sternrassler/artwork-table/pkg/viewer"
)

// ErrViewNotFound is returned for unknown or swept view ids.
var ErrViewNotFound = errors.New("view not found")

type view struct {
	presenter *viewer.Presenter
	lastSeen  time.Time
}

// ViewStore owns the mounted tables. Each view lives only in memory and is
// discarded when closed or idle for longer than the idle timeout.
type ViewStore struct {
	mu    sync.Mutex
	views map[string]*view

	idleTimeout time.Duration
	now         func() time.Time

	logger zerolog.Logger
}

// NewViewStore creates an empty store. A zero idleTimeout keeps views until
// they are closed.
func NewViewStore(idleTimeout time.Duration) *ViewStore {
	return &ViewStore{
		views:       make(map[string]*view),
		idleTimeout: idleTimeout,
		now:         time.Now,
		logger:      logging.NewLogger(logging.ComponentServer),
	}
}

// Add registers p and returns its new view id.
func (s *ViewStore) Add(p *viewer.Presenter) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.views[id] = &view{presenter: p, lastSeen: s.now()}
	n := len(s.views)
	s.mu.Unlock()

	metrics.LiveViews.Set(float64(n))
	return id
}

// Get returns the presenter for id and marks the view as used.
func (s *ViewStore) Get(id string) (*viewer.Presenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	v.lastSeen = s.now()
	return v.presenter, nil
}

// Remove discards the view. It reports whether the view existed.
func (s *ViewStore) Remove(id string) bool {
	s.mu.Lock()
	_, ok := s.views[id]
	delete(s.views, id)
	n := len(s.views)
	s.mu.Unlock()

	metrics.LiveViews.Set(float64(n))
	return ok
}

// Len returns the number of mounted views.
func (s *ViewStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Sweep removes views idle for longer than the idle timeout and returns how
// many were removed.
func (s *ViewStore) Sweep() int {
	if s.idleTimeout <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	removed := 0
	for id, v := range s.views {
		if v.lastSeen.Before(cutoff) {
			delete(s.views, id)
			removed++
		}
	}
	n := len(s.views)
	s.mu.Unlock()

	metrics.LiveViews.Set(float64(n))
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Int("live", n).Msg("Idle views swept")
	}
	return removed
}

// RunSweeper sweeps idle views every interval until ctx is done.
func (s *ViewStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if s.idleTimeout <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
