// Package repository keeps processed game results in memory, one slot per
// game.
package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/game"
	"github.com/okian/hoopstate/pkg/metrics"
)

// Store provides read/write access to game results.
type Store interface {
	// Accept registers a submitted game as not started.
	Accept(ctx context.Context, in *model.GameInput)

	// Begin marks a game as processing.
	Begin(ctx context.Context, in *model.GameInput)

	// Store saves a result, replacing whatever the slot held.
	Store(ctx context.Context, r *game.Result) error

	// Get returns the latest result for a game. Games still in flight
	// come back as a stub carrying only their status and teams.
	// Returns ErrNotFound for unknown games.
	Get(ctx context.Context, gameID string) (*game.Result, error)

	// Wait blocks until the game reaches a terminal status.
	Wait(ctx context.Context, gameID string) (*game.Result, error)

	// List returns summaries ordered by game id, optionally filtered by
	// status.
	List(ctx context.Context, status model.GameStatus) []game.Summary

	// Forget drops an accepted game that never reached the queue.
	Forget(ctx context.Context, gameID string)

	// Count returns the number of games held.
	Count(ctx context.Context) int
}

type slot struct {
	result *game.Result
	done   chan struct{}
}

// MemoryStore implements Store behind a single RWMutex. Results are
// immutable once stored.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]*slot

	// summaries is the list view, republished on every write.
	summaries atomic.Pointer[[]game.Summary]
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{slots: make(map[string]*slot)}
	s.summaries.Store(&[]game.Summary{})
	return s
}

// Name identifies the store as a result sink.
func (s *MemoryStore) Name() string { return "memory" }

// Accept implements Store.Accept.
func (s *MemoryStore) Accept(ctx context.Context, in *model.GameInput) {
	s.pending(in, model.StatusNotStarted)
}

// Begin implements Store.Begin.
func (s *MemoryStore) Begin(ctx context.Context, in *model.GameInput) {
	s.pending(in, model.StatusProcessing)
}

func (s *MemoryStore) pending(in *model.GameInput, status model.GameStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[in.GameID]
	if !ok || sl.result.Status.Terminal() {
		sl = &slot{done: make(chan struct{})}
		s.slots[in.GameID] = sl
	}
	sl.result = &game.Result{GameID: in.GameID, Status: status, Home: in.Home, Away: in.Away}
	s.publishLocked()
}

// Forget drops a game that was accepted but never queued. Finished
// games are kept.
func (s *MemoryStore) Forget(ctx context.Context, gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[gameID]
	if !ok || sl.result.Status.Terminal() {
		return
	}
	delete(s.slots, gameID)
	s.publishLocked()
}

// Store implements Store.Store.
func (s *MemoryStore) Store(ctx context.Context, r *game.Result) error {
	if r == nil || r.GameID == "" {
		return ErrInvalidResult
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[r.GameID]
	if !ok {
		sl = &slot{done: make(chan struct{})}
		s.slots[r.GameID] = sl
	}
	wasTerminal := sl.result != nil && sl.result.Status.Terminal()
	sl.result = r
	if r.Status.Terminal() && !wasTerminal {
		close(sl.done)
	}
	s.publishLocked()
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(ctx context.Context, gameID string) (*game.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, ok := s.slots[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return sl.result, nil
}

// Wait implements Store.Wait.
func (s *MemoryStore) Wait(ctx context.Context, gameID string) (*game.Result, error) {
	s.mu.RLock()
	sl, ok := s.slots[gameID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	select {
	case <-sl.done:
		return s.Get(ctx, gameID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// List implements Store.List.
func (s *MemoryStore) List(ctx context.Context, status model.GameStatus) []game.Summary {
	all := *s.summaries.Load()
	if status == "" {
		return slices.Clone(all)
	}
	out := make([]game.Summary, 0, len(all))
	for _, sum := range all {
		if sum.Status == status {
			out = append(out, sum)
		}
	}
	return out
}

// Count implements Store.Count.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

// publishLocked rebuilds the list view. Callers hold the write lock.
func (s *MemoryStore) publishLocked() {
	out := make([]game.Summary, 0, len(s.slots))
	for _, sl := range s.slots {
		out = append(out, sl.result.Summarize())
	}
	slices.SortFunc(out, func(a, b game.Summary) int { return cmp.Compare(a.GameID, b.GameID) })
	s.summaries.Store(&out)
	metrics.UpdateResultsStored(len(out))
}
