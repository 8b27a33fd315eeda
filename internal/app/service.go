// Package service wires the game pipeline: submission dedupe, the bounded
// job queue, the worker pool and the result sinks.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/hoopstate/internal/adapters/mq/queue"
	"github.com/okian/hoopstate/internal/adapters/mq/worker"
	"github.com/okian/hoopstate/internal/adapters/repository"
	"github.com/okian/hoopstate/internal/domain/dedupe"
	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/game"
	"github.com/okian/hoopstate/pkg/logger"
	"github.com/okian/hoopstate/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// Service implements the API dependencies for the game pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     *repository.MemoryStore
	deduper   dedupe.Deduper
	queue     *queue.InMemoryQueue
	processor *game.Processor
	pool      *worker.Pool
	sinks     []worker.Sink

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	gameOpts    []game.Option
	retryDelay  time.Duration

	started bool
	stopped bool

	logger logger.Logger
}

// New constructs a Service. Nothing runs until Start.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:  10_000,
		dedupeSize: 100_000,
		retryDelay: 10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start builds the pipeline and starts the workers. Workers run until ctx
// ends or Stop is called; games in hand when ctx ends are stored as
// cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.stopped:
		return ErrStopped
	case s.started:
		return nil
	}

	s.store = repository.NewMemoryStore()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.processor = game.NewProcessor(append([]game.Option{game.WithLogger(s.logger.Named("game"))}, s.gameOpts...)...)

	sinks := append(worker.Sinks{s.store}, s.sinks...)
	s.pool = worker.NewPool(s.workerCount, s.queue, s.processor, sinks,
		worker.WithLogger(s.logger))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "game service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.String("sinks", sinks.Name()))
	return nil
}

// Stop closes the queue, lets the workers drain it and closes sinks that
// hold resources. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping game service")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "workers did not drain", logger.Error(err))
	}
	for _, sink := range s.sinks {
		if c, ok := sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				s.logger.Error(ctx, "error closing sink", logger.String("sink", sink.Name()), logger.Error(err))
			}
		}
	}
	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "game service stopped")
}

// SeenAndRecord reports whether the game id was already submitted and
// records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordGameDuplicate()
	}
	return seen
}

// Unrecord forgets a game id so it can be submitted again.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of remembered game ids.
func (s *Service) Size() int {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue validates a game and queues it. The game is visible as
// not_started from the moment it is queued.
func (s *Service) Enqueue(ctx context.Context, in model.GameInput, batch string) error { //nolint:gocritic // hugeParam: input is copied into the job anyway
	if !s.running() {
		return ErrNotStarted
	}
	if err := game.Validate(&in); err != nil {
		return err
	}

	s.store.Accept(ctx, &in)
	if err := s.queue.Enqueue(ctx, queue.Job{Batch: batch, Input: in}); err != nil {
		s.store.Forget(ctx, in.GameID)
		return fmt.Errorf("enqueue game %s: %w", in.GameID, err)
	}
	s.logger.Debug(ctx, "game queued",
		logger.String("game_id", in.GameID),
		logger.String("batch", batch),
		logger.Int("plays", len(in.Plays)))
	return nil
}

// Get returns the current result of a game.
func (s *Service) Get(ctx context.Context, gameID string) (*game.Result, error) {
	if !s.running() {
		return nil, repository.ErrNotFound
	}
	return s.store.Get(ctx, gameID)
}

// Wait blocks until the game is finished or ctx ends.
func (s *Service) Wait(ctx context.Context, gameID string) (*game.Result, error) {
	if !s.running() {
		return nil, repository.ErrNotFound
	}
	return s.store.Wait(ctx, gameID)
}

// List returns game summaries, optionally filtered by status.
func (s *Service) List(ctx context.Context, status model.GameStatus) []game.Summary {
	if !s.running() {
		return nil
	}
	return s.store.List(ctx, status)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":    s.started,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	byStatus := map[string]int{}
	for _, sum := range s.store.List(ctx, "") {
		byStatus[string(sum.Status)]++
	}
	names := make([]string, 0, len(s.sinks)+1)
	names = append(names, s.store.Name())
	for _, sink := range s.sinks {
		names = append(names, sink.Name())
	}

	stats["workerCount"] = s.pool.Size()
	stats["queueLength"] = s.queue.Len()
	stats["queueCapacity"] = s.queue.Cap()
	stats["dedupeEntries"] = s.deduper.Size()
	stats["games"] = s.store.Count(ctx)
	stats["gamesByStatus"] = byStatus
	stats["sinks"] = names

	metrics.UpdateQueueSize(s.queue.Len())
	metrics.UpdateWorkerCount(s.pool.Size())
	return stats
}

// submit queues one game for a batch, retrying while the queue is full.
func (s *Service) submit(ctx context.Context, in model.GameInput, batch string) error { //nolint:gocritic // hugeParam: see Enqueue
	for {
		err := s.Enqueue(ctx, in, batch)
		if !errors.Is(err, queue.ErrFull) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
