package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/hoopstate/internal/adapters/mq/queue"
	worker "github.com/okian/hoopstate/internal/adapters/mq/worker"
	model "github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/game"
	logging "github.com/okian/hoopstate/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job {
	return mq.jobs
}

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

func (mq *mockQueue) add(id string) {
	mq.jobs <- queue.Job{Input: model.GameInput{
		GameID: id,
		Home:   model.Team{ID: "MEM"},
		Away:   model.Team{ID: "WAS"},
	}}
}

type mockProcessor struct {
	mu     sync.Mutex
	errors map[string]error
	block  map[string]bool
}

func newMockProcessor() *mockProcessor {
	return &mockProcessor{errors: map[string]error{}, block: map[string]bool{}}
}

func (mp *mockProcessor) Process(ctx context.Context, in model.GameInput) (*game.Result, error) {
	mp.mu.Lock()
	err, block := mp.errors[in.GameID], mp.block[in.GameID]
	mp.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %w", game.ErrCancelled, ctx.Err())
	}
	if err != nil {
		return nil, err
	}
	return &game.Result{GameID: in.GameID, Status: model.StatusComplete, Home: in.Home, Away: in.Away}, nil
}

func (mp *mockProcessor) fail(id string, err error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.errors[id] = err
}

func (mp *mockProcessor) hold(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.block[id] = true
}

type mockSink struct {
	name    string
	err     error
	stored  chan *game.Result
	mu      sync.Mutex
	started []string
}

func newMockSink(name string) *mockSink {
	return &mockSink{name: name, stored: make(chan *game.Result, 16)}
}

func (ms *mockSink) Name() string { return ms.name }

func (ms *mockSink) Begin(ctx context.Context, in *model.GameInput) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.started = append(ms.started, in.GameID)
}

func (ms *mockSink) Store(ctx context.Context, r *game.Result) error {
	if ms.err != nil {
		return ms.err
	}
	ms.stored <- r
	return nil
}

func (ms *mockSink) begun() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.started...)
}

func receive(ch <-chan *game.Result) *game.Result {
	select {
	case r := <-ch:
		return r
	case <-time.After(time.Second):
		return nil
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		proc := newMockProcessor()
		sink := newMockSink("memory")
		w := worker.NewInMemoryWorker(q, proc, sink, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a game is queued", func() {
			q.add("g1")
			r := receive(sink.stored)

			convey.Convey("Then its result reaches the sink", func() {
				convey.So(r, convey.ShouldNotBeNil)
				convey.So(r.GameID, convey.ShouldEqual, "g1")
				convey.So(r.Status, convey.ShouldEqual, model.StatusComplete)
				convey.So(sink.begun(), convey.ShouldResemble, []string{"g1"})
			})
		})

		convey.Convey("When processing fails", func() {
			proc.fail("bad", game.ErrInvalidInput)
			q.add("bad")
			q.add("good")
			r := receive(sink.stored)

			convey.Convey("Then nothing is stored for it and the worker moves on", func() {
				convey.So(r, convey.ShouldNotBeNil)
				convey.So(r.GameID, convey.ShouldEqual, "good")
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then it stops gracefully", func() {
				convey.So(err, convey.ShouldBeNil)
				_, open := <-w.Done()
				convey.So(open, convey.ShouldBeFalse)
			})
		})
	})

	convey.Convey("Given a worker in the middle of a game", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		proc := newMockProcessor()
		proc.hold("slow")
		sink := newMockSink("memory")
		w := worker.NewInMemoryWorker(q, proc, sink)
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		q.add("slow")

		convey.Convey("When the run context is cancelled", func() {
			for len(sink.begun()) == 0 {
				time.Sleep(time.Millisecond)
			}
			cancel()
			r := receive(sink.stored)

			convey.Convey("Then a cancelled marker is stored", func() {
				convey.So(r, convey.ShouldNotBeNil)
				convey.So(r.GameID, convey.ShouldEqual, "slow")
				convey.So(r.Status, convey.ShouldEqual, model.StatusCancelled)
				convey.So(r.Possessions, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		proc := newMockProcessor()
		sink := newMockSink("memory")

		convey.Convey("When created with a non-positive count", func() {
			pool := worker.NewPool(0, q, proc, sink)

			convey.Convey("Then it gets at least one worker", func() {
				convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When the queue is drained and closed", func() {
			pool := worker.NewPool(3, q, proc, sink)
			pool.Start(context.Background())
			for i := 0; i < 6; i++ {
				q.add(fmt.Sprintf("g%d", i))
			}
			_ = q.Close()
			pool.Wait()
			close(sink.stored)

			seen := map[string]bool{}
			for r := range sink.stored {
				seen[r.GameID] = true
			}

			convey.Convey("Then every game was processed exactly once", func() {
				convey.So(len(seen), convey.ShouldEqual, 6)
			})
		})

		convey.Convey("When shut down", func() {
			pool := worker.NewPool(2, q, proc, sink)
			pool.Start(context.Background())
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then it stops gracefully", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestSinks(t *testing.T) {
	convey.Convey("Given a fan-out of two sinks", t, func() {
		first := newMockSink("memory")
		second := newMockSink("archive")
		sinks := worker.Sinks{first, second}
		r := &game.Result{GameID: "g1"}

		convey.Convey("Then the name lists both", func() {
			convey.So(sinks.Name(), convey.ShouldEqual, "memory+archive")
		})

		convey.Convey("When both succeed", func() {
			err := sinks.Store(context.Background(), r)

			convey.Convey("Then both receive the result", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(receive(first.stored), convey.ShouldPointTo, r)
				convey.So(receive(second.stored), convey.ShouldPointTo, r)
			})
		})

		convey.Convey("When the first fails", func() {
			boom := errors.New("boom")
			first.err = boom
			err := sinks.Store(context.Background(), r)

			convey.Convey("Then the second still receives it and the error names the sink", func() {
				convey.So(errors.Is(err, boom), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "memory")
				convey.So(receive(second.stored), convey.ShouldPointTo, r)
			})
		})

		convey.Convey("When a game begins", func() {
			sinks.Begin(context.Background(), &model.GameInput{GameID: "g2"})

			convey.Convey("Then every tracking member hears about it", func() {
				convey.So(first.begun(), convey.ShouldResemble, []string{"g2"})
				convey.So(second.begun(), convey.ShouldResemble, []string{"g2"})
			})
		})
	})
}
