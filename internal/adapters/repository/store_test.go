package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/hoopstate/internal/adapters/repository"
	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/game"
	. "github.com/smartystreets/goconvey/convey"
)

func input(id string) *model.GameInput {
	return &model.GameInput{GameID: id, Home: model.Team{ID: "MEM"}, Away: model.Team{ID: "WAS"}}
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()

		Convey("Unknown games are not found", func() {
			_, err := s.Get(ctx, "nope")
			So(err, ShouldEqual, repository.ErrNotFound)
			_, err = s.Wait(ctx, "nope")
			So(err, ShouldEqual, repository.ErrNotFound)
			So(s.Count(ctx), ShouldEqual, 0)
			So(s.List(ctx, ""), ShouldBeEmpty)
		})

		Convey("A result without a game id is rejected", func() {
			So(s.Store(ctx, &game.Result{}), ShouldEqual, repository.ErrInvalidResult)
			So(s.Store(ctx, nil), ShouldEqual, repository.ErrInvalidResult)
		})

		Convey("A game moves through its statuses", func() {
			s.Accept(ctx, input("g1"))
			r, err := s.Get(ctx, "g1")
			So(err, ShouldBeNil)
			So(r.Status, ShouldEqual, model.StatusNotStarted)
			So(r.Home.ID, ShouldEqual, "MEM")

			s.Begin(ctx, input("g1"))
			r, _ = s.Get(ctx, "g1")
			So(r.Status, ShouldEqual, model.StatusProcessing)

			final := &game.Result{GameID: "g1", Status: model.StatusComplete, ScoreHome: 101, ScoreAway: 99}
			So(s.Store(ctx, final), ShouldBeNil)
			r, _ = s.Get(ctx, "g1")
			So(r, ShouldPointTo, final)
			So(s.Count(ctx), ShouldEqual, 1)
		})

		Convey("Wait returns once the game is terminal", func() {
			s.Accept(ctx, input("g1"))
			got := make(chan *game.Result, 1)
			go func() {
				r, _ := s.Wait(ctx, "g1")
				got <- r
			}()
			So(s.Store(ctx, &game.Result{GameID: "g1", Status: model.StatusCompleteWithErrors}), ShouldBeNil)

			select {
			case r := <-got:
				So(r.Status, ShouldEqual, model.StatusCompleteWithErrors)
			case <-time.After(time.Second):
				So("wait did not return", ShouldBeEmpty)
			}
		})

		Convey("Wait honours its context", func() {
			s.Accept(ctx, input("g1"))
			wctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
			defer cancel()
			_, err := s.Wait(wctx, "g1")
			So(err, ShouldEqual, context.DeadlineExceeded)
		})

		Convey("Listing is ordered by game id and filterable by status", func() {
			So(s.Store(ctx, &game.Result{GameID: "g3", Status: model.StatusComplete}), ShouldBeNil)
			So(s.Store(ctx, &game.Result{GameID: "g1", Status: model.StatusCancelled}), ShouldBeNil)
			s.Accept(ctx, input("g2"))

			all := s.List(ctx, "")
			So(len(all), ShouldEqual, 3)
			So(all[0].GameID, ShouldEqual, "g1")
			So(all[1].GameID, ShouldEqual, "g2")
			So(all[2].GameID, ShouldEqual, "g3")

			done := s.List(ctx, model.StatusComplete)
			So(len(done), ShouldEqual, 1)
			So(done[0].GameID, ShouldEqual, "g3")
		})

		Convey("Forget drops pending games only", func() {
			s.Accept(ctx, input("g1"))
			s.Accept(ctx, input("g2"))
			So(s.Store(ctx, &game.Result{GameID: "g2", Status: model.StatusComplete}), ShouldBeNil)

			s.Forget(ctx, "g1")
			s.Forget(ctx, "g2")
			s.Forget(ctx, "missing")

			_, err := s.Get(ctx, "g1")
			So(err, ShouldEqual, repository.ErrNotFound)
			r, err := s.Get(ctx, "g2")
			So(err, ShouldBeNil)
			So(r.Status, ShouldEqual, model.StatusComplete)
			So(s.Count(ctx), ShouldEqual, 1)
		})

		Convey("Concurrent writers each keep their own slot", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					id := "g" + string(rune('A'+i%26)) + string(rune('a'+i/26))
					s.Begin(ctx, input(id))
					_ = s.Store(ctx, &game.Result{GameID: id, Status: model.StatusComplete})
				}(i)
			}
			wg.Wait()
			So(s.Count(ctx), ShouldEqual, 50)
			So(len(s.List(ctx, model.StatusComplete)), ShouldEqual, 50)
		})
	})
}
