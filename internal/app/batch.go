package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/game"
	"github.com/okian/hoopstate/pkg/logger"
)

// Rejection is a game refused before processing.
type Rejection struct {
	GameID string `json:"game_id"`
	Reason string `json:"reason"`
}

// Report aggregates the outcome of a batch.
type Report struct {
	Batch                 string                   `json:"batch"`
	Submitted             int                      `json:"submitted"`
	Duplicates            []string                 `json:"duplicates"`
	Rejected              []Rejection              `json:"rejected"`
	Games                 []game.Summary           `json:"games"`
	ByStatus              map[model.GameStatus]int `json:"by_status"`
	TotalEvents           int                      `json:"total_events"`
	UnparsedEvents        int                      `json:"unparsed_events"`
	LineupInconsistencies int                      `json:"lineup_inconsistencies"`
	IntegrityFailures     int                      `json:"integrity_failures"`
	CoveragePct           float64                  `json:"coverage_pct"`
	Cancelled             bool                     `json:"cancelled"`
	Elapsed               time.Duration            `json:"elapsed"`
}

func (r *Report) add(res *game.Result) {
	r.Games = append(r.Games, res.Summarize())
	r.ByStatus[res.Status]++
	if !res.Status.Terminal() {
		return
	}
	r.TotalEvents += res.Diagnostics.TotalEvents
	r.UnparsedEvents += res.Diagnostics.UnparsedEvents
	r.LineupInconsistencies += res.Diagnostics.LineupInconsistencies
	if res.DerivedWithheld {
		r.IntegrityFailures++
	}
}

// RunBatch submits every game, waits for the accepted ones and reports
// the outcome. Invalid and duplicate games are reported, not processed.
// When ctx ends the batch stops submitting, and the games not yet
// finished are reported as cancelled.
func (s *Service) RunBatch(ctx context.Context, games []model.GameInput) (*Report, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	start := time.Now()
	rep := &Report{
		Batch:      uuid.NewString(),
		Duplicates: []string{},
		Rejected:   []Rejection{},
		ByStatus:   map[model.GameStatus]int{},
	}
	log := s.logger.With(logger.String("batch", rep.Batch))
	log.Info(ctx, "batch started", logger.Int("games", len(games)))

	accepted := make([]string, 0, len(games))
	for i := range games {
		in := games[i]
		if err := game.Validate(&in); err != nil {
			rep.Rejected = append(rep.Rejected, Rejection{GameID: in.GameID, Reason: err.Error()})
			continue
		}
		if s.SeenAndRecord(ctx, in.GameID) {
			rep.Duplicates = append(rep.Duplicates, in.GameID)
			continue
		}
		if err := s.submit(ctx, in, rep.Batch); err != nil {
			s.Unrecord(ctx, in.GameID)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				rep.Cancelled = true
				break
			}
			return nil, fmt.Errorf("submit game %s: %w", in.GameID, err)
		}
		accepted = append(accepted, in.GameID)
	}
	rep.Submitted = len(accepted)

	for _, id := range accepted {
		res, err := s.Wait(ctx, id)
		if err != nil {
			rep.Cancelled = true
			if res, err = s.Get(context.WithoutCancel(ctx), id); err != nil {
				continue
			}
			if !res.Status.Terminal() {
				res = &game.Result{GameID: res.GameID, Status: model.StatusCancelled, Home: res.Home, Away: res.Away}
			}
		}
		rep.add(res)
	}

	if rep.TotalEvents > 0 {
		rep.CoveragePct = 100 * float64(rep.TotalEvents-rep.UnparsedEvents) / float64(rep.TotalEvents)
	}
	rep.Elapsed = time.Since(start)
	log.Info(ctx, "batch finished",
		logger.Int("submitted", rep.Submitted),
		logger.Int("duplicates", len(rep.Duplicates)),
		logger.Int("rejected", len(rep.Rejected)),
		logger.Float64("coverage_pct", rep.CoveragePct),
		logger.Bool("cancelled", rep.Cancelled),
		logger.Duration("elapsed", rep.Elapsed))
	return rep, nil
}
