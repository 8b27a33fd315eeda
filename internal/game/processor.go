// Package game drives one game's records through parsing, lineup tracking,
// stat accumulation, possession analysis and snapshotting.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/hoopstate/internal/domain/lineup"
	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/domain/parser"
	"github.com/okian/hoopstate/internal/domain/possession"
	"github.com/okian/hoopstate/internal/domain/snapshot"
	"github.com/okian/hoopstate/internal/domain/stats"
	"github.com/okian/hoopstate/internal/domain/teams"
	"github.com/okian/hoopstate/pkg/logger"
	"github.com/okian/hoopstate/pkg/metrics"
)

const (
	defaultThresholdPct   = 15.0
	defaultMinPossessions = 10
	defaultSamples        = 20
	defaultPeriodLength   = 12 * time.Minute
	defaultOvertimeLength = 5 * time.Minute
	regulationPeriods     = 4

	// cancelCheckEvery is how many records pass between context checks.
	cancelCheckEvery = 256
)

// Processor turns a GameInput into a Result. It holds only configuration and
// is safe for concurrent use; every call builds its own tracker,
// accumulator and engine.
type Processor struct {
	parser         *parser.Parser
	minPossessions int
	thresholdPct   float64
	periodLength   time.Duration
	overtimeLength time.Duration
	samples        int
	log            logger.Logger
	now            func() time.Time
}

// NewProcessor returns a processor with default settings.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		minPossessions: defaultMinPossessions,
		thresholdPct:   defaultThresholdPct,
		periodLength:   defaultPeriodLength,
		overtimeLength: defaultOvertimeLength,
		samples:        defaultSamples,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.parser == nil {
		p.parser = parser.New()
	}
	if p.log == nil {
		p.log = logger.Get().Named("game")
	}
	return p
}

// completeTeam fills a missing name or abbreviation from the franchise catalog.
func completeTeam(t model.Team) model.Team {
	if t.Abbreviation == "" {
		if abbr := teams.Abbreviation(t.Name); abbr != t.Name {
			t.Abbreviation = abbr
		}
	}
	if t.Name == "" && t.Abbreviation != "" {
		if name := teams.Name(t.Abbreviation); name != t.Abbreviation {
			t.Name = name
		}
	}
	return t
}

// Validate checks the parts of a game that processing cannot recover from.
func Validate(in *model.GameInput) error {
	switch {
	case strings.TrimSpace(in.GameID) == "":
		return fmt.Errorf("%w: missing game id", ErrInvalidInput)
	case in.Home.ID == "" || in.Away.ID == "":
		return fmt.Errorf("%w: both team ids are required", ErrInvalidInput)
	case strings.EqualFold(in.Home.ID, in.Away.ID):
		return fmt.Errorf("%w: home and away are both %q", ErrInvalidInput, in.Home.ID)
	}
	return nil
}

// Process runs one game. Data problems never fail the call: they surface
// in the result's diagnostics and status. An error is returned only for
// invalid input or cancellation.
func (p *Processor) Process(ctx context.Context, in model.GameInput) (*Result, error) {
	start := p.now()
	if err := Validate(&in); err != nil {
		return nil, err
	}
	in.Home, in.Away = completeTeam(in.Home), completeTeam(in.Away)
	log := p.log.With(logger.String("game_id", in.GameID))

	plays, renumbered := renumber(in.GameID, in.Plays)
	diag := model.Diagnostics{TotalEvents: len(plays), Renumbered: renumbered}

	roster := lineup.NewRoster()
	roster.LearnStarters(in.Starters)
	events, err := p.parseAll(ctx, in, plays, roster, &diag)
	if err != nil {
		return nil, p.cancelled(ctx, log, start, err)
	}
	log.Debug(ctx, "records parsed", logger.Int("attributed_players", roster.Len()))

	tracker := lineup.NewTracker(in.Home, in.Away,
		lineup.WithRoster(roster),
		lineup.WithLogger(log.Named("lineup")))
	tracker.Seed(in.Starters, events)
	acc := stats.New(in.Home, in.Away, stats.WithPeriodLengths(p.periodLength, p.overtimeLength))
	engine := possession.New(in.GameID, in.Home, in.Away,
		possession.WithMinimumPossessions(p.minPossessions),
		possession.WithPeriodLengths(p.periodLength, p.overtimeLength),
		possession.WithLogger(log.Named("possession")))

	snaps := make([]*snapshot.Snapshot, 0, len(events))
	for i, ev := range events {
		if i%cancelCheckEvery == 0 && ctx.Err() != nil {
			return nil, p.cancelled(ctx, log, start, ctx.Err())
		}
		home, away := tracker.Apply(ev)
		table := acc.Apply(ev, home, away)
		engine.Observe(ev, home, away)
		snaps = append(snaps, snapshot.New(ev, home, away, table))
		log.Debug(ctx, "event applied",
			logger.Int("event_num", ev.EventNum),
			logger.String("event_type", ev.Type.String()),
			logger.String("rule", ev.Rule))
	}
	tracker.Flush()

	final := acc.Table()
	home, away := tracker.Lineups()
	res := &Result{
		GameID:     in.GameID,
		Home:       in.Home,
		Away:       in.Away,
		LineupHome: home,
		LineupAway: away,
		Players:    final.Players(),
		TeamHome:   final.Team(model.SideHome),
		TeamAway:   final.Team(model.SideAway),
		Events:     events,
		Snapshots:  snaps,
	}
	if n := len(events); n > 0 {
		res.ScoreHome, res.ScoreAway = events[n-1].ScoreHome, events[n-1].ScoreAway
	}

	derived, err := engine.Finish()
	switch {
	case err == nil:
		res.Possessions = derived.Possessions
		res.StintsHome = derived.StintsHome
		res.StintsAway = derived.StintsAway
		res.LineupRatings = derived.Ratings
		res.PlayerImpacts = derived.Impacts
	case errors.Is(err, possession.ErrIntegrity):
		diag.IntegrityError = err.Error()
		res.DerivedWithheld = true
		metrics.RecordIntegrityFailure()
		log.Error(ctx, "possession integrity check failed", logger.Error(err))
	default:
		return nil, fmt.Errorf("derive possessions: %w", err)
	}

	diag.Inconsistencies = tracker.Inconsistencies()
	diag.LineupInconsistencies = len(diag.Inconsistencies)
	res.Diagnostics = diag
	res.Status = p.status(&diag)
	res.ProcessedAt = p.now().UTC()
	res.Duration = p.now().Sub(start)

	metrics.RecordEventsProcessed(len(events))
	metrics.RecordParseCoverage(diag.CoveragePct / 100)
	metrics.RecordLineupInconsistencies(diag.LineupInconsistencies)
	metrics.RecordGameProcessed(string(res.Status), float64(res.Duration.Milliseconds()))
	log.Info(ctx, "game processed",
		logger.String("status", string(res.Status)),
		logger.Int("events", len(events)),
		logger.Int("players", final.Len()),
		logger.Int("unparsed", diag.UnparsedEvents),
		logger.Int("lineup_inconsistencies", diag.LineupInconsistencies),
		logger.Float64("coverage_pct", diag.CoveragePct),
		logger.Duration("duration", res.Duration))
	return res, nil
}

func (p *Processor) status(d *model.Diagnostics) model.GameStatus {
	if d.IntegrityError != "" || d.UnparsedPct() > p.thresholdPct || d.InconsistencyPct() > p.thresholdPct {
		return model.StatusCompleteWithErrors
	}
	return model.StatusComplete
}

func (p *Processor) cancelled(ctx context.Context, log logger.Logger, start time.Time, cause error) error {
	metrics.RecordGameProcessed(string(model.StatusCancelled), float64(p.now().Sub(start).Milliseconds()))
	log.Warn(ctx, "game cancelled, partial state discarded", logger.Error(cause))
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// renumber returns the plays with event numbers 1..N when the input's are
// missing or not strictly increasing. The input slice is not modified.
func renumber(gameID string, plays []model.RawPlay) ([]model.RawPlay, bool) {
	out := make([]model.RawPlay, len(plays))
	copy(out, plays)
	ordered := true
	for i := range out {
		if out[i].GameID == "" {
			out[i].GameID = gameID
		}
		if out[i].EventNum <= 0 || i > 0 && out[i].EventNum <= out[i-1].EventNum {
			ordered = false
		}
	}
	if ordered {
		return out, false
	}
	for i := range out {
		out[i].EventNum = i + 1
	}
	return out, true
}

func (p *Processor) periodLengthFor(period int) time.Duration {
	if period > regulationPeriods {
		return p.overtimeLength
	}
	return p.periodLength
}

// parseAll parses every record, attributing players to teams as it goes,
// then fills in the team of records whose actor was attributed later.
func (p *Processor) parseAll(ctx context.Context, in model.GameInput, plays []model.RawPlay, roster *lineup.Roster, diag *model.Diagnostics) ([]model.Event, error) {
	pctx := parser.Context{
		Matchup: teams.NewMatchup(in.Home, in.Away),
		TeamOf:  roster.Side,
	}
	events := make([]model.Event, len(plays))
	lastMiss := make([]model.Side, len(plays))
	period := 0
	for i, raw := range plays {
		if i%cancelCheckEvery == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if raw.Period <= 0 {
			raw.Period = max(period, 1)
		}
		if raw.Period != period {
			pctx.PrevClock = p.periodLengthFor(raw.Period)
			pctx.LastMiss = model.SideNone
		}
		lastMiss[i] = pctx.LastMiss

		ev := p.parser.Parse(raw, pctx)
		p.checkAnomalies(ev, raw.Period == period, pctx, diag)
		roster.Observe(ev)

		switch ev.Type {
		case model.EventShotMissed, model.EventFreeThrowMissed:
			pctx.LastMiss = ev.Side
		case model.EventBlock:
			pctx.LastMiss = ev.Side.Other()
		}
		pctx.PrevClock, pctx.PrevHome, pctx.PrevAway = ev.Clock, ev.ScoreHome, ev.ScoreAway
		period = raw.Period
		events[i] = ev
	}

	matchup := pctx.Matchup
	for i := range events {
		ev := &events[i]
		if ev.Side == model.SideNone && ev.Primary != "" && ev.Type != model.EventUnparsed {
			if side := roster.Side(ev.Primary); side != model.SideNone {
				ev.Side = side
				ev.TeamID = matchup.TeamID(side)
			}
		}
		if ev.Type == model.EventRebound && ev.Rebound == model.ReboundUnknown {
			ev.Rebound = reboundKind(ev.Side, lastMiss[i])
		}
		if ev.Parsed() {
			diag.ParsedEvents++
			continue
		}
		diag.UnparsedEvents++
		metrics.RecordEventUnparsed(string(ev.Unparsed))
		if len(diag.UnparsedSamples) < p.samples {
			diag.UnparsedSamples = append(diag.UnparsedSamples, ev.RawText)
		}
	}
	diag.CoveragePct = 100
	if diag.TotalEvents > 0 {
		diag.CoveragePct = 100 * float64(diag.ParsedEvents) / float64(diag.TotalEvents)
	}
	return events, nil
}

func reboundKind(side, lastMiss model.Side) model.ReboundKind {
	switch {
	case side == model.SideNone || lastMiss == model.SideNone:
		return model.ReboundUnknown
	case side == lastMiss:
		return model.ReboundOffensive
	default:
		return model.ReboundDefensive
	}
}

// checkAnomalies counts clocks running backwards within a period and score
// changes that no single play produces. The recorded values stay
// authoritative.
func (p *Processor) checkAnomalies(ev model.Event, samePeriod bool, prev parser.Context, diag *model.Diagnostics) {
	if ev.Unparsed == model.ReasonBadClock || ev.Unparsed == model.ReasonBadScore {
		return
	}
	if samePeriod && ev.Clock > prev.PrevClock {
		diag.ClockAnomalies++
	}
	dh, da := ev.ScoreHome-prev.PrevHome, ev.ScoreAway-prev.PrevAway
	switch {
	case dh < 0 || da < 0, dh > 3 || da > 3, dh > 0 && da > 0:
		diag.ScoreAnomalies++
	}
}
