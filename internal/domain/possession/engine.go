// Package possession segments a game into possessions and lineup stints and
// derives plus-minus, lineup ratings and on/off splits from them.
package possession

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/pkg/logger"
)

const (
	defaultMinPossessions = 10
	defaultPeriodLength   = 12 * time.Minute
	defaultOvertimeLength = 5 * time.Minute
	regulationPeriods     = 4
)

var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/okian/hoopstate/possession"))

// PossessionID returns the stable id of a game's nth possession.
func PossessionID(gameID string, ordinal int) string {
	return uuid.NewSHA1(idSpace, fmt.Appendf(nil, "%s/%d", gameID, ordinal)).String()
}

// turnoverViolations are violations that hand the ball to the opponent.
var turnoverViolations = map[string]bool{
	"shot_clock":             true,
	"offensive_three_second": true,
	"five_second":            true,
	"eight_second":           true,
	"backcourt":              true,
	"offensive_goaltending":  true,
	"traveling":              true,
	"double_dribble":         true,
}

type span struct{ first, last int }

type openPossession struct {
	p    model.Possession
	span span
}

type openStint struct {
	s      model.Stint
	lineup *model.LineupState
	span   span
}

// Result holds the derived outputs of one game.
type Result struct {
	Possessions []model.Possession   `json:"possessions"`
	StintsHome  []model.Stint        `json:"stints_home"`
	StintsAway  []model.Stint        `json:"stints_away"`
	Ratings     []model.LineupRating `json:"lineup_ratings"`
	Impacts     []model.PlayerImpact `json:"player_impacts"`
}

// Stints returns the stints of one side.
func (r *Result) Stints(side model.Side) []model.Stint {
	if side == model.SideAway {
		return r.StintsAway
	}
	return r.StintsHome
}

// Engine consumes a game's events in order. Call Observe for every event,
// then Finish once.
type Engine struct {
	gameID     string
	teams      [2]model.Team
	nums       []int
	period     int
	scores     [2]int
	last       [2]*model.LineupState
	activeFrom [2]int

	possessions []model.Possession
	spans       []span
	cur         *openPossession
	pending     model.PossessionEnd
	pendingAt   time.Duration
	nextSide    model.Side

	stints      [2][]model.Stint
	stintSpans  [2][]span
	open        [2]*openStint
	freshPeriod bool
	endedPeriod int

	units map[string]*unit

	minPossessions int
	periodLength   time.Duration
	overtimeLength time.Duration
	log            logger.Logger
}

// New returns an engine for one game.
func New(gameID string, home, away model.Team, opts ...Option) *Engine {
	e := &Engine{
		gameID:         gameID,
		teams:          [2]model.Team{home, away},
		activeFrom:     [2]int{-1, -1},
		freshPeriod:    true,
		units:          make(map[string]*unit),
		minPossessions: defaultMinPossessions,
		periodLength:   defaultPeriodLength,
		overtimeLength: defaultOvertimeLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Get().Named("possession")
	}
	return e
}

func (e *Engine) length(period int) time.Duration {
	if period > regulationPeriods {
		return e.overtimeLength
	}
	return e.periodLength
}

func (e *Engine) teamID(side model.Side) string {
	if side == model.SideNone {
		return ""
	}
	return e.teams[side.Index()].ID
}

// Observe feeds one event together with the lineups in effect after it.
func (e *Engine) Observe(ev model.Event, home, away *model.LineupState) {
	idx := len(e.nums)
	e.nums = append(e.nums, ev.EventNum)
	lineups := [2]*model.LineupState{home, away}

	if idx > 0 && ev.Period != e.period {
		e.breakPeriod(idx - 1)
	}
	e.period = ev.Period

	e.trackStints(ev, idx, lineups)
	e.freshPeriod = false
	e.trackPossession(ev, idx, lineups)

	deltas := [2]int{ev.ScoreHome - e.scores[0], ev.ScoreAway - e.scores[1]}
	e.scores = [2]int{ev.ScoreHome, ev.ScoreAway}
	for i, side := range model.Sides {
		if deltas[i] != 0 {
			e.score(ev, idx, side, deltas[i], lineups)
		}
	}

	if ev.Type == model.EventPeriodEnd {
		e.endPeriod(ev, idx, lineups)
	}
	e.last = lineups
}

// breakPeriod closes everything still open when a new period starts without
// a period end record.
func (e *Engine) breakPeriod(lastIdx int) {
	if e.cur != nil {
		e.closePossession(e.endReason(model.EndPeriod), e.last)
	}
	e.nextSide = model.SideNone
	e.freshPeriod = true
	for _, side := range model.Sides {
		if e.open[side.Index()] != nil {
			e.closeStint(side, lastIdx, 0)
		}
	}
}

func (e *Engine) endPeriod(ev model.Event, idx int, lineups [2]*model.LineupState) {
	if e.cur != nil {
		e.closePossession(e.endReason(model.EndPeriod), lineups)
	}
	e.nextSide = model.SideNone
	e.freshPeriod = true
	e.endedPeriod = ev.Period
	for _, side := range model.Sides {
		if e.open[side.Index()] != nil {
			e.closeStint(side, idx, ev.Clock)
		}
	}
}

func (e *Engine) endReason(fallback model.PossessionEnd) model.PossessionEnd {
	if e.pending != "" {
		return e.pending
	}
	return fallback
}

func (e *Engine) trackStints(ev model.Event, idx int, lineups [2]*model.LineupState) {
	for i, side := range model.Sides {
		l := lineups[i]
		if st := e.open[i]; st != nil && !st.lineup.SameUnit(l) {
			e.closeStint(side, idx-1, ev.Clock)
		}
		if e.open[i] != nil || l == nil {
			continue
		}
		start := ev.Clock
		// records after a period end record stay at the clock they carry
		if e.freshPeriod && ev.Period != e.endedPeriod {
			start = e.length(ev.Period)
		}
		if e.activeFrom[i] < 0 {
			e.activeFrom[i] = idx
		}
		e.open[i] = &openStint{
			s: model.Stint{
				TeamID:        e.teamID(side),
				Side:          side,
				Players:       l.Players,
				Period:        ev.Period,
				StartEventNum: ev.EventNum,
				StartClock:    start,
			},
			lineup: l,
			span:   span{first: idx, last: idx},
		}
	}
}

func (e *Engine) closeStint(side model.Side, lastIdx int, endClock time.Duration) {
	i := side.Index()
	st := e.open[i]
	e.open[i] = nil
	st.span.last = lastIdx
	st.s.EndEventNum = e.nums[lastIdx]
	st.s.EndClock = endClock
	if d := st.s.StartClock - endClock; d > 0 {
		st.s.DurationSeconds = d.Seconds()
	}
	st.s.PlusMinus = st.s.PointsFor - st.s.PointsAgainst
	e.stints[i] = append(e.stints[i], st.s)
	e.stintSpans[i] = append(e.stintSpans[i], st.span)

	u := e.unit(side, st.lineup)
	u.stints++
	u.seconds += st.s.DurationSeconds
}

func (e *Engine) trackPossession(ev model.Event, idx int, lineups [2]*model.LineupState) {
	if e.pending != "" {
		if e.continuesDeadBall(ev) {
			e.cur.span.last = idx
			e.cur.p.EndEventNum = ev.EventNum
			e.afterContinuation(ev)
			return
		}
		e.closePossession(e.pending, e.last)
	}

	afterEnd := ev.Type == model.EventPeriodEnd || ev.Period == e.endedPeriod
	if afterEnd && e.cur == nil && len(e.possessions) > 0 {
		last := len(e.possessions) - 1
		if e.possessions[last].Period == ev.Period {
			e.possessions[last].EndEventNum = ev.EventNum
			e.spans[last].last = idx
			return
		}
	}
	if e.cur == nil {
		e.openPossession(ev, idx, e.nextSide)
	}

	if off := offenseSide(ev); off != model.SideNone {
		e.claim(ev, idx, off)
	}
	e.cur.span.last = idx
	e.cur.p.EndEventNum = ev.EventNum

	switch ev.Type {
	case model.EventShotMade:
		e.setPending(model.EndMadeShot, ev.Clock)
	case model.EventFreeThrowMade:
		if ev.FreeThrow.LastOfTrip() {
			e.setPending(model.EndMadeFreeThrow, ev.Clock)
		}
	case model.EventRebound:
		if e.defensive(ev) {
			e.nextSide = ev.Side
			if ev.Side == model.SideNone {
				e.nextSide = e.cur.p.Side.Other()
			}
			e.closePossession(model.EndDefRebound, lineups)
		}
	case model.EventTurnover:
		e.turnover(ev, lineups)
	case model.EventViolation:
		if turnoverViolations[ev.Violation] {
			e.turnover(ev, lineups)
		}
	case model.EventSteal:
		if ev.Side != model.SideNone && e.cur.p.Side == ev.Side.Other() {
			e.nextSide = ev.Side
			e.closePossession(model.EndTurnover, lineups)
		}
	}
}

// continuesDeadBall reports whether ev belongs to a possession that ended
// with a score at the same clock: fouls, assists and free throws by the
// scoring team, substitutions, timeouts, reviews and unreadable records.
func (e *Engine) continuesDeadBall(ev model.Event) bool {
	if ev.Period != e.period || ev.Clock != e.pendingAt {
		return false
	}
	switch ev.Type {
	case model.EventFoul, model.EventSubstitution, model.EventSubstitutionIn, model.EventSubstitutionOut,
		model.EventTimeout, model.EventReview, model.EventUnparsed, model.EventEjection, model.EventPeriodEnd:
		return true
	case model.EventFreeThrowMade, model.EventFreeThrowMissed, model.EventAssist:
		return ev.Side == model.SideNone || ev.Side == e.cur.p.Side
	}
	return false
}

func (e *Engine) afterContinuation(ev model.Event) {
	switch ev.Type {
	case model.EventFreeThrowMade:
		if ev.FreeThrow.LastOfTrip() {
			e.pending = model.EndMadeFreeThrow
		}
	case model.EventFreeThrowMissed:
		if ev.FreeThrow.LastOfTrip() {
			// live ball after a missed and-one: the rebound decides
			e.pending = ""
		}
	}
}

func (e *Engine) setPending(reason model.PossessionEnd, at time.Duration) {
	e.pending = reason
	e.pendingAt = at
	e.nextSide = e.cur.p.Side.Other()
}

func (e *Engine) turnover(ev model.Event, lineups [2]*model.LineupState) {
	side := ev.Side
	if side == model.SideNone {
		side = e.cur.p.Side
	}
	e.nextSide = side.Other()
	e.closePossession(model.EndTurnover, lineups)
}

// defensive classifies a rebound against the team holding the ball when the
// parser could not.
func (e *Engine) defensive(ev model.Event) bool {
	switch ev.Rebound {
	case model.ReboundDefensive:
		return true
	case model.ReboundOffensive:
		return false
	}
	return ev.Side != model.SideNone && e.cur.p.Side != model.SideNone && ev.Side != e.cur.p.Side
}

// claim makes side the team with the ball at ev, closing the current
// possession implicitly when the other team had it.
func (e *Engine) claim(ev model.Event, idx int, side model.Side) {
	switch {
	case e.cur.p.Side == side:
	case e.cur.p.Side == model.SideNone || e.cur.span.first == idx:
		e.cur.p.Side = side
		e.cur.p.TeamID = e.teamID(side)
	default:
		e.cur.span.last = idx - 1
		e.cur.p.EndEventNum = e.nums[idx-1]
		e.closePossession(model.EndImplicit, e.last)
		e.openPossession(ev, idx, side)
	}
}

func (e *Engine) score(ev model.Event, idx int, side model.Side, points int, lineups [2]*model.LineupState) {
	i := side.Index()
	if st := e.open[i]; st != nil {
		st.s.PointsFor += points
	}
	if st := e.open[1-i]; st != nil {
		st.s.PointsAgainst += points
	}
	if l := lineups[i]; l != nil {
		e.unit(side, l).pointsFor += points
	}
	if l := lineups[1-i]; l != nil {
		e.unit(side.Other(), l).pointsAgainst += points
	}

	if e.cur != nil && points > 0 && e.cur.p.Side != side {
		if e.cur.p.Side != model.SideNone {
			e.log.Debug(context.Background(), "score by team without the ball",
				logger.String("game_id", e.gameID),
				logger.Int("event_num", ev.EventNum))
		}
		e.claim(ev, idx, side)
	}
	if e.cur != nil && e.cur.p.Side == side {
		e.cur.p.PointsScored += points
		return
	}
	// score corrections: charge the side's latest possession
	for j := len(e.possessions) - 1; j >= 0; j-- {
		if e.possessions[j].Side == side {
			e.possessions[j].PointsScored += points
			return
		}
	}
	if e.cur != nil && e.cur.p.Side == model.SideNone {
		e.claim(ev, idx, side)
		e.cur.p.PointsScored += points
	}
}

func (e *Engine) openPossession(ev model.Event, idx int, side model.Side) {
	e.pending = ""
	e.cur = &openPossession{
		p: model.Possession{
			Side:          side,
			TeamID:        e.teamID(side),
			Period:        ev.Period,
			StartEventNum: ev.EventNum,
			EndEventNum:   ev.EventNum,
		},
		span: span{first: idx, last: idx},
	}
}

func (e *Engine) closePossession(reason model.PossessionEnd, lineups [2]*model.LineupState) {
	c := e.cur
	e.cur = nil
	e.pending = ""
	c.p.EndReason = reason
	c.p.Ordinal = len(e.possessions) + 1
	c.p.ID = PossessionID(e.gameID, c.p.Ordinal)
	e.possessions = append(e.possessions, c.p)
	e.spans = append(e.spans, c.span)

	side := c.p.Side
	if side == model.SideNone {
		return
	}
	if l := lineups[side.Index()]; l != nil {
		e.unit(side, l).offPossessions++
	}
	if l := lineups[side.Other().Index()]; l != nil {
		e.unit(side.Other(), l).defPossessions++
	}
}

// offenseSide returns the side an event shows to have the ball, SideNone
// when the event says nothing about it.
func offenseSide(ev model.Event) model.Side {
	switch ev.Type {
	case model.EventShotMade, model.EventShotMissed, model.EventFreeThrowMade, model.EventFreeThrowMissed,
		model.EventAssist, model.EventTurnover, model.EventJumpBall:
		return ev.Side
	case model.EventBlock:
		return ev.Side.Other()
	case model.EventRebound:
		if ev.Rebound == model.ReboundOffensive {
			return ev.Side
		}
	case model.EventFoul:
		if ev.Foul == model.FoulOffensive {
			return ev.Side
		}
	case model.EventViolation:
		if turnoverViolations[ev.Violation] {
			return ev.Side
		}
	}
	return model.SideNone
}

// Finish closes open possessions and stints, checks integrity and derives
// ratings. Derived outputs are withheld when a check fails.
func (e *Engine) Finish() (*Result, error) {
	if e.cur != nil {
		e.closePossession(e.endReason(model.EndGame), e.last)
	}
	last := len(e.nums) - 1
	for _, side := range model.Sides {
		if e.open[side.Index()] != nil {
			e.closeStint(side, last, 0)
		}
	}
	if err := e.checkIntegrity(); err != nil {
		return nil, err
	}
	ratings := e.ratings()
	return &Result{
		Possessions: e.possessions,
		StintsHome:  e.stints[0],
		StintsAway:  e.stints[1],
		Ratings:     ratings,
		Impacts:     impacts(ratings),
	}, nil
}
