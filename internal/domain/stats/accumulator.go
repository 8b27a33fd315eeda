package stats

import (
	"maps"
	"slices"
	"time"

	"github.com/okian/hoopstate/internal/domain/model"
)

const (
	defaultPeriodLength   = 12 * time.Minute
	defaultOvertimeLength = 5 * time.Minute
	regulationPeriods     = 4
)

// Accumulator applies events to a stat table in event order. One
// accumulator serves exactly one game and is not safe for concurrent use.
type Accumulator struct {
	cur  *Table
	next *Table

	home, away model.Team

	// seq numbers Apply calls; owned[i] == seq marks a player record
	// already copied into next.
	seq       int
	owned     []int
	teamOwned [2]int

	started    bool
	prevPeriod int
	prevClock  time.Duration
	prevHome   *model.LineupState
	prevAway   *model.LineupState

	unparsed int

	periodLength   time.Duration
	overtimeLength time.Duration
}

// New returns an accumulator with an empty table for the two teams.
func New(home, away model.Team, opts ...Option) *Accumulator {
	a := &Accumulator{
		cur:            newTable(home, away),
		home:           home,
		away:           away,
		periodLength:   defaultPeriodLength,
		overtimeLength: defaultOvertimeLength,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Table returns the current table.
func (a *Accumulator) Table() *Table { return a.cur }

// Unparsed returns the number of unparsed events seen.
func (a *Accumulator) Unparsed() int { return a.unparsed }

// Apply adds the stat deltas of one event and returns the resulting table.
// home and away are the lineups in effect after the event; playing time
// elapsed since the previous event is credited to the lineups that held
// before it.
func (a *Accumulator) Apply(ev model.Event, home, away *model.LineupState) *Table {
	a.seq++
	a.next = nil

	if !a.started {
		a.prevHome, a.prevAway = home, away
	}
	if secs := a.elapsed(ev); secs > 0 {
		a.credit(a.prevHome, model.SideHome, secs)
		a.credit(a.prevAway, model.SideAway, secs)
	}

	rules[ev.Type](a, &ev)

	a.started = true
	a.prevPeriod, a.prevClock = ev.Period, ev.Clock
	a.prevHome, a.prevAway = home, away
	if a.next != nil {
		a.cur = a.next
		a.next = nil
	}
	return a.cur
}

func (a *Accumulator) length(period int) time.Duration {
	if period > regulationPeriods {
		return a.overtimeLength
	}
	return a.periodLength
}

// elapsed returns game seconds between the previous event and ev. The first
// event of a period counts from the period's full length.
func (a *Accumulator) elapsed(ev model.Event) float64 {
	if ev.Period <= 0 {
		return 0
	}
	from := a.prevClock
	if !a.started || ev.Period != a.prevPeriod {
		from = a.length(ev.Period)
	}
	d := from - ev.Clock
	if d <= 0 {
		return 0
	}
	return d.Seconds()
}

func (a *Accumulator) credit(l *model.LineupState, side model.Side, secs float64) {
	if l == nil {
		return
	}
	for _, id := range l.Players {
		a.player(id, side).SecondsPlayed += secs
	}
	a.team(side).SecondsPlayed += secs
}

// table returns the table under construction for the current event,
// starting it from the current one on first use.
func (a *Accumulator) table() *Table {
	if a.next == nil {
		t := *a.cur
		t.players = slices.Clone(a.cur.players)
		a.next = &t
	}
	return a.next
}

// player returns a writable record for id, nil for an empty id.
func (a *Accumulator) player(id string, side model.Side) *model.PlayerGameStats {
	if id == "" {
		return nil
	}
	t := a.table()
	i, ok := t.index[id]
	if !ok {
		t.index = maps.Clone(t.index)
		t.index[id] = len(t.players)
		p := &model.PlayerGameStats{PlayerID: id, Side: side, TeamID: a.teamID(side)}
		t.players = append(t.players, p)
		a.owned = append(a.owned, a.seq)
		return p
	}
	if a.owned[i] != a.seq {
		cp := *t.players[i]
		t.players[i] = &cp
		a.owned[i] = a.seq
	}
	p := t.players[i]
	if p.Side == model.SideNone && side != model.SideNone {
		p.Side, p.TeamID = side, a.teamID(side)
	}
	return p
}

// team returns a writable record for side, nil for SideNone.
func (a *Accumulator) team(side model.Side) *model.TeamGameStats {
	if side == model.SideNone {
		return nil
	}
	t := a.table()
	i := side.Index()
	if a.teamOwned[i] != a.seq {
		cp := *t.teams[i]
		t.teams[i] = &cp
		a.teamOwned[i] = a.seq
	}
	return t.teams[i]
}

func (a *Accumulator) teamID(side model.Side) string {
	switch side {
	case model.SideHome:
		return a.home.ID
	case model.SideAway:
		return a.away.ID
	default:
		return ""
	}
}
