// Package lineup tracks the five players each team has on court. Lineups
// are built only from starter and substitution records; play text never
// adds a player.
package lineup

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/pkg/logger"
)

// State is the tracker state of one team.
type State uint8

// Team states. A team never commits any state other than these two.
const (
	Uninitialized State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "uninitialized"
}

type single struct {
	player   string
	eventNum int
}

type teamState struct {
	side    model.Side
	teamID  string
	current *model.LineupState
	ins     []single
	outs    []single
}

// Tracker maintains both teams' lineups for one game. It is not safe for
// concurrent use; each game owns its tracker.
type Tracker struct {
	teams           [2]*teamState
	roster          *Roster
	inconsistencies []model.LineupInconsistency
	log             logger.Logger
}

// NewTracker returns a tracker with both teams uninitialized.
func NewTracker(home, away model.Team, opts ...Option) *Tracker {
	t := &Tracker{
		teams: [2]*teamState{
			{side: model.SideHome, teamID: home.ID},
			{side: model.SideAway, teamID: away.ID},
		},
		roster: NewRoster(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logger.Get().Named("lineup")
	}
	return t
}

func (t *Tracker) team(side model.Side) *teamState {
	return t.teams[side.Index()]
}

// State reports whether a side has an established lineup.
func (t *Tracker) State(side model.Side) State {
	if t.team(side).current != nil {
		return Active
	}
	return Uninitialized
}

// Current returns the lineup of a side, nil while uninitialized.
func (t *Tracker) Current(side model.Side) *model.LineupState {
	return t.team(side).current
}

// Lineups returns the home and away lineups.
func (t *Tracker) Lineups() (home, away *model.LineupState) {
	return t.teams[0].current, t.teams[1].current
}

// Inconsistencies returns the recorded diagnostics in event order.
func (t *Tracker) Inconsistencies() []model.LineupInconsistency {
	return slices.Clone(t.inconsistencies)
}

// TeamOf reports the side a player is on court for, falling back to the
// roster.
func (t *Tracker) TeamOf(player string) model.Side {
	for _, ts := range t.teams {
		if ts.current.Has(player) {
			return ts.side
		}
	}
	return t.roster.Side(player)
}

// Seed establishes starting lineups before the first event. Explicit
// starters win, then a starting lineup record that precedes the team's first
// substitution, then starters inferred from substitution records: a player
// who leaves without having entered is an assumed starter.
func (t *Tracker) Seed(starters model.Starters, events []model.Event) {
	for _, side := range model.Sides {
		ts := t.team(side)
		if explicit := starters.For(side); len(explicit) > 0 {
			if err := t.commit(ts, explicit, 0); err == nil {
				continue
			}
			t.record(0, ts.teamID, "", model.InconsistencyBadStartingFive)
		}
		if players := leadingStarters(side, events); players != nil {
			if err := t.commit(ts, players, 0); err == nil {
				continue
			}
		}
		assumed := inferStarters(side, events)
		if err := t.commit(ts, assumed, 0); err != nil {
			t.record(0, ts.teamID, "", model.InconsistencyInsufficient)
			t.log.Warn(context.Background(), "starting lineup unknown",
				logger.String("team_id", ts.teamID),
				logger.Int("assumed_starters", len(assumed)))
		}
	}
}

func leadingStarters(side model.Side, events []model.Event) []string {
	for i := range events {
		ev := &events[i]
		if ev.Side != side {
			continue
		}
		if ev.Type.IsSubstitution() {
			return nil
		}
		if ev.Type == model.EventStartingLineup {
			return ev.Players
		}
	}
	return nil
}

func inferStarters(side model.Side, events []model.Event) []string {
	seen := make(map[string]bool)
	var assumed []string
	leave := func(p string) {
		if p != "" && !seen[p] && len(assumed) < model.LineupSize {
			assumed = append(assumed, p)
		}
		seen[p] = true
	}
	for i := range events {
		ev := &events[i]
		if ev.Side != side {
			continue
		}
		switch ev.Type {
		case model.EventSubstitution:
			leave(ev.Secondary)
			seen[ev.Primary] = true
		case model.EventSubstitutionOut:
			leave(ev.Primary)
		case model.EventSubstitutionIn:
			seen[ev.Primary] = true
		}
		if len(assumed) == model.LineupSize {
			break
		}
	}
	return assumed
}

// Apply advances the tracker by one event and returns the lineups that hold
// after it. Non-substitution events leave lineups untouched, except that any
// buffered single substitution record still unpaired is dropped.
func (t *Tracker) Apply(ev model.Event) (home, away *model.LineupState) {
	switch ev.Type {
	case model.EventSubstitution:
		t.applyPair(ev)
	case model.EventSubstitutionIn, model.EventSubstitutionOut:
		t.applySingle(ev)
	case model.EventStartingLineup:
		t.Flush()
		t.applyStarters(ev)
	default:
		t.Flush()
	}
	return t.Lineups()
}

func (t *Tracker) resolveSide(ev model.Event, out, in string) model.Side {
	if ev.Side != model.SideNone {
		return ev.Side
	}
	for _, ts := range t.teams {
		if out != "" && ts.current.Has(out) {
			return ts.side
		}
	}
	if side := t.roster.Side(out); side != model.SideNone {
		return side
	}
	return t.roster.Side(in)
}

func (t *Tracker) applyPair(ev model.Event) {
	t.Flush()
	side := t.resolveSide(ev, ev.Secondary, ev.Primary)
	if side == model.SideNone {
		t.record(ev.EventNum, "", ev.Secondary, model.InconsistencyUnknownTeam)
		return
	}
	t.substitute(t.team(side), ev.EventNum, ev.Primary, ev.Secondary)
}

func (t *Tracker) applySingle(ev model.Event) {
	var in, out string
	if ev.Type == model.EventSubstitutionIn {
		in = ev.Primary
	} else {
		out = ev.Primary
	}
	side := t.resolveSide(ev, out, in)
	if side == model.SideNone {
		t.record(ev.EventNum, "", ev.Primary, model.InconsistencyUnknownTeam)
		return
	}
	ts := t.team(side)
	if ts.current != nil {
		if in != "" && ts.current.Has(in) {
			return
		}
		if out != "" && !ts.current.Has(out) {
			t.record(ev.EventNum, ts.teamID, out, model.InconsistencyNotOnCourt)
			return
		}
	}
	rec := single{player: ev.Primary, eventNum: ev.EventNum}
	if in != "" {
		ts.ins = append(ts.ins, rec)
	} else {
		ts.outs = append(ts.outs, rec)
	}
	for len(ts.ins) > 0 && len(ts.outs) > 0 {
		i, o := ts.ins[0], ts.outs[0]
		ts.ins, ts.outs = ts.ins[1:], ts.outs[1:]
		t.substitute(ts, max(i.eventNum, o.eventNum), i.player, o.player)
	}
}

// Flush drops buffered single substitution records that found no partner.
func (t *Tracker) Flush() {
	for _, ts := range t.teams {
		for _, s := range slices.Concat(ts.ins, ts.outs) {
			t.record(s.eventNum, ts.teamID, s.player, model.InconsistencyUnpairedSub)
		}
		ts.ins, ts.outs = nil, nil
	}
}

func (t *Tracker) applyStarters(ev model.Event) {
	side := ev.Side
	if side == model.SideNone {
		t.record(ev.EventNum, "", "", model.InconsistencyUnknownTeam)
		return
	}
	ts := t.team(side)
	if ts.current != nil && slices.Equal(ts.current.Players, sortedCopy(ev.Players)) {
		return
	}
	if err := t.commit(ts, ev.Players, ev.EventNum); err != nil {
		t.record(ev.EventNum, ts.teamID, "", model.InconsistencyBadStartingFive)
	}
}

// substitute applies one in/out pair. A departing player not on court is
// reported and not removed; an arriving player already on court is a
// no-op. A candidate that is not exactly five players is rejected whole.
func (t *Tracker) substitute(ts *teamState, eventNum int, in, out string) {
	if ts.current == nil {
		t.record(eventNum, ts.teamID, out, model.InconsistencyUninitialized)
		return
	}
	candidate := slices.Clone(ts.current.Players)
	reason := ""
	if out != "" {
		if i := slices.Index(candidate, out); i >= 0 {
			candidate = slices.Delete(candidate, i, i+1)
		} else {
			reason = model.InconsistencyNotOnCourt
		}
	}
	if in != "" && !slices.Contains(candidate, in) {
		candidate = append(candidate, in)
	}
	if reason != "" {
		t.record(eventNum, ts.teamID, out, reason)
		if len(candidate) != model.LineupSize {
			return
		}
	}
	if slices.Equal(sortedCopy(candidate), ts.current.Players) {
		return
	}
	if err := t.commit(ts, candidate, eventNum); err != nil {
		t.record(eventNum, ts.teamID, in, model.InconsistencySizeViolation)
	}
}

// commit installs a new lineup if it has exactly five distinct players.
func (t *Tracker) commit(ts *teamState, players []string, eventNum int) error {
	p := sortedCopy(players)
	p = slices.Compact(p)
	if len(p) != model.LineupSize || slices.Contains(p, "") {
		return fmt.Errorf("%w: got %d", ErrLineupSize, len(p))
	}
	ts.current = model.NewLineupState(ts.teamID, ts.side, p, eventNum)
	return nil
}

func (t *Tracker) record(eventNum int, teamID, player, reason string) {
	t.inconsistencies = append(t.inconsistencies, model.LineupInconsistency{
		EventNum: eventNum,
		TeamID:   teamID,
		PlayerID: player,
		Reason:   reason,
	})
	t.log.Warn(context.Background(), "lineup inconsistency",
		logger.Int("event_num", eventNum),
		logger.String("team_id", teamID),
		logger.String("player_id", player),
		logger.String("reason", reason))
}

func sortedCopy(p []string) []string {
	out := slices.Clone(p)
	slices.Sort(out)
	return out
}
