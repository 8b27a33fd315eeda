package model

import (
	"slices"
	"strings"
)

// LineupSize is the number of players a team has on court.
const LineupSize = 5

// LineupState is the immutable on-court set of one team at a point in time.
// A change produces a new value; existing values are never modified.
type LineupState struct {
	TeamID       string   `json:"team_id"`
	Side         Side     `json:"side"`
	Players      []string `json:"players"`
	AsOfEventNum int      `json:"as_of_event_num"`
}

// NewLineupState copies and sorts players into a new state.
func NewLineupState(teamID string, side Side, players []string, asOf int) *LineupState {
	p := slices.Clone(players)
	slices.Sort(p)
	return &LineupState{TeamID: teamID, Side: side, Players: p, AsOfEventNum: asOf}
}

// Has reports whether player is on court.
func (l *LineupState) Has(player string) bool {
	if l == nil {
		return false
	}
	_, ok := slices.BinarySearch(l.Players, player)
	return ok
}

// Key returns a stable identifier for the five-player unit.
func (l *LineupState) Key() string {
	if l == nil {
		return ""
	}
	return LineupKey(l.Players)
}

// SameUnit reports whether both states hold the same players.
func (l *LineupState) SameUnit(o *LineupState) bool {
	if l == nil || o == nil {
		return l == o
	}
	return slices.Equal(l.Players, o.Players)
}

// LineupKey joins sorted player ids into a stable unit key.
func LineupKey(players []string) string {
	p := slices.Clone(players)
	slices.Sort(p)
	return strings.Join(p, " | ")
}
