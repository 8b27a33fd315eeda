package model

import (
	"fmt"
	"strings"
)

// Side identifies the home or away team of a game.
type Side uint8

// Sides.
const (
	SideNone Side = iota
	SideHome
	SideAway
)

// Other returns the opposing side. SideNone maps to itself.
func (s Side) Other() Side {
	switch s {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	default:
		return SideNone
	}
}

// Index returns 0 for home and 1 for away; callers must not pass SideNone.
func (s Side) Index() int { return int(s) - 1 }

func (s Side) String() string {
	switch s {
	case SideHome:
		return "home"
	case SideAway:
		return "away"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "home":
		*s = SideHome
	case "away":
		*s = SideAway
	case "":
		*s = SideNone
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSide, string(b))
	}
	return nil
}

// Sides lists the two playing sides in fixed order.
var Sides = [2]Side{SideHome, SideAway}

// Team identifies one side of a game as it appears in the source data.
type Team struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Abbreviation string   `json:"abbreviation,omitempty"`
	Aliases      []string `json:"aliases,omitempty"`
}

// RawPlay is one unprocessed play-by-play record. Clock and scores stay
// textual so malformed values can be demoted rather than rejected.
type RawPlay struct {
	GameID    string `json:"game_id"`
	EventNum  int    `json:"event_num,omitempty"`
	Period    int    `json:"period"`
	Clock     string `json:"clock"`
	Text      string `json:"text"`
	ScoreHome string `json:"score_home,omitempty"`
	ScoreAway string `json:"score_away,omitempty"`
	Team      string `json:"team,omitempty"`
}

// Starters optionally names the starting five of each side.
type Starters struct {
	Home []string `json:"home,omitempty"`
	Away []string `json:"away,omitempty"`
}

// For returns the starters for a side.
func (s Starters) For(side Side) []string {
	if side == SideAway {
		return s.Away
	}
	return s.Home
}

// GameInput is the ordered raw play sequence for one game plus its teams.
type GameInput struct {
	GameID   string    `json:"game_id"`
	Home     Team      `json:"home"`
	Away     Team      `json:"away"`
	Starters Starters  `json:"starters,omitempty"`
	Plays    []RawPlay `json:"plays"`
}

// TeamFor returns the team playing on a side.
func (g *GameInput) TeamFor(side Side) Team {
	if side == SideAway {
		return g.Away
	}
	return g.Home
}

// GameStatus is the processing state of one game.
type GameStatus string

// Game statuses.
const (
	StatusNotStarted         GameStatus = "not_started"
	StatusProcessing         GameStatus = "processing"
	StatusComplete           GameStatus = "complete"
	StatusCompleteWithErrors GameStatus = "complete_with_errors"
	StatusCancelled          GameStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s GameStatus) Terminal() bool {
	return s == StatusComplete || s == StatusCompleteWithErrors || s == StatusCancelled
}
