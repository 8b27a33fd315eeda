// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// EventType tags the variant carried by an Event. The set is closed: every
// consumer that switches on it is expected to handle all members.
type EventType uint8

// Event types.
const (
	EventUnparsed EventType = iota
	EventPeriodStart
	EventPeriodEnd
	EventJumpBall
	EventShotMade
	EventShotMissed
	EventFreeThrowMade
	EventFreeThrowMissed
	EventRebound
	EventAssist
	EventSteal
	EventBlock
	EventTurnover
	EventFoul
	EventViolation
	EventSubstitution
	EventSubstitutionIn
	EventSubstitutionOut
	EventStartingLineup
	EventTimeout
	EventReview
	EventEjection

	// NumEventTypes is the number of event types; keep it last.
	NumEventTypes
)

var eventTypeNames = [NumEventTypes]string{
	EventUnparsed:        "unparsed",
	EventPeriodStart:     "period_start",
	EventPeriodEnd:       "period_end",
	EventJumpBall:        "jump_ball",
	EventShotMade:        "shot_made",
	EventShotMissed:      "shot_missed",
	EventFreeThrowMade:   "free_throw_made",
	EventFreeThrowMissed: "free_throw_missed",
	EventRebound:         "rebound",
	EventAssist:          "assist",
	EventSteal:           "steal",
	EventBlock:           "block",
	EventTurnover:        "turnover",
	EventFoul:            "foul",
	EventViolation:       "violation",
	EventSubstitution:    "substitution",
	EventSubstitutionIn:  "substitution_in",
	EventSubstitutionOut: "substitution_out",
	EventStartingLineup:  "starting_lineup",
	EventTimeout:         "timeout",
	EventReview:          "review",
	EventEjection:        "ejection",
}

// String returns the wire name of the event type.
func (t EventType) String() string {
	if t < NumEventTypes {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("event_type(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) {
	if t >= NumEventTypes {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEventType, uint8(t))
	}
	return []byte(eventTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EventType) UnmarshalText(b []byte) error {
	s := string(b)
	for i, name := range eventTypeNames {
		if name == s {
			*t = EventType(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownEventType, s)
}

// IsSubstitution reports whether the type changes lineup membership.
func (t EventType) IsSubstitution() bool {
	return t == EventSubstitution || t == EventSubstitutionIn || t == EventSubstitutionOut
}

// ReboundKind distinguishes offensive from defensive rebounds.
type ReboundKind string

// Rebound kinds.
const (
	ReboundUnknown   ReboundKind = ""
	ReboundOffensive ReboundKind = "offensive"
	ReboundDefensive ReboundKind = "defensive"
)

// UnparsedReason explains why a record was demoted to EventUnparsed.
type UnparsedReason string

// Unparsed reasons.
const (
	ReasonNone     UnparsedReason = ""
	ReasonNoMatch  UnparsedReason = "no_match"
	ReasonBadClock UnparsedReason = "bad_clock"
	ReasonBadScore UnparsedReason = "bad_score"
	ReasonPanic    UnparsedReason = "parser_panic"
)

// FreeThrow describes a free-throw attempt inside its trip.
type FreeThrow struct {
	N         int  `json:"n,omitempty"`
	Of        int  `json:"of,omitempty"`
	Technical bool `json:"technical,omitempty"`
	Flagrant  bool `json:"flagrant,omitempty"`
}

// LastOfTrip reports whether the attempt ends its trip to the line. Technical
// free throws never end a possession and report false.
func (f FreeThrow) LastOfTrip() bool {
	if f.Technical {
		return false
	}
	if f.Of == 0 {
		return true
	}
	return f.N >= f.Of
}

// Event is one discrete in-game occurrence. Events are created once by the
// parser and never mutated afterwards.
type Event struct {
	GameID    string        `json:"game_id"`
	EventNum  int           `json:"event_num"`
	Period    int           `json:"period"`
	Clock     time.Duration `json:"clock"`
	Type      EventType     `json:"event_type"`
	TeamID    string        `json:"team_id,omitempty"`
	Side      Side          `json:"side,omitempty"`
	Primary   string        `json:"primary_player_id,omitempty"`
	Secondary string        `json:"secondary_player_id,omitempty"`
	ScoreHome int           `json:"score_home"`
	ScoreAway int           `json:"score_away"`
	RawText   string        `json:"raw_text"`

	ShotValue   int         `json:"shot_value,omitempty"`
	Rebound     ReboundKind `json:"rebound,omitempty"`
	TeamRebound bool        `json:"team_rebound,omitempty"`
	Turnover    string      `json:"turnover,omitempty"`
	Foul        FoulKind    `json:"foul,omitempty"`
	Violation   string      `json:"violation,omitempty"`
	FreeThrow   FreeThrow   `json:"free_throw,omitempty"`
	Players     []string    `json:"players,omitempty"`

	Rule     string         `json:"parse_rule,omitempty"`
	Unparsed UnparsedReason `json:"unparsed_reason,omitempty"`
}

// Parsed reports whether the record matched a catalog pattern.
func (e *Event) Parsed() bool { return e.Type != EventUnparsed }

// Points returns the points the event itself is worth to its team.
func (e *Event) Points() int {
	switch e.Type {
	case EventShotMade:
		return e.ShotValue
	case EventFreeThrowMade:
		return 1
	default:
		return 0
	}
}

// FoulKind classifies fouls.
type FoulKind string

// Foul kinds.
const (
	FoulPersonal   FoulKind = "personal"
	FoulShooting   FoulKind = "shooting"
	FoulOffensive  FoulKind = "offensive"
	FoulLooseBall  FoulKind = "loose_ball"
	FoulTake       FoulKind = "take"
	FoulAwayFromPl FoulKind = "away_from_play"
	FoulClearPath  FoulKind = "clear_path"
	FoulTechnical  FoulKind = "technical"
	FoulFlagrant1  FoulKind = "flagrant_1"
	FoulFlagrant2  FoulKind = "flagrant_2"
)

// Technical reports whether the foul counts toward a player's technicals.
func (k FoulKind) Technical() bool { return k == FoulTechnical }

// FormatClock renders a period clock as M:SS or S.T under one minute.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		tenths := int(d / (100 * time.Millisecond))
		return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
