package model

import "time"

// PossessionEnd names the event that closed a possession.
type PossessionEnd string

// Possession end reasons.
const (
	EndMadeShot      PossessionEnd = "made_shot"
	EndMadeFreeThrow PossessionEnd = "made_free_throw"
	EndDefRebound    PossessionEnd = "defensive_rebound"
	EndTurnover      PossessionEnd = "turnover"
	EndPeriod        PossessionEnd = "period_end"
	EndImplicit      PossessionEnd = "implicit"
	EndGame          PossessionEnd = "game_end"
)

// Possession is a contiguous span of events during which one team has the ball.
type Possession struct {
	ID            string        `json:"possession_id"`
	Ordinal       int           `json:"ordinal"`
	TeamID        string        `json:"team_id,omitempty"`
	Side          Side          `json:"side,omitempty"`
	Period        int           `json:"period"`
	StartEventNum int           `json:"start_event_num"`
	EndEventNum   int           `json:"end_event_num"`
	EndReason     PossessionEnd `json:"end_reason"`
	PointsScored  int           `json:"points_scored"`
}

// Stint is a contiguous interval with one five-player unit on court for a team.
type Stint struct {
	TeamID          string        `json:"team_id"`
	Side            Side          `json:"side"`
	Players         []string      `json:"players"`
	Period          int           `json:"period"`
	StartEventNum   int           `json:"start_event_num"`
	EndEventNum     int           `json:"end_event_num"`
	StartClock      time.Duration `json:"start_clock"`
	EndClock        time.Duration `json:"end_clock"`
	DurationSeconds float64       `json:"duration_seconds"`
	PointsFor       int           `json:"points_for"`
	PointsAgainst   int           `json:"points_against"`
	PlusMinus       int           `json:"plus_minus"`
}

// LineupRating aggregates a five-player unit's performance over a game.
type LineupRating struct {
	TeamID         string   `json:"team_id"`
	Side           Side     `json:"side"`
	Key            string   `json:"key"`
	Players        []string `json:"players"`
	Stints         int      `json:"stints"`
	Seconds        float64  `json:"seconds"`
	PointsFor      int      `json:"points_for"`
	PointsAgainst  int      `json:"points_against"`
	OffPossessions int      `json:"off_possessions"`
	DefPossessions int      `json:"def_possessions"`
	OffRating      float64  `json:"off_rating"`
	DefRating      float64  `json:"def_rating"`
	NetRating      float64  `json:"net_rating"`
	PlusMinus      int      `json:"plus_minus"`
	LowConfidence  bool     `json:"low_confidence"`
}

// PlayerImpact is a player's on/off split for one game.
type PlayerImpact struct {
	PlayerID     string  `json:"player_id"`
	TeamID       string  `json:"team_id"`
	Side         Side    `json:"side"`
	SecondsOn    float64 `json:"seconds_on"`
	PlusMinus    int     `json:"plus_minus"`
	OnNetRating  float64 `json:"on_net_rating"`
	OffNetRating float64 `json:"off_net_rating"`
	OnOff        float64 `json:"on_off"`
}
