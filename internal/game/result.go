package game

import (
	"cmp"
	"slices"
	"time"

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/domain/snapshot"
)

// Result is the artifact of one processed game. Possessions, stints,
// ratings and impacts are empty when the integrity check failed.
type Result struct {
	GameID          string                  `json:"game_id"`
	Status          model.GameStatus        `json:"status"`
	Home            model.Team              `json:"home"`
	Away            model.Team              `json:"away"`
	ScoreHome       int                     `json:"score_home"`
	ScoreAway       int                     `json:"score_away"`
	LineupHome      *model.LineupState      `json:"lineup_home"`
	LineupAway      *model.LineupState      `json:"lineup_away"`
	Players         []model.PlayerGameStats `json:"players"`
	TeamHome        model.TeamGameStats     `json:"team_home"`
	TeamAway        model.TeamGameStats     `json:"team_away"`
	Events          []model.Event           `json:"events"`
	Possessions     []model.Possession      `json:"possessions"`
	StintsHome      []model.Stint           `json:"stints_home"`
	StintsAway      []model.Stint           `json:"stints_away"`
	LineupRatings   []model.LineupRating    `json:"lineup_ratings"`
	PlayerImpacts   []model.PlayerImpact    `json:"player_impacts"`
	Snapshots       []*snapshot.Snapshot    `json:"snapshots"`
	Diagnostics     model.Diagnostics       `json:"diagnostics"`
	ProcessedAt     time.Time               `json:"processed_at"`
	Duration        time.Duration           `json:"duration"`
	DerivedWithheld bool                    `json:"derived_withheld,omitempty"`
}

// Summary is the list view of a result.
type Summary struct {
	GameID      string           `json:"game_id"`
	Status      model.GameStatus `json:"status"`
	Home        string           `json:"home"`
	Away        string           `json:"away"`
	ScoreHome   int              `json:"score_home"`
	ScoreAway   int              `json:"score_away"`
	Events      int              `json:"events"`
	Unparsed    int              `json:"unparsed"`
	ProcessedAt time.Time        `json:"processed_at"`
}

// Summarize returns the list view of r.
func (r *Result) Summarize() Summary {
	return Summary{
		GameID:      r.GameID,
		Status:      r.Status,
		Home:        r.Home.ID,
		Away:        r.Away.ID,
		ScoreHome:   r.ScoreHome,
		ScoreAway:   r.ScoreAway,
		Events:      len(r.Events),
		Unparsed:    r.Diagnostics.UnparsedEvents,
		ProcessedAt: r.ProcessedAt,
	}
}

// Stints returns the stints of one side.
func (r *Result) Stints(side model.Side) []model.Stint {
	if side == model.SideAway {
		return r.StintsAway
	}
	return r.StintsHome
}

// Snapshot returns the snapshot taken after eventNum.
func (r *Result) Snapshot(eventNum int) (*snapshot.Snapshot, bool) {
	i, ok := slices.BinarySearchFunc(r.Snapshots, eventNum, func(s *snapshot.Snapshot, n int) int {
		return cmp.Compare(s.EventNum, n)
	})
	if !ok {
		return nil, false
	}
	return r.Snapshots[i], true
}

// CancelledResult is the record kept for a game whose processing was
// cancelled. It carries no derived data.
func CancelledResult(in *model.GameInput, at time.Time) *Result {
	return &Result{
		GameID:      in.GameID,
		Status:      model.StatusCancelled,
		Home:        in.Home,
		Away:        in.Away,
		Diagnostics: model.Diagnostics{TotalEvents: len(in.Plays)},
		ProcessedAt: at.UTC(),
	}
}
