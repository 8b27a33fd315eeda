// Package snapshot composes immutable per-event views of game state.
package snapshot

import (
	"time"

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/domain/stats"
)

// Snapshot is the full game state after one event. Lineups and the stat
// table are shared with the producing components, which never modify a
// value once it has been handed out.
type Snapshot struct {
	EventNum   int                `json:"event_num"`
	Period     int                `json:"period"`
	Clock      time.Duration      `json:"clock"`
	ClockText  string             `json:"clock_text"`
	Type       model.EventType    `json:"event_type"`
	ScoreHome  int                `json:"score_home"`
	ScoreAway  int                `json:"score_away"`
	LineupHome *model.LineupState `json:"lineup_home"`
	LineupAway *model.LineupState `json:"lineup_away"`
	Stats      *stats.Table       `json:"stats"`
}

// New composes a snapshot without copying its inputs.
func New(ev model.Event, home, away *model.LineupState, table *stats.Table) *Snapshot {
	return &Snapshot{
		EventNum:   ev.EventNum,
		Period:     ev.Period,
		Clock:      ev.Clock,
		ClockText:  model.FormatClock(ev.Clock),
		Type:       ev.Type,
		ScoreHome:  ev.ScoreHome,
		ScoreAway:  ev.ScoreAway,
		LineupHome: home,
		LineupAway: away,
		Stats:      table,
	}
}

// Player returns one player's stats as of this snapshot.
func (s *Snapshot) Player(id string) (model.PlayerGameStats, bool) {
	return s.Stats.Player(id)
}

// Team returns one side's totals as of this snapshot.
func (s *Snapshot) Team(side model.Side) model.TeamGameStats {
	return s.Stats.Team(side)
}

// Margin returns the home score minus the away score.
func (s *Snapshot) Margin() int { return s.ScoreHome - s.ScoreAway }
