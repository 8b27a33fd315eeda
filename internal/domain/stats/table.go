// Package stats accumulates per-player and per-team counting stats from a
// game's event stream.
package stats

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/okian/hoopstate/internal/domain/model"
)

// Table is an immutable view of cumulative stats after one event. Tables
// share unchanged records with their predecessors; a record touched by an
// event is copied before it is modified, so a table handed out is never
// altered by later events.
type Table struct {
	index   map[string]int
	players []*model.PlayerGameStats
	teams   [2]*model.TeamGameStats
}

func newTable(home, away model.Team) *Table {
	return &Table{
		index: map[string]int{},
		teams: [2]*model.TeamGameStats{
			{TeamID: home.ID, Side: model.SideHome},
			{TeamID: away.ID, Side: model.SideAway},
		},
	}
}

// Len returns the number of players with a record.
func (t *Table) Len() int { return len(t.players) }

// Player returns a copy of a player's stats.
func (t *Table) Player(id string) (model.PlayerGameStats, bool) {
	i, ok := t.index[id]
	if !ok {
		return model.PlayerGameStats{}, false
	}
	return *t.players[i], true
}

// Players returns copies of all player records ordered by side, then id.
func (t *Table) Players() []model.PlayerGameStats {
	out := make([]model.PlayerGameStats, len(t.players))
	for i, p := range t.players {
		out[i] = *p
	}
	slices.SortFunc(out, comparePlayers)
	return out
}

// Team returns a copy of one side's totals.
func (t *Table) Team(side model.Side) model.TeamGameStats {
	return *t.teams[side.Index()]
}

func comparePlayers(a, b model.PlayerGameStats) int {
	if a.Side != b.Side {
		// unattributed players sort last
		return sideOrder(a.Side) - sideOrder(b.Side)
	}
	return strings.Compare(a.PlayerID, b.PlayerID)
}

func sideOrder(s model.Side) int {
	if s == model.SideNone {
		return 3
	}
	return int(s)
}

type tableJSON struct {
	Players []model.PlayerGameStats `json:"players"`
	Home    model.TeamGameStats     `json:"home"`
	Away    model.TeamGameStats     `json:"away"`
}

// MarshalJSON renders players in a fixed order so equal tables encode to
// equal bytes.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(tableJSON{
		Players: t.Players(),
		Home:    t.Team(model.SideHome),
		Away:    t.Team(model.SideAway),
	})
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
