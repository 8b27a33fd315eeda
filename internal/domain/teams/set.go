package teams

import "github.com/okian/hoopstate/internal/domain/model"

// Set is a case-insensitive name set.
type Set map[string]struct{}

// NewSet builds a set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	s.Add(names...)
	return s
}

// Add inserts names.
func (s Set) Add(names ...string) {
	for _, n := range names {
		if k := Normalize(n); k != "" {
			s[k] = struct{}{}
		}
	}
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[Normalize(name)]
	return ok
}

// Matchup resolves team names used in one game's text to a side.
type Matchup struct {
	Home, Away model.Team
	names      map[string]model.Side
}

// NewMatchup indexes the aliases of both teams. An alias shared by both
// teams (e.g. "Los Angeles") resolves to neither.
func NewMatchup(home, away model.Team) *Matchup {
	m := &Matchup{Home: home, Away: away, names: map[string]model.Side{}}
	for _, side := range model.Sides {
		t := home
		if side == model.SideAway {
			t = away
		}
		for _, a := range Aliases(t) {
			k := Normalize(a)
			if prev, ok := m.names[k]; ok && prev != side {
				m.names[k] = model.SideNone
				continue
			}
			m.names[k] = side
		}
	}
	return m
}

// Side returns the side a name refers to and whether it names either team.
// A shared ambiguous alias reports true with SideNone.
func (m *Matchup) Side(name string) (model.Side, bool) {
	s, ok := m.names[Normalize(name)]
	return s, ok
}

// Team returns the team on a side.
func (m *Matchup) Team(side model.Side) model.Team {
	if side == model.SideAway {
		return m.Away
	}
	return m.Home
}

// TeamID returns the id of the team on a side, empty for SideNone.
func (m *Matchup) TeamID(side model.Side) string {
	if side == model.SideNone {
		return ""
	}
	return m.Team(side).ID
}

// SideOfTeamID maps a team id back to its side.
func (m *Matchup) SideOfTeamID(id string) model.Side {
	switch id {
	case "":
		return model.SideNone
	case m.Home.ID:
		return model.SideHome
	case m.Away.ID:
		return model.SideAway
	}
	return model.SideNone
}
