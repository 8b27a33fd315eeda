package possession

import (
	"cmp"
	"slices"
	"strings"

	"github.com/okian/hoopstate/internal/domain/model"
)

type unit struct {
	side           model.Side
	teamID         string
	key            string
	players        []string
	stints         int
	seconds        float64
	pointsFor      int
	pointsAgainst  int
	offPossessions int
	defPossessions int
}

func (e *Engine) unit(side model.Side, l *model.LineupState) *unit {
	key := side.String() + "/" + l.Key()
	u, ok := e.units[key]
	if !ok {
		u = &unit{side: side, teamID: e.teamID(side), key: l.Key(), players: l.Players}
		e.units[key] = u
	}
	return u
}

func per100(points, possessions int) float64 {
	if possessions == 0 {
		return 0
	}
	return 100 * float64(points) / float64(possessions)
}

func (e *Engine) ratings() []model.LineupRating {
	out := make([]model.LineupRating, 0, len(e.units))
	for _, u := range e.units {
		off := per100(u.pointsFor, u.offPossessions)
		def := per100(u.pointsAgainst, u.defPossessions)
		out = append(out, model.LineupRating{
			TeamID:         u.teamID,
			Side:           u.side,
			Key:            u.key,
			Players:        u.players,
			Stints:         u.stints,
			Seconds:        u.seconds,
			PointsFor:      u.pointsFor,
			PointsAgainst:  u.pointsAgainst,
			OffPossessions: u.offPossessions,
			DefPossessions: u.defPossessions,
			OffRating:      off,
			DefRating:      def,
			NetRating:      off - def,
			PlusMinus:      u.pointsFor - u.pointsAgainst,
			LowConfidence:  u.offPossessions+u.defPossessions < e.minPossessions,
		})
	}
	slices.SortFunc(out, func(a, b model.LineupRating) int {
		return cmp.Or(
			cmp.Compare(a.Side, b.Side),
			-cmp.Compare(a.NetRating, b.NetRating),
			cmp.Compare(a.Key, b.Key),
		)
	})
	return out
}

// Top returns up to n lineups with the best net rating. Low-confidence
// lineups are skipped unless includeLow is set. n <= 0 means no limit.
func Top(ratings []model.LineupRating, n int, includeLow bool) []model.LineupRating {
	return rank(ratings, n, includeLow, func(a, b model.LineupRating) int {
		return cmp.Or(-cmp.Compare(a.NetRating, b.NetRating), -cmp.Compare(a.PlusMinus, b.PlusMinus), cmp.Compare(a.Key, b.Key))
	})
}

// Bottom returns up to n lineups with the worst net rating.
func Bottom(ratings []model.LineupRating, n int, includeLow bool) []model.LineupRating {
	return rank(ratings, n, includeLow, func(a, b model.LineupRating) int {
		return cmp.Or(cmp.Compare(a.NetRating, b.NetRating), cmp.Compare(a.PlusMinus, b.PlusMinus), cmp.Compare(a.Key, b.Key))
	})
}

func rank(ratings []model.LineupRating, n int, includeLow bool, order func(a, b model.LineupRating) int) []model.LineupRating {
	out := make([]model.LineupRating, 0, len(ratings))
	for _, r := range ratings {
		if includeLow || !r.LowConfidence {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, order)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type split struct {
	pf, pa, off, def int
}

func (s split) net() float64 {
	return per100(s.pf, s.off) - per100(s.pa, s.def)
}

// impacts derives each player's on/off split from the lineup ratings of
// their team.
func impacts(ratings []model.LineupRating) []model.PlayerImpact {
	type acc struct {
		impact model.PlayerImpact
		on     split
	}
	var team [2]split
	players := map[string]*acc{}
	var order []string
	for _, r := range ratings {
		i := r.Side.Index()
		team[i].pf += r.PointsFor
		team[i].pa += r.PointsAgainst
		team[i].off += r.OffPossessions
		team[i].def += r.DefPossessions
		for _, p := range r.Players {
			k := r.Side.String() + "/" + p
			a, ok := players[k]
			if !ok {
				a = &acc{impact: model.PlayerImpact{PlayerID: p, TeamID: r.TeamID, Side: r.Side}}
				players[k] = a
				order = append(order, k)
			}
			a.impact.SecondsOn += r.Seconds
			a.impact.PlusMinus += r.PointsFor - r.PointsAgainst
			a.on.pf += r.PointsFor
			a.on.pa += r.PointsAgainst
			a.on.off += r.OffPossessions
			a.on.def += r.DefPossessions
		}
	}
	out := make([]model.PlayerImpact, 0, len(order))
	for _, k := range order {
		a := players[k]
		t := team[a.impact.Side.Index()]
		off := split{pf: t.pf - a.on.pf, pa: t.pa - a.on.pa, off: t.off - a.on.off, def: t.def - a.on.def}
		a.impact.OnNetRating = a.on.net()
		a.impact.OffNetRating = off.net()
		a.impact.OnOff = a.impact.OnNetRating - a.impact.OffNetRating
		out = append(out, a.impact)
	}
	slices.SortFunc(out, func(a, b model.PlayerImpact) int {
		return cmp.Or(cmp.Compare(a.Side, b.Side), strings.Compare(a.PlayerID, b.PlayerID))
	})
	return out
}
