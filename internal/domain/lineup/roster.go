package lineup

import "github.com/okian/hoopstate/internal/domain/model"

// Roster remembers which side each player has been attributed to. The first
// attribution wins so a mislabelled record cannot move a player.
type Roster struct {
	sides map[string]model.Side
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{sides: make(map[string]model.Side)}
}

// Learn attributes a player to a side unless already known.
func (r *Roster) Learn(player string, side model.Side) {
	if player == "" || side == model.SideNone {
		return
	}
	if _, ok := r.sides[player]; !ok {
		r.sides[player] = side
	}
}

// LearnStarters attributes explicit starters.
func (r *Roster) LearnStarters(s model.Starters) {
	for _, side := range model.Sides {
		for _, p := range s.For(side) {
			r.Learn(p, side)
		}
	}
}

// Side returns the side a player is attributed to, SideNone when unknown.
func (r *Roster) Side(player string) model.Side {
	return r.sides[player]
}

// Len returns the number of attributed players.
func (r *Roster) Len() int { return len(r.sides) }

// Observe learns from a resolved event: the acting player belongs to the
// event's side, and counterparts are placed by the event's semantics.
func (r *Roster) Observe(ev model.Event) {
	side := ev.Side
	if side == model.SideNone {
		return
	}
	switch ev.Type {
	case model.EventStartingLineup:
		for _, p := range ev.Players {
			r.Learn(p, side)
		}
	case model.EventSubstitution, model.EventShotMade:
		r.Learn(ev.Primary, side)
		r.Learn(ev.Secondary, side)
	case model.EventJumpBall:
		if len(ev.Players) > 0 {
			r.Learn(ev.Players[0], side)
		}
	case model.EventTurnover, model.EventSteal, model.EventBlock, model.EventFoul:
		r.Learn(ev.Primary, side)
		r.Learn(ev.Secondary, side.Other())
	default:
		r.Learn(ev.Primary, side)
	}
}
