package stats

import (
	"fmt"

	"github.com/okian/hoopstate/internal/domain/model"
)

type rule func(a *Accumulator, ev *model.Event)

// rules maps every event type to its stat deltas. A type without an entry
// fails at init.
var rules = [model.NumEventTypes]rule{
	model.EventUnparsed:        countUnparsed,
	model.EventPeriodStart:     noop,
	model.EventPeriodEnd:       noop,
	model.EventJumpBall:        noop,
	model.EventShotMade:        shotMade,
	model.EventShotMissed:      shotMissed,
	model.EventFreeThrowMade:   freeThrow(true),
	model.EventFreeThrowMissed: freeThrow(false),
	model.EventRebound:         rebound,
	model.EventAssist:          assist,
	model.EventSteal:           steal,
	model.EventBlock:           block,
	model.EventTurnover:        turnover,
	model.EventFoul:            foul,
	model.EventViolation:       noop,
	model.EventSubstitution:    noop,
	model.EventSubstitutionIn:  noop,
	model.EventSubstitutionOut: noop,
	model.EventStartingLineup:  noop,
	model.EventTimeout:         timeout,
	model.EventReview:          noop,
	model.EventEjection:        noop,
}

func init() {
	for t, r := range rules {
		if r == nil {
			panic(fmt.Sprintf("stats: no rule for event type %s", model.EventType(t)))
		}
	}
}

func noop(*Accumulator, *model.Event) {}

func countUnparsed(a *Accumulator, _ *model.Event) { a.unparsed++ }

func shotMade(a *Accumulator, ev *model.Event) {
	three, pts := ev.ShotValue == 3, ev.Points()
	if p := a.player(ev.Primary, ev.Side); p != nil {
		p.Points += pts
		p.FGM++
		p.FGA++
		if three {
			p.FG3M++
			p.FG3A++
		}
	}
	if t := a.team(ev.Side); t != nil {
		t.Points += pts
		t.FGM++
		t.FGA++
		if three {
			t.FG3M++
			t.FG3A++
		}
	}
	if ev.Secondary != "" {
		assist(a, &model.Event{Primary: ev.Secondary, Side: ev.Side})
	}
}

func shotMissed(a *Accumulator, ev *model.Event) {
	attempt(a, ev.Primary, ev.Side, ev.ShotValue == 3)
}

func attempt(a *Accumulator, shooter string, side model.Side, three bool) {
	if p := a.player(shooter, side); p != nil {
		p.FGA++
		if three {
			p.FG3A++
		}
	}
	if t := a.team(side); t != nil {
		t.FGA++
		if three {
			t.FG3A++
		}
	}
}

// block credits the blocker and charges the attempt to the shooter, who
// plays for the other side.
func block(a *Accumulator, ev *model.Event) {
	if p := a.player(ev.Primary, ev.Side); p != nil {
		p.Blocks++
	}
	if t := a.team(ev.Side); t != nil {
		t.Blocks++
	}
	attempt(a, ev.Secondary, ev.Side.Other(), ev.ShotValue == 3)
}

func freeThrow(made bool) rule {
	return func(a *Accumulator, ev *model.Event) {
		if p := a.player(ev.Primary, ev.Side); p != nil {
			p.FTA++
			if made {
				p.FTM++
				p.Points += ev.Points()
			}
		}
		if t := a.team(ev.Side); t != nil {
			t.FTA++
			if made {
				t.FTM++
				t.Points += ev.Points()
			}
		}
	}
}

func rebound(a *Accumulator, ev *model.Event) {
	t := a.team(ev.Side)
	if ev.TeamRebound || ev.Primary == "" {
		if t != nil {
			t.TeamRebounds++
		}
		return
	}
	p := a.player(ev.Primary, ev.Side)
	p.Rebounds++
	switch ev.Rebound {
	case model.ReboundOffensive:
		p.OffRebounds++
	case model.ReboundDefensive:
		p.DefRebounds++
	}
	if t == nil {
		return
	}
	t.Rebounds++
	switch ev.Rebound {
	case model.ReboundOffensive:
		t.OffRebounds++
	case model.ReboundDefensive:
		t.DefRebounds++
	}
}

func assist(a *Accumulator, ev *model.Event) {
	if p := a.player(ev.Primary, ev.Side); p != nil {
		p.Assists++
	}
	if t := a.team(ev.Side); t != nil {
		t.Assists++
	}
}

func steal(a *Accumulator, ev *model.Event) {
	if p := a.player(ev.Primary, ev.Side); p != nil {
		p.Steals++
	}
	if t := a.team(ev.Side); t != nil {
		t.Steals++
	}
}

// turnover charges the ball handler, or the team when none is named, and
// credits a steal to the secondary player on the other side.
func turnover(a *Accumulator, ev *model.Event) {
	if p := a.player(ev.Primary, ev.Side); p != nil {
		p.Turnovers++
	}
	if t := a.team(ev.Side); t != nil {
		t.Turnovers++
		if ev.Primary == "" {
			t.TeamTurnovers++
		}
	}
	if ev.Secondary != "" {
		steal(a, &model.Event{Primary: ev.Secondary, Side: ev.Side.Other()})
	}
}

// foul counts technicals apart from personal fouls.
func foul(a *Accumulator, ev *model.Event) {
	technical := ev.Foul.Technical()
	p := a.player(ev.Primary, ev.Side)
	t := a.team(ev.Side)
	if technical {
		if p != nil {
			p.Technicals++
		}
		if t != nil {
			t.Technicals++
		}
		return
	}
	if p != nil {
		p.Fouls++
	}
	if t != nil {
		t.Fouls++
	}
}

func timeout(a *Accumulator, ev *model.Event) {
	if t := a.team(ev.Side); t != nil {
		t.Timeouts++
	}
}
