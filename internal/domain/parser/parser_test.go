package parser_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/domain/parser"
	"github.com/okian/hoopstate/internal/domain/teams"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	wizards   = model.Team{ID: "WAS", Name: "Washington Wizards", Abbreviation: "WAS"}
	grizzlies = model.Team{ID: "MEM", Name: "Memphis Grizzlies", Abbreviation: "MEM"}
)

func roster() map[string]model.Side {
	return map[string]model.Side{
		"Bradley Beal":  model.SideHome,
		"John Wall":     model.SideHome,
		"Marcin Gortat": model.SideHome,
		"Marc Gasol":    model.SideAway,
		"Mike Conley":   model.SideAway,
		"Tony Allen":    model.SideAway,
	}
}

func newContext() parser.Context {
	r := roster()
	return parser.Context{
		Matchup: teams.NewMatchup(wizards, grizzlies),
		TeamOf:  func(p string) model.Side { return r[p] },
	}
}

func play(text string) model.RawPlay {
	return model.RawPlay{GameID: "g1", EventNum: 7, Period: 1, Clock: "10:00", Text: text}
}

func TestParseTeamNames(t *testing.T) {
	Convey("Given a Wizards home game", t, func() {
		p := parser.New()
		ctx := newContext()

		Convey("A team rebound names the team, not a player", func() {
			ev := p.Parse(play("Washington defensive team rebound."), ctx)

			So(ev.Type, ShouldEqual, model.EventRebound)
			So(ev.TeamRebound, ShouldBeTrue)
			So(ev.Rebound, ShouldEqual, model.ReboundDefensive)
			So(ev.TeamID, ShouldEqual, "WAS")
			So(ev.Side, ShouldEqual, model.SideHome)
			So(ev.Primary, ShouldBeEmpty)
		})

		Convey("A box-style team rebound requires a team name", func() {
			ev := p.Parse(play("Grizzlies Rebound"), ctx)
			So(ev.Type, ShouldEqual, model.EventRebound)
			So(ev.Rule, ShouldEqual, "team_rebound_box")
			So(ev.Side, ShouldEqual, model.SideAway)
			So(ev.Primary, ShouldBeEmpty)
		})

		Convey("A team from another game is still never a player", func() {
			ev := p.Parse(play("Lakers offensive rebound"), ctx)
			So(ev.Type, ShouldEqual, model.EventRebound)
			So(ev.Primary, ShouldBeEmpty)
			So(ev.TeamRebound, ShouldBeTrue)
			So(ev.Side, ShouldEqual, model.SideNone)
		})

		Convey("A team turnover resolves the side", func() {
			ev := p.Parse(play("Memphis turnover"), ctx)
			So(ev.Type, ShouldEqual, model.EventTurnover)
			So(ev.Primary, ShouldBeEmpty)
			So(ev.Side, ShouldEqual, model.SideAway)
		})

		Convey("Configured exclusions replace the defaults", func() {
			custom := parser.New(parser.WithExclusions([]string{"Ghost"}))
			ev := custom.Parse(play("Ghost steals"), ctx)
			So(ev.Type, ShouldEqual, model.EventSteal)
			So(ev.Primary, ShouldBeEmpty)
		})
	})
}

func TestParseNarrative(t *testing.T) {
	Convey("Given narrative play text", t, func() {
		p := parser.New()
		ctx := newContext()

		Convey("A made three with an assist", func() {
			raw := play("Bradley Beal makes 26-foot three point jumper (John Wall assists)")
			raw.ScoreHome, raw.ScoreAway = "3", "0"
			ev := p.Parse(raw, ctx)

			So(ev.Type, ShouldEqual, model.EventShotMade)
			So(ev.ShotValue, ShouldEqual, 3)
			So(ev.Primary, ShouldEqual, "Bradley Beal")
			So(ev.Secondary, ShouldEqual, "John Wall")
			So(ev.Side, ShouldEqual, model.SideHome)
			So(ev.ScoreHome, ShouldEqual, 3)
			So(ev.Points(), ShouldEqual, 3)
		})

		Convey("A made two credits the side whose score rose", func() {
			raw := play("Zach Randolph makes 4-foot hook shot")
			raw.ScoreHome, raw.ScoreAway = "0", "2"
			ev := p.Parse(raw, ctx)
			So(ev.ShotValue, ShouldEqual, 2)
			So(ev.Side, ShouldEqual, model.SideAway)
			So(ev.TeamID, ShouldEqual, "MEM")
		})

		Convey("A substitution pair", func() {
			ev := p.Parse(play("Tony Allen enters the game for Mike Conley"), ctx)
			So(ev.Type, ShouldEqual, model.EventSubstitution)
			So(ev.Primary, ShouldEqual, "Tony Allen")
			So(ev.Secondary, ShouldEqual, "Mike Conley")
			So(ev.Side, ShouldEqual, model.SideAway)
		})

		Convey("Single substitution records", func() {
			So(p.Parse(play("Otto Porter enters the game"), ctx).Type, ShouldEqual, model.EventSubstitutionIn)
			So(p.Parse(play("Marc Gasol exits the game."), ctx).Type, ShouldEqual, model.EventSubstitutionOut)
		})

		Convey("Free throws carry their trip position", func() {
			ev := p.Parse(play("Marc Gasol makes free throw 2 of 2"), ctx)
			So(ev.Type, ShouldEqual, model.EventFreeThrowMade)
			So(ev.FreeThrow.N, ShouldEqual, 2)
			So(ev.FreeThrow.Of, ShouldEqual, 2)
			So(ev.FreeThrow.LastOfTrip(), ShouldBeTrue)

			ev = p.Parse(play("John Wall misses technical free throw"), ctx)
			So(ev.Type, ShouldEqual, model.EventFreeThrowMissed)
			So(ev.FreeThrow.Technical, ShouldBeTrue)
			So(ev.FreeThrow.LastOfTrip(), ShouldBeFalse)
		})

		Convey("A block names blocker and shooter", func() {
			ev := p.Parse(play("Marcin Gortat blocks Mike Conley 's 2-foot layup"), ctx)
			So(ev.Type, ShouldEqual, model.EventBlock)
			So(ev.Primary, ShouldEqual, "Marcin Gortat")
			So(ev.Secondary, ShouldEqual, "Mike Conley")
			So(ev.Side, ShouldEqual, model.SideHome)
		})

		Convey("A turnover with a steal", func() {
			ev := p.Parse(play("John Wall bad pass (Tony Allen steals)"), ctx)
			So(ev.Type, ShouldEqual, model.EventTurnover)
			So(ev.Turnover, ShouldEqual, "bad_pass")
			So(ev.Secondary, ShouldEqual, "Tony Allen")
		})

		Convey("A shot clock turnover normalizes its kind", func() {
			ev := p.Parse(play("Bradley Beal 24-second turnover"), ctx)
			So(ev.Turnover, ShouldEqual, "shot_clock")
		})

		Convey("A shooting foul with the fouled player", func() {
			ev := p.Parse(play("Zach Randolph shooting foul (Bradley Beal draws the foul)"), ctx)
			So(ev.Type, ShouldEqual, model.EventFoul)
			So(ev.Foul, ShouldEqual, model.FoulShooting)
			So(ev.Primary, ShouldEqual, "Zach Randolph")
			So(ev.Secondary, ShouldEqual, "Bradley Beal")
		})

		Convey("Flagrant fouls keep their type", func() {
			ev := p.Parse(play("Tony Allen flagrant foul type 2"), ctx)
			So(ev.Foul, ShouldEqual, model.FoulFlagrant2)
		})

		Convey("Violations", func() {
			ev := p.Parse(play("Marc Gasol kicked ball violation"), ctx)
			So(ev.Type, ShouldEqual, model.EventViolation)
			So(ev.Violation, ShouldEqual, "kicked_ball")

			ev = p.Parse(play("Marcin Gortat defensive 3-seconds (technical foul)"), ctx)
			So(ev.Type, ShouldEqual, model.EventViolation)
			So(ev.Violation, ShouldEqual, "defensive_three_second")
		})

		Convey("A jump ball records who gained possession", func() {
			ev := p.Parse(play("Jump ball: Marcin Gortat vs. Marc Gasol (Mike Conley gains possession)"), ctx)
			So(ev.Type, ShouldEqual, model.EventJumpBall)
			So(ev.Players, ShouldResemble, []string{"Mike Conley"})
			So(ev.Side, ShouldEqual, model.SideAway)
		})

		Convey("Timeouts, reviews and period boundaries", func() {
			ev := p.Parse(play("Wizards Full timeout"), ctx)
			So(ev.Type, ShouldEqual, model.EventTimeout)
			So(ev.Side, ShouldEqual, model.SideHome)

			So(p.Parse(play("Official timeout"), ctx).Side, ShouldEqual, model.SideNone)
			So(p.Parse(play("Instant replay review: call stands"), ctx).Type, ShouldEqual, model.EventReview)
			So(p.Parse(play("Start of the 2nd Quarter"), ctx).Type, ShouldEqual, model.EventPeriodStart)
			So(p.Parse(play("End of the 4th Quarter"), ctx).Type, ShouldEqual, model.EventPeriodEnd)
			So(p.Parse(play("End of Game"), ctx).Type, ShouldEqual, model.EventPeriodEnd)
		})

		Convey("A starting lineup record lists five players", func() {
			ev := p.Parse(play("Starting lineup: Mike Conley, Tony Allen, Marc Gasol, Zach Randolph and Courtney Lee"), ctx)
			So(ev.Type, ShouldEqual, model.EventStartingLineup)
			So(ev.Players, ShouldHaveLength, 5)
			So(ev.Side, ShouldEqual, model.SideAway)
		})

		Convey("A standalone assist", func() {
			ev := p.Parse(play("John Wall assists"), ctx)
			So(ev.Type, ShouldEqual, model.EventAssist)
			So(ev.Primary, ShouldEqual, "John Wall")
		})
	})
}

func TestParseBoxScoreDialect(t *testing.T) {
	Convey("Given box-score style text", t, func() {
		p := parser.New()
		ctx := newContext()

		Convey("A missed three", func() {
			ev := p.Parse(play("MISS Bradley Beal 26' 3PT Jump Shot"), ctx)
			So(ev.Type, ShouldEqual, model.EventShotMissed)
			So(ev.ShotValue, ShouldEqual, 3)
			So(ev.Primary, ShouldEqual, "Bradley Beal")
		})

		Convey("A made layup with an assist", func() {
			ev := p.Parse(play("Mike Conley Driving Layup (12 PTS) (Marc Gasol 4 AST)"), ctx)
			So(ev.Type, ShouldEqual, model.EventShotMade)
			So(ev.ShotValue, ShouldEqual, 2)
			So(ev.Primary, ShouldEqual, "Mike Conley")
			So(ev.Secondary, ShouldEqual, "Marc Gasol")
		})

		Convey("A blocked shot", func() {
			ev := p.Parse(play("MISS Mike Conley 2' Layup  Marcin Gortat BLOCK (2 BLK)"), ctx)
			So(ev.Type, ShouldEqual, model.EventBlock)
			So(ev.Primary, ShouldEqual, "Marcin Gortat")
			So(ev.Secondary, ShouldEqual, "Mike Conley")
		})

		Convey("Free throws", func() {
			ev := p.Parse(play("Marc Gasol Free Throw 1 of 2 (9 PTS)"), ctx)
			So(ev.Type, ShouldEqual, model.EventFreeThrowMade)
			So(ev.FreeThrow.N, ShouldEqual, 1)

			ev = p.Parse(play("MISS Marc Gasol Free Throw 2 of 2"), ctx)
			So(ev.Type, ShouldEqual, model.EventFreeThrowMissed)
		})

		Convey("Substitutions and fouls", func() {
			ev := p.Parse(play("SUB: Tony Allen FOR Mike Conley"), ctx)
			So(ev.Type, ShouldEqual, model.EventSubstitution)
			So(ev.Primary, ShouldEqual, "Tony Allen")

			ev = p.Parse(play("Tony Allen P.FOUL (P1.T2) (J.Goble)"), ctx)
			So(ev.Type, ShouldEqual, model.EventFoul)
			So(ev.Foul, ShouldEqual, model.FoulPersonal)
		})

		Convey("Turnovers with steals", func() {
			ev := p.Parse(play("John Wall Bad Pass Turnover (P1.T1) Tony Allen STEAL (1 STL)"), ctx)
			So(ev.Type, ShouldEqual, model.EventTurnover)
			So(ev.Turnover, ShouldEqual, "bad_pass")
			So(ev.Secondary, ShouldEqual, "Tony Allen")
		})

		Convey("An unlabeled rebound is classified against the last miss", func() {
			ctx.LastMiss = model.SideHome
			ev := p.Parse(play("Marc Gasol REBOUND (Off:0 Def:3)"), ctx)
			So(ev.Type, ShouldEqual, model.EventRebound)
			So(ev.Rebound, ShouldEqual, model.ReboundDefensive)

			ev = p.Parse(play("Marcin Gortat REBOUND (Off:1 Def:0)"), ctx)
			So(ev.Rebound, ShouldEqual, model.ReboundOffensive)
		})
	})
}

func TestParseFailures(t *testing.T) {
	Convey("Given records the parser cannot read", t, func() {
		p := parser.New()
		ctx := newContext()
		ctx.PrevHome, ctx.PrevAway = 10, 8
		ctx.PrevClock = 5 * time.Minute

		Convey("Unknown text becomes unparsed and keeps its raw text", func() {
			ev := p.Parse(play("Something weird happened"), ctx)
			So(ev.Type, ShouldEqual, model.EventUnparsed)
			So(ev.Unparsed, ShouldEqual, model.ReasonNoMatch)
			So(ev.RawText, ShouldEqual, "Something weird happened")
			So(ev.EventNum, ShouldEqual, 7)
		})

		Convey("A garbage score demotes the record", func() {
			raw := play("Bradley Beal makes 2-foot layup")
			raw.ScoreHome = "12a"
			ev := p.Parse(raw, ctx)
			So(ev.Type, ShouldEqual, model.EventUnparsed)
			So(ev.Unparsed, ShouldEqual, model.ReasonBadScore)
			So(ev.ScoreHome, ShouldEqual, 10)
		})

		Convey("A negative clock demotes the record", func() {
			raw := play("Bradley Beal makes 2-foot layup")
			raw.Clock = "-0:03"
			ev := p.Parse(raw, ctx)
			So(ev.Unparsed, ShouldEqual, model.ReasonBadClock)
			So(ev.Clock, ShouldEqual, 5*time.Minute)
		})

		Convey("Empty fields carry the previous values", func() {
			raw := play("Official timeout")
			raw.Clock = ""
			ev := p.Parse(raw, ctx)
			So(ev.Clock, ShouldEqual, 5*time.Minute)
			So(ev.ScoreHome, ShouldEqual, 10)
			So(ev.ScoreAway, ShouldEqual, 8)
		})

		Convey("A panicking lookup never escapes", func() {
			ctx.TeamOf = func(string) model.Side { panic("boom") }
			var ev model.Event
			So(func() { ev = p.Parse(play("Bradley Beal misses 3-foot layup"), ctx) }, ShouldNotPanic)
			So(ev.Type, ShouldEqual, model.EventUnparsed)
			So(ev.Unparsed, ShouldEqual, model.ReasonPanic)
		})
	})
}

func TestParseClock(t *testing.T) {
	Convey("Given clock strings in the known formats", t, func() {
		cases := map[string]time.Duration{
			"12:34":       12*time.Minute + 34*time.Second,
			"0:45.2":      45*time.Second + 200*time.Millisecond,
			"45.2":        45*time.Second + 200*time.Millisecond,
			"734":         734 * time.Second,
			"PT11M34.00S": 11*time.Minute + 34*time.Second,
			"PT00M05.50S": 5*time.Second + 500*time.Millisecond,
		}
		for in, want := range cases {
			d, ok, err := parser.ParseClock(in)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, want)
		}

		Convey("Malformed clocks are rejected", func() {
			for _, in := range []string{"-1:00", "ab:cd", "3601", "12:75", "PT"} {
				_, _, err := parser.ParseClock(in)
				So(errors.Is(err, parser.ErrBadClock), ShouldBeTrue)
			}
		})

		Convey("An empty clock is absent, not invalid", func() {
			_, ok, err := parser.ParseClock(" ")
			So(ok, ShouldBeFalse)
			So(err, ShouldBeNil)
		})
	})
}
