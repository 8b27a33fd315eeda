package game_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/game"
	"github.com/okian/hoopstate/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestProcessGeneratedGame(t *testing.T) {
	Convey("Given a generated game of 436 records", t, func() {
		in := generatedGame()
		So(in.Plays, ShouldHaveLength, 436)

		p := game.NewProcessor()
		res, err := p.Process(context.Background(), in)
		So(err, ShouldBeNil)

		Convey("Every record yields exactly one event and one snapshot", func() {
			So(res.Events, ShouldHaveLength, 436)
			So(res.Snapshots, ShouldHaveLength, 436)
			So(res.Diagnostics.TotalEvents, ShouldEqual, 436)
			So(res.Diagnostics.UnparsedEvents, ShouldEqual, 0)
			So(res.Diagnostics.CoveragePct, ShouldEqual, 100.0)
		})

		Convey("Both final lineups hold five players and nothing was rejected", func() {
			So(res.LineupHome.Players, ShouldHaveLength, 5)
			So(res.LineupAway.Players, ShouldHaveLength, 5)
			So(res.Diagnostics.LineupInconsistencies, ShouldEqual, 0)
			So(res.Status, ShouldEqual, model.StatusComplete)
			So(res.LineupHome.Has("John Wall"), ShouldBeTrue)
			So(res.LineupHome.Has("Kelly Oubre"), ShouldBeFalse)
		})

		Convey("Every snapshot carries two full lineups", func() {
			for _, s := range res.Snapshots {
				So(s.LineupHome.Players, ShouldHaveLength, 5)
				So(s.LineupAway.Players, ShouldHaveLength, 5)
			}
		})

		Convey("Stats agree with the final score", func() {
			last := in.Plays[len(in.Plays)-1]
			So(last.ScoreHome, ShouldEqual, strconv.Itoa(res.ScoreHome))
			So(last.ScoreAway, ShouldEqual, strconv.Itoa(res.ScoreAway))
			So(res.TeamHome.Points, ShouldEqual, res.ScoreHome)
			So(res.TeamAway.Points, ShouldEqual, res.ScoreAway)
		})

		Convey("Possessions and stints pass the integrity checks", func() {
			So(res.Diagnostics.IntegrityError, ShouldBeEmpty)
			So(res.Possessions, ShouldNotBeEmpty)
			So(res.Possessions[0].StartEventNum, ShouldEqual, 1)
			So(res.Possessions[len(res.Possessions)-1].EndEventNum, ShouldEqual, 436)

			points := map[model.Side]int{}
			for _, ps := range res.Possessions {
				points[ps.Side] += ps.PointsScored
			}
			So(points[model.SideHome], ShouldEqual, res.ScoreHome)
			So(points[model.SideAway], ShouldEqual, res.ScoreAway)

			sum := 0
			for _, s := range res.Stints(model.SideHome) {
				sum += s.PlusMinus
			}
			So(sum, ShouldEqual, res.ScoreHome-res.ScoreAway)
		})

		Convey("Player stats never decrease from one snapshot to the next", func() {
			for i := 1; i < len(res.Snapshots); i++ {
				prev, cur := res.Snapshots[i-1], res.Snapshots[i]
				for _, ps := range prev.Stats.Players() {
					now, ok := cur.Player(ps.PlayerID)
					So(ok, ShouldBeTrue)
					So(now.Points, ShouldBeGreaterThanOrEqualTo, ps.Points)
					So(now.SecondsPlayed, ShouldBeGreaterThanOrEqualTo, ps.SecondsPlayed)
				}
			}
		})

		Convey("Processing the same input again yields identical snapshots and stats", func() {
			again, err := p.Process(context.Background(), generatedGame())
			So(err, ShouldBeNil)

			a, err := json.Marshal(res.Snapshots)
			So(err, ShouldBeNil)
			b, err := json.Marshal(again.Snapshots)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, string(a))

			a, _ = json.Marshal(res.Players)
			b, _ = json.Marshal(again.Players)
			So(string(b), ShouldEqual, string(a))
		})
	})
}

func TestProcessEdgeCases(t *testing.T) {
	Convey("Given a processor", t, func() {
		p := game.NewProcessor(game.WithFailureThreshold(15))

		Convey("Input without a game id is rejected", func() {
			_, err := p.Process(context.Background(), model.GameInput{Home: homeTeam, Away: awayTeam})
			So(errors.Is(err, game.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("Input with the same team twice is rejected", func() {
			_, err := p.Process(context.Background(), model.GameInput{GameID: "g", Home: homeTeam, Away: homeTeam})
			So(errors.Is(err, game.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("A cancelled context discards the game", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := p.Process(ctx, generatedGame())
			So(errors.Is(err, game.ErrCancelled), ShouldBeTrue)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(res, ShouldBeNil)
		})

		Convey("Missing event numbers are replaced by sequence order", func() {
			in := model.GameInput{GameID: "g1", Home: homeTeam, Away: awayTeam, Plays: []model.RawPlay{
				{Period: 1, Clock: "12:00", Text: "Start of the 1st Quarter"},
				{Period: 1, Clock: "11:40", Text: "John Wall makes 2-foot layup", ScoreHome: "2", ScoreAway: "0"},
			}}
			res, err := p.Process(context.Background(), in)
			So(err, ShouldBeNil)
			So(res.Diagnostics.Renumbered, ShouldBeTrue)
			So(res.Events[0].EventNum, ShouldEqual, 1)
			So(res.Events[1].EventNum, ShouldEqual, 2)
			So(in.Plays[1].EventNum, ShouldEqual, 0)
		})

		Convey("Mostly unreadable records complete with errors but still report", func() {
			in := model.GameInput{GameID: "g2", Home: homeTeam, Away: awayTeam, Plays: []model.RawPlay{
				{EventNum: 1, Period: 1, Clock: "12:00", Text: "Start of the 1st Quarter"},
				{EventNum: 2, Period: 1, Clock: "11:50", Text: "something the catalog has never seen"},
				{EventNum: 3, Period: 1, Clock: "bogus", Text: "John Wall makes 2-foot layup"},
				{EventNum: 4, Period: 1, Clock: "11:30", Text: "John Wall makes 2-foot layup", ScoreHome: "x"},
			}}
			res, err := p.Process(context.Background(), in)
			So(err, ShouldBeNil)
			So(res.Status, ShouldEqual, model.StatusCompleteWithErrors)
			So(res.Events, ShouldHaveLength, 4)
			So(res.Diagnostics.UnparsedEvents, ShouldEqual, 3)
			So(res.Diagnostics.UnparsedSamples, ShouldHaveLength, 3)
			So(res.Events[2].Unparsed, ShouldEqual, model.ReasonBadClock)
			So(res.Events[3].Unparsed, ShouldEqual, model.ReasonBadScore)
		})

		Convey("A team rebound names the team, not a player", func() {
			in := model.GameInput{GameID: "g3", Home: homeTeam, Away: awayTeam, Plays: []model.RawPlay{
				{EventNum: 1, Period: 1, Clock: "11:00", Text: "Mike Conley misses 20-foot jumper", Team: "MEM"},
				{EventNum: 2, Period: 1, Clock: "10:58", Text: "Washington defensive team rebound."},
			}}
			res, err := p.Process(context.Background(), in)
			So(err, ShouldBeNil)
			ev := res.Events[1]
			So(ev.Type, ShouldEqual, model.EventRebound)
			So(ev.TeamRebound, ShouldBeTrue)
			So(ev.TeamID, ShouldEqual, "WAS")
			So(ev.Primary, ShouldBeEmpty)
			So(res.TeamHome.TeamRebounds, ShouldEqual, 1)
		})

		Convey("Missing team names and abbreviations come from the franchise catalog", func() {
			in := model.GameInput{GameID: "g5",
				Home: model.Team{ID: "WAS", Name: "Washington Wizards"},
				Away: model.Team{ID: "MEM", Abbreviation: "mem"},
				Plays: []model.RawPlay{
					{EventNum: 1, Period: 1, Clock: "12:00", Text: "Start of the 1st Quarter"},
				}}
			res, err := p.Process(context.Background(), in)
			So(err, ShouldBeNil)
			So(res.Home.Abbreviation, ShouldEqual, "WAS")
			So(res.Away.Name, ShouldEqual, "Memphis Grizzlies")
			So(res.Away.Abbreviation, ShouldEqual, "mem")
		})

		Convey("Unknown teams are left as given", func() {
			in := model.GameInput{GameID: "g6",
				Home: model.Team{ID: "SPR", Name: "Springfield Atoms"},
				Away: model.Team{ID: "SHE", Abbreviation: "SHE"},
				Plays: []model.RawPlay{
					{EventNum: 1, Period: 1, Clock: "12:00", Text: "Start of the 1st Quarter"},
				}}
			res, err := p.Process(context.Background(), in)
			So(err, ShouldBeNil)
			So(res.Home.Abbreviation, ShouldBeEmpty)
			So(res.Away.Name, ShouldBeEmpty)
		})

		Convey("Records without a team are attributed from later records", func() {
			in := model.GameInput{GameID: "g4", Home: homeTeam, Away: awayTeam, Plays: []model.RawPlay{
				{EventNum: 1, Period: 1, Clock: "11:00", Text: "Tony Allen personal foul"},
				{EventNum: 2, Period: 1, Clock: "10:40", Text: "Tony Allen bad pass", Team: "MEM"},
			}}
			res, err := p.Process(context.Background(), in)
			So(err, ShouldBeNil)
			So(res.Events[0].Side, ShouldEqual, model.SideAway)
			So(res.Events[0].TeamID, ShouldEqual, "MEM")
			So(res.TeamAway.Fouls, ShouldEqual, 1)
		})
	})
}
