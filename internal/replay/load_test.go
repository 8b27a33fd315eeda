package replay_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/hoopstate/internal/replay"
	. "github.com/smartystreets/goconvey/convey"
)

const gameJSON = `{"game_id":"g1","home":{"id":"WAS"},"away":{"id":"MEM"},"plays":[{"game_id":"g1","event_num":1,"period":1,"clock":"12:00","text":"Start of the 1st Quarter"}]}`

const playsCSV = `game_id,event_num,period,clock,team,score_home,score_away,text
g1,1,1,12:00,,0,0,Start of the 1st Quarter
g2,1,1,12:00,,0,0,Start of the 1st Quarter
g1,2,1,11:40,WAS,2,0,"John Wall makes 2-foot layup (Bradley Beal assists)"
g1,,1,11:20,MEM,2,0,Mike Conley misses 26-foot three point jumper
`

const headersJSON = `[
  {"game_id":"g1","home":{"id":"WAS"},"away":{"id":"MEM"},"starters":{"home":["John Wall"]}},
  {"game_id":"g2","home":{"id":"BOS"},"away":{"id":"NYK"}}
]`

func writeFile(dir, name, body string) string {
	path := filepath.Join(dir, name)
	So(os.WriteFile(path, []byte(body), 0o600), ShouldBeNil)
	return path
}

func TestDetectFormat(t *testing.T) {
	Convey("Formats come from the file extension", t, func() {
		for path, want := range map[string]replay.Format{
			"a.json":   replay.FormatJSON,
			"a.NDJSON": replay.FormatNDJSON,
			"a.jsonl":  replay.FormatNDJSON,
			"a.csv":    replay.FormatCSV,
		} {
			got, err := replay.DetectFormat(path)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}

		_, err := replay.DetectFormat("a.txt")
		So(errors.Is(err, replay.ErrUnknownFormat), ShouldBeTrue)
	})
}

func TestDecode(t *testing.T) {
	Convey("Given JSON input", t, func() {
		Convey("A single object is one game", func() {
			games, err := replay.DecodeJSON(strings.NewReader(gameJSON))
			So(err, ShouldBeNil)
			So(games, ShouldHaveLength, 1)
			So(games[0].GameID, ShouldEqual, "g1")
			So(games[0].Plays, ShouldHaveLength, 1)
		})

		Convey("An array holds many games", func() {
			games, err := replay.DecodeJSON(strings.NewReader("[" + gameJSON + "," + gameJSON + "]"))
			So(err, ShouldBeNil)
			So(games, ShouldHaveLength, 2)
		})

		Convey("Garbage is an error", func() {
			_, err := replay.DecodeJSON(strings.NewReader("{"))
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given NDJSON input", t, func() {
		Convey("Each non-blank line is a game", func() {
			games, err := replay.DecodeNDJSON(strings.NewReader(gameJSON + "\n\n" + gameJSON + "\n"))
			So(err, ShouldBeNil)
			So(games, ShouldHaveLength, 2)
		})

		Convey("A bad line is reported by number", func() {
			_, err := replay.DecodeNDJSON(strings.NewReader(gameJSON + "\nnope\n"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "line 2")
		})
	})

	Convey("Given CSV plays with headers", t, func() {
		dir := t.TempDir()
		csvPath := writeFile(dir, "plays.csv", playsCSV)
		writeFile(dir, "plays.json", headersJSON)

		games, err := replay.LoadFile(csvPath, replay.FormatAuto)

		Convey("Plays are grouped by game in order of appearance", func() {
			So(err, ShouldBeNil)
			So(games, ShouldHaveLength, 2)
			So(games[0].GameID, ShouldEqual, "g1")
			So(games[0].Home.ID, ShouldEqual, "WAS")
			So(games[0].Starters.Home, ShouldResemble, []string{"John Wall"})
			So(games[0].Plays, ShouldHaveLength, 3)
			So(games[1].GameID, ShouldEqual, "g2")
			So(games[1].Plays, ShouldHaveLength, 1)
		})

		Convey("Quoted text and empty event numbers survive", func() {
			So(games[0].Plays[1].Text, ShouldEqual, "John Wall makes 2-foot layup (Bradley Beal assists)")
			So(games[0].Plays[1].ScoreHome, ShouldEqual, "2")
			So(games[0].Plays[2].EventNum, ShouldEqual, 0)
			So(games[0].Plays[2].Team, ShouldEqual, "MEM")
		})
	})

	Convey("Given CSV plays for a game without a header", t, func() {
		_, err := replay.DecodeCSV(strings.NewReader(playsCSV), []replay.Header{{GameID: "g1"}})
		So(errors.Is(err, replay.ErrMissingHeader), ShouldBeTrue)
	})

	Convey("Given CSV without a sidecar file", t, func() {
		path := writeFile(t.TempDir(), "plays.csv", playsCSV)
		_, err := replay.LoadFile(path, replay.FormatCSV)
		So(errors.Is(err, replay.ErrMissingHeader), ShouldBeTrue)
	})

	Convey("Given CSV with a missing column", t, func() {
		_, err := replay.DecodeCSV(strings.NewReader("game_id,period\ng1,1\n"), nil)
		So(errors.Is(err, replay.ErrMalformedCSV), ShouldBeTrue)
	})

	Convey("Given CSV with a non-numeric period", t, func() {
		body := "game_id,event_num,period,clock,team,score_home,score_away,text\ng1,1,first,12:00,,0,0,x\n"
		_, err := replay.DecodeCSV(strings.NewReader(body), []replay.Header{{GameID: "g1"}})
		So(errors.Is(err, replay.ErrMalformedCSV), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "line 2")
	})
}
