package game_test

import (
	"fmt"
	"strconv"

	"github.com/okian/hoopstate/internal/domain/model"
)

var (
	homeTeam = model.Team{ID: "WAS", Name: "Washington Wizards", Abbreviation: "WAS"}
	awayTeam = model.Team{ID: "MEM", Name: "Memphis Grizzlies", Abbreviation: "MEM"}
)

type squad struct {
	id    string
	court []string
	bench []string
	subs  [][2]string // in, out
	next  int
}

func newSquad(id string, starters, bench []string) *squad {
	s := &squad{id: id, court: append([]string(nil), starters...), bench: bench}
	for i := range 5 {
		s.subs = append(s.subs, [2]string{bench[i], starters[i]})
	}
	s.subs = append(s.subs, [2]string{starters[0], bench[0]}, [2]string{starters[1], bench[1]})
	return s
}

func (s *squad) player(i int) string { return s.court[i%len(s.court)] }

func (s *squad) substitute() (in, out string) {
	pair := s.subs[s.next]
	s.next++
	for i, p := range s.court {
		if p == pair[1] {
			s.court[i] = pair[0]
		}
	}
	return pair[0], pair[1]
}

type recorder struct {
	gameID     string
	plays      []model.RawPlay
	period     int
	secs       int
	home, away int
}

func (r *recorder) add(hint, text string) {
	r.plays = append(r.plays, model.RawPlay{
		GameID:    r.gameID,
		EventNum:  len(r.plays) + 1,
		Period:    r.period,
		Clock:     fmt.Sprintf("%d:%02d", r.secs/60, r.secs%60),
		Text:      text,
		ScoreHome: strconv.Itoa(r.home),
		ScoreAway: strconv.Itoa(r.away),
		Team:      hint,
	})
}

// generatedGame builds a four-period game of 436 records with 14
// substitution pairs and no explicit starters.
func generatedGame() model.GameInput {
	sides := [2]*squad{
		newSquad("WAS",
			[]string{"John Wall", "Bradley Beal", "Otto Porter", "Markieff Morris", "Marcin Gortat"},
			[]string{"Kelly Oubre", "Tomas Satoransky", "Jason Smith", "Ian Mahinmi", "Tim Frazier"}),
		newSquad("MEM",
			[]string{"Mike Conley", "Tony Allen", "Jeff Green", "Zach Randolph", "Marc Gasol"},
			[]string{"Troy Daniels", "Vince Carter", "JaMychal Green", "Brandan Wright", "Andrew Harrison"}),
	}
	rec := &recorder{gameID: "0021600436"}
	playsPerPeriod := []int{104, 104, 103, 103}
	subsPerPeriod := []int{4, 4, 3, 3}
	ordinals := []string{"1st", "2nd", "3rd", "4th"}
	subTurn := 0
	offense := 0
	pattern := 0

	for pi, n := range playsPerPeriod {
		rec.period = pi + 1
		rec.secs = 720
		rec.add("", "Start of the "+ordinals[pi]+" Quarter")

		subEvery := n / (subsPerPeriod[pi] + 1)
		subsLeft := subsPerPeriod[pi]
		emitted := 0
		for emitted < n {
			o, d := sides[offense], sides[1-offense]
			score := func(pts int) {
				if offense == 0 {
					rec.home += pts
				} else {
					rec.away += pts
				}
			}
			var lines [][2]string
			var points []int
			k := pattern
			switch pattern % 6 {
			case 0:
				lines = [][2]string{{"", fmt.Sprintf("%s makes 2-foot layup (%s assists)", o.player(k), o.player(k+1))}}
				points = []int{2}
			case 1:
				lines = [][2]string{
					{o.id, fmt.Sprintf("%s misses 26-foot three point jumper", o.player(k))},
					{d.id, fmt.Sprintf("%s defensive rebound", d.player(k+2))},
				}
				points = []int{0, 0}
			case 2:
				lines = [][2]string{{o.id, fmt.Sprintf("%s bad pass (%s steals)", o.player(k), d.player(k+1))}}
				points = []int{0}
			case 3:
				lines = [][2]string{{"", fmt.Sprintf("%s makes 25-foot three point jumper", o.player(k+3))}}
				points = []int{3}
			case 4:
				lines = [][2]string{
					{d.id, fmt.Sprintf("%s shooting foul", d.player(k))},
					{o.id, fmt.Sprintf("%s makes free throw 1 of 2", o.player(k+1))},
					{o.id, fmt.Sprintf("%s misses free throw 2 of 2", o.player(k+1))},
					{d.id, fmt.Sprintf("%s defensive rebound", d.player(k+4))},
				}
				points = []int{0, 1, 0, 0}
			case 5:
				lines = [][2]string{
					{o.id, fmt.Sprintf("%s misses 10-foot jumper", o.player(k+2))},
					{o.id, fmt.Sprintf("%s offensive rebound", o.player(k+4))},
					{"", fmt.Sprintf("%s makes 2-foot layup", o.player(k+4))},
				}
				points = []int{0, 0, 2}
			}
			for i, l := range lines {
				if emitted == n {
					break
				}
				rec.secs -= 6
				score(points[i])
				rec.add(l[0], l[1])
				emitted++
				if subsLeft > 0 && emitted%subEvery == 0 {
					s := sides[subTurn%2]
					in, out := s.substitute()
					rec.add(s.id, in+" enters the game for "+out)
					subTurn++
					subsLeft--
				}
			}
			pattern++
			offense = 1 - offense
		}
		rec.secs = 0
		rec.add("", "End of the "+ordinals[pi]+" Quarter")
	}

	return model.GameInput{GameID: rec.gameID, Home: homeTeam, Away: awayTeam, Plays: rec.plays}
}
