// Package teams holds the NBA franchise catalog and team-name matching used to
// keep team names from being mistaken for players.
package teams

import (
	"strings"

	"github.com/okian/hoopstate/internal/domain/model"
)

// Franchise is one NBA team as it appears in play-by-play text.
type Franchise struct {
	City         string
	Nickname     string
	Abbreviation string
}

// Name returns the full franchise name, e.g. "Washington Wizards".
func (f Franchise) Name() string { return f.City + " " + f.Nickname }

var nba = []Franchise{
	{"Atlanta", "Hawks", "ATL"},
	{"Boston", "Celtics", "BOS"},
	{"Brooklyn", "Nets", "BKN"},
	{"Charlotte", "Hornets", "CHA"},
	{"Chicago", "Bulls", "CHI"},
	{"Cleveland", "Cavaliers", "CLE"},
	{"Dallas", "Mavericks", "DAL"},
	{"Denver", "Nuggets", "DEN"},
	{"Detroit", "Pistons", "DET"},
	{"Golden State", "Warriors", "GSW"},
	{"Houston", "Rockets", "HOU"},
	{"Indiana", "Pacers", "IND"},
	{"LA", "Clippers", "LAC"},
	{"Los Angeles", "Lakers", "LAL"},
	{"Memphis", "Grizzlies", "MEM"},
	{"Miami", "Heat", "MIA"},
	{"Milwaukee", "Bucks", "MIL"},
	{"Minnesota", "Timberwolves", "MIN"},
	{"New Orleans", "Pelicans", "NOP"},
	{"New York", "Knicks", "NYK"},
	{"Oklahoma City", "Thunder", "OKC"},
	{"Orlando", "Magic", "ORL"},
	{"Philadelphia", "76ers", "PHI"},
	{"Phoenix", "Suns", "PHX"},
	{"Portland", "Trail Blazers", "POR"},
	{"Sacramento", "Kings", "SAC"},
	{"San Antonio", "Spurs", "SAS"},
	{"Toronto", "Raptors", "TOR"},
	{"Utah", "Jazz", "UTA"},
	{"Washington", "Wizards", "WAS"},
}

// Older and alternate spellings seen in archived feeds.
var alternates = map[string]string{
	"Los Angeles Clippers": "LAC",
	"New Jersey Nets":      "BKN",
	"Seattle SuperSonics":  "OKC",
	"Charlotte Bobcats":    "CHA",
	"New Orleans Hornets":  "NOP",
	"Washington Bullets":   "WAS",
	"Vancouver Grizzlies":  "MEM",
	"Sixers":               "PHI",
	"Blazers":              "POR",
	"Cavs":                 "CLE",
	"Mavs":                 "DAL",
	"Wolves":               "MIN",
	"NJN":                  "BKN",
	"BRK":                  "BKN",
	"GS":                   "GSW",
	"NO":                   "NOP",
	"NY":                   "NYK",
	"PHO":                  "PHX",
	"SA":                   "SAS",
	"UTAH":                 "UTA",
	"WSH":                  "WAS",
}

var byAbbreviation = map[string]Franchise{}

func init() {
	for _, f := range nba {
		byAbbreviation[f.Abbreviation] = f
	}
}

// Abbreviation returns the abbreviation for a full name, or the input when unknown.
func Abbreviation(fullName string) string {
	if f, ok := Lookup(fullName); ok {
		return f.Abbreviation
	}
	return fullName
}

// Name returns the full name for an abbreviation, or the input when unknown.
func Name(abbr string) string {
	if f, ok := byAbbreviation[strings.ToUpper(abbr)]; ok {
		return f.Name()
	}
	return abbr
}

// Lookup finds a franchise by full name, nickname, abbreviation or a known
// alternate. Cities are not unique and are not accepted here.
func Lookup(s string) (Franchise, bool) {
	n := Normalize(s)
	if n == "" {
		return Franchise{}, false
	}
	for _, f := range nba {
		if n == Normalize(f.Name()) || n == Normalize(f.Nickname) || n == Normalize(f.Abbreviation) {
			return f, true
		}
	}
	for alt, abbr := range alternates {
		if n == Normalize(alt) {
			return byAbbreviation[abbr], true
		}
	}
	return Franchise{}, false
}

// DefaultExclusions lists every city, nickname and full name in the catalog.
func DefaultExclusions() []string {
	out := make([]string, 0, len(nba)*3+len(alternates))
	for _, f := range nba {
		out = append(out, f.City, f.Nickname, f.Name())
	}
	for alt := range alternates {
		if len(alt) > 3 {
			out = append(out, alt)
		}
	}
	return out
}

// Aliases expands a game team into every name the text may use for it: its
// id, name, abbreviation and explicit aliases, plus city, nickname and full
// name when the team is in the catalog.
func Aliases(t model.Team) []string {
	out := []string{t.ID, t.Name, t.Abbreviation}
	out = append(out, t.Aliases...)
	for _, candidate := range []string{t.Abbreviation, t.Name, t.ID} {
		if f, ok := Lookup(candidate); ok {
			out = append(out, f.City, f.Nickname, f.Name(), f.Abbreviation)
			break
		}
	}
	// A full name also implies its leading city when not in the catalog.
	if _, ok := Lookup(t.Name); !ok {
		name := strings.TrimSpace(t.Name)
		if i := strings.LastIndexByte(name, ' '); i > 0 {
			out = append(out, name[:i], name[i+1:])
		}
	}
	return compact(out)
}

func compact(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		s = strings.TrimSpace(s)
		k := Normalize(s)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Normalize lower-cases s, drops periods and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, ".", ""))
	return strings.Join(strings.Fields(s), " ")
}
