package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/hoopstate/internal/domain/model"
)

// draft is an event under construction plus the raw names a rule captured.
// Names are resolved against the team lists after the rule fires.
type draft struct {
	ev       model.Event
	actor    string // becomes primary_player_id unless it names a team
	second   string // becomes secondary_player_id unless it names a team
	team     string // explicit team mention
	receiver string // jump ball recipient
	shooter  bool   // actor's side should come from the score change
}

type match struct {
	re  *regexp.Regexp
	sub []string
}

func (m match) get(name string) string {
	i := m.re.SubexpIndex(name)
	if i < 0 || i >= len(m.sub) {
		return ""
	}
	return strings.TrimSpace(m.sub[i])
}

func (m match) has(name string) bool { return m.get(name) != "" }

// rule is one catalog entry; the first rule whose pattern matches wins.
type rule struct {
	name string
	re   *regexp.Regexp
	// needTeam rejects the match unless the "t" group names a team.
	needTeam bool
	build    func(m match, d *draft)
}

func r(name, pattern string, build func(m match, d *draft)) rule {
	return rule{name: name, re: regexp.MustCompile(`(?i)^` + pattern + `$`), build: build}
}

// Shared pattern fragments.
const (
	endDot     = `\.?`
	ordinal    = `(?:\d+(?:st|nd|rd|th)|first|second|third|fourth)`
	periodUnit = `(?:quarter|period|half|overtime|ot|regulation|game)`
	shotWord   = `(?:jump|jumper|pull-?up|step ?back|driving|running|turnaround|fade ?away|cutting|putback|put ?back|tip|tip-?in|alley[ -]?oop|reverse|floating|floater|hook|bank|finger ?roll|layup|lay-?up|dunk|slam|shot|hop|no-look|two point|three point|3pt)`
	boxShot    = `(?P<desc>(?:\d+' )?(?:3PT )?` + shotWord + `(?:[ -]` + shotWord + `)*)`
	toKinds    = `shot clock|24-second|offensive foul|offensive charge|out of bounds(?: lost ball| bad pass)?|step out of bounds|player out of bounds|(?:3|three)[- ]seconds?|(?:5|five)[- ]seconds?|(?:8|eight)[- ]seconds?|backcourt|offensive goaltending|lane violation|kicked ball|inbound|illegal screen|basket from below|swinging elbows|illegal assist|excess timeout|jump ball violation|punched ball|lost ball|bad pass|traveling|palming|double dribble|discontinued? dribble`
	boxToKinds = toKinds + `|out of bounds - bad pass|out of bounds - lost ball|(?:3|5|8) second violation|lane violation|kicked ball violation|foul|no|too many players`
	violKinds  = `kicked ball|lane|double lane|delay of game|delay|jump ball|shot clock|24-second|backcourt|(?:5|five)[- ]seconds?|(?:8|eight)[- ]seconds?|offensive (?:3|three)[- ]seconds?|defensive (?:3|three)[- ]seconds?|traveling|inbound|goaltending|defensive goaltending|offensive goaltending`
	foulKinds  = `personal take|personal|shooting|loose ball|offensive|take|away from play|clear path|technical|hanging technical|flagrant|flagrant type [12]|transition take|inbound`
)

func catalog() []rule {
	return []rule{
		// Period boundaries.
		r("period_start", `(?:start|beginning) of (?:the )?(?:`+ordinal+` )?`+periodUnit+`\b.*`, kind(model.EventPeriodStart)),
		r("period_start_short", `(?:period|quarter|game) (?:start|begins?)\b.*`, kind(model.EventPeriodStart)),
		r("period_end", `end of (?:the )?(?:`+ordinal+` )?`+periodUnit+`\b.*`, kind(model.EventPeriodEnd)),
		r("period_end_short", `(?:period|quarter|game) (?:end|ends|over)\b.*`, kind(model.EventPeriodEnd)),

		// Jump balls.
		r("jump_ball", `jump ball:? (?P<p>.+?) vs\.? (?P<s>.+?)(?:\s*\((?P<r>.+?) gains possession\)|:? tip to (?P<r2>.+?))?`+endDot, buildJumpBall),
		r("jump_ball_gains", `(?P<p>.+?) vs\.? (?P<s>.+?) \((?P<r>.+?) gains possession\)`+endDot, buildJumpBall),

		// Substitution pairs.
		r("sub_enters_for", `(?P<in>.+?) enters the game for (?P<out>.+?)`+endDot, buildSub),
		r("sub_box", `sub(?:stitution)?:? (?P<in>.+?) (?:in )?for (?P<out>.+?)`+endDot, buildSub),
		r("sub_replaced_by", `(?P<out>.+?) (?:is )?replaced by (?P<in>.+?)`+endDot, buildSub),

		// Single substitution records.
		r("sub_in_enters", `(?P<in>.+?) enters the game`+endDot, buildSubIn),
		r("sub_in_box", `sub(?:stitution)? in:? (?P<in>.+?)`+endDot, buildSubIn),
		r("sub_out_exits", `(?P<out>.+?) (?:exits|leaves|goes out of) the game`+endDot, buildSubOut),
		r("sub_out_box", `sub(?:stitution)? out:? (?P<out>.+?)`+endDot, buildSubOut),

		// Starting lineups.
		r("starting_lineup", `(?:(?P<t>.+?) )?(?:starting lineup|starters):?\s+(?P<list>.+?)`+endDot, buildStarters),

		// Timeouts.
		r("timeout_official", `(?:official|tv|media|league) time ?out.*`, kind(model.EventTimeout)),
		r("timeout_prefix", `time ?out:? (?P<t>.+?)`+endDot, buildTeamOnly(model.EventTimeout)),
		r("timeout", `(?P<t>.+?) (?:full |short |20 sec\.? |regular |mandatory )?time ?out(?:\s*[:\-]\s*.+?)?`+endDot, buildTeamOnly(model.EventTimeout)),

		// Reviews and challenges.
		r("challenge", `(?:(?P<t>.+?) )?(?:coach'?s? )?challenge\b.*`, buildTeamOnly(model.EventReview)),
		r("review", `.*\b(?:instant replay|replay review|review)\b.*`, kind(model.EventReview)),

		// Ejections.
		r("ejection_prefix", `ejection:? (?P<p>.+?)`+endDot, buildActor(model.EventEjection)),
		r("ejection", `(?P<p>.+?) (?:ejected|ejection)\b.*`, buildActor(model.EventEjection)),

		// Free throws.
		r("free_throw", `(?P<p>.+?) (?P<res>makes|misses) (?:(?P<k>technical|flagrant|clear path|away from play) )?free throw(?: (?P<k2>technical|flagrant|clear path))?(?: (?P<n>\d+) of (?P<of>\d+))?`+endDot, buildFreeThrow),
		r("free_throw_box", `(?P<miss>miss )?(?P<p>.+?) free throw(?:\s+(?P<k>technical|flagrant|clear path))?(?:\s+(?P<n>\d+) of (?P<of>\d+))?(?:\s+\((?P<pts>\d+) PTS\))?\s*`, buildFreeThrow),

		// Blocks.
		r("block", `(?P<p>.+?) blocks (?P<s>.+?)\s*(?:'s?|’s?)\s+(?P<desc>.+?)`+endDot, buildBlock),
		r("block_box", `miss (?P<s>.+?) `+boxShot+`\s+(?P<p>.+?) block \(\d+ blk\)`, buildBlock),
		r("block_only", `(?P<p>.+?) block \(\d+ blk\)`, buildBlock),

		// Field goals.
		r("shot_made", `(?P<p>.+?) makes (?P<desc>.+?)(?:\s*\((?P<a>.+?) assists?\))?`+endDot, buildShot(model.EventShotMade)),
		r("shot_missed", `(?P<p>.+?) misses (?P<desc>.+?)`+endDot, buildShot(model.EventShotMissed)),
		r("shot_made_box", `(?P<p>.+?) `+boxShot+`\s*\((?P<pts>\d+) PTS\)(?:\s*\((?P<a>.+?) \d+ AST\))?`, buildShot(model.EventShotMade)),
		r("shot_missed_box", `miss (?P<p>.+?) `+boxShot, buildShot(model.EventShotMissed)),

		// Team rebounds.
		r("team_rebound", `(?:(?P<t>.+?) )?(?:(?P<k>offensive|defensive) )?team rebound`+endDot, buildRebound(true)),
		{name: "team_rebound_box", re: regexp.MustCompile(`(?i)^(?P<t>.+?) rebound\.?$`), needTeam: true, build: buildRebound(true)},

		// Player rebounds.
		r("rebound", `(?P<p>.+?) (?P<k>offensive|defensive) rebound`+endDot, buildRebound(false)),
		r("rebound_box", `(?P<p>.+?) rebound(?:\s*\(off:\s*\d+ def:\s*\d+\))?`+endDot, buildRebound(false)),

		// Turnovers.
		r("turnover", `(?P<p>.+?) (?P<k>bad pass|lost ball|traveling|travel|palming|double dribble|discontinued? dribble)(?: turnover)?(?:\s*\((?P<s>.+?) steals?\))?`+endDot, buildTurnover),
		r("turnover_kind", `(?P<p>.+?) (?P<k>`+toKinds+`) turnover(?:\s*\((?P<s>.+?) steals?\))?`+endDot, buildTurnover),
		r("turnover_box", `(?P<p>.+?) (?P<k>`+boxToKinds+`) turnover \(P\d+\.T\d+\)(?:\s+(?P<s>.+?) steal \(\d+ stl\))?`, buildTurnover),
		r("turnover_team_box", `(?P<p>.+?) turnover:\s*(?P<k>.+?)(?:\s*\(T#?\d+\))?`, buildTurnover),
		r("turnover_generic", `(?P<p>.+?) turnover(?:\s*\((?P<s>.+?) steals?\))?`+endDot, buildTurnover),

		// Steals.
		r("steal", `(?P<p>.+?) steals?(?: the ball)?(?: from (?P<s>.+?))?`+endDot, buildSteal),
		r("steal_box", `(?P<p>.+?) steal \(\d+ stl\)`, buildSteal),

		// Fouls.
		r("foul", `(?P<p>.+?) (?P<k>`+foulKinds+`) (?:foul|charge)(?: type (?P<ft>[12]))?(?:\s*\((?P<s>.+?) draws the foul\))?`+endDot, buildFoul),
		r("foul_box", `(?P<p>.+?) (?P<k>p|s|l\.b|off|t|c\.p|away\.from\.play|personal[. ]take|take|flagrant|transition\.take)\.?\s?foul(?:\.type(?P<ft>[12]))?(?:\s*\([^)]*\))*\s*`, buildFoul),

		// Violations.
		r("violation", `(?P<p>.+?) (?P<k>`+violKinds+`) violation`+endDot, buildViolation),
		r("violation_bare", `(?P<p>.+?) (?P<k>defensive goaltending|offensive goaltending|goaltending|defensive (?:3|three)[- ]seconds?)(?:\s*\(.*\))?`+endDot, buildViolation),
		r("violation_box", `(?P<p>.+?) violation:\s*(?P<k>.+?)(?:\s*\([^)]*\))*`, buildViolation),
		r("violation_generic", `(?P<p>.+?) violation`+endDot, buildViolation),

		// Standalone assists.
		r("assist", `\(?(?P<p>.+?) assists?(?: on .*)?\)?`+endDot, buildActor(model.EventAssist)),
		r("assist_prefix", `assist:? (?P<p>.+?)`+endDot, buildActor(model.EventAssist)),
	}
}

func kind(t model.EventType) func(match, *draft) {
	return func(_ match, d *draft) { d.ev.Type = t }
}

func buildActor(t model.EventType) func(match, *draft) {
	return func(m match, d *draft) {
		d.ev.Type = t
		d.actor = m.get("p")
	}
}

func buildTeamOnly(t model.EventType) func(match, *draft) {
	return func(m match, d *draft) {
		d.ev.Type = t
		d.team = m.get("t")
	}
}

func buildJumpBall(m match, d *draft) {
	d.ev.Type = model.EventJumpBall
	d.actor = m.get("p")
	d.second = m.get("s")
	d.receiver = m.get("r")
	if d.receiver == "" {
		d.receiver = m.get("r2")
	}
}

func buildSub(m match, d *draft) {
	d.ev.Type = model.EventSubstitution
	d.actor = m.get("in")
	d.second = m.get("out")
}

func buildSubIn(m match, d *draft) {
	d.ev.Type = model.EventSubstitutionIn
	d.actor = m.get("in")
}

func buildSubOut(m match, d *draft) {
	d.ev.Type = model.EventSubstitutionOut
	d.actor = m.get("out")
}

var reListSep = regexp.MustCompile(`\s*(?:,|;|\band\b|&)\s*`)

func buildStarters(m match, d *draft) {
	d.ev.Type = model.EventStartingLineup
	d.team = m.get("t")
	for _, p := range reListSep.Split(m.get("list"), -1) {
		if p = cleanName(p); p != "" {
			d.ev.Players = append(d.ev.Players, p)
		}
	}
}

func buildFreeThrow(m match, d *draft) {
	d.actor = m.get("p")
	d.shooter = true
	made := strings.EqualFold(m.get("res"), "makes") || (m.get("res") == "" && !m.has("miss"))
	if made {
		d.ev.Type = model.EventFreeThrowMade
	} else {
		d.ev.Type = model.EventFreeThrowMissed
	}
	k := strings.ToLower(m.get("k") + m.get("k2"))
	d.ev.FreeThrow.Technical = strings.Contains(k, "technical")
	d.ev.FreeThrow.Flagrant = strings.Contains(k, "flagrant")
	d.ev.FreeThrow.N, _ = strconv.Atoi(m.get("n"))
	d.ev.FreeThrow.Of, _ = strconv.Atoi(m.get("of"))
	d.ev.ShotValue = 1
}

var reThree = regexp.MustCompile(`(?i)three[- ]point|3[- ]?pt|3[- ]point|\b3-pointer|three-pointer`)

// shotValue reads 2 or 3 from the shot description. Box lines carry the
// shooter's running total in "(N PTS)", which says nothing about the shot.
func shotValue(m match) int {
	if reThree.MatchString(m.get("desc")) {
		return 3
	}
	return 2
}

func buildBlock(m match, d *draft) {
	d.ev.Type = model.EventBlock
	d.actor = m.get("p")
	d.second = m.get("s")
	d.ev.ShotValue = shotValue(m)
}

func buildShot(t model.EventType) func(match, *draft) {
	return func(m match, d *draft) {
		d.ev.Type = t
		d.actor = m.get("p")
		d.second = m.get("a")
		d.ev.ShotValue = shotValue(m)
		d.shooter = t == model.EventShotMade
	}
}

func buildRebound(team bool) func(match, *draft) {
	return func(m match, d *draft) {
		d.ev.Type = model.EventRebound
		d.ev.TeamRebound = team
		d.team = m.get("t")
		d.actor = m.get("p")
		switch strings.ToLower(m.get("k")) {
		case "offensive":
			d.ev.Rebound = model.ReboundOffensive
		case "defensive":
			d.ev.Rebound = model.ReboundDefensive
		}
	}
}

func buildTurnover(m match, d *draft) {
	d.ev.Type = model.EventTurnover
	d.actor = m.get("p")
	d.second = m.get("s")
	d.ev.Turnover = normalizeKind(m.get("k"))
	if d.ev.Turnover == "" {
		d.ev.Turnover = "unspecified"
	}
}

func buildSteal(m match, d *draft) {
	d.ev.Type = model.EventSteal
	d.actor = m.get("p")
	d.second = m.get("s")
}

func buildFoul(m match, d *draft) {
	d.ev.Type = model.EventFoul
	d.actor = m.get("p")
	d.second = m.get("s")
	d.ev.Foul = foulKind(m.get("k"), m.get("ft"))
}

func buildViolation(m match, d *draft) {
	d.ev.Type = model.EventViolation
	d.actor = m.get("p")
	d.ev.Violation = normalizeKind(m.get("k"))
	if d.ev.Violation == "" {
		d.ev.Violation = "unspecified"
	}
}

var kindAliases = map[string]string{
	"24_second":               "shot_clock",
	"travel":                  "traveling",
	"3_second":                "three_second",
	"3_seconds":               "three_second",
	"three_seconds":           "three_second",
	"5_second":                "five_second",
	"5_seconds":               "five_second",
	"five_seconds":            "five_second",
	"8_second":                "eight_second",
	"8_seconds":               "eight_second",
	"eight_seconds":           "eight_second",
	"offensive_3_second":      "offensive_three_second",
	"offensive_3_seconds":     "offensive_three_second",
	"offensive_three_seconds": "offensive_three_second",
	"defensive_3_second":      "defensive_three_second",
	"defensive_3_seconds":     "defensive_three_second",
	"defensive_three_seconds": "defensive_three_second",
	"offensive_charge":        "offensive_foul",
	"discontinue_dribble":     "double_dribble",
	"discontinued_dribble":    "double_dribble",
	"delay":                   "delay_of_game",
	"lane_violation":          "lane",
	"out_of_bounds_lost_ball": "out_of_bounds",
	"out_of_bounds_bad_pass":  "out_of_bounds",
	"step_out_of_bounds":      "out_of_bounds",
	"player_out_of_bounds":    "out_of_bounds",
	"double_lane":             "lane",
	"jump_ball_violation":     "jump_ball",
}

// normalizeKind maps free text such as "Shot Clock" or "24-second" to a
// snake_case kind.
func normalizeKind(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(".", " ", "-", " ", "_", " ").Replace(s)
	s = strings.Join(strings.Fields(s), "_")
	if a, ok := kindAliases[s]; ok {
		return a
	}
	return s
}

func foulKind(k, flagrantType string) model.FoulKind {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.ReplaceAll(k, ".", " ")
	k = strings.Join(strings.Fields(k), " ")
	switch {
	case strings.HasPrefix(k, "flagrant"):
		if strings.HasSuffix(k, "2") || flagrantType == "2" {
			return model.FoulFlagrant2
		}
		return model.FoulFlagrant1
	case k == "s" || k == "shooting":
		return model.FoulShooting
	case k == "l b" || k == "loose ball":
		return model.FoulLooseBall
	case k == "off" || k == "offensive":
		return model.FoulOffensive
	case strings.Contains(k, "take"):
		return model.FoulTake
	case k == "away from play":
		return model.FoulAwayFromPl
	case k == "c p" || k == "clear path":
		return model.FoulClearPath
	case k == "t" || strings.Contains(k, "technical"):
		return model.FoulTechnical
	default:
		return model.FoulPersonal
	}
}
