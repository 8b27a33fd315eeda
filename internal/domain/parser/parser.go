// Package parser turns raw play-by-play records into typed events using an
// ordered catalog of patterns. Parsing never fails: a record that matches no
// pattern, or whose clock or score cannot be read, becomes an unparsed event.
package parser

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/domain/teams"
)

// Context is the game state a record is parsed against.
type Context struct {
	// Matchup resolves the game's own team names. Required.
	Matchup *teams.Matchup

	// Previous values carried into records with empty fields.
	PrevClock time.Duration
	PrevHome  int
	PrevAway  int

	// LastMiss is the side of the most recent missed shot, used to classify
	// rebounds the text does not label.
	LastMiss model.Side

	// TeamOf looks up the side a player is known to play for.
	TeamOf func(player string) model.Side
}

// Parser applies the pattern catalog. It is safe for concurrent use.
type Parser struct {
	rules   []rule
	exclude teams.Set
}

// New builds a parser. Without WithExclusions the catalog's city, nickname
// and full-name list is used.
func New(opts ...Option) *Parser {
	p := &Parser{rules: catalog()}
	for _, opt := range opts {
		opt(p)
	}
	if p.exclude == nil {
		p.exclude = teams.NewSet(teams.DefaultExclusions()...)
	}
	return p
}

// Parse converts one raw record into exactly one event.
func (p *Parser) Parse(raw model.RawPlay, ctx Context) (ev model.Event) {
	ev = model.Event{
		GameID:    raw.GameID,
		EventNum:  raw.EventNum,
		Period:    raw.Period,
		Clock:     ctx.PrevClock,
		ScoreHome: ctx.PrevHome,
		ScoreAway: ctx.PrevAway,
		RawText:   raw.Text,
	}
	defer func() {
		if rec := recover(); rec != nil {
			ev = unparsed(ev, model.ReasonPanic)
		}
	}()

	if clock, ok, err := ParseClock(raw.Clock); err != nil {
		return unparsed(ev, model.ReasonBadClock)
	} else if ok {
		ev.Clock = clock
	}
	home, hok, herr := ParseScore(raw.ScoreHome)
	away, aok, aerr := ParseScore(raw.ScoreAway)
	if err := errors.Join(herr, aerr); err != nil {
		return unparsed(ev, model.ReasonBadScore)
	}
	if hok {
		ev.ScoreHome = home
	}
	if aok {
		ev.ScoreAway = away
	}

	text := normalizeText(raw.Text)
	if text == "" {
		return unparsed(ev, model.ReasonNoMatch)
	}
	for _, rl := range p.rules {
		sub := rl.re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		m := match{re: rl.re, sub: sub}
		if rl.needTeam && !p.isTeamName(ctx, m.get("t")) {
			continue
		}
		d := draft{ev: ev}
		rl.build(m, &d)
		d.ev.Rule = rl.name
		return p.resolve(d, raw, ctx)
	}
	return unparsed(ev, model.ReasonNoMatch)
}

func unparsed(ev model.Event, reason model.UnparsedReason) model.Event {
	return model.Event{
		GameID:    ev.GameID,
		EventNum:  ev.EventNum,
		Period:    ev.Period,
		Clock:     ev.Clock,
		Type:      model.EventUnparsed,
		ScoreHome: ev.ScoreHome,
		ScoreAway: ev.ScoreAway,
		RawText:   ev.RawText,
		Unparsed:  reason,
	}
}

var reSpaces = regexp.MustCompile(`\s+`)

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// cleanName trims whitespace, a trailing sentence period and stray brackets.
func cleanName(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "()[]:,;")
	s = strings.TrimSuffix(s, ".")
	return strings.Join(strings.Fields(s), " ")
}

// teamSide reports whether name refers to a team. Names of this game's teams
// also yield their side; other excluded names yield SideNone.
func (p *Parser) teamSide(ctx Context, name string) (model.Side, bool) {
	if name == "" {
		return model.SideNone, false
	}
	if ctx.Matchup != nil {
		if side, ok := ctx.Matchup.Side(name); ok {
			return side, true
		}
	}
	if p.exclude.Has(name) || strings.EqualFold(name, "team") {
		return model.SideNone, true
	}
	return model.SideNone, false
}

func (p *Parser) isTeamName(ctx Context, name string) bool {
	_, ok := p.teamSide(ctx, name)
	return ok
}

// resolve filters team names out of player slots and settles the team.
// Team resolution order: explicit hint, team named in text, scoring side,
// known player side.
func (p *Parser) resolve(d draft, raw model.RawPlay, ctx Context) model.Event {
	ev := d.ev
	var named model.Side

	if side, isTeam := p.teamSide(ctx, cleanName(d.team)); isTeam {
		named = side
	}
	actor := cleanName(d.actor)
	if side, isTeam := p.teamSide(ctx, actor); isTeam {
		if named == model.SideNone {
			named = side
		}
		if ev.Type == model.EventRebound {
			ev.TeamRebound = true
		}
		actor = ""
	}
	ev.Primary = actor

	second := cleanName(d.second)
	if _, isTeam := p.teamSide(ctx, second); isTeam {
		second = ""
	}
	ev.Secondary = second

	side := hintSide(ctx, raw.Team)
	if side == model.SideNone {
		side = named
	}
	if side == model.SideNone && d.shooter {
		side = scoringSide(ctx, ev)
	}
	if side == model.SideNone && ctx.TeamOf != nil {
		side = knownSide(ctx, ev, cleanName(d.receiver))
	}
	if ev.Type == model.EventJumpBall && d.receiver != "" {
		ev.Players = []string{cleanName(d.receiver)}
	}

	ev.Side = side
	if ctx.Matchup != nil {
		ev.TeamID = ctx.Matchup.TeamID(side)
	}
	if ev.Type == model.EventRebound && ev.Rebound == model.ReboundUnknown {
		ev.Rebound = classifyRebound(side, ctx.LastMiss)
	}
	return ev
}

func hintSide(ctx Context, hint string) model.Side {
	hint = strings.TrimSpace(hint)
	switch strings.ToLower(hint) {
	case "":
		return model.SideNone
	case "home", "h":
		return model.SideHome
	case "away", "visitor", "visitors", "v", "a":
		return model.SideAway
	}
	if ctx.Matchup == nil {
		return model.SideNone
	}
	side, _ := ctx.Matchup.Side(hint)
	return side
}

// scoringSide returns the side whose score rose, when exactly one did.
func scoringSide(ctx Context, ev model.Event) model.Side {
	dh, da := ev.ScoreHome-ctx.PrevHome, ev.ScoreAway-ctx.PrevAway
	switch {
	case dh > 0 && da <= 0:
		return model.SideHome
	case da > 0 && dh <= 0:
		return model.SideAway
	}
	return model.SideNone
}

// knownSide asks the lineup lookup about the players an event names.
func knownSide(ctx Context, ev model.Event, receiver string) model.Side {
	switch ev.Type {
	case model.EventJumpBall:
		if receiver != "" {
			return ctx.TeamOf(receiver)
		}
	case model.EventSubstitution:
		if side := ctx.TeamOf(ev.Secondary); side != model.SideNone {
			return side
		}
	case model.EventStartingLineup:
		return majoritySide(ctx, ev.Players)
	}
	if ev.Primary == "" {
		return model.SideNone
	}
	return ctx.TeamOf(ev.Primary)
}

func majoritySide(ctx Context, players []string) model.Side {
	var n [3]int
	for _, pl := range players {
		n[ctx.TeamOf(pl)]++
	}
	switch {
	case n[model.SideHome] > n[model.SideAway]:
		return model.SideHome
	case n[model.SideAway] > n[model.SideHome]:
		return model.SideAway
	}
	return model.SideNone
}

func classifyRebound(side, lastMiss model.Side) model.ReboundKind {
	if side == model.SideNone || lastMiss == model.SideNone {
		return model.ReboundUnknown
	}
	if side == lastMiss {
		return model.ReboundOffensive
	}
	return model.ReboundDefensive
}
