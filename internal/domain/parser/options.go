package parser

import "github.com/okian/hoopstate/internal/domain/teams"

// Option configures a Parser.
type Option func(*Parser)

// WithExclusions sets the names never accepted as players. The game's own
// team aliases are always excluded in addition to these.
func WithExclusions(names []string) Option {
	return func(p *Parser) {
		if names != nil {
			p.exclude = teams.NewSet(names...)
		}
	}
}
