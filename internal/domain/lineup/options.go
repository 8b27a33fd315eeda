package lineup

import "github.com/okian/hoopstate/pkg/logger"

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for inconsistency warnings.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// WithRoster supplies player attributions used for records whose team the
// parser could not resolve.
func WithRoster(r *Roster) Option {
	return func(t *Tracker) {
		if r != nil {
			t.roster = r
		}
	}
}
