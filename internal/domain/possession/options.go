package possession

import (
	"time"

	"github.com/okian/hoopstate/pkg/logger"
)

// Option configures an Engine.
type Option func(*Engine)

// WithMinimumPossessions sets how many possessions a lineup needs before it
// is ranked.
func WithMinimumPossessions(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.minPossessions = n
		}
	}
}

// WithPeriodLengths sets regulation and overtime period lengths.
func WithPeriodLengths(regulation, overtime time.Duration) Option {
	return func(e *Engine) {
		if regulation > 0 {
			e.periodLength = regulation
		}
		if overtime > 0 {
			e.overtimeLength = overtime
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}
