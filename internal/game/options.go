package game

import (
	"time"

	"github.com/okian/hoopstate/internal/domain/parser"
	"github.com/okian/hoopstate/pkg/logger"
)

// Option configures a Processor.
type Option func(*Processor)

// WithParser sets the record parser shared by all games.
func WithParser(p *parser.Parser) Option {
	return func(pr *Processor) {
		if p != nil {
			pr.parser = p
		}
	}
}

// WithMinimumPossessions sets the lineup ranking threshold.
func WithMinimumPossessions(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minPossessions = n
		}
	}
}

// WithFailureThreshold sets the unparsed or inconsistency share, in
// percent, above which a game completes with errors.
func WithFailureThreshold(pct float64) Option {
	return func(p *Processor) {
		if pct >= 0 {
			p.thresholdPct = pct
		}
	}
}

// WithPeriodLengths sets regulation and overtime period lengths.
func WithPeriodLengths(regulation, overtime time.Duration) Option {
	return func(p *Processor) {
		if regulation > 0 {
			p.periodLength = regulation
		}
		if overtime > 0 {
			p.overtimeLength = overtime
		}
	}
}

// WithUnparsedSamples caps the raw texts kept in diagnostics.
func WithUnparsedSamples(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.samples = n
		}
	}
}

// WithLogger sets the processor logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}
