package stats

import "time"

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithPeriodLengths sets the clock length of regulation and overtime
// periods used to credit playing time.
func WithPeriodLengths(regulation, overtime time.Duration) Option {
	return func(a *Accumulator) {
		if regulation > 0 {
			a.periodLength = regulation
		}
		if overtime > 0 {
			a.overtimeLength = overtime
		}
	}
}
