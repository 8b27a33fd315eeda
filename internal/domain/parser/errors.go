package parser

import "errors"

// Sentinel kinds for numeric extraction failures.
var (
	ErrBadClock = errors.New("malformed clock")
	ErrBadScore = errors.New("malformed score")
)
