package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxClock is the largest accepted time remaining in a period.
const MaxClock = time.Hour

var (
	reClockMinSec = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?:\.(\d{1,3}))?$`)
	reClockSec    = regexp.MustCompile(`^(\d+)(?:\.(\d{1,3}))?$`)
	reClockISO    = regexp.MustCompile(`^PT(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?$`)
)

// ParseClock converts a time-remaining string into a duration. Accepted
// forms are "12:34", "0:45.2", "45.2", "734" (whole seconds) and the ISO-8601
// "PT11M34.00S". Empty input reports ok=false with a nil error so callers can
// carry the previous clock.
func ParseClock(s string) (d time.Duration, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	switch {
	case reClockMinSec.MatchString(s):
		m := reClockMinSec.FindStringSubmatch(s)
		mins, _ := strconv.Atoi(m[1])
		secs, _ := strconv.Atoi(m[2])
		if secs >= 60 {
			return 0, false, fmt.Errorf("%w: seconds out of range in %q", ErrBadClock, s)
		}
		d = time.Duration(mins)*time.Minute + time.Duration(secs)*time.Second + fraction(m[3])
	case reClockSec.MatchString(s):
		m := reClockSec.FindStringSubmatch(s)
		secs, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false, fmt.Errorf("%w: %q", ErrBadClock, s)
		}
		d = time.Duration(secs)*time.Second + fraction(m[2])
	case reClockISO.MatchString(strings.ToUpper(s)):
		m := reClockISO.FindStringSubmatch(strings.ToUpper(s))
		if m[1] == "" && m[2] == "" {
			return 0, false, fmt.Errorf("%w: %q", ErrBadClock, s)
		}
		mins, _ := strconv.Atoi(m[1])
		secs, _ := strconv.ParseFloat(m[2], 64)
		d = time.Duration(mins)*time.Minute + time.Duration(secs*float64(time.Second))
	default:
		return 0, false, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	if d > MaxClock {
		return 0, false, fmt.Errorf("%w: %q exceeds %s", ErrBadClock, s, MaxClock)
	}
	return d.Round(time.Millisecond), true, nil
}

// fraction turns the digits after a decimal point into a duration.
func fraction(digits string) time.Duration {
	if digits == "" {
		return 0
	}
	n, _ := strconv.Atoi(digits)
	scale := time.Second
	for range digits {
		scale /= 10
	}
	return time.Duration(n) * scale
}

// ParseScore converts a score field. Empty input reports ok=false with a nil
// error so callers can carry the previous score.
func ParseScore(s string) (score int, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false, fmt.Errorf("%w: %q", ErrBadScore, s)
	}
	return n, true, nil
}
