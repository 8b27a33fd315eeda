package lineup

import "errors"

// ErrLineupSize reports a candidate lineup without exactly five players.
var ErrLineupSize = errors.New("lineup must have exactly five players")
