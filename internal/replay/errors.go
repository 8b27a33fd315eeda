package replay

import "errors"

// Sentinel errors for loading inputs.
var (
	ErrUnknownFormat = errors.New("unknown input format")
	ErrMissingHeader = errors.New("missing game header")
	ErrMalformedCSV  = errors.New("malformed csv")
	ErrNoGames       = errors.New("no games loaded")
)
