package archive

import "errors"

// Sentinel errors for the SQL archive.
var (
	ErrUnsupportedDriver = errors.New("unsupported archive driver")
	ErrNotFound          = errors.New("game not archived")
)
