package repository

import "errors"

// Sentinel errors for result lookups.
var (
	ErrNotFound      = errors.New("game not found")
	ErrInvalidResult = errors.New("result has no game id")
)
