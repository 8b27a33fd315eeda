package game

import "errors"

var (
	// ErrInvalidInput rejects a game before any record is processed.
	ErrInvalidInput = errors.New("invalid game input")
	// ErrCancelled reports that a game was abandoned mid-way; its partial
	// state is discarded.
	ErrCancelled = errors.New("game processing cancelled")
)
