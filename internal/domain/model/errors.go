package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrUnknownSide      = errors.New("unknown side")
)
