package domain

import "errors"

// Sentinel errors shared across the engine. Storage errors during
// aggregation must be distinguishable from "no data" so the
// professional-facing surface never renders an outage as an empty history.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidSeverity    = errors.New("invalid severity")
	ErrInvalidSignalKind  = errors.New("invalid signal kind")
	ErrInvalidSource      = errors.New("invalid event source")
	ErrInvalidWindow      = errors.New("invalid aggregation window")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
