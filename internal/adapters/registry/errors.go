package registry

import "errors"

// Sentinel kinds for registry errors. Every load failure also wraps
// ErrUnavailable so callers can map the whole family to one status.
var (
	ErrUnavailable = errors.New("model unavailable")
	ErrInvalidURI  = errors.New("invalid model uri")
	ErrNotFound    = errors.New("model artifact not found")
	ErrDecode      = errors.New("model artifact decode failed")
	ErrWrongTask   = errors.New("model serves another task")
)
