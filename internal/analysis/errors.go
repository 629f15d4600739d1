package analysis

import "errors"

var (
	// ErrSessionNotFound means no dataset is stored under the requested session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrComputation wraps unexpected numeric failures inside a routine.
	ErrComputation = errors.New("computation failed")
)
