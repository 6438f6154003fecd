package state

import "errors"

// Sentinel errors for the application state manager, following the
// teacher's package-level var Err... convention.
var (
	// ErrNoControlSession is returned when an operation requires a control
	// session but none currently exists.
	ErrNoControlSession = errors.New("state: no control session")
	// ErrUnknownSession is returned by RemoveSession for a handle that was
	// never added (or already removed).
	ErrUnknownSession = errors.New("state: unknown session handle")
)
