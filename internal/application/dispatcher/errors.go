package dispatcher

import "errors"

// Sentinel errors for the command dispatcher, following the run
// package's package-level var Err... convention.
var (
	// ErrUnknownCommand is returned by Dispatch for a command_type with no
	// registered handler.
	ErrUnknownCommand = errors.New("dispatcher: unknown command")
	// ErrMissingControlSession is returned when a command that requires a
	// control session is dispatched while none exists. Per spec.md §4.7
	// this is a recoverable condition: the caller logs it and moves on.
	ErrMissingControlSession = errors.New("dispatcher: no control session")
	// ErrMissingPanel is returned when a command expects panel 0 to exist
	// on the control session but it does not.
	ErrMissingPanel = errors.New("dispatcher: control session has no panel")
)
