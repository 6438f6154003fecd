package run

import "errors"

// Sentinel errors for the run domain, following the teacher's
// package-level var Err... convention.
var (
	// ErrCyclicDependency is returned by Graph.AddDependency when the new
	// edge would close a cycle.
	ErrCyclicDependency = errors.New("run: cyclic dependency detected")
	// ErrAlreadyControlled is returned when a second control session is
	// requested while one already exists.
	ErrAlreadyControlled = errors.New("run: a control session already exists")
	// ErrPanelLimitExceeded is returned when a control session's panel
	// limit is already reached.
	ErrPanelLimitExceeded = errors.New("run: panel limit exceeded")
	// ErrPanelHasTestRun is returned when a panel already owns a test run.
	ErrPanelHasTestRun = errors.New("run: panel already has a test run")
	// ErrNoTestRun is returned when an operation needs a test run a panel
	// does not currently have.
	ErrNoTestRun = errors.New("run: panel has no active test run")
	// ErrTestCaseNotQuarantined is returned by retest when the given id is
	// not present in the failed map.
	ErrTestCaseNotQuarantined = errors.New("run: test case is not quarantined")
)
