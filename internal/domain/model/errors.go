package model

import "errors"

// Sentinel error kinds shared by the engine and its adapters. Callers match
// them with errors.Is.
var (
	// ErrNotFound means an internship or candidate identifier does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRepositoryUnavailable means the data source is unreachable or not configured.
	ErrRepositoryUnavailable = errors.New("repository unavailable")
	// ErrRemoteScoring means the remote ranking capability timed out, errored or returned malformed data.
	ErrRemoteScoring = errors.New("remote scoring failure")
	// ErrBusy means an allocation for the same internship is in flight and joining is disabled.
	ErrBusy = errors.New("allocation already in progress")
	// ErrUnavailable means no fresh result could be computed and no previous result exists.
	ErrUnavailable = errors.New("allocation unavailable")
	// ErrInvariantViolation means a ranked list broke the 1..N rank contract.
	ErrInvariantViolation = errors.New("allocation invariant violated")
	// ErrInternshipClosed means allocation was requested for a closed internship.
	ErrInternshipClosed = errors.New("internship is not active")
	// ErrNoResult means no result has been published for the internship yet.
	ErrNoResult = errors.New("no allocation result published")
)
