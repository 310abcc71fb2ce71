/*
errors.go - Centralized error types for the monitor engine

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Callers match with errors.Is(); the API layer maps these to HTTP status
  codes.

ERROR CATEGORIES:
  1. Report store errors - Lifecycle violations and missing ids
  2. Schedule errors - Corrupt business-hours data

RECOVERED-LOCALLY CONDITIONS (deliberately NOT errors):
  - Missing schedule: store is treated as open 24x7
  - Missing timezone: store defaults to UTC
  - No observations in a window: fallback status, flagged per row
  These are policy defaults, not failures, and never surface.
*/
package monitor

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrReportNotFound is returned when a report id is unknown.
	ErrReportNotFound = errors.New("report not found")

	// ErrReportAlreadyComplete is returned on a second Complete call for
	// the same report id. The transition is one-shot.
	ErrReportAlreadyComplete = errors.New("report already complete")

	// ErrInvalidInterval is returned when a business-hours row has
	// end <= start. Overnight shifts must be split into two rows, so a
	// non-positive interval is corrupt data.
	ErrInvalidInterval = errors.New("invalid business-hours interval: end not after start")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing report.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReportNotFound)
}

// IsConflict returns true if the error is a lifecycle conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrReportAlreadyComplete)
}
