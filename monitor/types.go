/*
Package monitor provides the core uptime extrapolation engine.

PURPOSE:
  This package contains the types and algorithms for estimating per-store
  uptime and downtime from sparse status polls. Stores are polled roughly
  once an hour; true uptime between polls is unknown and must be
  extrapolated, clipped to each store's business hours, and aggregated
  over three sliding windows (last hour, last day, last week).

KEY CONCEPTS IN THIS FILE (types.go):
  - Observation: A single "is the store open" poll result
  - BusinessHoursRow: One weekly business-hours interval in local wall time
  - TimezoneRow: A store's IANA timezone assignment
  - ReportRow: Per-store uptime/downtime figures across the three windows
  - Report: A keyed, pending-then-complete report of all rows

DESIGN PRINCIPLES:
  1. Immutability: Observations are never modified after ingestion
  2. Precision: Uses decimal.Decimal for externally visible figures
  3. Defaults over errors: missing schedule => open 24x7, missing
     timezone => UTC; a store always produces a row
  4. Honesty: windows estimated without any observation are flagged as
     assumed, not silently reported as measured

UNIT CONVENTION (fixed, applied uniformly):
  - last-hour fields are MINUTES
  - last-day and last-week fields are HOURS

SEE ALSO:
  - schedule.go: Weekly schedule to concrete UTC windows
  - index.go: Sorted per-store observation lookup
  - extrapolate.go: Midpoint interpolation between polls
  - aggregate.go: Per-store report row assembly
  - reportstore.go: Pending/Complete report handoff
*/
package monitor

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS AND STATUS
// =============================================================================

// StoreID identifies a store across all three input feeds.
type StoreID string

// Status is the observed state of a store at poll time.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus normalizes a raw status string from the ingestion feed.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusInactive:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// =============================================================================
// INPUT FEED ROWS
// =============================================================================

// Observation is a single status poll. Timestamp is always UTC.
// Observations arrive unordered and may carry duplicate timestamps;
// the ObservationIndex sorts them and treats timestamp as the sole
// ordering key.
type Observation struct {
	StoreID   StoreID
	Timestamp time.Time
	Status    Status
}

// DayTime is a local wall-clock time of day with no date attached.
type DayTime struct {
	Hour   int
	Minute int
	Second int
}

// ParseDayTime parses "HH:MM:SS" (or "HH:MM") from the business-hours feed.
func ParseDayTime(s string) (DayTime, error) {
	var dt DayTime
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &dt.Hour, &dt.Minute, &dt.Second); err != nil {
		if _, err2 := fmt.Sscanf(s, "%d:%d", &dt.Hour, &dt.Minute); err2 != nil {
			return DayTime{}, fmt.Errorf("invalid time of day %q", s)
		}
	}
	if dt.Hour < 0 || dt.Hour > 23 || dt.Minute < 0 || dt.Minute > 59 || dt.Second < 0 || dt.Second > 59 {
		return DayTime{}, fmt.Errorf("time of day %q out of range", s)
	}
	return dt, nil
}

// Seconds returns the offset from local midnight.
func (dt DayTime) Seconds() int {
	return dt.Hour*3600 + dt.Minute*60 + dt.Second
}

func (dt DayTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", dt.Hour, dt.Minute, dt.Second)
}

// BusinessHoursRow is one weekly business-hours interval for a store.
// Day uses the source dataset's convention: 0 = Monday ... 6 = Sunday.
// Start and End are local wall-clock times on that day; End must be
// strictly after Start (overnight shifts are represented as two rows,
// one ending at 23:59:59 and one starting at 00:00:00).
type BusinessHoursRow struct {
	StoreID StoreID
	Day     int
	Start   DayTime
	End     DayTime
}

// TimezoneRow assigns an IANA timezone name to a store.
type TimezoneRow struct {
	StoreID StoreID
	Name    string
}

// DayOfWeek converts a time to the dataset's Monday=0 convention.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// =============================================================================
// REPORT OUTPUT
// =============================================================================

// Window names used in ReportRow.AssumedWindows.
const (
	WindowLastHour = "last_hour"
	WindowLastDay  = "last_day"
	WindowLastWeek = "last_week"
)

// ReportRow holds one store's uptime/downtime figures.
// Last-hour fields are minutes; last-day and last-week fields are hours.
type ReportRow struct {
	StoreID StoreID

	UptimeLastHour   decimal.Decimal
	DowntimeLastHour decimal.Decimal
	UptimeLastDay    decimal.Decimal
	DowntimeLastDay  decimal.Decimal
	UptimeLastWeek   decimal.Decimal
	DowntimeLastWeek decimal.Decimal

	// AssumedWindows lists windows that contained no observation anywhere
	// near them, so the figures are the fallback assumption rather than
	// a measurement. Downstream consumers can distinguish the two.
	AssumedWindows []string

	// Err is non-empty when this store's row could not be computed
	// (e.g. corrupt schedule data). The report as a whole still
	// completes; only this row is degraded to an error marker.
	Err string
}

// ReportStatus is the lifecycle state of a report.
// There is no Failed state: per-store failures degrade individual rows.
type ReportStatus string

const (
	ReportPending  ReportStatus = "Pending"
	ReportComplete ReportStatus = "Complete"
)

// Report is a keyed computation result. Rows is nil until the report
// transitions to Complete; the transition happens exactly once.
type Report struct {
	ID          string
	Status      ReportStatus
	Rows        []ReportRow
	CreatedAt   time.Time
	CompletedAt time.Time
}
