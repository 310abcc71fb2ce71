/*
schedule.go - Weekly business hours to concrete UTC windows

PURPOSE:
  Turns the per-store weekly schedule (day-of-week + local start/end) and
  the per-store timezone into concrete [startUTC, endUTC) windows for a
  requested UTC span. All downstream computation works in UTC; this is
  the only place local wall-clock time exists.

ALGORITHM:
  For every local calendar date overlapping the requested span (padded by
  one day on each side, because the timezone offset can push a local
  interval across UTC midnight), look up that date's weekday rows and
  project each row onto the date through the store's location. Each
  projected interval keeps its own UTC span - intervals from adjacent
  days are never merged or dropped. Results are clipped to the request,
  sorted, and overlap-corrected so the caller can sum durations safely.

DEFAULT POLICIES (silent, by specification):
  - A store with no business-hours rows is open 24x7: the resolver
    returns the requested span as a single window.
  - A store with no timezone row (or an unloadable zone name) uses UTC.

SEE ALSO:
  - types.go: BusinessHoursRow, DayOfWeek convention (Monday = 0)
  - extrapolate.go: Consumer of the resolved windows
*/
package monitor

import (
	"fmt"
	"log"
	"sort"
	"time"
)

// Window is a half-open [Start, End) interval in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// =============================================================================
// SCHEDULE RESOLVER
// =============================================================================

// ScheduleResolver materializes business-hours windows for stores.
// Built once from the ingested feeds; read-only afterwards.
type ScheduleResolver struct {
	hours map[StoreID]map[int][]BusinessHoursRow
	zones map[StoreID]*time.Location
}

// NewScheduleResolver indexes the business-hours and timezone feeds.
// Unknown timezone names fall back to UTC with a logged warning; they are
// treated the same as a missing row.
func NewScheduleResolver(hours []BusinessHoursRow, zones []TimezoneRow) *ScheduleResolver {
	r := &ScheduleResolver{
		hours: make(map[StoreID]map[int][]BusinessHoursRow),
		zones: make(map[StoreID]*time.Location),
	}

	for _, row := range hours {
		byDay := r.hours[row.StoreID]
		if byDay == nil {
			byDay = make(map[int][]BusinessHoursRow)
			r.hours[row.StoreID] = byDay
		}
		byDay[row.Day] = append(byDay[row.Day], row)
	}

	for _, z := range zones {
		loc, err := time.LoadLocation(z.Name)
		if err != nil {
			log.Printf("[Schedule] store %s: unknown timezone %q, defaulting to UTC", z.StoreID, z.Name)
			continue
		}
		r.zones[z.StoreID] = loc
	}

	return r
}

// Location returns the store's timezone, defaulting to UTC.
func (r *ScheduleResolver) Location(store StoreID) *time.Location {
	if loc, ok := r.zones[store]; ok {
		return loc
	}
	return time.UTC
}

// Stores returns every store that appears in the schedule or timezone
// feeds, sorted for deterministic iteration.
func (r *ScheduleResolver) Stores() []StoreID {
	seen := make(map[StoreID]bool)
	for id := range r.hours {
		seen[id] = true
	}
	for id := range r.zones {
		seen[id] = true
	}
	out := make([]StoreID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resolve returns the store's business-hours windows inside [from, to),
// non-overlapping and sorted by start. A store with no schedule rows is
// open for the whole span. Corrupt rows (end <= start) yield an error.
func (r *ScheduleResolver) Resolve(store StoreID, from, to time.Time) ([]Window, error) {
	if !to.After(from) {
		return nil, nil
	}

	byDay := r.hours[store]
	if len(byDay) == 0 {
		// 24x7 default.
		return []Window{{Start: from, End: to}}, nil
	}

	loc := r.Location(store)

	// Pad by one local day on each side: the UTC offset can place part
	// of a local interval inside the span even when its local date is
	// outside it.
	first := from.In(loc).AddDate(0, 0, -1)
	last := to.In(loc).AddDate(0, 0, 1)
	firstDate := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)

	var windows []Window
	for d := firstDate; !d.After(last); d = d.AddDate(0, 0, 1) {
		for _, row := range byDay[DayOfWeek(d)] {
			if row.End.Seconds() <= row.Start.Seconds() {
				return nil, fmt.Errorf("store %s day %d [%s,%s): %w",
					store, row.Day, row.Start, row.End, ErrInvalidInterval)
			}

			start := time.Date(d.Year(), d.Month(), d.Day(),
				row.Start.Hour, row.Start.Minute, row.Start.Second, 0, loc).UTC()
			end := time.Date(d.Year(), d.Month(), d.Day(),
				row.End.Hour, row.End.Minute, row.End.Second, 0, loc).UTC()

			w := clipWindow(Window{Start: start, End: end}, from, to)
			if w.End.After(w.Start) {
				windows = append(windows, w)
			}
		}
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })
	return dedupeOverlaps(windows), nil
}

// clipWindow restricts w to [from, to).
func clipWindow(w Window, from, to time.Time) Window {
	if w.Start.Before(from) {
		w.Start = from
	}
	if w.End.After(to) {
		w.End = to
	}
	return w
}

// dedupeOverlaps merges windows that overlap so durations can be summed
// without double counting. Adjacent (touching) windows from different
// schedule rows stay separate.
func dedupeOverlaps(windows []Window) []Window {
	if len(windows) < 2 {
		return windows
	}
	out := windows[:1]
	for _, w := range windows[1:] {
		prev := &out[len(out)-1]
		if w.Start.Before(prev.End) {
			if w.End.After(prev.End) {
				prev.End = w.End
			}
			continue
		}
		out = append(out, w)
	}
	return out
}
