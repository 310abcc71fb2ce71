/*
extrapolate.go - Uptime estimation between sparse status polls

PURPOSE:
  Polls arrive every 30-60 minutes, so the true status between two polls
  is unknown. This engine reconstructs a full status timeline from the
  samples and measures how much business-hours time was active vs
  inactive inside a window.

INTERPOLATION POLICY (nearest neighbor in time):
  Each observation "owns" the time closest to it: its status holds from
  the midpoint with the previous sample to the midpoint with the next
  sample. At the two ends of the observed timeline the nearest sample's
  status extends outward to the window boundary. The sample just outside
  each window edge participates, so status at the edges is informed by
  the closest poll even when that poll falls outside the window.

FALLBACK POLICY:
  A store with no observation inside or adjacent to the window takes
  FallbackStatus (inactive unless configured otherwise) for the whole
  window, and the result is flagged Assumed.

CORRECTNESS INVARIANT:
  The interpolated segments tile the window exactly, so
  uptime + downtime always equals the total business-hours time clipped
  to the window. aggregate_test.go and extrapolate_test.go assert this.
*/
package monitor

import (
	"time"
)

// UptimeResult is the outcome of one window computation.
type UptimeResult struct {
	Uptime   time.Duration
	Downtime time.Duration

	// Assumed is true when no observation informed the window and the
	// figures are entirely the fallback assumption.
	Assumed bool
}

// Extrapolator computes business-hours uptime/downtime for one store
// and one UTC window. Stateless apart from its configuration; safe for
// concurrent use.
type Extrapolator struct {
	Index *ObservationIndex

	// FallbackStatus is assumed when a window has no observations at
	// all. Conservative default: inactive.
	FallbackStatus Status
}

// NewExtrapolator creates an engine with the conservative-inactive
// fallback.
func NewExtrapolator(index *ObservationIndex) *Extrapolator {
	return &Extrapolator{Index: index, FallbackStatus: StatusInactive}
}

// ComputeWindow measures uptime and downtime for store inside
// [from, to), restricted to the given business windows. The business
// windows must already be clipped to [from, to), non-overlapping and
// sorted (ScheduleResolver.Resolve guarantees this).
func (e *Extrapolator) ComputeWindow(store StoreID, from, to time.Time, business []Window) UptimeResult {
	var res UptimeResult
	if !to.After(from) {
		return res
	}

	samples := e.samples(store, from, to)
	if len(samples) == 0 {
		res.Assumed = true
		total := sumDurations(business)
		if e.fallback() == StatusActive {
			res.Uptime = total
		} else {
			res.Downtime = total
		}
		return res
	}
	if len(business) == 0 {
		return res
	}

	// Walk the interpolated timeline. Segment i runs from the midpoint
	// with sample i-1 (window start for the first) to the midpoint with
	// sample i+1 (window end for the last), clipped to [from, to).
	for i, s := range samples {
		segStart := from
		if i > 0 {
			segStart = midpoint(samples[i-1].Timestamp, s.Timestamp)
		}
		segEnd := to
		if i < len(samples)-1 {
			segEnd = midpoint(s.Timestamp, samples[i+1].Timestamp)
		}

		d := overlapWithAll(segStart, segEnd, business)
		if s.Status == StatusActive {
			res.Uptime += d
		} else {
			res.Downtime += d
		}
	}

	return res
}

// samples collects the observations that inform [from, to): everything
// inside the window plus the nearest observation on each side.
func (e *Extrapolator) samples(store StoreID, from, to time.Time) []Observation {
	inRange := e.Index.InRange(store, from, to)

	samples := make([]Observation, 0, len(inRange)+2)
	if prev, ok := e.Index.JustBefore(store, from); ok {
		samples = append(samples, prev)
	}
	samples = append(samples, inRange...)
	if next, ok := e.Index.JustAfter(store, to); ok {
		samples = append(samples, next)
	}
	return samples
}

func (e *Extrapolator) fallback() Status {
	if e.FallbackStatus == "" {
		return StatusInactive
	}
	return e.FallbackStatus
}

// midpoint returns the instant halfway between a and b.
func midpoint(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}

// overlapWithAll sums the overlap of [start, end) with each window.
// The windows are non-overlapping, so summing never double counts.
func overlapWithAll(start, end time.Time, windows []Window) time.Duration {
	var total time.Duration
	for _, w := range windows {
		s, t := start, end
		if s.Before(w.Start) {
			s = w.Start
		}
		if t.After(w.End) {
			t = w.End
		}
		if t.After(s) {
			total += t.Sub(s)
		}
	}
	return total
}

func sumDurations(windows []Window) time.Duration {
	var total time.Duration
	for _, w := range windows {
		total += w.Duration()
	}
	return total
}
