/*
aggregate.go - Per-store report row assembly over the three windows

PURPOSE:
  Drives the schedule resolver and extrapolation engine over the three
  fixed windows (last hour, last day, last week) relative to a single
  reference instant, producing one ReportRow per store.

REFERENCE "NOW":
  The maximum observed timestamp across the whole ingested feed, fixed
  once at report start. All three windows for every store share it, so
  recomputing against unchanged data yields identical rows.

CONCURRENCY:
  Rows are independent and the index/resolver are read-only, so stores
  are fanned out across a bounded worker pool with a final join before
  the rows are published. The context cancels in-flight work; a caller
  polling a report id never waits on a wedged computation forever.

FAILURE POLICY:
  A store whose schedule data is corrupt gets an error-marker row; the
  report itself always completes.

UNIT CONVENTION:
  Last-hour figures in minutes, last-day and last-week figures in hours,
  rounded to two decimal places.
*/
package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Window spans, all anchored at the reference instant.
const (
	spanHour = time.Hour
	spanDay  = 24 * time.Hour
	spanWeek = 7 * 24 * time.Hour
)

// defaultWorkers bounds the per-store fan-out.
const defaultWorkers = 8

// Aggregator assembles report rows from the read-only index and
// resolver.
type Aggregator struct {
	Index    *ObservationIndex
	Schedule *ScheduleResolver
	Engine   *Extrapolator

	// Workers bounds the per-store parallelism. Zero means
	// defaultWorkers.
	Workers int
}

// NewAggregator wires an aggregator with the conservative-inactive
// extrapolation fallback.
func NewAggregator(index *ObservationIndex, schedule *ScheduleResolver) *Aggregator {
	return &Aggregator{
		Index:    index,
		Schedule: schedule,
		Engine:   NewExtrapolator(index),
	}
}

// Stores returns the union of stores known to the observation feed and
// the schedule feeds, sorted. Every one of them gets a report row.
func (a *Aggregator) Stores() []StoreID {
	seen := make(map[StoreID]bool)
	for _, id := range a.Index.Stores() {
		seen[id] = true
	}
	for _, id := range a.Schedule.Stores() {
		seen[id] = true
	}
	out := make([]StoreID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BuildReport computes one row per requested store, in the given order.
// Returns ctx.Err() if cancelled; otherwise always one row per store.
func (a *Aggregator) BuildReport(ctx context.Context, reference time.Time, stores []StoreID) ([]ReportRow, error) {
	rows := make([]ReportRow, len(stores))

	workers := a.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(stores) {
		workers = len(stores)
	}
	if workers == 0 {
		return rows, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rows[i] = a.computeRow(stores[i], reference)
			}
		}()
	}

	var cancelled error
feed:
	for i := range stores {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return nil, cancelled
	}
	return rows, nil
}

// computeRow runs the three windows for a single store.
func (a *Aggregator) computeRow(store StoreID, reference time.Time) ReportRow {
	row := ReportRow{StoreID: store}

	type windowSpec struct {
		name string
		span time.Duration
	}
	specs := []windowSpec{
		{WindowLastHour, spanHour},
		{WindowLastDay, spanDay},
		{WindowLastWeek, spanWeek},
	}

	for _, ws := range specs {
		from := reference.Add(-ws.span)

		business, err := a.Schedule.Resolve(store, from, reference)
		if err != nil {
			return ReportRow{StoreID: store, Err: err.Error()}
		}

		res := a.Engine.ComputeWindow(store, from, reference, business)
		if res.Assumed {
			row.AssumedWindows = append(row.AssumedWindows, ws.name)
		}

		switch ws.name {
		case WindowLastHour:
			row.UptimeLastHour = minutes(res.Uptime)
			row.DowntimeLastHour = minutes(res.Downtime)
		case WindowLastDay:
			row.UptimeLastDay = hours(res.Uptime)
			row.DowntimeLastDay = hours(res.Downtime)
		case WindowLastWeek:
			row.UptimeLastWeek = hours(res.Uptime)
			row.DowntimeLastWeek = hours(res.Downtime)
		}
	}

	return row
}

// minutes converts a duration to decimal minutes, two places.
func minutes(d time.Duration) decimal.Decimal {
	return decimal.NewFromFloat(d.Minutes()).Round(2)
}

// hours converts a duration to decimal hours, two places.
func hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromFloat(d.Hours()).Round(2)
}
