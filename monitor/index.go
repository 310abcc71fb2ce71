/*
index.go - Sorted per-store observation lookup

PURPOSE:
  One-time sort/group of the raw observation feed. The extrapolation
  engine needs range queries plus the nearest observation on either side
  of a window boundary, so the index keeps each store's observations in a
  single timestamp-sorted slice and answers with binary search.

TOLERANCE:
  Input order is irrelevant and duplicate timestamps are accepted -
  timestamp is the sole ordering key and nothing is rejected.

Read-only after construction; safe for concurrent readers.
*/
package monitor

import (
	"sort"
	"time"
)

// ObservationIndex groups observations by store, sorted by timestamp.
type ObservationIndex struct {
	byStore map[StoreID][]Observation
	latest  time.Time
}

// NewObservationIndex builds the index from the raw feed.
func NewObservationIndex(observations []Observation) *ObservationIndex {
	ix := &ObservationIndex{byStore: make(map[StoreID][]Observation)}

	for _, o := range observations {
		ix.byStore[o.StoreID] = append(ix.byStore[o.StoreID], o)
		if o.Timestamp.After(ix.latest) {
			ix.latest = o.Timestamp
		}
	}

	for id := range ix.byStore {
		obs := ix.byStore[id]
		sort.SliceStable(obs, func(i, j int) bool {
			return obs[i].Timestamp.Before(obs[j].Timestamp)
		})
	}

	return ix
}

// Latest returns the maximum timestamp across all stores. This is the
// reference "now" for report generation. ok is false when the index is
// empty.
func (ix *ObservationIndex) Latest() (time.Time, bool) {
	return ix.latest, !ix.latest.IsZero()
}

// Stores returns all store ids with at least one observation, sorted.
func (ix *ObservationIndex) Stores() []StoreID {
	out := make([]StoreID, 0, len(ix.byStore))
	for id := range ix.byStore {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InRange returns the store's observations with timestamp in [from, to),
// ascending. The returned slice aliases the index; callers must not
// mutate it.
func (ix *ObservationIndex) InRange(store StoreID, from, to time.Time) []Observation {
	obs := ix.byStore[store]
	lo := sort.Search(len(obs), func(i int) bool { return !obs[i].Timestamp.Before(from) })
	hi := sort.Search(len(obs), func(i int) bool { return !obs[i].Timestamp.Before(to) })
	return obs[lo:hi]
}

// JustBefore returns the store's latest observation strictly before t.
func (ix *ObservationIndex) JustBefore(store StoreID, t time.Time) (Observation, bool) {
	obs := ix.byStore[store]
	i := sort.Search(len(obs), func(i int) bool { return !obs[i].Timestamp.Before(t) })
	if i == 0 {
		return Observation{}, false
	}
	return obs[i-1], true
}

// JustAfter returns the store's earliest observation at or after t.
func (ix *ObservationIndex) JustAfter(store StoreID, t time.Time) (Observation, bool) {
	obs := ix.byStore[store]
	i := sort.Search(len(obs), func(i int) bool { return !obs[i].Timestamp.Before(t) })
	if i == len(obs) {
		return Observation{}, false
	}
	return obs[i], true
}
