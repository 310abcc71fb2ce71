package monitor_test

import (
	"testing"
	"time"

	"github.com/pulse/uptime-engine/monitor"
)

func obs(store string, t time.Time, status monitor.Status) monitor.Observation {
	return monitor.Observation{StoreID: monitor.StoreID(store), Timestamp: t, Status: status}
}

func TestIndex_SortsUnorderedInput(t *testing.T) {
	// GIVEN: Observations arriving out of order
	// WHEN: Querying a range
	// THEN: Results come back ascending by timestamp

	ix := monitor.NewObservationIndex([]monitor.Observation{
		obs("s1", utc(2023, time.January, 23, 12, 0), monitor.StatusActive),
		obs("s1", utc(2023, time.January, 23, 8, 0), monitor.StatusInactive),
		obs("s1", utc(2023, time.January, 23, 10, 0), monitor.StatusActive),
	})

	got := ix.InRange("s1", utc(2023, time.January, 23, 0, 0), utc(2023, time.January, 24, 0, 0))
	if len(got) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatalf("observations not sorted: %v", got)
		}
	}
}

func TestIndex_InRange_HalfOpenBounds(t *testing.T) {
	// GIVEN: Observations exactly on both bounds
	// WHEN: Querying [t0, t1)
	// THEN: t0 is included, t1 is excluded

	t0 := utc(2023, time.January, 23, 8, 0)
	t1 := utc(2023, time.January, 23, 12, 0)
	ix := monitor.NewObservationIndex([]monitor.Observation{
		obs("s1", t0, monitor.StatusActive),
		obs("s1", t1, monitor.StatusInactive),
	})

	got := ix.InRange("s1", t0, t1)
	if len(got) != 1 || !got[0].Timestamp.Equal(t0) {
		t.Fatalf("expected only the t0 observation, got %v", got)
	}
}

func TestIndex_JustBeforeAndJustAfter(t *testing.T) {
	// GIVEN: Observations on both sides of a boundary
	// WHEN: Asking for the nearest neighbors of t
	// THEN: JustBefore is strictly before t, JustAfter is at-or-after t

	ix := monitor.NewObservationIndex([]monitor.Observation{
		obs("s1", utc(2023, time.January, 23, 8, 0), monitor.StatusInactive),
		obs("s1", utc(2023, time.January, 23, 10, 0), monitor.StatusActive),
	})

	at := utc(2023, time.January, 23, 10, 0)

	before, ok := ix.JustBefore("s1", at)
	if !ok || !before.Timestamp.Equal(utc(2023, time.January, 23, 8, 0)) {
		t.Errorf("wrong JustBefore: %v ok=%v", before, ok)
	}

	after, ok := ix.JustAfter("s1", at)
	if !ok || !after.Timestamp.Equal(at) {
		t.Errorf("wrong JustAfter: %v ok=%v", after, ok)
	}

	if _, ok := ix.JustBefore("s1", utc(2023, time.January, 23, 8, 0)); ok {
		t.Error("JustBefore at the earliest timestamp should report none")
	}
	if _, ok := ix.JustAfter("s1", utc(2023, time.January, 23, 11, 0)); ok {
		t.Error("JustAfter past the latest timestamp should report none")
	}
}

func TestIndex_DuplicateTimestamps_Tolerated(t *testing.T) {
	// GIVEN: Two observations with the same timestamp
	// WHEN: Indexing and querying
	// THEN: Both are kept; nothing is rejected

	at := utc(2023, time.January, 23, 8, 0)
	ix := monitor.NewObservationIndex([]monitor.Observation{
		obs("s1", at, monitor.StatusActive),
		obs("s1", at, monitor.StatusInactive),
	})

	got := ix.InRange("s1", at, at.Add(time.Minute))
	if len(got) != 2 {
		t.Fatalf("expected both duplicates, got %d", len(got))
	}
}

func TestIndex_Latest_AcrossStores(t *testing.T) {
	// GIVEN: Observations for several stores
	// WHEN: Asking for the global latest timestamp
	// THEN: The maximum across all stores is returned

	latest := utc(2023, time.January, 24, 18, 0)
	ix := monitor.NewObservationIndex([]monitor.Observation{
		obs("s1", utc(2023, time.January, 23, 8, 0), monitor.StatusActive),
		obs("s2", latest, monitor.StatusInactive),
	})

	got, ok := ix.Latest()
	if !ok || !got.Equal(latest) {
		t.Errorf("expected %v, got %v ok=%v", latest, got, ok)
	}

	if _, ok := monitor.NewObservationIndex(nil).Latest(); ok {
		t.Error("empty index should report no latest timestamp")
	}
}

func TestIndex_UnknownStore_EmptyResults(t *testing.T) {
	ix := monitor.NewObservationIndex(nil)

	if got := ix.InRange("nope", utc(2023, time.January, 23, 0, 0), utc(2023, time.January, 24, 0, 0)); len(got) != 0 {
		t.Errorf("expected empty range, got %v", got)
	}
	if _, ok := ix.JustBefore("nope", utc(2023, time.January, 23, 0, 0)); ok {
		t.Error("expected no JustBefore for unknown store")
	}
}
