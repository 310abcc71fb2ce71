package monitor_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/pulse/uptime-engine/monitor"
)

func TestReportStore_Lifecycle(t *testing.T) {
	// GIVEN: A fresh report
	// WHEN: Completing it
	// THEN: Pending before, Complete with rows after

	s := monitor.NewReportStore()
	id := s.Create()

	rep, err := s.Get(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Status != monitor.ReportPending || rep.Rows != nil {
		t.Fatalf("expected pending empty report, got %+v", rep)
	}

	rows := []monitor.ReportRow{{StoreID: "s1"}}
	if err := s.Complete(id, rows); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	rep, err = s.Get(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Status != monitor.ReportComplete || len(rep.Rows) != 1 {
		t.Fatalf("expected complete report with 1 row, got %+v", rep)
	}
	if rep.CompletedAt.IsZero() {
		t.Error("CompletedAt not set")
	}
}

func TestReportStore_DoubleCompletion_Rejected(t *testing.T) {
	s := monitor.NewReportStore()
	id := s.Create()

	if err := s.Complete(id, nil); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	err := s.Complete(id, nil)
	if !errors.Is(err, monitor.ErrReportAlreadyComplete) {
		t.Fatalf("expected ErrReportAlreadyComplete, got %v", err)
	}
}

func TestReportStore_UnknownID(t *testing.T) {
	s := monitor.NewReportStore()

	if _, err := s.Get("nope"); !monitor.IsNotFound(err) {
		t.Errorf("expected not-found from Get, got %v", err)
	}
	if err := s.Complete("nope", nil); !monitor.IsNotFound(err) {
		t.Errorf("expected not-found from Complete, got %v", err)
	}
}

func TestReportStore_DistinctIDs(t *testing.T) {
	s := monitor.NewReportStore()
	if s.Create() == s.Create() {
		t.Fatal("two reports shared an id")
	}
}

func TestReportStore_ConcurrentGetsDuringComplete(t *testing.T) {
	// GIVEN: Readers polling while the aggregator publishes
	// WHEN: Complete races Get (run with -race)
	// THEN: Every Get sees either Pending without rows or Complete with
	//       rows, never a half-published state

	s := monitor.NewReportStore()
	id := s.Create()
	rows := []monitor.ReportRow{{StoreID: "s1"}, {StoreID: "s2"}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rep, err := s.Get(id)
				if err != nil {
					t.Errorf("get failed: %v", err)
					return
				}
				switch rep.Status {
				case monitor.ReportPending:
					if rep.Rows != nil {
						t.Error("pending report leaked rows")
						return
					}
				case monitor.ReportComplete:
					if len(rep.Rows) != len(rows) {
						t.Errorf("complete report with %d rows", len(rep.Rows))
						return
					}
				}
			}
		}()
	}

	if err := s.Complete(id, rows); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	wg.Wait()
}
