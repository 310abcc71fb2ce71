/*
reportstore.go - Pending/Complete report handoff

PURPOSE:
  Keyed, append-only map from report id to either a Pending marker or the
  completed rows. The aggregator is the single writer per id; readers
  poll Get concurrently while the computation runs.

LIFECYCLE:
  Create() registers a Pending entry and returns a fresh id.
  Complete() publishes the rows and flips the status in one step, exactly
  once - a second call for the same id is rejected.
  There is no Failed state: per-store failures live inside the rows.
*/
package monitor

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ReportStore holds reports by id. Safe for concurrent use.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]*Report
}

// NewReportStore creates an empty store.
func NewReportStore() *ReportStore {
	return &ReportStore{reports: make(map[string]*Report)}
}

// Create registers a new Pending report and returns its id.
// Ids are dashless uuid4 hex, matching the export file naming.
func (s *ReportStore) Create() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[id] = &Report{
		ID:        id,
		Status:    ReportPending,
		CreatedAt: time.Now().UTC(),
	}
	return id
}

// Complete transitions a report to Complete and publishes its rows.
// One-shot: rejects unknown ids and already-complete reports.
func (s *ReportStore) Complete(id string, rows []ReportRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	if rep.Status == ReportComplete {
		return ErrReportAlreadyComplete
	}

	// Copy so the caller cannot mutate published rows afterwards.
	rep.Rows = append([]ReportRow(nil), rows...)
	rep.Status = ReportComplete
	rep.CompletedAt = time.Now().UTC()
	return nil
}

// Get returns a snapshot of the report. Rows are only present once the
// report is Complete.
func (s *ReportStore) Get(id string) (Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rep, ok := s.reports[id]
	if !ok {
		return Report{}, ErrReportNotFound
	}
	return *rep, nil
}
