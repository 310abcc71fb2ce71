/*
handlers.go - HTTP API handlers for report generation

PURPOSE:
  Exposes the uptime engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the monitor core.

ENDPOINTS:
  POST /api/trigger_report        Start a report computation, returns id
  GET  /api/get_report/{id}       Poll a report: Pending or Complete
  GET  /api/health                Liveness probe

REQUEST FLOW (trigger):
  1. Snapshot the three feeds from SQLite
  2. Register a Pending report
  3. Compute rows on a background goroutine (bounded by GenerateTimeout)
  4. Publish rows via ReportStore.Complete

  The caller's poll loop on get_report is the only suspension point; the
  computation itself never blocks on I/O.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 404: Unknown report id
  - 500: Feed snapshot failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - monitor/aggregate.go: The computation behind trigger_report
*/
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pulse/uptime-engine/export"
	"github.com/pulse/uptime-engine/monitor"
	"github.com/pulse/uptime-engine/store/sqlite"
)

// defaultGenerateTimeout bounds a single report computation. A report
// whose computation is cut off still completes (with the rows cleared),
// so pollers never observe Pending forever.
const defaultGenerateTimeout = 10 * time.Minute

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Reports *monitor.ReportStore

	// ReportsDir receives the exported CSV files.
	ReportsDir string

	// GenerateTimeout bounds background report computation. Zero means
	// defaultGenerateTimeout.
	GenerateTimeout time.Duration
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, reportsDir string) *Handler {
	return &Handler{
		Store:      store,
		Reports:    monitor.NewReportStore(),
		ReportsDir: reportsDir,
	}
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// TriggerReport snapshots the current feeds and starts an asynchronous
// report computation.
func (h *Handler) TriggerReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	observations, err := h.Store.LoadObservations(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load observations", err)
		return
	}
	hours, err := h.Store.LoadBusinessHours(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load business hours", err)
		return
	}
	zones, err := h.Store.LoadTimezones(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load timezones", err)
		return
	}

	id := h.Reports.Create()
	go h.generate(id, observations, hours, zones)

	writeJSON(w, http.StatusAccepted, TriggerReportResponse{ReportID: id})
}

// generate runs the aggregation off the request goroutine and publishes
// the result. The report always reaches Complete.
func (h *Handler) generate(id string, observations []monitor.Observation, hours []monitor.BusinessHoursRow, zones []monitor.TimezoneRow) {
	timeout := h.GenerateTimeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	index := monitor.NewObservationIndex(observations)
	schedule := monitor.NewScheduleResolver(hours, zones)
	agg := monitor.NewAggregator(index, schedule)

	var rows []monitor.ReportRow
	if reference, ok := index.Latest(); ok {
		computed, err := agg.BuildReport(ctx, reference, agg.Stores())
		if err != nil {
			log.Printf("[Report] %s: computation aborted: %v", id, err)
		} else {
			rows = computed
		}
	} else {
		log.Printf("[Report] %s: no observations ingested, report is empty", id)
	}

	if err := h.Reports.Complete(id, rows); err != nil {
		log.Printf("[Report] %s: publish failed: %v", id, err)
		return
	}
	log.Printf("[Report] %s: complete, %d rows", id, len(rows))
}

// GetReport polls a report by id. Completed reports are exported to CSV
// on demand, mirroring the original service's behavior.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rep, err := h.Reports.Get(id)
	if err != nil {
		if monitor.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Report ID not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get report", err)
		return
	}

	if rep.Status != monitor.ReportComplete {
		writeJSON(w, http.StatusOK, GetReportResponse{Status: string(rep.Status)})
		return
	}

	path, err := export.WriteReportCSV(h.ReportsDir, rep)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export report CSV", err)
		return
	}

	dtos := make([]ReportRowDTO, len(rep.Rows))
	for i, row := range rep.Rows {
		dtos[i] = rowDTO(row)
	}
	writeJSON(w, http.StatusOK, GetReportResponse{
		Status:      string(rep.Status),
		CSVFilePath: path,
		Rows:        dtos,
	})
}

// Health is a liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
