/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal monitor model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/pulse/uptime-engine/monitor"
)

// TriggerReportResponse acknowledges an accepted report computation.
type TriggerReportResponse struct {
	ReportID string `json:"report_id"`
}

// ReportRowDTO is one store's figures. Last-hour values are minutes;
// last-day and last-week values are hours.
type ReportRowDTO struct {
	StoreID          string          `json:"store_id"`
	UptimeLastHour   decimal.Decimal `json:"uptime_last_hour"`
	UptimeLastDay    decimal.Decimal `json:"uptime_last_day"`
	UptimeLastWeek   decimal.Decimal `json:"uptime_last_week"`
	DowntimeLastHour decimal.Decimal `json:"downtime_last_hour"`
	DowntimeLastDay  decimal.Decimal `json:"downtime_last_day"`
	DowntimeLastWeek decimal.Decimal `json:"downtime_last_week"`

	// AssumedWindows lists windows with no observations, where the
	// figures are the conservative fallback rather than a measurement.
	AssumedWindows []string `json:"assumed_windows,omitempty"`

	// Error is set when this store's row could not be computed.
	Error string `json:"error,omitempty"`
}

// GetReportResponse is the polling response. Rows and CSVFilePath are
// present only once the report is Complete.
type GetReportResponse struct {
	Status      string         `json:"status"`
	CSVFilePath string         `json:"csv_file_path,omitempty"`
	Rows        []ReportRowDTO `json:"report_data,omitempty"`
}

func rowDTO(r monitor.ReportRow) ReportRowDTO {
	return ReportRowDTO{
		StoreID:          string(r.StoreID),
		UptimeLastHour:   r.UptimeLastHour,
		UptimeLastDay:    r.UptimeLastDay,
		UptimeLastWeek:   r.UptimeLastWeek,
		DowntimeLastHour: r.DowntimeLastHour,
		DowntimeLastDay:  r.DowntimeLastDay,
		DowntimeLastWeek: r.DowntimeLastWeek,
		AssumedWindows:   r.AssumedWindows,
		Error:            r.Err,
	}
}
