// Package export writes completed reports to delimited files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pulse/uptime-engine/monitor"
)

// Columns is the fixed export order.
var Columns = []string{
	"store_id",
	"uptime_last_hour",
	"uptime_last_day",
	"uptime_last_week",
	"downtime_last_hour",
	"downtime_last_day",
	"downtime_last_week",
}

// WriteReportCSV writes one row per store to <dir>/<report_id>.csv and
// returns the file path. Overwrites any previous export of the same
// report, so repeated calls are idempotent. Error-marker rows keep their
// store_id but leave the numeric columns empty.
func WriteReportCSV(dir string, rep monitor.Report) (string, error) {
	if rep.Status != monitor.ReportComplete {
		return "", fmt.Errorf("report %s is not complete", rep.ID)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, rep.ID+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return "", err
	}

	for _, row := range rep.Rows {
		record := make([]string, len(Columns))
		record[0] = string(row.StoreID)
		if row.Err == "" {
			record[1] = row.UptimeLastHour.String()
			record[2] = row.UptimeLastDay.String()
			record[3] = row.UptimeLastWeek.String()
			record[4] = row.DowntimeLastHour.String()
			record[5] = row.DowntimeLastDay.String()
			record[6] = row.DowntimeLastWeek.String()
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}
