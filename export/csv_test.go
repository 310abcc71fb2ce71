package export_test

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pulse/uptime-engine/export"
	"github.com/pulse/uptime-engine/monitor"
)

func TestWriteReportCSV_ColumnsAndValues(t *testing.T) {
	// GIVEN: A completed report with one healthy and one error row
	// WHEN: Exporting
	// THEN: Fixed column order; the error row keeps its id with empty
	//       numeric columns

	rep := monitor.Report{
		ID:     "abc123",
		Status: monitor.ReportComplete,
		Rows: []monitor.ReportRow{
			{
				StoreID:          "s1",
				UptimeLastHour:   decimal.NewFromInt(60),
				UptimeLastDay:    decimal.NewFromInt(8),
				UptimeLastWeek:   decimal.NewFromInt(40),
				DowntimeLastHour: decimal.NewFromInt(0),
				DowntimeLastDay:  decimal.NewFromInt(0),
				DowntimeLastWeek: decimal.NewFromInt(0),
			},
			{StoreID: "s2", Err: "corrupt schedule"},
		},
	}

	dir := t.TempDir()
	path, err := export.WriteReportCSV(dir, rep)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}

	wantHeader := []string{"store_id", "uptime_last_hour", "uptime_last_day", "uptime_last_week",
		"downtime_last_hour", "downtime_last_day", "downtime_last_week"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d]: expected %s, got %s", i, col, records[0][i])
		}
	}

	if records[1][0] != "s1" || records[1][1] != "60" || records[1][3] != "40" {
		t.Errorf("unexpected healthy row: %v", records[1])
	}
	if records[2][0] != "s2" || records[2][1] != "" {
		t.Errorf("unexpected error row: %v", records[2])
	}
}

func TestWriteReportCSV_PendingReport_Rejected(t *testing.T) {
	rep := monitor.Report{ID: "x", Status: monitor.ReportPending}
	if _, err := export.WriteReportCSV(t.TempDir(), rep); err == nil {
		t.Fatal("expected an error for a pending report")
	}
}
