/*
Package ingest loads the three source CSV feeds into the SQLite store.

PURPOSE:
  One-shot bulk load of the raw poll data. Columns are located by header
  name, so column order in the source files does not matter. Malformed
  lines are skipped and counted rather than failing the load - the
  observation feed is known to be dirty and the engine tolerates
  duplicates and disorder anyway.

FILES:
  status.csv          store_id, status, timestamp_utc
  business_hours.csv  store_id, day (or day_of_week, dayOfWeek),
                      start_time_local, end_time_local
  timezones.csv       store_id, timezone_str (or timezone)

TIMESTAMPS:
  The status feed carries timestamps like
  "2023-01-24 09:06:42.605777 UTC"; a few fallback layouts are accepted.
*/
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pulse/uptime-engine/monitor"
	"github.com/pulse/uptime-engine/store/sqlite"
)

// timestampLayouts are tried in order when parsing the status feed.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999 UTC",
	"2006-01-02 15:04:05 UTC",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// ParseTimestamp parses an observation timestamp into UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// =============================================================================
// FEED READERS
// =============================================================================

// ReadObservations parses the status feed. Returns the parsed rows and
// the number of malformed lines skipped.
func ReadObservations(path string) ([]monitor.Observation, int, error) {
	var out []monitor.Observation
	skipped := 0

	err := readCSV(path, []string{"store_id", "status", "timestamp_utc"}, func(fields map[string]string) {
		status, err := monitor.ParseStatus(fields["status"])
		if err != nil {
			skipped++
			return
		}
		ts, err := ParseTimestamp(fields["timestamp_utc"])
		if err != nil {
			skipped++
			return
		}
		out = append(out, monitor.Observation{
			StoreID:   monitor.StoreID(fields["store_id"]),
			Status:    status,
			Timestamp: ts,
		})
	})
	return out, skipped, err
}

// ReadBusinessHours parses the weekly schedule feed.
func ReadBusinessHours(path string) ([]monitor.BusinessHoursRow, int, error) {
	var out []monitor.BusinessHoursRow
	skipped := 0

	err := readCSV(path, []string{"store_id"}, func(fields map[string]string) {
		day, err := strconv.Atoi(firstOf(fields, "day", "day_of_week", "dayOfWeek"))
		if err != nil || day < 0 || day > 6 {
			skipped++
			return
		}
		start, err := monitor.ParseDayTime(fields["start_time_local"])
		if err != nil {
			skipped++
			return
		}
		end, err := monitor.ParseDayTime(fields["end_time_local"])
		if err != nil {
			skipped++
			return
		}
		out = append(out, monitor.BusinessHoursRow{
			StoreID: monitor.StoreID(fields["store_id"]),
			Day:     day,
			Start:   start,
			End:     end,
		})
	})
	return out, skipped, err
}

// ReadTimezones parses the timezone feed.
func ReadTimezones(path string) ([]monitor.TimezoneRow, int, error) {
	var out []monitor.TimezoneRow
	skipped := 0

	err := readCSV(path, []string{"store_id"}, func(fields map[string]string) {
		name := firstOf(fields, "timezone_str", "timezone")
		if name == "" {
			skipped++
			return
		}
		out = append(out, monitor.TimezoneRow{
			StoreID: monitor.StoreID(fields["store_id"]),
			Name:    name,
		})
	})
	return out, skipped, err
}

// readCSV streams a CSV file, mapping each record to a header->value map.
// Records with the wrong field count are skipped by the csv reader
// configuration; required headers missing entirely is an error.
func readCSV(path string, required []string, row func(map[string]string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("%s: missing header: %w", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("%s: required column %q not found", path, name)
		}
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		fields := make(map[string]string, len(cols))
		for name, i := range cols {
			if i < len(record) {
				fields[name] = record[i]
			}
		}
		row(fields)
	}
}

func firstOf(fields map[string]string, names ...string) string {
	for _, n := range names {
		if v := fields[n]; v != "" {
			return v
		}
	}
	return ""
}

// =============================================================================
// DIRECTORY LOADER
// =============================================================================

// statusFileNames and friends accept the spellings seen in the source
// data drops.
var (
	statusFileNames   = []string{"status.csv", "store_status.csv"}
	hoursFileNames    = []string{"business_hours.csv", "businesshours.csv", "bussinesshours.csv"}
	timezoneFileNames = []string{"timezones.csv", "timezone.csv"}
)

// Summary reports what a LoadDir call ingested.
type Summary struct {
	Observations  int
	BusinessHours int
	Timezones     int
	Skipped       int
}

// LoadDir reads the three feeds from dir and bulk-inserts them into the
// store. The business-hours and timezone files are optional (stores
// missing from them get the 24x7 / UTC defaults); the status file is
// required.
func LoadDir(ctx context.Context, store *sqlite.Store, dir string) (Summary, error) {
	var sum Summary

	statusPath, err := findFile(dir, statusFileNames, true)
	if err != nil {
		return sum, err
	}
	obs, skipped, err := ReadObservations(statusPath)
	if err != nil {
		return sum, err
	}
	sum.Observations = len(obs)
	sum.Skipped += skipped
	if err := store.InsertObservations(ctx, obs); err != nil {
		return sum, err
	}

	if hoursPath, err := findFile(dir, hoursFileNames, false); err == nil && hoursPath != "" {
		hours, skipped, err := ReadBusinessHours(hoursPath)
		if err != nil {
			return sum, err
		}
		sum.BusinessHours = len(hours)
		sum.Skipped += skipped
		if err := store.InsertBusinessHours(ctx, hours); err != nil {
			return sum, err
		}
	}

	if tzPath, err := findFile(dir, timezoneFileNames, false); err == nil && tzPath != "" {
		zones, skipped, err := ReadTimezones(tzPath)
		if err != nil {
			return sum, err
		}
		sum.Timezones = len(zones)
		sum.Skipped += skipped
		if err := store.InsertTimezones(ctx, zones); err != nil {
			return sum, err
		}
	}

	if sum.Skipped > 0 {
		log.Printf("[Ingest] skipped %d malformed lines", sum.Skipped)
	}
	return sum, nil
}

func findFile(dir string, names []string, required bool) (string, error) {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	if required {
		return "", fmt.Errorf("none of %v found in %s", names, dir)
	}
	return "", nil
}
