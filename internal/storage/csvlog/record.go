package csvlog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Header is the column row of the durable log. The reader treats every
// occurrence as a skip, not just the first, so a manually rotated file that
// repeats it still parses.
const Header = "Timestamp,Minute,People_Count,Total_Unique_People"

// commentMarker prefixes non-data lines. The writer emits a banner of these
// on file creation and a session line on every start.
const commentMarker = "#"

// TimestampLayout is the human-readable timestamp written into each row.
const TimestampLayout = "2006-01-02 15:04:05"

// rfc3339Fallback lets the reader accept rows written by other tooling.
const rfc3339Fallback = time.RFC3339

// Record is one flushed minute bucket. Immutable once written; the log is
// only ever appended to.
type Record struct {
	// Timestamp is when the bucket was flushed (human-readable in the file).
	Timestamp time.Time `json:"timestamp"`

	// MinuteKey is epoch seconds / 60 of the bucket the record covers.
	MinuteKey int64 `json:"minute"`

	// Count is the number of distinct track IDs seen during that minute.
	Count int `json:"people_count"`

	// TotalUnique is the running unique-person total at flush time.
	// Non-decreasing within one process lifetime; a restart may reset it.
	TotalUnique int `json:"total_unique"`
}

// HourKey derives the hour bucket (epoch seconds / 3600) from MinuteKey.
func (r Record) HourKey() int64 { return r.MinuteKey / 60 }

// DayKey derives the day bucket (epoch seconds / 86400) from MinuteKey.
func (r Record) DayKey() int64 { return r.MinuteKey / 1440 }

// formatRow renders a record as one CSV data row, without trailing newline.
func formatRow(r Record) string {
	return fmt.Sprintf("%s,%d,%d,%d",
		r.Timestamp.Format(TimestampLayout), r.MinuteKey, r.Count, r.TotalUnique)
}

// parseRow parses one data row. It is a filtering parser, not a schema
// parser: extra columns are ignored, but the first four must be well-formed.
func parseRow(line string) (Record, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 4 {
		return Record{}, fmt.Errorf("expected at least 4 fields, got %d", len(fields))
	}

	ts, err := parseTimestamp(strings.TrimSpace(fields[0]))
	if err != nil {
		return Record{}, fmt.Errorf("bad timestamp %q: %w", fields[0], err)
	}

	minute, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad minute key %q: %w", fields[1], err)
	}

	count, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return Record{}, fmt.Errorf("bad people count %q: %w", fields[2], err)
	}
	if count < 0 {
		return Record{}, fmt.Errorf("negative people count %d", count)
	}

	total, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return Record{}, fmt.Errorf("bad unique total %q: %w", fields[3], err)
	}

	return Record{Timestamp: ts, MinuteKey: minute, Count: count, TotalUnique: total}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.ParseInLocation(TimestampLayout, s, time.Local); err == nil {
		return ts, nil
	}
	return time.Parse(rfc3339Fallback, s)
}
