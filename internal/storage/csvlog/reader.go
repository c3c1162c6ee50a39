package csvlog

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/telemetry"
)

// Reader parses the full durable log into an ordered record sequence.
//
// It re-reads the file on every call, which keeps it trivially consistent
// with a log that grows between reads. It holds no lock: the writer appends
// whole lines, so the worst a reader can see is a missing final row.
type Reader struct {
	path string
}

// NewReader returns a reader over the log file at path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// ReadAll returns every data row in file order.
//
// Blank lines, comment lines, and header rows (however many times the header
// appears) are skipped silently. A malformed data row is logged and skipped;
// it never fails the whole read. A missing file reads as an empty log.
func (r *Reader) ReadAll() ([]Record, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !isDataLine(line) {
			continue
		}

		rec, err := parseRow(line)
		if err != nil {
			slog.Warn("Skipping malformed log row", "path", r.path, "line", lineNo, "error", err)
			telemetry.IncrementLogRowsSkipped()
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}

	return records, nil
}

// isDataLine filters out everything that is not a data row: blanks, comments,
// and the header (matched on its first column so a partially edited header
// still skips rather than poisoning the parse).
func isDataLine(line string) bool {
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, commentMarker) {
		return false
	}
	if strings.HasPrefix(line, "Timestamp,") {
		return false
	}
	return true
}
