package csvlog

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/telemetry"
)

// Writer appends flushed minute buckets to the durable log file.
//
// The file is opened in append mode for every write, so a concurrent process
// can never truncate it, and readers that re-open the file independently never
// observe a torn row: each record is a single line write terminated before
// Append returns. A single mutex serializes writers; readers take no lock.
type Writer struct {
	mu   sync.Mutex
	path string
}

// NewWriter prepares the log file at path. A missing or empty file gets the
// comment banner and column header; an existing file is preserved as-is.
// Every start appends a session comment line so restart boundaries (where
// Total_Unique_People may drop back) are visible in the raw log.
func NewWriter(path string) (*Writer, error) {
	w := &Writer{path: path}

	if err := w.ensureHeader(); err != nil {
		return nil, fmt.Errorf("initialize log file: %w", err)
	}

	session := uuid.NewString()
	if err := w.appendLine(fmt.Sprintf("%s session %s started %s",
		commentMarker, session, time.Now().Format(TimestampLayout))); err != nil {
		return nil, fmt.Errorf("write session marker: %w", err)
	}

	slog.Info("Durable log ready", "path", path, "session", session)
	return w, nil
}

// Path returns the log file location.
func (w *Writer) Path() string { return w.path }

// Append writes one record as a single durable row. A failure is reported to
// the caller and leaves the log untouched beyond whatever the OS persisted;
// the caller is expected to log it, drop the bucket, and keep ingesting.
func (w *Writer) Append(rec Record) error {
	if rec.Count < 0 {
		return fmt.Errorf("refusing to append negative count %d", rec.Count)
	}
	if err := w.appendLine(formatRow(rec)); err != nil {
		telemetry.IncrementLogWriteFailures()
		return fmt.Errorf("append record for minute %d: %w", rec.MinuteKey, err)
	}
	return nil
}

func (w *Writer) ensureHeader() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(w.path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	banner := commentMarker + " People counter data log\n" +
		commentMarker + " One row per flushed minute bucket; lines starting with '" + commentMarker + "' are comments\n" +
		Header + "\n"
	_, err = f.WriteString(banner)
	return err
}

func (w *Writer) appendLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
