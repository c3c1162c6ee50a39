package aggregation

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/storage/csvlog"
)

// ErrNoRecords marks queries against an empty log that have no zero-valued
// answer, such as "latest".
var ErrNoRecords = errors.New("no records in log")

// Source produces the ordered record sequence the engine aggregates over.
// Implemented by csvlog.Reader.
type Source interface {
	ReadAll() ([]csvlog.Record, error)
}

// Engine answers all read-side queries. It is stateless between calls: every
// query re-reads the log through the source, so a log that grew since the
// last call is picked up automatically. Concurrent identical reads are
// coalesced through singleflight so a burst of dashboard polls costs one
// file scan.
type Engine struct {
	source Source
	group  singleflight.Group
	nowFn  func() time.Time
}

// NewEngine creates an aggregation engine over source.
func NewEngine(source Source) *Engine {
	return &Engine{
		source: source,
		nowFn:  func() time.Time { return time.Now() },
	}
}

// Load reads the full record sequence, deduplicating concurrent callers.
func (e *Engine) Load() ([]csvlog.Record, error) {
	v, err, _ := e.group.Do("log", func() (interface{}, error) {
		return e.source.ReadAll()
	})
	if err != nil {
		return nil, err
	}
	return v.([]csvlog.Record), nil
}

// Latest returns the last record in file order.
func (e *Engine) Latest() (csvlog.Record, error) {
	records, err := e.Load()
	if err != nil {
		return csvlog.Record{}, err
	}
	if len(records) == 0 {
		return csvlog.Record{}, ErrNoRecords
	}
	return records[len(records)-1], nil
}

// Current reports counts for the minute, hour, and day containing now.
//
// The current minute is at most one record; if the writer ever produced
// duplicates for a minute, the later one in file order wins. Hour and day
// counts sum People_Count over every record in the period, duplicates
// included.
func (e *Engine) Current() (CurrentSnapshot, error) {
	records, err := e.Load()
	if err != nil {
		return CurrentSnapshot{}, err
	}

	now := e.nowFn()
	snap := CurrentSnapshot{
		Now:       now,
		MinuteKey: now.Unix() / 60,
		HourKey:   now.Unix() / 3600,
		DayKey:    now.Unix() / 86400,
	}

	for _, rec := range records {
		if rec.MinuteKey == snap.MinuteKey {
			snap.MinuteCount = rec.Count
		}
		if rec.HourKey() == snap.HourKey {
			snap.HourCount += rec.Count
		}
		if rec.DayKey() == snap.DayKey {
			snap.DayCount += rec.Count
		}
		snap.TotalUnique = rec.TotalUnique
	}

	return snap, nil
}

// Hourly returns the last `hours` hour buckets ending at the current hour,
// in chronological order. Hours absent from the log are zero-filled; the
// stored log itself is never zero-filled.
func (e *Engine) Hourly(hours int) ([]HourBucket, error) {
	records, err := e.Load()
	if err != nil {
		return nil, err
	}

	sums := make(map[int64]int)
	for _, rec := range records {
		sums[rec.HourKey()] += rec.Count
	}

	endHour := e.nowFn().Unix() / 3600
	series := make([]HourBucket, 0, hours)
	for h := endHour - int64(hours) + 1; h <= endHour; h++ {
		series = append(series, HourBucket{
			HourKey: h,
			Start:   time.Unix(h*3600, 0).UTC(),
			Count:   sums[h],
		})
	}
	return series, nil
}

// Daily returns the last `days` day buckets ending at the current day,
// zero-filled, in chronological order.
func (e *Engine) Daily(days int) ([]DayBucket, error) {
	records, err := e.Load()
	if err != nil {
		return nil, err
	}

	sums := make(map[int64]int)
	for _, rec := range records {
		sums[rec.DayKey()] += rec.Count
	}

	endDay := e.nowFn().Unix() / 86400
	series := make([]DayBucket, 0, days)
	for d := endDay - int64(days) + 1; d <= endDay; d++ {
		series = append(series, DayBucket{
			DayKey: d,
			Start:  time.Unix(d*86400, 0).UTC(),
			Count:  sums[d],
		})
	}
	return series, nil
}

// Summarize computes global statistics over the whole log. An empty log
// yields zeros, not an error.
func (e *Engine) Summarize() (Summary, error) {
	records, err := e.Load()
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalRecords: len(records),
		AvgPerRecord: decimal.Zero,
	}
	if len(records) == 0 {
		return summary, nil
	}

	summary.FirstTimestamp = records[0].Timestamp
	summary.LastTimestamp = records[0].Timestamp
	for _, rec := range records {
		summary.TotalDetections += rec.Count
		if rec.Count > summary.PeakMinuteCount {
			summary.PeakMinuteCount = rec.Count
		}
		if rec.Timestamp.Before(summary.FirstTimestamp) {
			summary.FirstTimestamp = rec.Timestamp
		}
		if rec.Timestamp.After(summary.LastTimestamp) {
			summary.LastTimestamp = rec.Timestamp
		}
	}
	summary.TotalUnique = records[len(records)-1].TotalUnique
	summary.AvgPerRecord = decimal.NewFromInt(int64(summary.TotalDetections)).
		DivRound(decimal.NewFromInt(int64(len(records))), 2)

	return summary, nil
}
