package counter

import (
	"log/slog"
	"sync"
	"time"

	v1 "github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/api/v1"
	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/storage/csvlog"
	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/telemetry"
)

// DefaultFlushInterval is how old an open bucket may get before the next
// event flushes it. Matches the minute granularity of the durable log.
const DefaultFlushInterval = time.Minute

// Sink receives flushed minute buckets. Implemented by csvlog.Writer.
type Sink interface {
	Append(rec csvlog.Record) error
}

// Service is the ingestion-side core: it deduplicates track IDs over the
// process lifetime, accumulates the open minute bucket, and flushes completed
// buckets to the sink.
//
// One mutex covers the whole check-and-insert + bucket mutation + flush
// decision, so the service is safe no matter how the external pipeline
// threads its frame callbacks. The tracked-ID set grows for the process
// lifetime; restart is the only reset point.
type Service struct {
	mu          sync.Mutex
	seen        map[string]struct{}
	totalUnique int
	open        *bucket

	sink       Sink
	flushAfter time.Duration
}

// bucket is the single open minute accumulator. It keeps its own set of
// track IDs so repeats within the minute count once, whether or not they are
// new over the process lifetime.
type bucket struct {
	minuteKey int64
	openedAt  time.Time
	seen      map[string]struct{}
}

// FrameResult summarizes one processed frame.
type FrameResult struct {
	Detections int `json:"detections"`
	NewUnique  int `json:"new_unique"`
}

// Snapshot is a point-in-time view of live counter state.
type Snapshot struct {
	TotalUnique   int   `json:"total_unique"`
	OpenMinuteKey int64 `json:"open_minute,omitempty"`
	OpenCount     int   `json:"open_minute_count"`
}

// NewService creates the counting core writing flushed buckets to sink.
// flushAfter <= 0 falls back to DefaultFlushInterval.
func NewService(sink Sink, flushAfter time.Duration) *Service {
	if sink == nil {
		panic("counter: sink must not be nil")
	}
	if flushAfter <= 0 {
		flushAfter = DefaultFlushInterval
	}
	return &Service{
		seen:       make(map[string]struct{}),
		sink:       sink,
		flushAfter: flushAfter,
	}
}

// ProcessFrame consumes the detections of one frame. Detections with a zero
// ObservedAt are stamped with the current clock. The frame is handled inside
// one critical section, so no event can race the minute-boundary flush.
func (s *Service) ProcessFrame(frame *v1.Frame) FrameResult {
	telemetry.IncrementFrames()

	s.mu.Lock()
	defer s.mu.Unlock()

	result := FrameResult{Detections: len(frame.Detections)}
	for _, d := range frame.Detections {
		now := d.ObservedAt
		if now.IsZero() {
			now = time.Now()
		}
		if s.record(now, d.TrackID) {
			result.NewUnique++
		}
	}

	telemetry.AddDetections(result.Detections)
	telemetry.SetUniquePeople(s.totalUnique)
	return result
}

// record applies one detection: flush the open bucket if it has aged out,
// open a fresh one if needed, then fold the track ID in. Returns whether the
// ID was new over the process lifetime.
func (s *Service) record(now time.Time, trackID string) bool {
	if s.open != nil && now.Sub(s.open.openedAt) >= s.flushAfter {
		s.flushLocked(now)
	}
	if s.open == nil {
		s.open = &bucket{
			minuteKey: now.Unix() / 60,
			openedAt:  now,
			seen:      make(map[string]struct{}),
		}
	}

	s.open.seen[trackID] = struct{}{}

	if _, dup := s.seen[trackID]; dup {
		return false
	}
	s.seen[trackID] = struct{}{}
	s.totalUnique++
	return true
}

// flushLocked converts the open bucket into a durable record. An append
// failure is logged and the bucket is dropped either way: losing one minute
// of counts is preferred over stalling the live pipeline.
func (s *Service) flushLocked(now time.Time) {
	b := s.open
	s.open = nil

	rec := csvlog.Record{
		Timestamp:   now,
		MinuteKey:   b.minuteKey,
		Count:       len(b.seen),
		TotalUnique: s.totalUnique,
	}
	if err := s.sink.Append(rec); err != nil {
		slog.Error("Failed to flush minute bucket, dropping it",
			"minute", rec.MinuteKey, "count", rec.Count, "error", err)
		return
	}

	telemetry.IncrementBucketsFlushed()
	slog.Info("Flushed minute bucket",
		"minute", rec.MinuteKey, "count", rec.Count, "total_unique", rec.TotalUnique)
}

// Flush forces out the open bucket, if any. Called on shutdown so the
// trailing partial minute is not silently lost.
func (s *Service) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open != nil {
		s.flushLocked(time.Now())
	}
}

// Snapshot reports live state without disturbing it.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{TotalUnique: s.totalUnique}
	if s.open != nil {
		snap.OpenMinuteKey = s.open.minuteKey
		snap.OpenCount = len(s.open.seen)
	}
	return snap
}
