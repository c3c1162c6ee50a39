package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	framesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "people_counter_frames_total",
		Help: "Total number of frames received from the detection pipeline",
	})

	detectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "people_counter_detections_total",
		Help: "Total number of person detections processed",
	})

	uniquePeople = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "people_counter_unique_people",
		Help: "Distinct track IDs seen since process start",
	})

	bucketsFlushedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "people_counter_buckets_flushed_total",
		Help: "Total number of minute buckets flushed to the durable log",
	})

	logWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "people_counter_log_write_failures_total",
		Help: "Total number of failed appends to the durable log",
	})

	logRowsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "people_counter_log_rows_skipped_total",
		Help: "Total number of malformed log rows skipped by readers",
	})
)

func init() {
	prometheus.MustRegister(framesTotal)
	prometheus.MustRegister(detectionsTotal)
	prometheus.MustRegister(uniquePeople)
	prometheus.MustRegister(bucketsFlushedTotal)
	prometheus.MustRegister(logWriteFailuresTotal)
	prometheus.MustRegister(logRowsSkippedTotal)

	// Initialize to 0 so the series appear before any traffic arrives.
	framesTotal.Add(0)
	detectionsTotal.Add(0)
	uniquePeople.Set(0)
	bucketsFlushedTotal.Add(0)
	logWriteFailuresTotal.Add(0)
	logRowsSkippedTotal.Add(0)
}

// IncrementFrames increments the received frame counter.
func IncrementFrames() {
	framesTotal.Inc()
}

// AddDetections adds to the processed detection counter.
func AddDetections(n int) {
	detectionsTotal.Add(float64(n))
}

// SetUniquePeople sets the distinct-people gauge.
func SetUniquePeople(n int) {
	uniquePeople.Set(float64(n))
}

// IncrementBucketsFlushed increments the flushed bucket counter.
func IncrementBucketsFlushed() {
	bucketsFlushedTotal.Inc()
}

// IncrementLogWriteFailures increments the failed append counter.
func IncrementLogWriteFailures() {
	logWriteFailuresTotal.Inc()
}

// IncrementLogRowsSkipped increments the skipped row counter.
func IncrementLogRowsSkipped() {
	logRowsSkippedTotal.Inc()
}
