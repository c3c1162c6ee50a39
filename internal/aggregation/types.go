package aggregation

import (
	"time"

	"github.com/shopspring/decimal"
)

// HourBucket is one zero-filled entry of an hourly series.
type HourBucket struct {
	HourKey int64     `json:"hour"`
	Start   time.Time `json:"start"`
	Count   int       `json:"people_count"`
}

// DayBucket is one zero-filled entry of a daily series.
type DayBucket struct {
	DayKey int64     `json:"day"`
	Start  time.Time `json:"start"`
	Count  int       `json:"people_count"`
}

// CurrentSnapshot reports counts for the minute, hour, and day containing
// "now". All-zero when the log has nothing for the current periods.
type CurrentSnapshot struct {
	Now         time.Time `json:"now"`
	MinuteKey   int64     `json:"minute"`
	HourKey     int64     `json:"hour"`
	DayKey      int64     `json:"day"`
	MinuteCount int       `json:"people_this_minute"`
	HourCount   int       `json:"people_this_hour"`
	DayCount    int       `json:"people_this_day"`
	TotalUnique int       `json:"total_unique"`
}

// Summary holds global statistics over the whole log. Zero-valued for an
// empty log.
type Summary struct {
	TotalRecords    int             `json:"total_records"`
	FirstTimestamp  time.Time       `json:"first_timestamp,omitzero"`
	LastTimestamp   time.Time       `json:"last_timestamp,omitzero"`
	TotalDetections int             `json:"total_detections"`
	PeakMinuteCount int             `json:"peak_minute_count"`
	AvgPerRecord    decimal.Decimal `json:"avg_per_record"`
	TotalUnique     int             `json:"total_unique"`
}
