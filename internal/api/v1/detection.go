package v1

import (
	"fmt"
	"time"
)

// Detection is a single "person observed" event produced by the external
// detection pipeline. The pipeline assigns TrackID to one physical person and
// keeps it stable across frames, which is what makes deduplication possible.
type Detection struct {
	// TrackID is the opaque tracking identifier assigned by the pipeline.
	// The service never interprets it beyond equality.
	TrackID string `json:"track_id"`

	// ObservedAt is when the person was seen (pipeline clock). Optional;
	// the ingestion layer stamps the server clock when it is zero.
	ObservedAt time.Time `json:"observed_at,omitempty"`
}

// Frame is one processed video frame: zero or more detections.
// Confidence filtering and bounding geometry are the pipeline's job;
// by the time a detection reaches this envelope it counts.
type Frame struct {
	// CapturedAt is when the frame was captured. Optional.
	CapturedAt time.Time `json:"captured_at,omitempty"`

	// Detections may be empty: a frame with nobody in it is still a frame.
	Detections []Detection `json:"detections"`
}

// Validate ensures every detection carries a track identifier.
func (f *Frame) Validate() error {
	for i, d := range f.Detections {
		if d.TrackID == "" {
			return fmt.Errorf("detections[%d]: track_id is required", i)
		}
	}
	return nil
}
