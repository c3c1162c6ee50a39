package ingestion

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/api/v1"
	httperr "github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/core/errors"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
)

// IngestHandler handles POST /v1/frames. One request per processed frame.
// Events are fire-and-forget: by the time we answer 202 the frame has been
// folded into the open minute bucket.
func (s *Service) IngestHandler(c *gin.Context) {
	frame, ok := s.parseFrame(c)
	if !ok {
		return
	}

	// Pipeline clocks are optional; stamp server time where missing so the
	// accumulator always has a usable timestamp.
	now := time.Now()
	for i := range frame.Detections {
		if frame.Detections[i].ObservedAt.IsZero() {
			frame.Detections[i].ObservedAt = now
		}
	}

	result := s.counter.ProcessFrame(frame)
	c.JSON(http.StatusAccepted, gin.H{
		"status":     "accepted",
		"detections": result.Detections,
		"new_unique": result.NewUnique,
	})
}

// parseFrame reads the size-limited request body and binds it into a Frame.
// It writes the error response itself and reports success via the bool.
func (s *Service) parseFrame(c *gin.Context) (*v1.Frame, bool) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   msgReadBodyFailed,
		})
		return nil, false
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		c.JSON(http.StatusRequestEntityTooLarge, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Request body exceeds maximum allowed size",
			Details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		})
		return nil, false
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var frame v1.Frame
	if err := c.ShouldBindJSON(&frame); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   msgInvalidJSON,
		})
		return nil, false
	}

	if err := frame.Validate(); err != nil {
		slog.Warn("Frame validation failed", "error", err)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   err.Error(),
		})
		return nil, false
	}

	return &frame, true
}
