package ingestion

import (
	"github.com/gin-gonic/gin"

	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/counter"
)

// Service is the HTTP boundary for the external detection pipeline: one POST
// per processed frame, zero or more detections each.
type Service struct {
	counter          *counter.Service
	maxBodySizeBytes int
}

// NewService creates the ingestion service feeding the counting core.
func NewService(ctr *counter.Service, maxBodySizeMB int) *Service {
	if ctr == nil {
		panic("ingestion: counter must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		counter:          ctr,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/frames", s.IngestHandler)
}
