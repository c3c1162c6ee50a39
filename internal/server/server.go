package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	Engine  *gin.Engine
	Addr    string
	logPath string
}

func New(addr string, logPath string, mode string) *Server {
	// Set Gin mode based on configuration
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	s := &Server{
		Engine:  r,
		Addr:    addr,
		logPath: logPath,
	}

	r.GET("/", s.infoHandler)
	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// infoHandler answers GET / with the route map, so a bare curl against the
// service is self-describing.
func (s *Server) infoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "people-counter",
		"endpoints": gin.H{
			"GET /data":         "paginated raw records (page, per_page)",
			"GET /data/latest":  "latest record",
			"GET /data/summary": "summary statistics",
			"GET /data/hourly":  "zero-filled hourly series (hours)",
			"GET /data/daily":   "zero-filled daily series (days)",
			"GET /data/current": "current minute/hour/day snapshot",
			"POST /v1/frames":   "ingest one detection frame",
			"GET /health":       "health check",
			"GET /metrics":      "prometheus metrics",
		},
		"log_file": s.logPath,
	})
}

// healthHandler verifies the durable log is reachable. A missing file is
// healthy: the writer recreates it on the next append.
func (s *Server) healthHandler(c *gin.Context) {
	logState := "present"
	if _, err := os.Stat(s.logPath); err != nil {
		if os.IsNotExist(err) {
			logState = "pending"
		} else {
			slog.Error("Health check failed: log file inaccessible", "path", s.logPath, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "log file inaccessible",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"log_file": logState,
	})
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Addr,
		Handler: s.Engine,
	}

	slog.Info("Starting HTTP Server...", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("Stopping HTTP Server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP Server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
