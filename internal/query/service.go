package query

import (
	"github.com/gin-gonic/gin"

	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/aggregation"
)

// Limits bounds caller-supplied query parameters. Values come from config.
type Limits struct {
	DefaultPerPage int
	MaxPerPage     int
	MaxWindowHours int
	MaxWindowDays  int
}

func (l Limits) normalized() Limits {
	if l.DefaultPerPage <= 0 {
		l.DefaultPerPage = 50
	}
	if l.MaxPerPage <= 0 {
		l.MaxPerPage = 1000
	}
	if l.MaxWindowHours <= 0 {
		l.MaxWindowHours = 744
	}
	if l.MaxWindowDays <= 0 {
		l.MaxWindowDays = 366
	}
	return l
}

// Service is the stateless read API over the aggregation engine. It never
// mutates the log.
type Service struct {
	engine *aggregation.Engine
	limits Limits
}

// NewService creates the query service.
func NewService(engine *aggregation.Engine, limits Limits) *Service {
	if engine == nil {
		panic("query: engine must not be nil")
	}
	return &Service{engine: engine, limits: limits.normalized()}
}

// RegisterRoutes registers the read API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/data", s.HandleData)
	r.GET("/data/latest", s.HandleLatest)
	r.GET("/data/summary", s.HandleSummary)
	r.GET("/data/hourly", s.HandleHourly)
	r.GET("/data/daily", s.HandleDaily)
	r.GET("/data/current", s.HandleCurrent)
}
