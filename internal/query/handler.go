package query

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/aggregation"
	httperr "github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/core/errors"
	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/storage/csvlog"
)

const (
	defaultHours = 24
	defaultDays  = 7
)

// PageResponse is the body of GET /data.
type PageResponse struct {
	Data         []csvlog.Record `json:"data"`
	Page         int             `json:"page"`
	PerPage      int             `json:"per_page"`
	TotalRecords int             `json:"total_records"`
	TotalPages   int             `json:"total_pages"`
}

// HandleData handles GET /data?page=&per_page= — paginated raw records.
func (s *Service) HandleData(c *gin.Context) {
	page, err := intParam(c, "page", 1)
	if err != nil || page < 1 {
		writeInvalidQuery(c, "page must be a positive integer")
		return
	}
	perPage, err := intParam(c, "per_page", s.limits.DefaultPerPage)
	if err != nil || perPage < 1 || perPage > s.limits.MaxPerPage {
		writeInvalidQuery(c, fmt.Sprintf("per_page must be between 1 and %d", s.limits.MaxPerPage))
		return
	}

	records, err := s.engine.Load()
	if err != nil {
		writeInternal(c, "Failed to read log", err)
		return
	}

	total := len(records)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	// Keep an empty page as [] rather than null.
	pageData := records[start:end]
	if pageData == nil {
		pageData = []csvlog.Record{}
	}

	c.JSON(http.StatusOK, PageResponse{
		Data:         pageData,
		Page:         page,
		PerPage:      perPage,
		TotalRecords: total,
		TotalPages:   totalPages,
	})
}

// HandleLatest handles GET /data/latest. 404 when the log is empty.
func (s *Service) HandleLatest(c *gin.Context) {
	rec, err := s.engine.Latest()
	if err != nil {
		if errors.Is(err, aggregation.ErrNoRecords) {
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "No data available",
			})
			return
		}
		writeInternal(c, "Failed to read log", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"latest": rec})
}

// HandleSummary handles GET /data/summary. An empty log answers with zeros.
func (s *Service) HandleSummary(c *gin.Context) {
	summary, err := s.engine.Summarize()
	if err != nil {
		writeInternal(c, "Failed to summarize log", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// HandleHourly handles GET /data/hourly?hours= — zero-filled hourly series.
func (s *Service) HandleHourly(c *gin.Context) {
	hours, err := intParam(c, "hours", defaultHours)
	if err != nil || hours <= 0 || hours > s.limits.MaxWindowHours {
		writeInvalidQuery(c, fmt.Sprintf("hours must be between 1 and %d", s.limits.MaxWindowHours))
		return
	}

	series, err := s.engine.Hourly(hours)
	if err != nil {
		writeInternal(c, "Failed to aggregate hourly data", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hourly": series, "hours": hours})
}

// HandleDaily handles GET /data/daily?days= — zero-filled daily series.
func (s *Service) HandleDaily(c *gin.Context) {
	days, err := intParam(c, "days", defaultDays)
	if err != nil || days <= 0 || days > s.limits.MaxWindowDays {
		writeInvalidQuery(c, fmt.Sprintf("days must be between 1 and %d", s.limits.MaxWindowDays))
		return
	}

	series, err := s.engine.Daily(days)
	if err != nil {
		writeInternal(c, "Failed to aggregate daily data", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily": series, "days": days})
}

// HandleCurrent handles GET /data/current — counts for the minute, hour, and
// day containing now, zeroed when the log has nothing for them.
func (s *Service) HandleCurrent(c *gin.Context) {
	snap, err := s.engine.Current()
	if err != nil {
		writeInternal(c, "Failed to read current periods", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": snap})
}

func intParam(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeInvalidQuery(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidQueryError,
		Message:   msg,
	})
}

func writeInternal(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   msg,
		Details:   err.Error(),
	})
}
