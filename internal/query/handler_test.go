package query

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/aggregation"
	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/storage/csvlog"
)

type fakeSource struct {
	records []csvlog.Record
	err     error
}

func (s *fakeSource) ReadAll() ([]csvlog.Record, error) {
	return s.records, s.err
}

func newRouter(t *testing.T, records ...csvlog.Record) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := aggregation.NewEngine(&fakeSource{records: records})
	svc := NewService(engine, Limits{})
	r := gin.New()
	svc.RegisterRoutes(r)
	return r
}

func get(r *gin.Engine, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func rec(minuteKey int64, count, total int) csvlog.Record {
	return csvlog.Record{
		Timestamp:   time.Unix(minuteKey*60, 0),
		MinuteKey:   minuteKey,
		Count:       count,
		TotalUnique: total,
	}
}

func TestHandleData_StatusMapping(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		expectedStatus int
	}{
		{name: "defaults ok", url: "/data", expectedStatus: http.StatusOK},
		{name: "explicit paging ok", url: "/data?page=1&per_page=2", expectedStatus: http.StatusOK},
		{name: "zero page rejected", url: "/data?page=0", expectedStatus: http.StatusBadRequest},
		{name: "negative page rejected", url: "/data?page=-3", expectedStatus: http.StatusBadRequest},
		{name: "non-numeric page rejected", url: "/data?page=abc", expectedStatus: http.StatusBadRequest},
		{name: "zero per_page rejected", url: "/data?per_page=0", expectedStatus: http.StatusBadRequest},
		{name: "oversized per_page rejected", url: "/data?per_page=100000", expectedStatus: http.StatusBadRequest},
	}

	r := newRouter(t, rec(100, 2, 2), rec(101, 1, 3))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := get(r, tc.url)
			require.Equal(t, tc.expectedStatus, resp.Code)
		})
	}
}

func TestHandleData_PagesCoverLogWithoutGapsOrDuplicates(t *testing.T) {
	var records []csvlog.Record
	for i := int64(0); i < 10; i++ {
		records = append(records, rec(100+i, int(i), int(i)))
	}
	r := newRouter(t, records...)

	var collected []csvlog.Record
	for page := 1; ; page++ {
		resp := get(r, fmt.Sprintf("/data?page=%d&per_page=3", page))
		require.Equal(t, http.StatusOK, resp.Code)

		var body PageResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		require.Equal(t, 10, body.TotalRecords)
		require.Equal(t, 4, body.TotalPages)
		if len(body.Data) == 0 {
			break
		}
		collected = append(collected, body.Data...)
	}

	require.Len(t, collected, 10)
	for i, got := range collected {
		require.Equal(t, int64(100+int64(i)), got.MinuteKey)
	}
}

func TestHandleLatest(t *testing.T) {
	t.Run("empty log answers 404", func(t *testing.T) {
		resp := get(newRouter(t), "/data/latest")
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("last record returned", func(t *testing.T) {
		resp := get(newRouter(t, rec(100, 2, 2), rec(101, 1, 3)), "/data/latest")
		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Latest csvlog.Record `json:"latest"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		require.Equal(t, int64(101), body.Latest.MinuteKey)
	})
}

func TestHandleSummary_EmptyLogAnswersZeros(t *testing.T) {
	resp := get(newRouter(t), "/data/summary")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Summary aggregation.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Zero(t, body.Summary.TotalRecords)
	require.Zero(t, body.Summary.TotalUnique)
}

func TestHandleHourly_WindowValidation(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		expectedStatus int
	}{
		{name: "default window ok", url: "/data/hourly", expectedStatus: http.StatusOK},
		{name: "explicit window ok", url: "/data/hourly?hours=3", expectedStatus: http.StatusOK},
		{name: "zero rejected", url: "/data/hourly?hours=0", expectedStatus: http.StatusBadRequest},
		{name: "negative rejected", url: "/data/hourly?hours=-1", expectedStatus: http.StatusBadRequest},
		{name: "absurd window rejected", url: "/data/hourly?hours=99999", expectedStatus: http.StatusBadRequest},
		{name: "non-numeric rejected", url: "/data/hourly?hours=soon", expectedStatus: http.StatusBadRequest},
	}

	r := newRouter(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expectedStatus, get(r, tc.url).Code)
		})
	}
}

func TestHandleDaily_WindowValidation(t *testing.T) {
	r := newRouter(t)
	require.Equal(t, http.StatusOK, get(r, "/data/daily").Code)
	require.Equal(t, http.StatusOK, get(r, "/data/daily?days=2").Code)
	require.Equal(t, http.StatusBadRequest, get(r, "/data/daily?days=0").Code)
	require.Equal(t, http.StatusBadRequest, get(r, "/data/daily?days=99999").Code)
}

func TestHandleHourly_SeriesIsZeroFilled(t *testing.T) {
	resp := get(newRouter(t), "/data/hourly?hours=5")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Hourly []aggregation.HourBucket `json:"hourly"`
		Hours  int                      `json:"hours"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, 5, body.Hours)
	require.Len(t, body.Hourly, 5)
}

func TestHandleCurrent_EmptyLogAnswersZeros(t *testing.T) {
	resp := get(newRouter(t), "/data/current")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Current aggregation.CurrentSnapshot `json:"current"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Zero(t, body.Current.MinuteCount)
	require.Zero(t, body.Current.TotalUnique)
}

func TestHandlers_SourceErrorAnswers500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := aggregation.NewEngine(&fakeSource{err: fmt.Errorf("permission denied")})
	svc := NewService(engine, Limits{})
	r := gin.New()
	svc.RegisterRoutes(r)

	for _, url := range []string{"/data", "/data/latest", "/data/summary", "/data/hourly", "/data/daily", "/data/current"} {
		require.Equal(t, http.StatusInternalServerError, get(r, url).Code, url)
	}
}
