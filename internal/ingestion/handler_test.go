package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/counter"
	"github.com/TheRealJacob07/Raspberry-Pi-Projects/internal/storage/csvlog"
)

type discardSink struct{}

func (discardSink) Append(csvlog.Record) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *counter.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctr := counter.NewService(discardSink{}, time.Minute)
	svc := NewService(ctr, 1)
	r := gin.New()
	svc.RegisterRoutes(r)
	return r, ctr
}

func postFrame(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/frames", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestIngestHandler_AcceptsFrame(t *testing.T) {
	r, ctr := newTestRouter(t)

	resp := postFrame(r, `{"detections":[{"track_id":"3"},{"track_id":"7"}]}`)
	require.Equal(t, http.StatusAccepted, resp.Code)

	var body struct {
		Status     string `json:"status"`
		Detections int    `json:"detections"`
		NewUnique  int    `json:"new_unique"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "accepted", body.Status)
	require.Equal(t, 2, body.Detections)
	require.Equal(t, 2, body.NewUnique)
	require.Equal(t, 2, ctr.Snapshot().TotalUnique)
}

func TestIngestHandler_EmptyFrameIsAccepted(t *testing.T) {
	r, ctr := newTestRouter(t)

	resp := postFrame(r, `{"detections":[]}`)
	require.Equal(t, http.StatusAccepted, resp.Code)
	require.Zero(t, ctr.Snapshot().TotalUnique)
}

func TestIngestHandler_RepeatedTrackIDsAreNotNewUniques(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := postFrame(r, `{"detections":[{"track_id":"3"}]}`)
	require.Equal(t, http.StatusAccepted, resp.Code)

	resp = postFrame(r, `{"detections":[{"track_id":"3"}]}`)
	require.Equal(t, http.StatusAccepted, resp.Code)

	var body struct {
		NewUnique int `json:"new_unique"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Zero(t, body.NewUnique)
}

func TestIngestHandler_InvalidBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"detections":`},
		{name: "wrong type", body: `{"detections":"many"}`},
		{name: "missing track id", body: `{"detections":[{"track_id":""}]}`},
	}

	r, ctr := newTestRouter(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postFrame(r, tc.body)
			require.Equal(t, http.StatusBadRequest, resp.Code)
			require.Contains(t, resp.Body.String(), "invalid_json")
		})
	}
	require.Zero(t, ctr.Snapshot().TotalUnique)
}

func TestIngestHandler_OversizedBodyRejected(t *testing.T) {
	r, ctr := newTestRouter(t)

	var buf bytes.Buffer
	buf.WriteString(`{"detections":[`)
	for i := 0; buf.Len() < 1<<20; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"track_id":"person-%08d"}`, i)
	}
	buf.WriteString(`]}`)

	resp := postFrame(r, buf.String())
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	require.Zero(t, ctr.Snapshot().TotalUnique)
}
