package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calderonlabs/lexprobe/internal/probe"
	"github.com/calderonlabs/lexprobe/internal/report"
)

func newTestServer(t *testing.T) (*Server, *report.Holder) {
	t.Helper()
	holder := report.NewHolder()
	return NewServer(holder, zap.NewNop()), holder
}

func TestHealthAndReadiness(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestLatestReportNotFoundBeforeFirstRun(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/report/latest", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLatestReportReturnsStoredReport(t *testing.T) {
	t.Parallel()

	s, holder := newTestServer(t)
	holder.Set(probe.Report{
		Timestamp:          time.Unix(1700000000, 0).UTC(),
		TotalTargets:       2,
		SuccessfulTargets:  1,
		SuccessRatePercent: 50,
		TargetGoalPercent:  80,
		ByCategory:         map[string]probe.CategoryStats{"gov": {Total: 2, Successful: 1}},
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/report/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got probe.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 2, got.TotalTargets)
	require.Equal(t, 1, got.SuccessfulTargets)
}

func TestMetricsEndpointServes(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
