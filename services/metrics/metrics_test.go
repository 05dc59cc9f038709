package metricsvc

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/attendance"
)

func TestSweepMetrics(t *testing.T) {
	m := New()
	m.Sweep(
		attendance.SweepResult{Date: core.MustParseDate("2024-03-01"), Absent: 3, OnLeave: 1},
		attendance.SweepResult{Date: core.MustParseDate("2024-03-02"), Skipped: attendance.SkipWeekend},
	)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.sweepRuns.WithLabelValues("swept")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sweepRuns.WithLabelValues("skipped_weekend")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.sweepRows.WithLabelValues("absent")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sweepRows.WithLabelValues("on_leave")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.QRScan(attendance.ActionCheckIn)
	m.ObserveHTTP(http.MethodGet, "/v1/employees", http.StatusOK, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `hrms_attendance_qr_scans_total{result="check_in"} 1`))
	assert.True(t, strings.Contains(body, `hrms_http_requests_total{method="GET",route="/v1/employees",status="200"} 1`))
}
