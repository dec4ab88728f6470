package observability

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/ctxutil"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveStage("members_clean", "ok", time.Second)
	m.AddRowsWritten("members_clean", 3)
	m.AddDataQuality("members_clean", "unique_cpr", "warn", 1)
	m.IncRun("succeeded")
	m.IncLockConflict()
	m.ObserveAPI("GET", "/healthz", "200", time.Millisecond)
	assert.Nil(t, m.Registry())
}

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddRowsWritten("members_clean", 3)
	m.AddRowsWritten("members_clean", 2)
	m.AddRowsWritten("members_clean", 0)
	m.IncRun("failed")
	m.ObserveStage("members_clean", "ok", 20*time.Millisecond)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.rowsWritten.WithLabelValues("members_clean")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("failed")))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "pension_stage_rows_written_total")
	assert.Contains(t, string(body), "pension_stage_duration_seconds_bucket")
}

func TestReportDataQualitySendsAlert(t *testing.T) {
	var got map[string]any
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()
	t.Setenv("DATA_QUALITY_ALERTS_ENABLED", "true")
	t.Setenv("DATA_QUALITY_ALERT_WEBHOOK_URL", hook.URL)

	q := pension.Quality{Stage: "members_clean_alert_test", Checks: []pension.Check{
		{Name: "unique_cpr", Severity: pension.SeverityWarn, Count: 2},
		{Name: "age_range", Severity: pension.SeverityPass},
	}}
	ctx := ctxutil.WithRunData(context.Background(), &ctxutil.RunData{RunID: "run-1"})
	ReportDataQuality(ctx, nil, q, nil)

	require.NotNil(t, got)
	assert.Equal(t, "members_clean_alert_test", got["stage"])
	issues, _ := got["issues"].(map[string]any)
	assert.EqualValues(t, 2, issues["unique_cpr"])
	_, hasPass := issues["age_range"]
	assert.False(t, hasPass)
	meta, _ := got["meta"].(map[string]any)
	assert.Equal(t, "run-1", meta["run_id"])
}

func TestStartSpanWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "stage.members_clean")
	require.NotNil(t, ctx)
	EndSpan(span, nil)
	EndSpan(nil, nil)
}
