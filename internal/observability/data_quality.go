package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/ctxutil"
	"github.com/yungbote/pension-pipeline/internal/pkg/httpx"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type dqAlertState struct {
	mu   sync.Mutex
	last map[string]time.Time
}

var dqAlerts dqAlertState

// ReportDataQuality logs and counts every failing check of a stage. Findings
// never change control flow; an optional webhook receives a rate-limited alert.
func ReportDataQuality(ctx context.Context, log *logger.Logger, q pension.Quality, meta map[string]any) {
	issues := q.Issues()
	if len(issues) == 0 {
		return
	}
	stage := strings.TrimSpace(q.Stage)
	if stage == "" {
		stage = "unknown"
	}
	if meta == nil {
		meta = map[string]any{}
	}
	if rd := ctxutil.GetRunData(ctx); rd != nil {
		if rd.RunID != "" {
			meta["run_id"] = rd.RunID
		}
		if rd.RequestID != "" {
			meta["request_id"] = rd.RequestID
		}
	}

	issueCounts := map[string]int64{}
	for _, c := range issues {
		Current().AddDataQuality(stage, c.Name, string(c.Severity), c.Count)
		issueCounts[c.Name] += c.Count
	}

	if log != nil {
		log.Warn("data quality issue detected",
			"stage", stage,
			"issues", issueCounts,
			"meta", meta,
		)
	}
	sendDataQualityAlert(stage, issueCounts, meta, log)
}

func dataQualityAlertsEnabled() bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv("DATA_QUALITY_ALERTS_ENABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func dataQualityAlertWebhook() string {
	return strings.TrimSpace(os.Getenv("DATA_QUALITY_ALERT_WEBHOOK_URL"))
}

func dataQualityAlertMinInterval() time.Duration {
	raw := strings.TrimSpace(os.Getenv("DATA_QUALITY_ALERT_MIN_INTERVAL_SECONDS"))
	if raw == "" {
		return 5 * time.Minute
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(seconds) * time.Second
}

func sendDataQualityAlert(stage string, issueCounts map[string]int64, meta map[string]any, log *logger.Logger) {
	if !dataQualityAlertsEnabled() {
		return
	}
	webhook := dataQualityAlertWebhook()
	if webhook == "" || len(issueCounts) == 0 {
		return
	}
	dqAlerts.mu.Lock()
	if dqAlerts.last == nil {
		dqAlerts.last = map[string]time.Time{}
	}
	last := dqAlerts.last[stage]
	if !last.IsZero() && time.Since(last) < dataQualityAlertMinInterval() {
		dqAlerts.mu.Unlock()
		return
	}
	dqAlerts.last[stage] = time.Now()
	dqAlerts.mu.Unlock()

	payload := map[string]any{
		"title":     "Data quality issue",
		"stage":     stage,
		"issues":    issueCounts,
		"meta":      meta,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	body, _ := json.Marshal(payload)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	status, err := httpx.PostJSON(ctx, &http.Client{Timeout: 5 * time.Second}, webhook, body, 3)
	if err != nil {
		if log != nil {
			log.Warn("data quality alert post failed", "error", err, "stage", stage, "status", status)
		}
		return
	}
	if log != nil {
		log.Info("data quality alert sent", "stage", stage, "status", status)
	}
}
