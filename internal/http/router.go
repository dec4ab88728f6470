package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pension-pipeline/internal/http/handlers"
	httpMW "github.com/yungbote/pension-pipeline/internal/http/middleware"
	"github.com/yungbote/pension-pipeline/internal/observability"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string

	HealthHandler  *httpH.HealthHandler
	RunHandler     *httpH.RunHandler
	SummaryHandler *httpH.SummaryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("pension-api"))
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Pipeline runs
		if cfg.RunHandler != nil {
			api.POST("/runs", cfg.RunHandler.TriggerRun)
			api.GET("/runs", cfg.RunHandler.ListRuns)
			api.GET("/runs/:id", cfg.RunHandler.GetRun)
		}

		// Summary reads
		if cfg.SummaryHandler != nil {
			api.GET("/members/:cpr/summary", cfg.SummaryHandler.GetMemberSummary)
			api.GET("/summary/risk-stats", cfg.SummaryHandler.GetRiskStats)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})
	return r
}
