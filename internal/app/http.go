package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/http"
	httpH "github.com/yungbote/pension-pipeline/internal/http/handlers"
	"github.com/yungbote/pension-pipeline/internal/observability"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Run     *httpH.RunHandler
	Summary *httpH.SummaryHandler
}

func wireHandlers(log *logger.Logger, theDB *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(theDB),
		Run:     httpH.NewRunHandler(services.Runs),
		Summary: httpH.NewSummaryHandler(services.Summary),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,
		HealthHandler:  handlers.Health,
		RunHandler:     handlers.Run,
		SummaryHandler: handlers.Summary,
	})
}
