package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	redisclient "github.com/yungbote/pension-pipeline/internal/clients/redis"
	"github.com/yungbote/pension-pipeline/internal/data/db"
	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/http"
	"github.com/yungbote/pension-pipeline/internal/observability"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
	"github.com/yungbote/pension-pipeline/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    repos.Set
	Clients  Clients
	Services Services
	Server   *http.Server
	Metrics  *observability.Metrics

	dbService    *db.Service
	scheduler    *Scheduler
	temporal     *temporalworker.Runner
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "pension-pipeline",
		Environment: cfg.Environment,
		Version:     os.Getenv("APP_VERSION"),
	})

	dbService, err := db.NewService(log, db.ConfigFromEnv(log))
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := dbService.DB()

	reposet := wireRepos(theDB, log, cfg.Tables)
	if cfg.AutoMigrate {
		if err := migrateOutputs(theDB, reposet); err != nil {
			_ = dbService.Close()
			log.Sync()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	metrics := observability.Init(log)
	if sqlDB, err := theDB.DB(); err == nil {
		metrics.RegisterDB(sqlDB, dbService.Driver())
	}

	clients, err := wireClients(ctx, log)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients)
	if err != nil {
		clients.close()
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, serviceset)
	server := wireServer(log, cfg, metrics, handlerset)

	a := &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Server:       server,
		Metrics:      metrics,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}

	if clients.Temporal != nil {
		runner, err := temporalworker.NewRunner(log, clients.Temporal, clients.TemporalCfg, serviceset.Worker)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init temporal worker: %w", err)
		}
		a.temporal = runner
	}
	if cfg.Schedule != "" {
		fire := scheduleFire(log, serviceset.Worker, clients.Temporal, clients.TemporalCfg)
		sched, err := NewScheduler(log, cfg.Schedule, fire)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.scheduler = sched
	}
	return a, nil
}

// Start launches the background loops: the Temporal worker and the scheduler.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.temporal != nil {
		if err := a.temporal.Start(ctx); err != nil {
			return err
		}
	}
	if a.scheduler != nil {
		a.scheduler.Start(ctx)
	}
	// Surface runs finished by other processes (CLI, other replicas).
	if a.Clients.EventBus != nil {
		log := a.Log.With("component", "RunEvents")
		err := a.Clients.EventBus.StartForwarder(ctx, func(ev redisclient.RunEvent) {
			log.Info("Run event", "run_id", ev.RunID, "status", ev.Status, "stage", ev.Stage, "row_counts", ev.RowCounts)
		})
		if err != nil {
			log.Warn("Run event subscription failed", "error", err)
		}
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Serving API", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(a.Cfg.HTTPAddr)
}

// Close stops the loops, drains background runs and releases every client.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown failed", "error", err)
		}
	}
	if a.Services.Worker != nil {
		a.Services.Worker.Wait()
	}
	a.Clients.close()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
