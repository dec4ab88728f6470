package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	redisclient "github.com/yungbote/pension-pipeline/internal/clients/redis"
	"github.com/yungbote/pension-pipeline/internal/jobs/worker"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
	"github.com/yungbote/pension-pipeline/internal/temporalx"
)

type Clients struct {
	Redis    *goredis.Client
	RunLock  worker.Locker
	EventBus redisclient.RunEventBus

	Temporal    temporalsdkclient.Client
	TemporalCfg temporalx.Config
}

// wireClients connects the optional backends. Each one is skipped when its
// address is unset; the pipeline then runs with a no-op lock and no events.
func wireClients(ctx context.Context, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	out := Clients{RunLock: worker.NopLocker{}}

	// Redis
	rcfg := redisclient.ConfigFromEnv(log)
	if rcfg.Enabled() {
		rdb, err := redisclient.Connect(ctx, rcfg)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
		out.RunLock = redisclient.NewRunLock(log, rdb, rcfg.LockKey, rcfg.LockTTL)
		out.EventBus = redisclient.NewRunEventBus(log, rdb, rcfg.Channel)
	} else {
		log.Warn("REDIS_ADDR not set; run lock and run events disabled")
	}

	// Temporal
	tcfg := temporalx.LoadConfig(log)
	out.TemporalCfg = tcfg
	if tcfg.Enabled() {
		if tcfg.AutoRegisterNamespace {
			if err := temporalx.EnsureNamespace(ctx, log, tcfg); err != nil {
				out.close()
				return Clients{}, fmt.Errorf("temporal namespace: %w", err)
			}
		}
		tc, err := temporalx.NewClient(ctx, log, tcfg)
		if err != nil {
			out.close()
			return Clients{}, fmt.Errorf("init temporal client: %w", err)
		}
		out.Temporal = tc
	}
	return out, nil
}

func (c Clients) close() {
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
