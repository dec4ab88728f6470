package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
	"github.com/yungbote/pension-pipeline/internal/utils"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
	LockKey  string
	LockTTL  time.Duration
}

func ConfigFromEnv(log *logger.Logger) Config {
	return Config{
		Addr:     strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log)),
		Password: utils.GetEnv("REDIS_PASSWORD", "", log),
		DB:       utils.GetEnvAsInt("REDIS_DB", 0, log),
		Channel:  utils.GetEnv("REDIS_RUN_CHANNEL", "pipeline_runs", log),
		LockKey:  utils.GetEnv("RUN_LOCK_KEY", "pension:pipeline:lock", log),
		LockTTL:  time.Duration(utils.GetEnvAsInt("RUN_LOCK_TTL_SECONDS", 3600, log)) * time.Second,
	}
}

// Enabled reports whether a Redis address is configured.
func (c Config) Enabled() bool { return strings.TrimSpace(c.Addr) != "" }

// Connect dials and pings Redis.
func Connect(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
