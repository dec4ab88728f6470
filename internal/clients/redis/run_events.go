package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

// RunEvent is the message published when a run changes state.
type RunEvent struct {
	RunID     string           `json:"run_id"`
	Status    string           `json:"status"`
	Stage     string           `json:"stage"`
	Progress  int              `json:"progress"`
	Error     string           `json:"error,omitempty"`
	RowCounts map[string]int64 `json:"row_counts,omitempty"`
	At        time.Time        `json:"at"`
}

type RunEventBus interface {
	Publish(ctx context.Context, ev RunEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev RunEvent)) error
}

type runEventBus struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	channel string
}

func NewRunEventBus(log *logger.Logger, rdb goredis.UniversalClient, channel string) RunEventBus {
	if channel == "" {
		channel = "pipeline_runs"
	}
	return &runEventBus{
		log:     log.With("service", "RedisRunEventBus"),
		rdb:     rdb,
		channel: channel,
	}
}

func (b *runEventBus) Publish(ctx context.Context, ev RunEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *runEventBus) StartForwarder(ctx context.Context, onEvent func(ev RunEvent)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev RunEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad run event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}
