package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

// releaseScript deletes the lock only while the caller still owns it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock is a single-holder lease over the derived tables.
type RunLock struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	key string
	ttl time.Duration
}

func NewRunLock(log *logger.Logger, rdb goredis.UniversalClient, key string, ttl time.Duration) *RunLock {
	if key == "" {
		key = "pension:pipeline:lock"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RunLock{
		log: log.With("service", "RedisRunLock"),
		rdb: rdb,
		key: key,
		ttl: ttl,
	}
}

// Acquire returns false when another owner holds the lease.
func (l *RunLock) Acquire(ctx context.Context, owner string) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, owner, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		holder, _ := l.Holder(ctx)
		l.log.Warn("Run lock held", "key", l.key, "holder", holder)
	}
	return ok, nil
}

func (l *RunLock) Release(ctx context.Context, owner string) error {
	return releaseScript.Run(ctx, l.rdb, []string{l.key}, owner).Err()
}

// Holder returns the current owner, or "" when the lock is free.
func (l *RunLock) Holder(ctx context.Context) (string, error) {
	v, err := l.rdb.Get(ctx, l.key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	return v, err
}
