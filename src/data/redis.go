package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	runLockPrefix = "civicsync:lock:"
	lastRunPrefix = "civicsync:lastrun:"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// RunLock serializes sync runs for one source across processes. The TTL
// bounds how long a crashed run can block its successors.
type RunLock struct {
	rdb    *redis.Client
	source string
	ttl    time.Duration
}

func NewRunLock(rdb *redis.Client, source string, ttl time.Duration) *RunLock {
	return &RunLock{rdb: rdb, source: source, ttl: ttl}
}

func (l *RunLock) Acquire(ctx context.Context) (bool, error) {
	return l.rdb.SetNX(ctx, runLockPrefix+l.source,
		time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
}

func (l *RunLock) Release(ctx context.Context) error {
	return l.rdb.Del(ctx, runLockPrefix+l.source).Err()
}

// CacheLastSummary stores the most recent run summary for the status
// endpoint.
func CacheLastSummary(ctx context.Context, rdb *redis.Client, source, payload string, ttl time.Duration) error {
	return rdb.Set(ctx, lastRunPrefix+source, payload, ttl).Err()
}

func LastSummary(ctx context.Context, rdb *redis.Client, source string) (string, error) {
	return rdb.Get(ctx, lastRunPrefix+source).Result()
}
