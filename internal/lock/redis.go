// Package lock provides the distributed run lock that keeps escalation runs
// from overlapping across processes.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

//go:generate mockgen -source=redis.go -destination=../mocks/lock/mock.go -package=mocks
type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLock is a SETNX lock with a TTL. The TTL bounds how long a crashed
// holder can block other processes.
type RedisLock struct {
	client   redisClient
	key      string
	ttl      time.Duration
	token    string
	strategy retry.Strategy
}

func NewRedisLock(client redisClient, key string, ttl time.Duration, strategy retry.Strategy) *RedisLock {
	return &RedisLock{
		client:   client,
		key:      key,
		ttl:      ttl,
		token:    uuid.NewString(),
		strategy: strategy,
	}
}

// Acquire reports whether the lock was taken. false with a nil error means
// another holder owns it.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	var ok bool

	err := retry.Do(func() error {
		var err error
		ok, err = l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
		return err
	}, l.strategy)
	if err != nil {
		return false, fmt.Errorf("acquire run lock %s: %w", l.key, err)
	}

	return ok, nil
}

// Release frees the lock if it is still ours.
func (l *RedisLock) Release(ctx context.Context) error {
	res, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Int64()
	if err != nil {
		return fmt.Errorf("release run lock %s: %w", l.key, err)
	}

	if res == 0 {
		zlog.Logger.Warn().Str("key", l.key).Msg("run lock expired before release")
	}

	return nil
}
