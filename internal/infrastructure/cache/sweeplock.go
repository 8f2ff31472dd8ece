package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/examforge/examforge/internal/shared/config"
	"github.com/examforge/examforge/internal/shared/logger"
)

const (
	sweepLockKeyPrefix  = "examforge:sweeplock:"
	defaultSweepLockTTL = 10 * time.Minute
)

// ErrLockHeld is returned when another instance owns the sweep lock.
var ErrLockHeld = errors.New("sweep lock held by another instance")

// releaseScript deletes the key only while it still carries our token, so an
// expired lock re-acquired elsewhere is never released by a late finisher.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// SweepLocker implements gocron.Locker on a single Redis key per job, so only
// one instance runs a given sweep at a time.
type SweepLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

var _ gocron.Locker = (*SweepLocker)(nil)

// NewSweepLocker creates a locker. A non-positive ttl uses ten minutes.
func NewSweepLocker(client *redis.Client, ttl time.Duration, log logger.Interface) *SweepLocker {
	if ttl <= 0 {
		ttl = defaultSweepLockTTL
	}
	return &SweepLocker{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (l *SweepLocker) Lock(ctx context.Context, key string) (gocron.Lock, error) {
	token := uuid.NewString()
	redisKey := sweepLockKeyPrefix + key

	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sweep lock %s: %w", key, err)
	}
	if !ok {
		l.logger.Debugw("sweep lock held elsewhere, skipping run", "job", key)
		return nil, ErrLockHeld
	}

	return &sweepLock{
		client: l.client,
		key:    redisKey,
		token:  token,
		logger: l.logger,
	}, nil
}

type sweepLock struct {
	client *redis.Client
	key    string
	token  string
	logger logger.Interface
}

func (s *sweepLock) Unlock(ctx context.Context) error {
	released, err := releaseScript.Run(ctx, s.client, []string{s.key}, s.token).Int()
	if err != nil {
		return fmt.Errorf("failed to release sweep lock: %w", err)
	}
	if released == 0 {
		s.logger.Warnw("sweep lock expired before release", "key", s.key)
	}
	return nil
}
