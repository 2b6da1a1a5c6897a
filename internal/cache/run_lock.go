package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotHeld is returned when releasing a lock whose token no longer matches
var ErrLockNotHeld = errors.New("lock not held")

// RunLock serializes sync runs across processes
type RunLock interface {
	// Acquire returns a token when the lock was taken, or "" when another run holds it
	Acquire(ctx context.Context) (string, error)
	Release(ctx context.Context, token string) error
}

// compare-and-delete so a run never releases a lock taken after its own expired
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type runLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRunLock creates a lock stored at key that expires after ttl
func NewRunLock(client *redis.Client, key string, ttl time.Duration) RunLock {
	return &runLock{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

func (l *runLock) Acquire(ctx context.Context) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

func (l *runLock) Release(ctx context.Context, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}
