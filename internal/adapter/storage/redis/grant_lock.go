package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"

	"github.com/go-redsync/redsync/v4"
	rsgoredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredis "github.com/redis/go-redis/v9"
)

// Locker implements ports.Locker with single-attempt redsync mutexes.
type Locker struct {
	rs     *redsync.Redsync
	prefix string
}

// NewLocker creates a Locker on top of a go-redis client.
func NewLocker(client goredis.UniversalClient) *Locker {
	return &Locker{
		rs:     redsync.New(rsgoredis.NewPool(client)),
		prefix: "lock:",
	}
}

// TryLock acquires key once. Contention maps to ports.ErrLockHeld.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	mutex := l.rs.NewMutex(l.prefix+key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)

	if err := mutex.TryLockContext(ctx); err != nil {
		if isContention(err) {
			return nil, ports.ErrLockHeld
		}
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	return func(ctx context.Context) error {
		ok, err := mutex.UnlockContext(ctx)
		if err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		if !ok {
			return fmt.Errorf("release lock %s: lock expired", key)
		}
		return nil
	}, nil
}

func isContention(err error) bool {
	var taken *redsync.ErrTaken
	if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "failed to acquire lock")
}
