package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCooldown is the minimum time between two ideas from one device
const DefaultCooldown = 60 * time.Second

var ErrCooldown = errors.New("submission cooldown active")

type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %ds before submitting again", e.Seconds())
}

// Seconds is the remaining wait rounded up
func (e *CooldownError) Seconds() int {
	return int((e.Remaining + time.Second - 1) / time.Second)
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldown
}

// Cooldown claims a submission slot for key. Claim returns the remaining
// wait when the key is still cooling down, zero when the claim succeeded.
// Release gives back a claim whose submission was not stored.
type Cooldown interface {
	Claim(ctx context.Context, key string) (time.Duration, error)
	Release(ctx context.Context, key string) error
}

type MemoryCooldown struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

func NewMemoryCooldown(window time.Duration) *MemoryCooldown {
	if window <= 0 {
		window = DefaultCooldown
	}
	return &MemoryCooldown{
		window: window,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
}

func (m *MemoryCooldown) Claim(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if last, ok := m.last[key]; ok {
		if wait := last.Add(m.window).Sub(now); wait > 0 {
			return wait, nil
		}
	}
	m.last[key] = now
	return 0, nil
}

func (m *MemoryCooldown) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.last, key)
	return nil
}

// RedisCooldown enforces the window with SET NX PX so it holds across
// server instances and restarts.
type RedisCooldown struct {
	client *redis.Client
	window time.Duration
}

func NewRedisCooldown(client *redis.Client, window time.Duration) *RedisCooldown {
	if window <= 0 {
		window = DefaultCooldown
	}
	return &RedisCooldown{client: client, window: window}
}

func (r *RedisCooldown) Claim(ctx context.Context, key string) (time.Duration, error) {
	k := "cooldown:" + key
	ok, err := r.client.SetNX(ctx, k, time.Now().UnixMilli(), r.window).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to claim cooldown: %w", err)
	}
	if ok {
		return 0, nil
	}

	ttl, err := r.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read cooldown: %w", err)
	}
	if ttl <= 0 {
		// key expired between the two calls
		return time.Millisecond, nil
	}
	return ttl, nil
}

func (r *RedisCooldown) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, "cooldown:"+key).Err(); err != nil {
		return fmt.Errorf("failed to release cooldown: %w", err)
	}
	return nil
}
