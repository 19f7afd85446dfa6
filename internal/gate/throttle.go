package gate

import (
	"context"
	"math"
	"sync"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultLockout     = 30 * time.Second
)

// Record is the persisted throttle state for one caller
type Record struct {
	Failures    int
	LockedUntil time.Time
}

// CounterStore persists throttle records. Implementations: memory, redis.
// Incr and Release must be atomic per key.
type CounterStore interface {
	Load(ctx context.Context, key string) (Record, error)
	// Incr counts one failure at now. A key still locked at now is returned
	// unchanged with counted false. An elapsed lockout starts a fresh count.
	// Reaching max locks the key until now+lockout.
	Incr(ctx context.Context, key string, max int, lockout time.Duration, now time.Time) (rec Record, counted bool, err error)
	// Release clears key unless it is locked at now. It returns the record
	// it found.
	Release(ctx context.Context, key string, now time.Time) (Record, error)
}

// Throttle counts consecutive failures per key and locks the key out for a
// fixed duration once MaxAttempts is reached. The counter resets when the
// lockout has elapsed and on success.
type Throttle struct {
	store       CounterStore
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
}

type ThrottleOption func(*Throttle)

func WithMaxAttempts(n int) ThrottleOption {
	return func(t *Throttle) {
		if n > 0 {
			t.maxAttempts = n
		}
	}
}

func WithLockout(d time.Duration) ThrottleOption {
	return func(t *Throttle) {
		if d > 0 {
			t.lockout = d
		}
	}
}

func WithClock(now func() time.Time) ThrottleOption {
	return func(t *Throttle) {
		if now != nil {
			t.now = now
		}
	}
}

func NewThrottle(store CounterStore, opts ...ThrottleOption) *Throttle {
	t := &Throttle{
		store:       store,
		maxAttempts: DefaultMaxAttempts,
		lockout:     DefaultLockout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Check returns the remaining lockout for key, zero when attempts are allowed
func (t *Throttle) Check(ctx context.Context, key string) (time.Duration, error) {
	rec, err := t.store.Load(ctx, key)
	if err != nil {
		return 0, err
	}
	return remaining(rec, t.now()), nil
}

// Fail records a failed attempt. The result is Rejected, carrying
// RetryAfter when this failure started a lockout, or LockedOut when another
// attempt locked the key first. Attempts made while locked are not counted.
func (t *Throttle) Fail(ctx context.Context, key string) (Result, error) {
	now := t.now()
	rec, counted, err := t.store.Incr(ctx, key, t.maxAttempts, t.lockout, now)
	if err != nil {
		return Result{}, err
	}
	if !counted {
		return Result{Outcome: LockedOut, RetryAfter: remaining(rec, now)}, nil
	}
	return Result{Outcome: Rejected, RetryAfter: remaining(rec, now)}, nil
}

// Succeed resets the counter for key. When a concurrent attempt locked the
// key in the meantime nothing is reset and the remaining lockout is
// returned; the caller must refuse the attempt.
func (t *Throttle) Succeed(ctx context.Context, key string) (time.Duration, error) {
	now := t.now()
	rec, err := t.store.Release(ctx, key, now)
	if err != nil {
		return 0, err
	}
	return remaining(rec, now), nil
}

func remaining(rec Record, now time.Time) time.Duration {
	if rec.LockedUntil.IsZero() || !now.Before(rec.LockedUntil) {
		return 0
	}
	return rec.LockedUntil.Sub(now)
}

// Lockout is the configured lockout duration
func (t *Throttle) Lockout() time.Duration {
	return t.lockout
}

// RemainingSeconds rounds a remaining duration up to whole seconds
func RemainingSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// MemoryCounterStore keeps records in process memory
type MemoryCounterStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{records: make(map[string]Record)}
}

func (m *MemoryCounterStore) Load(ctx context.Context, key string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[key], nil
}

func (m *MemoryCounterStore) Incr(ctx context.Context, key string, max int, lockout time.Duration, now time.Time) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.records[key]
	if !rec.LockedUntil.IsZero() {
		if now.Before(rec.LockedUntil) {
			return rec, false, nil
		}
		rec = Record{}
	}
	rec.Failures++
	if rec.Failures >= max {
		rec.LockedUntil = now.Add(lockout)
	}
	m.records[key] = rec
	return rec, true, nil
}

func (m *MemoryCounterStore) Release(ctx context.Context, key string, now time.Time) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.records[key]
	if remaining(rec, now) > 0 {
		return rec, nil
	}
	delete(m.records, key)
	return rec, nil
}
