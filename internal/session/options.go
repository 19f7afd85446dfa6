package session

import (
	"time"
)

// StorePolicy decides what a critical store failure does to a phase change
type StorePolicy int

const (
	// FailOpen logs the failure and continues with the local transition
	FailOpen StorePolicy = iota
	// FailClosed aborts the transition and returns the store error
	FailClosed
)

func (p StorePolicy) String() string {
	if p == FailClosed {
		return "fail-closed"
	}
	return "fail-open"
}

const (
	DefaultTick      = time.Second
	DefaultCountdown = 10
	DefaultScoreTick = 30 * time.Millisecond
	DefaultScoreStep = 2
	MinContextLength = 5
)

type settings struct {
	tick      time.Duration
	countdown int
	scoreTick time.Duration
	scoreStep int
	policy    StorePolicy
	clock     func() time.Time
}

func defaultSettings() settings {
	return settings{
		tick:      DefaultTick,
		countdown: DefaultCountdown,
		scoreTick: DefaultScoreTick,
		scoreStep: DefaultScoreStep,
		policy:    FailOpen,
		clock:     time.Now,
	}
}

// Option customizes a Controller
type Option func(*settings)

// WithTick sets the period of the duration and countdown timers
func WithTick(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithCountdown sets how many ticks CLOSING lasts
func WithCountdown(ticks int) Option {
	return func(s *settings) {
		if ticks > 0 {
			s.countdown = ticks
		}
	}
}

// WithScoreAnimation sets the count-up speed of the innovation score
func WithScoreAnimation(tick time.Duration, step int) Option {
	return func(s *settings) {
		if tick > 0 {
			s.scoreTick = tick
		}
		if step > 0 {
			s.scoreStep = step
		}
	}
}

func WithStorePolicy(p StorePolicy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}
