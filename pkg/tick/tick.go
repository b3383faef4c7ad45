package tick

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimerRange is the overflow range of an 8-bit timer/counter.
	DefaultTimerRange = 256

	// MinPeriod and MaxPeriod bound the acceptable tick period.
	MinPeriod = 10 * time.Millisecond
	MaxPeriod = 33 * time.Millisecond
)

var (
	// ErrPrescaler is returned for a prescaler the timer does not support.
	ErrPrescaler = errors.New("unsupported prescaler")
	// ErrPeriod is returned when the clock/prescaler pair gives a period outside [MinPeriod, MaxPeriod].
	ErrPeriod = errors.New("tick period out of range")
	// ErrClock is returned for a zero clock frequency.
	ErrClock = errors.New("invalid clock frequency")
)

// Prescaler is a timer clock divider.
type Prescaler uint16

// controlBits maps each supported prescaler to its timer clock-select bits.
var controlBits = map[Prescaler]uint8{
	8:    2,
	64:   3,
	256:  4,
	1024: 5,
}

// ControlBits returns the clock-select value for the prescaler.
func (p Prescaler) ControlBits() (uint8, error) {
	bits, ok := controlBits[p]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrPrescaler, p)
	}
	return bits, nil
}

// Tuple is one row of the recommended clock/prescaler table.
type Tuple struct {
	ClockHz   uint32
	Prescaler Prescaler
}

// Recommended lists clock frequencies with a prescaler that keeps the
// overflow period between ~10ms and ~32ms (256 * prescaler / clock).
var Recommended = []Tuple{
	{ClockHz: 1_000_000, Prescaler: 64},    // ~16.4ms
	{ClockHz: 2_000_000, Prescaler: 256},   // ~32.8ms
	{ClockHz: 4_000_000, Prescaler: 256},   // ~16.4ms
	{ClockHz: 6_000_000, Prescaler: 256},   // ~10.9ms
	{ClockHz: 8_000_000, Prescaler: 1024},  // ~32.8ms
	{ClockHz: 9_000_000, Prescaler: 1024},  // ~29.1ms
	{ClockHz: 10_000_000, Prescaler: 1024}, // ~26.2ms
	{ClockHz: 12_000_000, Prescaler: 1024}, // ~21.8ms
	{ClockHz: 16_000_000, Prescaler: 1024}, // ~16.4ms
}

// RecommendedPrescaler returns the table prescaler for clockHz.
func RecommendedPrescaler(clockHz uint32) (Prescaler, bool) {
	for _, t := range Recommended {
		if t.ClockHz == clockHz {
			return t.Prescaler, true
		}
	}
	return 0, false
}

// Config describes the timer source.
type Config struct {
	ClockHz    uint32    `yaml:"clock_hz"`
	Prescaler  Prescaler `yaml:"prescaler"`
	TimerRange uint32    `yaml:"timer_range"` // Counts per overflow (0 = 256)
}

// Period returns the overflow period. It does not validate the configuration.
func (c Config) Period() time.Duration {
	if c.ClockHz == 0 {
		return 0
	}
	timerRange := c.TimerRange
	if timerRange == 0 {
		timerRange = DefaultTimerRange
	}
	// Work in nanoseconds with 64-bit math to avoid truncation for slow clocks.
	ns := uint64(timerRange) * uint64(c.Prescaler) * uint64(time.Second) / uint64(c.ClockHz)
	return time.Duration(ns)
}

// Validate checks that the prescaler is supported and the period is acceptable.
func (c Config) Validate() error {
	if c.ClockHz == 0 {
		return ErrClock
	}
	if _, err := c.Prescaler.ControlBits(); err != nil {
		return err
	}
	p := c.Period()
	if p < MinPeriod || p > MaxPeriod {
		return fmt.Errorf("%w: %v at %d Hz / %d", ErrPeriod, p, c.ClockHz, c.Prescaler)
	}
	return nil
}

// Scheduler is the fixed-period time base. It either fires a callback
// (Run) or is polled by a cooperative loop (Due).
type Scheduler struct {
	period time.Duration

	mu       sync.Mutex
	armed    bool
	deadline time.Time
}

// New validates cfg and returns a scheduler for its period.
func New(cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tick configuration: %w", err)
	}
	return &Scheduler{period: cfg.Period()}, nil
}

// Period returns the tick period.
func (s *Scheduler) Period() time.Duration {
	return s.period
}

// Armed reports whether Run is active or Due has been started.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Run calls fn once per period until ctx is done. fn runs on the caller's
// goroutine and must return quickly; a slow fn drops ticks rather than
// queueing them.
func (s *Scheduler) Run(ctx context.Context, fn func()) {
	s.mu.Lock()
	s.armed = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.armed = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// Due reports whether a tick elapsed since the last true result. The first
// call arms the scheduler and returns false. Missed periods are not replayed.
func (s *Scheduler) Due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.armed {
		s.armed = true
		s.deadline = now.Add(s.period)
		return false
	}
	if now.Before(s.deadline) {
		return false
	}
	s.deadline = now.Add(s.period)
	return true
}
