// Package control holds the state shared between the tick context and the
// render loop.
//
// Field ownership:
//   - setpoint: written only by the tick context (button debouncer), read by
//     the render loop. Stored in an atomic cell so a read never observes a
//     torn value.
//   - samples: written by the sampling loop, read by the render loop and
//     observers. Guarded by a read/write lock because a sample spans several
//     fields.
package control

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// Channel selects one of the two thermistor inputs.
type Channel uint8

const (
	Channel1 Channel = iota
	Channel2

	// Channels is the number of thermistor inputs.
	Channels = 2
)

func (c Channel) String() string {
	return fmt.Sprintf("T%d", uint8(c)+1)
}

// ResolvedSample is the latest resolution result of one channel.
type ResolvedSample struct {
	Celsius int     // Rounded temperature
	Ohms    float64 // Resistance the temperature was computed from
	Clamped bool    // Reading was outside the calibration range
	Valid   bool    // At least one reading has been resolved
}

// Bounds is an optional setpoint clamp.
type Bounds struct {
	Enabled bool  `yaml:"enabled"`
	Min     int32 `yaml:"min"`
	Max     int32 `yaml:"max"`
}

// ErrBounds is returned for Min > Max.
var ErrBounds = errors.New("invalid setpoint bounds")

// Validate checks the bounds are ordered when enabled.
func (b Bounds) Validate() error {
	if b.Enabled && b.Min > b.Max {
		return fmt.Errorf("%w: min %d > max %d", ErrBounds, b.Min, b.Max)
	}
	return nil
}

func (b Bounds) clamp(v int64) int32 {
	if b.Enabled {
		if v < int64(b.Min) {
			return b.Min
		}
		if v > int64(b.Max) {
			return b.Max
		}
		return int32(v)
	}
	// Unbounded still has to fit the cell.
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// Snapshot is a consistent copy of the state.
type Snapshot struct {
	Setpoint int
	Samples  [Channels]ResolvedSample
}

// State is the single shared control state of a device instance.
type State struct {
	setpoint atomic.Int32
	bounds   Bounds

	mu      sync.RWMutex
	samples [Channels]ResolvedSample
}

// New returns a state with the initial setpoint (clamped to bounds).
func New(initial int32, bounds Bounds) (*State, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	s := &State{bounds: bounds}
	s.setpoint.Store(bounds.clamp(int64(initial)))
	return s, nil
}

// Setpoint returns the current target temperature.
func (s *State) Setpoint() int {
	return int(s.setpoint.Load())
}

// Adjust moves the setpoint by delta. Only the tick context calls it, so
// the load/store pair does not race with another writer.
func (s *State) Adjust(delta int) {
	next := s.bounds.clamp(int64(s.setpoint.Load()) + int64(delta))
	s.setpoint.Store(next)
}

// Store replaces the sample of channel ch and returns the previous one.
func (s *State) Store(ch Channel, sample ResolvedSample) ResolvedSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.samples[ch]
	s.samples[ch] = sample
	return prev
}

// Sample returns the latest sample of channel ch.
func (s *State) Sample(ch Channel) ResolvedSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samples[ch]
}

// Snapshot copies the setpoint and both samples.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Setpoint: s.Setpoint(),
		Samples:  s.samples,
	}
}
