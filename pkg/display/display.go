// Package display encodes values into 7-segment patterns and drives a
// multiplexed display through a Driver.
package display

import (
	"errors"
	"fmt"
	"time"
)

// ChannelType selects what a render call shows and where.
type ChannelType uint8

const (
	// Symbols shows one indicator on the status row.
	Symbols ChannelType = iota
	// First is the left temperature slot (digits 0 and 1).
	First
	// Second is the right temperature slot (digits 2 and 3).
	Second
)

// Position is a physical digit driver line.
type Position uint8

const (
	// Digits is the number of 7-segment digits.
	Digits = 4
	// Indicators is the status row; it is driven with no digit selected.
	Indicators Position = Digits
	// Positions counts digit positions plus the indicator row.
	Positions = Digits + 1
)

// Value range shown by a temperature slot.
const (
	MinValue = -9
	MaxValue = 99
)

// Cell is one (position, pattern) pair of a frame.
type Cell struct {
	Position Position
	Pattern  Pattern
}

// Frame is the ordered cells showing one value.
type Frame struct {
	cells [2]Cell
	n     int
}

// Len returns the number of cells.
func (f Frame) Len() int { return f.n }

// Cell returns cell i.
func (f Frame) Cell(i int) Cell { return f.cells[i] }

// Cells returns the cells as a slice.
func (f Frame) Cells() []Cell {
	out := make([]Cell, f.n)
	copy(out, f.cells[:f.n])
	return out
}

func (f *Frame) add(pos Position, p Pattern) {
	f.cells[f.n] = Cell{Position: pos, Pattern: p}
	f.n++
}

// Encode maps (channel, value) to a frame. It is a pure function.
//
// In Symbols mode value is a Symbol and the frame holds one indicator cell
// (none for an unknown symbol). In First/Second mode values outside
// [MinValue, MaxValue] show "--", negative values a minus and one digit,
// others two decimal digits.
func Encode(channel ChannelType, value int) Frame {
	var f Frame

	var left Position
	switch channel {
	case Symbols:
		if value >= 0 && value < int(symbolCount) {
			f.add(Indicators, Symbol(value).Pattern())
		}
		return f
	case First:
		left = 0
	case Second:
		left = 2
	default:
		return f
	}

	switch {
	case value > MaxValue || value < MinValue:
		f.add(left, Dash)
		f.add(left+1, Dash)
	case value < 0:
		f.add(left, Dash)
		f.add(left+1, Digit(-value))
	default:
		f.add(left, Digit(value/10))
		f.add(left+1, Digit(value%10))
	}
	return f
}

// Driver drives the digit select and segment lines.
type Driver interface {
	// Show selects position and lights exactly the segments of pattern.
	Show(position Position, pattern Pattern)
	// Clear turns every segment off.
	Clear()
}

// Mode is the segment drive strategy.
type Mode string

const (
	// Parallel writes a whole digit pattern at once and dwells once.
	Parallel Mode = "parallel"
	// Sequential lights one segment at a time, dwelling on each. This keeps
	// per-segment current and brightness even on bare multiplexed hardware.
	Sequential Mode = "sequential"
)

// Config configures the renderer.
type Config struct {
	Mode  Mode          `yaml:"mode"`
	Dwell time.Duration `yaml:"dwell"` // Time each write stays lit
}

// DefaultConfig returns sequential drive with 100µs per segment.
func DefaultConfig() Config {
	return Config{
		Mode:  Sequential,
		Dwell: 100 * time.Microsecond,
	}
}

// ErrMode is returned for an unknown drive mode.
var ErrMode = errors.New("unknown display mode")

// Validate checks the mode and dwell.
func (c Config) Validate() error {
	switch c.Mode {
	case Parallel, Sequential:
	default:
		return fmt.Errorf("%w: %q", ErrMode, c.Mode)
	}
	if c.Dwell < 0 {
		return fmt.Errorf("negative dwell %v", c.Dwell)
	}
	return nil
}

// Renderer drives frames onto a Driver. It keeps no state between calls.
type Renderer struct {
	driver Driver
	mode   Mode
	dwell  time.Duration
	sleep  func(time.Duration)
}

// NewRenderer returns a renderer for driver.
func NewRenderer(cfg Config, driver Driver) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, errors.New("display: nil driver")
	}
	return &Renderer{
		driver: driver,
		mode:   cfg.Mode,
		dwell:  cfg.Dwell,
		sleep:  time.Sleep,
	}, nil
}

// SetSleep replaces the dwell wait, e.g. with a busy-wait on firmware.
func (r *Renderer) SetSleep(sleep func(time.Duration)) {
	if sleep == nil {
		sleep = func(time.Duration) {}
	}
	r.sleep = sleep
}

// Render encodes (channel, value), drives it, and returns the frame.
// The display region is blank when Render returns.
func (r *Renderer) Render(channel ChannelType, value int) Frame {
	f := Encode(channel, value)
	r.Draw(f)
	return f
}

// Draw drives an already encoded frame.
func (r *Renderer) Draw(f Frame) {
	defer r.driver.Clear()

	for i := 0; i < f.n; i++ {
		r.cell(f.cells[i])
	}
}

func (r *Renderer) cell(c Cell) {
	defer r.driver.Clear()

	if r.mode == Parallel || c.Position == Indicators {
		r.driver.Show(c.Position, c.Pattern)
		r.wait()
		return
	}

	c.Pattern.Segments(func(seg Pattern) {
		r.driver.Show(c.Position, seg)
		r.wait()
	})
}

func (r *Renderer) wait() {
	if r.dwell > 0 {
		r.sleep(r.dwell)
	}
}
