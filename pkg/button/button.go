// Package button implements the tick-driven push-button debouncer with
// click and held auto-repeat detection.
package button

import (
	"errors"
	"fmt"
)

// ID identifies one of the two physical buttons.
type ID uint8

const (
	// Plus is button 1, it raises the setpoint.
	Plus ID = iota
	// Minus is button 2, it lowers the setpoint.
	Minus

	// Count is the number of buttons.
	Count = 2
)

func (id ID) String() string {
	switch id {
	case Plus:
		return "plus"
	case Minus:
		return "minus"
	default:
		return fmt.Sprintf("button(%d)", uint8(id))
	}
}

// Mask is the raw pressed state sampled once per tick.
// Bit 0 is button 1, bit 1 is button 2. A set bit means pressed.
type Mask uint8

// Pressed reports whether button id is pressed in m.
func (m Mask) Pressed(id ID) bool {
	return m&(1<<id) != 0
}

// MaskOf builds a Mask from individual button states.
func MaskOf(plus, minus bool) Mask {
	var m Mask
	if plus {
		m |= 1 << Plus
	}
	if minus {
		m |= 1 << Minus
	}
	return m
}

// MaskFromActiveLow converts a port read with active-low buttons on
// plusBit and minusBit into a Mask.
func MaskFromActiveLow(pins uint8, plusBit, minusBit uint8) Mask {
	return MaskOf(pins&(1<<plusBit) == 0, pins&(1<<minusBit) == 0)
}

// State is the explicit per-button state.
type State uint8

const (
	Idle State = iota
	Pressing
	Held
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressing:
		return "pressing"
	case Held:
		return "held"
	default:
		return "unknown"
	}
}

// Kind is the kind of adjustment an event carries.
type Kind uint8

const (
	// Click is a press released before the held threshold.
	Click Kind = iota + 1
	// Repeat is an auto-repeat step while held.
	Repeat
)

func (k Kind) String() string {
	switch k {
	case Click:
		return "click"
	case Repeat:
		return "repeat"
	default:
		return "none"
	}
}

// Event is emitted for every setpoint adjustment.
type Event struct {
	Button ID
	Kind   Kind
	Delta  int
}

// Config holds the debounce thresholds (in ticks) and step sizes.
type Config struct {
	PressedThreshold uint8 `yaml:"pressed_threshold"` // Ticks before a press counts
	HeldThreshold    uint8 `yaml:"held_threshold"`    // Ticks before a press becomes held
	RepeatDelay      uint8 `yaml:"repeat_delay"`      // Ticks between auto-repeat steps
	FineStep         int   `yaml:"fine_step"`         // Click adjustment magnitude
	CoarseStep       int   `yaml:"coarse_step"`       // Auto-repeat adjustment magnitude
}

// DefaultConfig returns the stock thresholds: 5/20/70 ticks, steps 1 and 10.
func DefaultConfig() Config {
	return Config{
		PressedThreshold: 5,
		HeldThreshold:    20,
		RepeatDelay:      70,
		FineStep:         1,
		CoarseStep:       10,
	}
}

// ErrThresholds is returned when the thresholds are not ordered.
var ErrThresholds = errors.New("invalid button thresholds")

// Validate checks PressedThreshold < HeldThreshold < 255 and positive steps.
func (c Config) Validate() error {
	if c.PressedThreshold >= c.HeldThreshold {
		return fmt.Errorf("%w: pressed %d must be below held %d", ErrThresholds, c.PressedThreshold, c.HeldThreshold)
	}
	if c.HeldThreshold == 255 {
		// The press counter saturates at 255 and could never exceed it.
		return fmt.Errorf("%w: held threshold must be below 255", ErrThresholds)
	}
	if c.RepeatDelay == 255 {
		return fmt.Errorf("%w: repeat delay must be below 255", ErrThresholds)
	}
	if c.FineStep <= 0 || c.CoarseStep <= 0 {
		return fmt.Errorf("%w: steps must be positive", ErrThresholds)
	}
	return nil
}

// Channel is the state machine of a single button.
type Channel struct {
	id       ID
	polarity int // +1 or -1

	pressDurationTicks uint8
	heldRepeatTicks    uint8
	wasPressed         bool
	wasHeld            bool
	state              State
}

// ID returns the button identity.
func (c Channel) ID() ID { return c.id }

// State returns the current state.
func (c Channel) State() State { return c.state }

// PressDuration returns the saturating press counter.
func (c Channel) PressDuration() uint8 { return c.pressDurationTicks }

// advance runs one tick and returns the adjustment it produced, if any.
func (c *Channel) advance(pressed bool, cfg *Config) (Event, bool) {
	if !pressed {
		ev, ok := Event{}, false
		if c.wasPressed && !c.wasHeld {
			ev, ok = Event{Button: c.id, Kind: Click, Delta: c.polarity * cfg.FineStep}, true
		}
		c.reset()
		return ev, ok
	}

	if c.pressDurationTicks < 255 {
		c.pressDurationTicks++
	}

	if c.pressDurationTicks > cfg.PressedThreshold && !c.wasPressed {
		c.wasPressed = true
		c.state = Pressing
	}

	if c.pressDurationTicks > cfg.HeldThreshold {
		c.wasHeld = true
		c.state = Held
		c.heldRepeatTicks++

		if c.heldRepeatTicks > cfg.RepeatDelay {
			c.heldRepeatTicks = 0
			return Event{Button: c.id, Kind: Repeat, Delta: c.polarity * cfg.CoarseStep}, true
		}
	}

	return Event{}, false
}

func (c *Channel) reset() {
	c.pressDurationTicks = 0
	c.heldRepeatTicks = 0
	c.wasPressed = false
	c.wasHeld = false
	c.state = Idle
}

// Adjuster receives setpoint adjustments.
type Adjuster interface {
	Adjust(delta int)
}

// Debouncer owns both button channels. It is driven from the tick context:
// OnTick does constant work, never allocates and never blocks.
type Debouncer struct {
	cfg      Config
	channels [Count]Channel
	target   Adjuster
	hook     func(Event)
}

// New validates cfg and returns a debouncer adjusting target.
func New(cfg Config, target Adjuster) (*Debouncer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.New("button: nil adjuster")
	}
	return &Debouncer{
		cfg:    cfg,
		target: target,
		channels: [Count]Channel{
			{id: Plus, polarity: 1},
			{id: Minus, polarity: -1},
		},
	}, nil
}

// OnEvent sets a hook called from OnTick after each adjustment.
// The hook runs in the tick context and must not block.
func (d *Debouncer) OnEvent(hook func(Event)) {
	d.hook = hook
}

// OnTick advances both buttons by one tick.
func (d *Debouncer) OnTick(mask Mask) {
	for i := range d.channels {
		ch := &d.channels[i]
		ev, ok := ch.advance(mask.Pressed(ch.id), &d.cfg)
		if !ok {
			continue
		}
		d.target.Adjust(ev.Delta)
		if d.hook != nil {
			d.hook(ev)
		}
	}
}

// Channel returns a copy of the state machine of button id.
func (d *Debouncer) Channel(id ID) Channel {
	return d.channels[id]
}
