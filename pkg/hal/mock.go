package hal

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/itohio/ntcstat/pkg/button"
	"github.com/itohio/ntcstat/pkg/control"
	"github.com/itohio/ntcstat/pkg/display"
	"github.com/itohio/ntcstat/pkg/thermistor"
)

// ErrClosed is returned by operations on a closed board.
var ErrClosed = errors.New("board closed")

// MockConfig configures the simulated board.
type MockConfig struct {
	Celsius      [control.Channels]float64 `yaml:"celsius"`       // Initial sensor temperatures
	NoiseOhms    float64                   `yaml:"noise_ohms"`    // Peak resistance noise
	TimeConstant time.Duration             `yaml:"time_constant"` // Thermal lag (0 = immediate)
}

// Mock simulates the thermostat hardware for the desktop simulator and tests.
//
// Thermistors follow a first-order thermal lag towards the set temperature
// and are converted to resistance through the calibration curve. The display
// side latches, per position, the segments lit between a Show and the next
// Clear, much like the eye integrates a multiplexed display.
type Mock struct {
	cfg   MockConfig
	curve thermistor.Curve
	now   func() time.Time

	mu        sync.RWMutex
	closed    bool
	startTime time.Time

	// Thermistor simulation
	target      [control.Channels]float64
	temperature [control.Channels]float64
	lastUpdate  [control.Channels]time.Time
	open        [control.Channels]bool

	// Buttons
	buttons button.Mask

	// Display latch
	current [display.Positions]display.Pattern
	shown   [display.Positions]bool
	latched [display.Positions]display.Pattern
	frames  uint64
}

// NewMock creates a simulated board using curve for the thermistors.
func NewMock(cfg MockConfig, curve thermistor.Curve) *Mock {
	if len(curve) == 0 {
		curve = thermistor.MF52
	}
	m := &Mock{
		cfg:   cfg,
		curve: curve,
		now:   time.Now,
	}
	m.startTime = m.now()
	for ch := range m.target {
		m.target[ch] = cfg.Celsius[ch]
		m.temperature[ch] = cfg.Celsius[ch]
		m.lastUpdate[ch] = m.startTime
	}
	return m
}

// SetClock replaces the time source, for deterministic tests.
func (m *Mock) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	m.startTime = now()
	for ch := range m.lastUpdate {
		m.lastUpdate[ch] = m.startTime
	}
}

// Close marks the board closed. Further reads return idle values.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	return nil
}

// Press holds button id down until Release.
func (m *Mock) Press(id button.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buttons |= 1 << id
}

// Release lets button id go.
func (m *Mock) Release(id button.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buttons &^= 1 << id
}

// ReadButtons returns the simulated pin state.
func (m *Mock) ReadButtons() button.Mask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0
	}
	return m.buttons
}

// SetTemperature sets the temperature sensor ch is heading towards.
func (m *Mock) SetTemperature(ch control.Channel, celsius float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance(ch)
	m.target[ch] = celsius
	if m.cfg.TimeConstant <= 0 {
		m.temperature[ch] = celsius
	}
}

// Temperature returns the current simulated temperature of ch.
func (m *Mock) Temperature(ch control.Channel) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance(ch)
	return m.temperature[ch]
}

// SetOpen simulates a disconnected sensor on ch.
func (m *Mock) SetOpen(ch control.Channel, open bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open[ch] = open
}

// ReadResistance returns the simulated thermistor resistance of ch.
func (m *Mock) ReadResistance(ch control.Channel) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.open[ch] {
		return math.Inf(1)
	}

	m.advance(ch)
	ohms := m.curve.ResistanceAt(m.temperature[ch])

	if m.cfg.NoiseOhms > 0 {
		// Deterministic pseudo-noise from the elapsed time
		elapsed := float64(m.now().Sub(m.startTime).Nanoseconds())
		noise := (math.Sin(elapsed*0.001+float64(ch)) + math.Cos(elapsed*0.0013)) * m.cfg.NoiseOhms * 0.5
		ohms += noise
	}
	return ohms
}

// advance applies the thermal lag up to now. Caller holds mu.
func (m *Mock) advance(ch control.Channel) {
	now := m.now()
	dt := now.Sub(m.lastUpdate[ch])
	m.lastUpdate[ch] = now

	if m.cfg.TimeConstant <= 0 {
		m.temperature[ch] = m.target[ch]
		return
	}
	alpha := 1 - math.Exp(-dt.Seconds()/m.cfg.TimeConstant.Seconds())
	m.temperature[ch] += alpha * (m.target[ch] - m.temperature[ch])
}

// Show lights pattern on position.
func (m *Mock) Show(position display.Position, pattern display.Pattern) {
	if position >= display.Positions {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current[position] |= pattern
	m.shown[position] = true
}

// Clear blanks the display and latches what was lit since the last Clear.
func (m *Mock) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	latched := false
	for pos := range m.current {
		if m.shown[pos] {
			m.latched[pos] = m.current[pos]
			latched = true
		}
		m.current[pos] = display.Blank
		m.shown[pos] = false
	}
	if latched {
		m.frames++
	}
}

// Latched returns the last pattern seen on every position.
func (m *Mock) Latched() [display.Positions]display.Pattern {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latched
}

// Frames returns how many digit refreshes have been latched.
func (m *Mock) Frames() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frames
}
