package hal

import (
	"math"
	"testing"
	"time"

	"github.com/itohio/ntcstat/pkg/button"
	"github.com/itohio/ntcstat/pkg/control"
	"github.com/itohio/ntcstat/pkg/display"
	"github.com/itohio/ntcstat/pkg/thermistor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMock_Buttons(t *testing.T) {
	m := NewMock(MockConfig{}, nil)

	assert.Equal(t, button.Mask(0), m.ReadButtons())

	m.Press(button.Plus)
	assert.True(t, m.ReadButtons().Pressed(button.Plus))
	assert.False(t, m.ReadButtons().Pressed(button.Minus))

	m.Press(button.Minus)
	m.Release(button.Plus)
	assert.Equal(t, button.MaskOf(false, true), m.ReadButtons())
}

func TestMock_Resistance(t *testing.T) {
	m := NewMock(MockConfig{Celsius: [2]float64{25, 50}}, thermistor.MF52)

	assert.InDelta(t, 10000, m.ReadResistance(control.Channel1), 1e-6)
	assert.InDelta(t, 3588, m.ReadResistance(control.Channel2), 1e-6)

	m.SetTemperature(control.Channel1, 30)
	assert.InDelta(t, 8048, m.ReadResistance(control.Channel1), 1e-6)

	m.SetOpen(control.Channel2, true)
	assert.True(t, math.IsInf(m.ReadResistance(control.Channel2), 1))
}

func TestMock_ThermalLag(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	m := NewMock(MockConfig{Celsius: [2]float64{20, 20}, TimeConstant: 10 * time.Second}, nil)
	m.SetClock(clock.Now)

	m.SetTemperature(control.Channel1, 30)
	assert.InDelta(t, 20, m.Temperature(control.Channel1), 1e-9)

	clock.Advance(10 * time.Second)
	// One time constant covers ~63% of the step.
	assert.InDelta(t, 20+10*(1-math.Exp(-1)), m.Temperature(control.Channel1), 1e-6)

	clock.Advance(time.Hour)
	assert.InDelta(t, 30, m.Temperature(control.Channel1), 1e-6)
	assert.InDelta(t, 20, m.Temperature(control.Channel2), 1e-9)
}

func TestMock_NoiseBounded(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	m := NewMock(MockConfig{Celsius: [2]float64{25, 25}, NoiseOhms: 50}, nil)
	m.SetClock(clock.Now)

	for i := 0; i < 100; i++ {
		clock.Advance(7 * time.Millisecond)
		assert.InDelta(t, 10000, m.ReadResistance(control.Channel1), 50)
	}
}

func TestMock_DisplayLatch(t *testing.T) {
	m := NewMock(MockConfig{}, nil)

	// Sequential drive of "-1" on the second slot.
	m.Show(2, display.SegG)
	m.Clear()
	m.Show(3, display.SegB)
	m.Show(3, display.SegC)
	m.Clear()
	m.Clear()

	latched := m.Latched()
	assert.Equal(t, display.Dash, latched[2])
	assert.Equal(t, display.Digit(1), latched[3])
	assert.Equal(t, display.Blank, latched[0])
	assert.Equal(t, uint64(2), m.Frames())

	// A new value replaces the old one.
	m.Show(3, display.Digit(7))
	m.Clear()
	assert.Equal(t, display.Digit(7), m.Latched()[3])

	// Out-of-range positions are ignored.
	m.Show(display.Positions+1, display.AllSegments)
	m.Clear()
	assert.Equal(t, uint64(3), m.Frames())
}

func TestMock_Close(t *testing.T) {
	m := NewMock(MockConfig{Celsius: [2]float64{25, 25}}, nil)
	m.Press(button.Plus)

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Close(), ErrClosed)

	assert.Equal(t, button.Mask(0), m.ReadButtons())
	assert.True(t, math.IsInf(m.ReadResistance(control.Channel1), 1))
}
