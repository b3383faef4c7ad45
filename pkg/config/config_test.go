package config

import (
	"os"
	"testing"
	"time"

	"github.com/itohio/ntcstat/pkg/display"
	"github.com/itohio/ntcstat/pkg/thermistor"
	"github.com/itohio/ntcstat/pkg/tick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, uint32(4_000_000), cfg.Clock.ClockHz)
	assert.Equal(t, tick.Prescaler(256), cfg.Clock.Prescaler)
	assert.Equal(t, uint8(5), cfg.Buttons.PressedThreshold)
	assert.Equal(t, uint8(20), cfg.Buttons.HeldThreshold)
	assert.Equal(t, uint8(70), cfg.Buttons.RepeatDelay)
	assert.Equal(t, 1, cfg.Buttons.FineStep)
	assert.Equal(t, 10, cfg.Buttons.CoarseStep)
	assert.Len(t, cfg.Thermistor.Table, len(thermistor.MF52))
	assert.Equal(t, thermistor.AnchorBracketing, cfg.Thermistor.Anchor)
	assert.Equal(t, display.Sequential, cfg.Display.Mode)
	assert.Equal(t, 100*time.Microsecond, cfg.Display.Dwell)
	assert.Equal(t, [2]string{SlotSetpoint, SlotChannel1}, cfg.Display.Slots)
	assert.Equal(t, int32(-9), cfg.Setpoint.Initial)
	assert.False(t, cfg.Setpoint.Bounds.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.NoError(t, cfg.Validate())
}

func TestDefault_TableIsCopy(t *testing.T) {
	cfg := Default()
	cfg.Thermistor.Table[0].Ohms = 1

	assert.Equal(t, float64(181700), thermistor.MF52[0].Ohms)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, uint32(4_000_000), cfg.Clock.ClockHz)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
clock:
  clock_hz: 16000000
  prescaler: 1024

buttons:
  pressed_threshold: 3
  held_threshold: 30
  repeat_delay: 50
  fine_step: 1
  coarse_step: 5

thermistor:
  anchor: fixed
  fixed_indices: [0, 1, 2]
  table:
    - celsius: 0
      ohms: 32650
    - celsius: 25
      ohms: 10000
    - celsius: 50
      ohms: 3588
  divider:
    series_ohms: 4700
    full_scale: 1023
    high_side: true
  average_samples: 8
  sample_interval: 1s

display:
  mode: parallel
  dwell: 2ms
  slots: [channel1, channel2]

setpoint:
  initial: 40
  bounds:
    enabled: true
    min: 5
    max: 90

log:
  level: debug
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, uint32(16_000_000), cfg.Clock.ClockHz)
	assert.Equal(t, tick.Prescaler(1024), cfg.Clock.Prescaler)
	assert.Equal(t, uint8(3), cfg.Buttons.PressedThreshold)
	assert.Equal(t, uint8(30), cfg.Buttons.HeldThreshold)
	assert.Equal(t, 5, cfg.Buttons.CoarseStep)
	assert.Equal(t, thermistor.AnchorFixed, cfg.Thermistor.Anchor)
	assert.Equal(t, thermistor.Window{0, 1, 2}, cfg.Thermistor.FixedIndices)
	assert.Len(t, cfg.Thermistor.Table, 3)
	assert.Equal(t, float64(4700), cfg.Thermistor.Divider.SeriesOhms)
	assert.Equal(t, uint16(1023), cfg.Thermistor.Divider.FullScale)
	assert.True(t, cfg.Thermistor.Divider.HighSide)
	assert.Equal(t, 8, cfg.Thermistor.AverageSamples)
	assert.Equal(t, time.Second, cfg.Thermistor.SampleInterval)
	assert.Equal(t, display.Parallel, cfg.Display.Mode)
	assert.Equal(t, 2*time.Millisecond, cfg.Display.Dwell)
	assert.Equal(t, [2]string{SlotChannel1, SlotChannel2}, cfg.Display.Slots)
	assert.Equal(t, int32(40), cfg.Setpoint.Initial)
	assert.True(t, cfg.Setpoint.Bounds.Enabled)
	assert.Equal(t, int32(90), cfg.Setpoint.Bounds.Max)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
clock:
  clock_hz: 16000000
display:
  slots: [channel2, none]
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, uint32(16_000_000), cfg.Clock.ClockHz)
	assert.Equal(t, tick.Prescaler(256), cfg.Clock.Prescaler) // default kept from Default()
	assert.Equal(t, uint8(20), cfg.Buttons.HeldThreshold)
	assert.Len(t, cfg.Thermistor.Table, len(thermistor.MF52))
	assert.Equal(t, [2]string{SlotChannel2, SlotNone}, cfg.Display.Slots)
	assert.Equal(t, display.Sequential, cfg.Display.Mode)
}

func TestEnsureDefaults_RecommendedPrescaler(t *testing.T) {
	cfg := &Config{}
	cfg.Clock.ClockHz = 16_000_000
	cfg.ensureDefaults()

	assert.Equal(t, tick.Prescaler(1024), cfg.Clock.Prescaler)
	assert.Equal(t, uint32(tick.DefaultTimerRange), cfg.Clock.TimerRange)
	assert.Equal(t, [2]string{SlotSetpoint, SlotChannel1}, cfg.Display.Slots)
	assert.NoError(t, cfg.Validate())
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Clock.ClockHz = 8_000_000
	cfg.Clock.Prescaler = 1024
	cfg.Display.Mode = display.Parallel
	cfg.Setpoint.Initial = 55

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, uint32(8_000_000), loaded.Clock.ClockHz)
	assert.Equal(t, display.Parallel, loaded.Display.Mode)
	assert.Equal(t, int32(55), loaded.Setpoint.Initial)
	assert.Equal(t, cfg.Display.Dwell, loaded.Display.Dwell)
	assert.Equal(t, cfg.Thermistor.Table, loaded.Thermistor.Table)
	assert.NoError(t, loaded.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad prescaler", mutate: func(c *Config) { c.Clock.Prescaler = 100 }},
		{name: "period too short", mutate: func(c *Config) { c.Clock.ClockHz = 16_000_000; c.Clock.Prescaler = 8 }},
		{name: "thresholds", mutate: func(c *Config) { c.Buttons.PressedThreshold = 50 }},
		{name: "curve", mutate: func(c *Config) { c.Thermistor.Table[6].Ohms = 98960 }},
		{name: "anchor", mutate: func(c *Config) { c.Thermistor.Anchor = "nearest" }},
		{name: "divider", mutate: func(c *Config) { c.Thermistor.Divider.SeriesOhms = -1 }},
		{name: "averaging", mutate: func(c *Config) { c.Thermistor.AverageSamples = -1 }},
		{name: "sample interval", mutate: func(c *Config) { c.Thermistor.SampleInterval = 0 }},
		{name: "display mode", mutate: func(c *Config) { c.Display.Mode = "strobe" }},
		{name: "slot", mutate: func(c *Config) { c.Display.Slots[1] = "humidity" }},
		{name: "bounds", mutate: func(c *Config) {
			c.Setpoint.Bounds.Enabled = true
			c.Setpoint.Bounds.Min = 50
			c.Setpoint.Bounds.Max = 10
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
