package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/ntcstat/pkg/button"
	"github.com/itohio/ntcstat/pkg/control"
	"github.com/itohio/ntcstat/pkg/display"
	"github.com/itohio/ntcstat/pkg/hal"
	"github.com/itohio/ntcstat/pkg/sample"
	"github.com/itohio/ntcstat/pkg/thermistor"
	"github.com/itohio/ntcstat/pkg/tick"
)

// Display slot sources.
const (
	SlotSetpoint = "setpoint"
	SlotChannel1 = "channel1"
	SlotChannel2 = "channel2"
	SlotNone     = "none"
)

// Config represents the application configuration.
type Config struct {
	Clock      tick.Config      `yaml:"clock"`
	Buttons    button.Config    `yaml:"buttons"`
	Thermistor ThermistorConfig `yaml:"thermistor"`
	Display    DisplayConfig    `yaml:"display"`
	Setpoint   SetpointConfig   `yaml:"setpoint"`
	Mock       hal.MockConfig   `yaml:"mock"`
	Log        LogConfig        `yaml:"log"`
}

// ThermistorConfig contains the calibration table and sampling parameters.
type ThermistorConfig struct {
	thermistor.Config `yaml:",inline"`

	Divider        sample.Divider `yaml:"divider"`
	AverageSamples int            `yaml:"average_samples"` // Moving average window (0/1 = disabled)
	SampleInterval time.Duration  `yaml:"sample_interval"` // Time between resolution cycles
}

// DisplayConfig contains segment drive and layout parameters.
type DisplayConfig struct {
	display.Config `yaml:",inline"`

	// Slots selects what the First and Second temperature slots show:
	// setpoint, channel1, channel2 or none.
	Slots [2]string `yaml:"slots"`
}

// SetpointConfig contains the target temperature parameters.
type SetpointConfig struct {
	Initial int32          `yaml:"initial"`
	Bounds  control.Bounds `yaml:"bounds"`
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Clock: tick.Config{
			ClockHz:    4_000_000,
			Prescaler:  256, // ~16ms tick
			TimerRange: tick.DefaultTimerRange,
		},
		Buttons: button.DefaultConfig(),
		Thermistor: ThermistorConfig{
			Config:         thermistor.DefaultConfig(),
			Divider:        sample.DefaultDivider(),
			AverageSamples: 4,
			SampleInterval: 250 * time.Millisecond,
		},
		Display: DisplayConfig{
			Config: display.DefaultConfig(),
			Slots:  [2]string{SlotSetpoint, SlotChannel1},
		},
		Setpoint: SetpointConfig{
			Initial: -9,
			Bounds: control.Bounds{
				Enabled: false,
				Min:     display.MinValue,
				Max:     display.MaxValue,
			},
		},
		Mock: hal.MockConfig{
			Celsius:      [2]float64{22, 45},
			NoiseOhms:    20,
			TimeConstant: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Clock.ClockHz == 0 {
		c.Clock.ClockHz = def.Clock.ClockHz
	}
	if c.Clock.Prescaler == 0 {
		// Prefer the table entry for a known clock
		if p, ok := tick.RecommendedPrescaler(c.Clock.ClockHz); ok {
			c.Clock.Prescaler = p
		} else {
			c.Clock.Prescaler = def.Clock.Prescaler
		}
	}
	if c.Clock.TimerRange == 0 {
		c.Clock.TimerRange = def.Clock.TimerRange
	}

	if c.Buttons.PressedThreshold == 0 {
		c.Buttons.PressedThreshold = def.Buttons.PressedThreshold
	}
	if c.Buttons.HeldThreshold == 0 {
		c.Buttons.HeldThreshold = def.Buttons.HeldThreshold
	}
	if c.Buttons.RepeatDelay == 0 {
		c.Buttons.RepeatDelay = def.Buttons.RepeatDelay
	}
	if c.Buttons.FineStep == 0 {
		c.Buttons.FineStep = def.Buttons.FineStep
	}
	if c.Buttons.CoarseStep == 0 {
		c.Buttons.CoarseStep = def.Buttons.CoarseStep
	}

	if len(c.Thermistor.Table) == 0 {
		c.Thermistor.Table = def.Thermistor.Table
	}
	if c.Thermistor.Anchor == "" {
		c.Thermistor.Anchor = def.Thermistor.Anchor
	}
	if c.Thermistor.Divider.SeriesOhms == 0 {
		c.Thermistor.Divider.SeriesOhms = def.Thermistor.Divider.SeriesOhms
	}
	if c.Thermistor.Divider.FullScale == 0 {
		c.Thermistor.Divider.FullScale = def.Thermistor.Divider.FullScale
	}
	if c.Thermistor.SampleInterval == 0 {
		c.Thermistor.SampleInterval = def.Thermistor.SampleInterval
	}

	if c.Display.Mode == "" {
		c.Display.Mode = def.Display.Mode
	}
	for i, slot := range c.Display.Slots {
		if slot == "" {
			c.Display.Slots[i] = def.Display.Slots[i]
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// ErrSlot is returned for an unknown display slot source.
var ErrSlot = errors.New("unknown display slot")

// Validate checks every section. It is called before the control loop
// starts; any error is fatal.
func (c *Config) Validate() error {
	if err := c.Clock.Validate(); err != nil {
		return fmt.Errorf("clock: %w", err)
	}
	if err := c.Buttons.Validate(); err != nil {
		return fmt.Errorf("buttons: %w", err)
	}
	if _, err := c.Thermistor.NewResolver(); err != nil {
		return fmt.Errorf("thermistor: %w", err)
	}
	if err := c.Thermistor.Divider.Validate(); err != nil {
		return fmt.Errorf("thermistor: %w", err)
	}
	if c.Thermistor.AverageSamples < 0 {
		return fmt.Errorf("thermistor: negative average_samples %d", c.Thermistor.AverageSamples)
	}
	if c.Thermistor.SampleInterval <= 0 {
		return fmt.Errorf("thermistor: sample_interval must be positive")
	}
	if err := c.Display.Config.Validate(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	for i, slot := range c.Display.Slots {
		switch slot {
		case SlotSetpoint, SlotChannel1, SlotChannel2, SlotNone:
		default:
			return fmt.Errorf("display: slot %d: %w %q", i+1, ErrSlot, slot)
		}
	}
	if err := c.Setpoint.Bounds.Validate(); err != nil {
		return fmt.Errorf("setpoint: %w", err)
	}
	return nil
}
