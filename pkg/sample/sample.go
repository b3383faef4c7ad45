package sample

import (
	"errors"
	"fmt"
	"math"
)

// Divider describes the thermistor/series-resistor voltage divider feeding
// the ADC.
type Divider struct {
	SeriesOhms float64 `yaml:"series_ohms"` // Fixed resistor value
	FullScale  uint16  `yaml:"full_scale"`  // ADC reading at the reference voltage
	HighSide   bool    `yaml:"high_side"`   // Thermistor between reference and ADC pin
}

// DefaultDivider is a 10k series resistor with the thermistor to ground,
// read by an ADC scaled to 16 bits as TinyGo's machine.ADC reports it.
func DefaultDivider() Divider {
	return Divider{
		SeriesOhms: 10000,
		FullScale:  0xFFFF,
		HighSide:   false,
	}
}

// ErrDivider is returned for an unusable divider description.
var ErrDivider = errors.New("invalid divider")

// Validate checks the divider values.
func (d Divider) Validate() error {
	if !(d.SeriesOhms > 0) {
		return fmt.Errorf("%w: series resistance %v", ErrDivider, d.SeriesOhms)
	}
	if d.FullScale == 0 {
		return fmt.Errorf("%w: zero full scale", ErrDivider)
	}
	return nil
}

// Ohms converts an ADC reading into thermistor resistance.
//
// Low side (thermistor to ground): R = Rs * raw / (full - raw).
// High side (thermistor to reference): R = Rs * (full - raw) / raw.
// Readings at the rails give 0 (short) or +Inf (open).
func (d Divider) Ohms(raw uint16) float64 {
	if raw > d.FullScale {
		raw = d.FullScale
	}
	top := float64(d.FullScale - raw)
	bottom := float64(raw)
	if d.HighSide {
		bottom, top = top, bottom
	}
	if top == 0 {
		return math.Inf(1)
	}
	return d.SeriesOhms * bottom / top
}
