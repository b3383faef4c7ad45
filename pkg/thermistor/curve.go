package thermistor

import (
	"errors"
	"fmt"
	"math"
)

// ZeroCelsius is 0 °C in kelvin.
const ZeroCelsius = 273.15

var (
	// ErrCurve is returned for a calibration table that cannot be fitted.
	ErrCurve = errors.New("invalid thermistor curve")
	// ErrFit is returned when three points do not determine a fit.
	ErrFit = errors.New("degenerate Steinhart-Hart fit")
	// ErrAnchors is returned for an invalid anchor selection.
	ErrAnchors = errors.New("invalid anchor selection")
)

// Point is one calibration pair.
type Point struct {
	Celsius float64 `yaml:"celsius"`
	Ohms    float64 `yaml:"ohms"`
}

// Kelvin returns the absolute temperature of the point.
func (p Point) Kelvin() float64 {
	return p.Celsius + ZeroCelsius
}

// Curve is a resistance-vs-temperature table ordered by rising temperature.
// NTC resistance falls as the temperature rises.
type Curve []Point

// MF52 is the MF52 10kΩ B3950 table from -30 °C to 110 °C in 5 °C steps.
// https://www.gotronic.fr/pj2-mf52type-1554.pdf
var MF52 = Curve{
	{-30, 181700},
	{-25, 133300},
	{-20, 98880},
	{-15, 74100},
	{-10, 56060},
	{-5, 42800},
	{0, 33090},
	{5, 25580},
	{10, 20000},
	{15, 15760},
	{20, 12510},
	{25, 10000},
	{30, 8048},
	{35, 6518},
	{40, 5312},
	{45, 4354},
	{50, 3588},
	{55, 2974},
	{60, 2476},
	{65, 2072},
	{70, 1743},
	{75, 1473},
	{80, 1250},
	{85, 1065},
	{90, 911},
	{95, 782},
	{100, 674},
	{105, 583},
	{110, 506},
}

// Validate checks there are at least three points, temperatures rise
// strictly, resistances fall strictly, and every value is in its domain.
func (c Curve) Validate() error {
	if len(c) < 3 {
		return fmt.Errorf("%w: need at least 3 points, have %d", ErrCurve, len(c))
	}
	for i, p := range c {
		if !(p.Ohms > 0) || math.IsInf(p.Ohms, 0) {
			return fmt.Errorf("%w: point %d resistance %v", ErrCurve, i, p.Ohms)
		}
		if !(p.Kelvin() > 0) || math.IsInf(p.Celsius, 0) {
			return fmt.Errorf("%w: point %d temperature %v °C", ErrCurve, i, p.Celsius)
		}
		if i == 0 {
			continue
		}
		prev := c[i-1]
		if p.Celsius <= prev.Celsius {
			return fmt.Errorf("%w: temperature not rising at point %d (%v <= %v)", ErrCurve, i, p.Celsius, prev.Celsius)
		}
		if p.Ohms >= prev.Ohms {
			return fmt.Errorf("%w: resistance not falling at point %d (%v >= %v)", ErrCurve, i, p.Ohms, prev.Ohms)
		}
	}
	return nil
}

// Coldest returns the first (highest resistance) point.
func (c Curve) Coldest() Point { return c[0] }

// Hottest returns the last (lowest resistance) point.
func (c Curve) Hottest() Point { return c[len(c)-1] }

// interval returns i such that c[i].Ohms >= ohms >= c[i+1].Ohms.
// ohms must already be inside the table range.
func (c Curve) interval(ohms float64) int {
	lo, hi := 0, len(c)-2
	for lo < hi {
		mid := (lo + hi) / 2
		if c[mid+1].Ohms > ohms {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// ResistanceAt returns the resistance at celsius by interpolating ln(R)
// linearly against 1/T between neighbouring points. Values outside the
// table clamp to its edges.
func (c Curve) ResistanceAt(celsius float64) float64 {
	if celsius <= c.Coldest().Celsius {
		return c.Coldest().Ohms
	}
	if celsius >= c.Hottest().Celsius {
		return c.Hottest().Ohms
	}

	i := 0
	for i < len(c)-2 && c[i+1].Celsius < celsius {
		i++
	}
	a, b := c[i], c[i+1]

	y := 1 / (celsius + ZeroCelsius)
	ya, yb := 1/a.Kelvin(), 1/b.Kelvin()
	la, lb := math.Log(a.Ohms), math.Log(b.Ohms)

	frac := (y - ya) / (yb - ya)
	return math.Exp(la + frac*(lb-la))
}
