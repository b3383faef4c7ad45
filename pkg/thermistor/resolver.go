// Package thermistor resolves NTC thermistor resistance into temperature
// with a three-point Steinhart-Hart fit over a calibration table.
package thermistor

import (
	"fmt"
	"math"
)

// Window is three table indices used as fit anchors, ordered by rising
// temperature.
type Window [3]int

// Policy selects the anchor window for a reading.
type Policy interface {
	// Windows returns every window the policy can select, for precomputation.
	Windows(c Curve) ([]Window, error)
	// Select returns the index into Windows for an in-range reading.
	Select(c Curve, ohms float64) int
}

// Bracketing anchors each reading on the two entries that bracket it and
// the next hotter entry. At the hot edge the window shifts down so it stays
// inside the table. Windows only change at table resistances, where both
// neighbouring fits pass through the same point, so the resolved curve stays
// continuous.
type Bracketing struct{}

// Windows returns one window per table interval start.
func (Bracketing) Windows(c Curve) ([]Window, error) {
	if len(c) < 3 {
		return nil, fmt.Errorf("%w: bracketing needs 3 points", ErrAnchors)
	}
	ws := make([]Window, len(c)-2)
	for i := range ws {
		ws[i] = Window{i, i + 1, i + 2}
	}
	return ws, nil
}

// Select maps the bracketing interval to its window.
func (Bracketing) Select(c Curve, ohms float64) int {
	i := c.interval(ohms)
	if i > len(c)-3 {
		i = len(c) - 3
	}
	return i
}

// Fixed always anchors on the same three table entries.
type Fixed struct {
	Indices Window
}

// Windows validates and returns the single fixed window.
func (f Fixed) Windows(c Curve) ([]Window, error) {
	for _, idx := range f.Indices {
		if idx < 0 || idx >= len(c) {
			return nil, fmt.Errorf("%w: index %d outside table of %d", ErrAnchors, idx, len(c))
		}
	}
	if f.Indices[0] == f.Indices[1] || f.Indices[0] == f.Indices[2] || f.Indices[1] == f.Indices[2] {
		return nil, fmt.Errorf("%w: indices %v must be distinct", ErrAnchors, f.Indices)
	}
	return []Window{f.Indices}, nil
}

// Select always returns the fixed window.
func (Fixed) Select(Curve, float64) int { return 0 }

// Reading is the result of one resolution.
type Reading struct {
	Celsius int     // Rounded temperature
	Ohms    float64 // Raw resistance as measured
	Clamped bool    // Resistance was outside the table and saturated to an edge
}

// Resolver turns resistance into temperature for one calibration table.
// It holds no per-reading state and is safe for concurrent use.
type Resolver struct {
	curve  Curve
	policy Policy
	fits   []Coefficients
}

// NewResolver validates the curve and precomputes every fit the policy can
// select, so that an unusable table fails at construction.
func NewResolver(curve Curve, policy Policy) (*Resolver, error) {
	if err := curve.Validate(); err != nil {
		return nil, err
	}
	if policy == nil {
		policy = Bracketing{}
	}

	windows, err := policy.Windows(curve)
	if err != nil {
		return nil, err
	}

	fits := make([]Coefficients, len(windows))
	for i, w := range windows {
		k, err := Fit(curve[w[0]], curve[w[1]], curve[w[2]])
		if err != nil {
			return nil, fmt.Errorf("window %v: %w", w, err)
		}
		fits[i] = k
	}

	c := make(Curve, len(curve))
	copy(c, curve)

	return &Resolver{curve: c, policy: policy, fits: fits}, nil
}

// Curve returns the calibration table.
func (r *Resolver) Curve() Curve {
	return r.curve
}

// Resolve converts a resistance reading to the nearest whole degree.
// Readings colder than the table (including open sensor, +Inf and NaN)
// saturate to the coldest point; readings hotter than the table (including
// a shorted sensor, <= 0) saturate to the hottest point.
func (r *Resolver) Resolve(ohms float64) Reading {
	reading := Reading{Ohms: ohms}

	coldest, hottest := r.curve.Coldest(), r.curve.Hottest()
	switch {
	case math.IsNaN(ohms) || ohms > coldest.Ohms:
		reading.Celsius = int(math.Round(coldest.Celsius))
		reading.Clamped = true
		return reading
	case ohms < hottest.Ohms:
		reading.Celsius = int(math.Round(hottest.Celsius))
		reading.Clamped = true
		return reading
	}

	k := r.fits[r.policy.Select(r.curve, ohms)]
	celsius := k.Celsius(ohms)

	// A fixed window can extrapolate far outside its anchors; keep the
	// result within the table's temperature span. The span is compared
	// after rounding so an edge reading does not count as clamped.
	lo, hi := math.Round(coldest.Celsius), math.Round(hottest.Celsius)
	rounded := math.Round(celsius)
	switch {
	case math.IsNaN(rounded) || rounded < lo:
		rounded = lo
		reading.Clamped = true
	case rounded > hi:
		rounded = hi
		reading.Clamped = true
	}

	reading.Celsius = int(rounded)
	return reading
}
