package thermistor

import (
	"fmt"
	"math"
)

// Coefficients of the Steinhart-Hart equation 1/T = A + B·ln(R) + C·ln(R)³,
// with T in kelvin and R in ohms.
type Coefficients struct {
	A, B, C float64
}

// Fit solves the coefficients through three calibration points.
func Fit(p1, p2, p3 Point) (Coefficients, error) {
	for i, p := range [3]Point{p1, p2, p3} {
		if !(p.Ohms > 0) {
			return Coefficients{}, fmt.Errorf("%w: point %d resistance %v must be positive", ErrFit, i+1, p.Ohms)
		}
		if !(p.Kelvin() > 0) {
			return Coefficients{}, fmt.Errorf("%w: point %d temperature %v K must be positive", ErrFit, i+1, p.Kelvin())
		}
	}
	if p1.Celsius == p2.Celsius || p1.Celsius == p3.Celsius || p2.Celsius == p3.Celsius {
		return Coefficients{}, fmt.Errorf("%w: temperatures must be distinct", ErrFit)
	}

	l1, l2, l3 := math.Log(p1.Ohms), math.Log(p2.Ohms), math.Log(p3.Ohms)
	if l1 == l2 || l1 == l3 || l2 == l3 {
		return Coefficients{}, fmt.Errorf("%w: resistances must be distinct", ErrFit)
	}
	if l1+l2+l3 == 0 {
		return Coefficients{}, fmt.Errorf("%w: log-resistances sum to zero", ErrFit)
	}

	y1, y2, y3 := 1/p1.Kelvin(), 1/p2.Kelvin(), 1/p3.Kelvin()

	h2 := (y2 - y1) / (l2 - l1)
	h3 := (y3 - y1) / (l3 - l1)

	c := ((h3 - h2) / (l3 - l2)) * (1 / (l1 + l2 + l3))
	b := h2 - c*(l1*l1+l1*l2+l2*l2)
	a := y1 - (b+l1*l1*c)*l1

	k := Coefficients{A: a, B: b, C: c}
	if math.IsNaN(a) || math.IsNaN(b) || math.IsNaN(c) || math.IsInf(a, 0) || math.IsInf(b, 0) || math.IsInf(c, 0) {
		return Coefficients{}, fmt.Errorf("%w: non-finite coefficients %+v", ErrFit, k)
	}
	return k, nil
}

// Kelvin evaluates the fit at ohms. ohms must be positive.
func (k Coefficients) Kelvin(ohms float64) float64 {
	l := math.Log(ohms)
	return 1 / (k.A + k.B*l + k.C*l*l*l)
}

// Celsius evaluates the fit at ohms in degrees Celsius.
func (k Coefficients) Celsius(ohms float64) float64 {
	return k.Kelvin(ohms) - ZeroCelsius
}
