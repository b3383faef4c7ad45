package sample

import "math"

// MaxWindow is the largest averaging window.
const MaxWindow = 32

// Averager is a moving average over the last N resistance readings.
// It never allocates after construction. Non-finite readings (open or
// shorted sensor) flush the window and pass through unchanged, so a fault
// shows up immediately rather than being smeared into neighbouring values.
type Averager struct {
	buf  [MaxWindow]float64
	size int
	head int
	n    int
	sum  float64
}

// NewAverager returns an averager over window readings. A window of 0 or 1
// disables averaging; larger windows are capped at MaxWindow.
func NewAverager(window int) *Averager {
	if window < 1 {
		window = 1
	}
	if window > MaxWindow {
		window = MaxWindow
	}
	return &Averager{size: window}
}

// Add records a reading and returns the current average.
func (a *Averager) Add(ohms float64) float64 {
	if math.IsNaN(ohms) || math.IsInf(ohms, 0) || ohms <= 0 {
		a.Reset()
		return ohms
	}

	if a.n == a.size {
		// Drop the oldest reading
		a.sum -= a.buf[a.head]
	} else {
		a.n++
	}
	a.buf[a.head] = ohms
	a.sum += ohms
	a.head = (a.head + 1) % a.size

	return a.sum / float64(a.n)
}

// Len returns the number of readings in the window.
func (a *Averager) Len() int {
	return a.n
}

// Reset empties the window.
func (a *Averager) Reset() {
	a.head = 0
	a.n = 0
	a.sum = 0
}
