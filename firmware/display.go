//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/itohio/ntcstat/pkg/display"
)

// gpioDisplay drives the multiplexed display directly from GPIO pins.
type gpioDisplay struct{}

var _ display.Driver = gpioDisplay{}

func (gpioDisplay) configure() {
	for _, pin := range digitPins {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}
	for _, pin := range segmentPins {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}
}

// Show selects position and lights exactly the segments of pattern.
// The indicator row shares the segment lines: bit n drives line n.
func (gpioDisplay) Show(position display.Position, pattern display.Pattern) {
	if int(position) >= len(digitPins) {
		return
	}
	for i, pin := range segmentPins {
		pin.Set(pattern&(1<<i) != 0)
	}
	for i, pin := range digitPins {
		pin.Set(i == int(position))
	}
}

// Clear turns every segment and digit off.
func (gpioDisplay) Clear() {
	for _, pin := range digitPins {
		pin.Low()
	}
	for _, pin := range segmentPins {
		pin.Low()
	}
}

// busyWait dwells without yielding to the scheduler.
func busyWait(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}
