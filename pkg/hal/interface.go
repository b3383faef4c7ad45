// Package hal defines the peripheral collaborators the thermostat runs
// against, and a simulated board implementing them.
package hal

import (
	"github.com/itohio/ntcstat/pkg/button"
	"github.com/itohio/ntcstat/pkg/control"
	"github.com/itohio/ntcstat/pkg/display"
)

// Buttons samples the raw button pins.
type Buttons interface {
	// ReadButtons returns the pressed state of both buttons. It must be
	// safe to call from the tick context: no blocking, no allocation.
	ReadButtons() button.Mask
}

// Thermistors measures the thermistor inputs.
type Thermistors interface {
	// ReadResistance performs a (possibly blocking) conversion of channel
	// ch and returns the thermistor resistance in ohms. It must not be
	// called from the tick context.
	ReadResistance(ch control.Channel) float64
}

// Board is a complete device: inputs plus the multiplexed display.
type Board interface {
	Buttons
	Thermistors
	display.Driver
	Close() error
}

// Ensure Mock implements Board.
var _ Board = (*Mock)(nil)
