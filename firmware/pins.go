//go:build tinygo

package main

import "machine"

const (
	// Clock configuration (Arduino Nano, ATmega328P)
	CPU_CLOCK_HZ  = 16_000_000
	TIMER_RANGE   = 256  // 8-bit timer overflow
	TIMER_DIVIDER = 1024 // Recommended prescaler for 16 MHz (~16ms tick)

	// Sampling configuration
	SAMPLE_INTERVAL_MS = 250 // Thermistor resolution interval
	NUM_SAMPLES        = 4   // Moving average window per channel

	// Thermistor divider
	SERIES_OHMS = 10000 // Series resistor, thermistor to ground

	// Setpoint
	INITIAL_SETPOINT = -9

	// Display
	SEGMENT_DWELL_US = 100 // Time each segment stays lit

	// Digit select pins (active high), left to right, then the indicator row
	PIN_DIGIT1     = machine.D2
	PIN_DIGIT2     = machine.D3
	PIN_DIGIT3     = machine.D4
	PIN_DIGIT4     = machine.D5
	PIN_INDICATORS = machine.D6

	// Segment pins a..g (active high)
	PIN_SEG_A = machine.D7
	PIN_SEG_B = machine.D8
	PIN_SEG_C = machine.D9
	PIN_SEG_D = machine.D10
	PIN_SEG_E = machine.D11
	PIN_SEG_F = machine.D12
	PIN_SEG_G = machine.D13

	// Buttons (active low, internal pull-up)
	PIN_PLUS  = machine.A2
	PIN_MINUS = machine.A3

	// Thermistor ADC pins
	PIN_T1 = machine.A0
	PIN_T2 = machine.A1
)

var (
	digitPins   = [...]machine.Pin{PIN_DIGIT1, PIN_DIGIT2, PIN_DIGIT3, PIN_DIGIT4, PIN_INDICATORS}
	segmentPins = [...]machine.Pin{PIN_SEG_A, PIN_SEG_B, PIN_SEG_C, PIN_SEG_D, PIN_SEG_E, PIN_SEG_F, PIN_SEG_G}
)
