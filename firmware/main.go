//go:build tinygo

//go:generate tinygo flash -target=arduino-nano

package main

import (
	"machine"
	"time"

	"github.com/itohio/ntcstat/pkg/button"
	"github.com/itohio/ntcstat/pkg/control"
	"github.com/itohio/ntcstat/pkg/display"
	"github.com/itohio/ntcstat/pkg/sample"
	"github.com/itohio/ntcstat/pkg/thermistor"
	"github.com/itohio/ntcstat/pkg/tick"
)

var (
	adcT1 machine.ADC
	adcT2 machine.ADC

	divider   = sample.DefaultDivider()
	averagers [control.Channels]*sample.Averager

	// Timing
	lastSample time.Time
)

func main() {
	// Configure button pins as inputs with pull-ups
	PIN_PLUS.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	PIN_MINUS.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	// Configure ADC pins
	machine.InitADC()
	adcT1 = machine.ADC{Pin: PIN_T1}
	adcT2 = machine.ADC{Pin: PIN_T2}
	adcT1.Configure(machine.ADCConfig{})
	adcT2.Configure(machine.ADCConfig{})

	driver := gpioDisplay{}
	driver.configure()

	state, err := control.New(INITIAL_SETPOINT, control.Bounds{})
	if err != nil {
		panic(err)
	}

	scheduler, err := tick.New(tick.Config{
		ClockHz:    CPU_CLOCK_HZ,
		Prescaler:  TIMER_DIVIDER,
		TimerRange: TIMER_RANGE,
	})
	if err != nil {
		panic(err)
	}

	debouncer, err := button.New(button.DefaultConfig(), state)
	if err != nil {
		panic(err)
	}

	resolver, err := thermistor.NewResolver(thermistor.MF52, thermistor.Bracketing{})
	if err != nil {
		panic(err)
	}

	renderer, err := display.NewRenderer(display.Config{
		Mode:  display.Sequential,
		Dwell: SEGMENT_DWELL_US * time.Microsecond,
	}, driver)
	if err != nil {
		panic(err)
	}
	renderer.SetSleep(busyWait)

	divider.SeriesOhms = SERIES_OHMS
	for ch := range averagers {
		averagers[ch] = sample.NewAverager(NUM_SAMPLES)
	}

	println("ntcstat: tick", scheduler.Period().String())

	// Main loop
	for {
		now := time.Now()

		// Tick: debounce buttons
		if scheduler.Due(now) {
			debouncer.OnTick(readButtons())
		}

		// Resolve thermistors
		if now.Sub(lastSample) >= SAMPLE_INTERVAL_MS*time.Millisecond {
			sampleChannel(resolver, state, control.Channel1, adcT1)
			sampleChannel(resolver, state, control.Channel2, adcT2)
			lastSample = now
		}

		// Setpoint on the left, T1 on the right
		renderer.Render(display.First, state.Setpoint())
		renderer.Render(display.Second, slotValue(state.Sample(control.Channel1)))
	}
}

// readButtons samples both buttons. Pressed pulls the pin low.
func readButtons() button.Mask {
	var pins uint8
	if PIN_PLUS.Get() {
		pins |= 1 << button.Plus
	}
	if PIN_MINUS.Get() {
		pins |= 1 << button.Minus
	}
	return button.MaskFromActiveLow(pins, uint8(button.Plus), uint8(button.Minus))
}

func sampleChannel(resolver *thermistor.Resolver, state *control.State, ch control.Channel, adc machine.ADC) {
	ohms := averagers[ch].Add(divider.Ohms(adc.Get()))
	r := resolver.Resolve(ohms)
	prev := state.Store(ch, control.ResolvedSample{
		Celsius: r.Celsius,
		Ohms:    ohms,
		Clamped: r.Clamped,
		Valid:   true,
	})
	if r.Clamped != prev.Clamped {
		if r.Clamped {
			println("ntcstat:", ch.String(), "out of range")
		} else {
			println("ntcstat:", ch.String(), "back in range")
		}
	}
}

// slotValue shows dashes until the first reading.
func slotValue(s control.ResolvedSample) int {
	if !s.Valid {
		return display.MaxValue + 1
	}
	return s.Celsius
}
