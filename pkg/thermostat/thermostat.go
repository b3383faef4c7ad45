// Package thermostat wires the tick scheduler, button debouncer, thermistor
// resolver and display renderer around a board.
//
// Two execution contexts exist. The tick goroutine (the interrupt analog)
// reads the buttons and adjusts the setpoint; it never blocks. The run loop
// renders the display continuously, samples the thermistors periodically and
// reports button events.
package thermostat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/itohio/ntcstat/pkg/button"
	"github.com/itohio/ntcstat/pkg/config"
	"github.com/itohio/ntcstat/pkg/control"
	"github.com/itohio/ntcstat/pkg/display"
	"github.com/itohio/ntcstat/pkg/hal"
	"github.com/itohio/ntcstat/pkg/sample"
	"github.com/itohio/ntcstat/pkg/thermistor"
	"github.com/itohio/ntcstat/pkg/tick"
)

// EventBuffer is the capacity of the button event queue.
const EventBuffer = 16

// renderInterval paces the render loop so an idle dwell does not spin.
const renderInterval = 2 * time.Millisecond

// Thermostat is one device instance.
type Thermostat struct {
	board hal.Board
	log   *zap.SugaredLogger

	state     *control.State
	scheduler *tick.Scheduler
	debouncer *button.Debouncer
	resolver  *thermistor.Resolver
	renderer  *display.Renderer
	averagers [control.Channels]*sample.Averager

	slots          [2]string
	sampleInterval time.Duration

	events  chan button.Event
	ticks   atomic.Uint64
	dropped atomic.Uint64

	callbacks []func(control.Snapshot)
	cbMu      sync.RWMutex
}

// New validates cfg and builds a thermostat running on board.
// A nil log discards everything.
func New(cfg *config.Config, board hal.Board, log *zap.SugaredLogger) (*Thermostat, error) {
	if cfg == nil {
		return nil, errors.New("nil configuration")
	}
	if board == nil {
		return nil, errors.New("nil board")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	state, err := control.New(cfg.Setpoint.Initial, cfg.Setpoint.Bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to create control state: %w", err)
	}
	scheduler, err := tick.New(cfg.Clock)
	if err != nil {
		return nil, err
	}
	debouncer, err := button.New(cfg.Buttons, state)
	if err != nil {
		return nil, fmt.Errorf("failed to create debouncer: %w", err)
	}
	resolver, err := cfg.Thermistor.NewResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}
	renderer, err := display.NewRenderer(cfg.Display.Config, board)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	t := &Thermostat{
		board:          board,
		log:            log,
		state:          state,
		scheduler:      scheduler,
		debouncer:      debouncer,
		resolver:       resolver,
		renderer:       renderer,
		slots:          cfg.Display.Slots,
		sampleInterval: cfg.Thermistor.SampleInterval,
		events:         make(chan button.Event, EventBuffer),
	}
	for ch := range t.averagers {
		t.averagers[ch] = sample.NewAverager(cfg.Thermistor.AverageSamples)
	}
	debouncer.OnEvent(t.enqueue)

	log.Infow("thermostat configured",
		"tick", scheduler.Period(),
		"setpoint", state.Setpoint(),
		"display_mode", cfg.Display.Mode,
		"anchor", cfg.Thermistor.Anchor,
	)
	return t, nil
}

// State returns the shared control state.
func (t *Thermostat) State() *control.State {
	return t.state
}

// Period returns the tick period.
func (t *Thermostat) Period() time.Duration {
	return t.scheduler.Period()
}

// Ticks returns the number of ticks processed.
func (t *Thermostat) Ticks() uint64 {
	return t.ticks.Load()
}

// Dropped returns the number of events lost to a full queue.
func (t *Thermostat) Dropped() uint64 {
	return t.dropped.Load()
}

// Events returns the button event queue. Run drains it; callers that do not
// use Run may drain it themselves.
func (t *Thermostat) Events() <-chan button.Event {
	return t.events
}

// OnUpdate registers a callback invoked after each sampling cycle.
// Callbacks run on the run loop and should return quickly.
func (t *Thermostat) OnUpdate(fn func(control.Snapshot)) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.callbacks = append(t.callbacks, fn)
}

// Tick reads the buttons and advances the debouncer by one tick.
func (t *Thermostat) Tick() {
	t.debouncer.OnTick(t.board.ReadButtons())
	t.ticks.Add(1)
}

// enqueue runs in the tick context and must not block.
func (t *Thermostat) enqueue(ev button.Event) {
	select {
	case t.events <- ev:
	default:
		t.dropped.Add(1)
	}
}

// SampleChannels reads, averages and resolves both thermistors and stores
// the results, then notifies the update callbacks.
func (t *Thermostat) SampleChannels() {
	for i := range t.averagers {
		ch := control.Channel(i)
		ohms := t.averagers[i].Add(t.board.ReadResistance(ch))
		r := t.resolver.Resolve(ohms)

		prev := t.state.Store(ch, control.ResolvedSample{
			Celsius: r.Celsius,
			Ohms:    ohms,
			Clamped: r.Clamped,
			Valid:   true,
		})

		if r.Clamped != prev.Clamped {
			if r.Clamped {
				t.log.Warnw("reading outside calibration range", "channel", ch, "ohms", ohms, "celsius", r.Celsius)
			} else {
				t.log.Infow("reading back in range", "channel", ch, "ohms", ohms, "celsius", r.Celsius)
			}
		}
		t.log.Debugw("sampled", "channel", ch, "ohms", ohms, "celsius", r.Celsius)
	}

	t.notify(t.state.Snapshot())
}

func (t *Thermostat) notify(s control.Snapshot) {
	t.cbMu.RLock()
	callbacks := make([]func(control.Snapshot), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(s)
	}
}

// slotValue returns the value shown by a slot source. Sources without a
// value render outside the display range, i.e. as dashes.
func (t *Thermostat) slotValue(source string) int {
	const blank = display.MaxValue + 1

	var ch control.Channel
	switch source {
	case config.SlotSetpoint:
		return t.state.Setpoint()
	case config.SlotChannel1:
		ch = control.Channel1
	case config.SlotChannel2:
		ch = control.Channel2
	default:
		return blank
	}

	s := t.state.Sample(ch)
	if !s.Valid {
		return blank
	}
	return s.Celsius
}

// RenderOnce drives both temperature slots once. The display is blank when
// it returns.
func (t *Thermostat) RenderOnce() {
	t.renderer.Render(display.First, t.slotValue(t.slots[0]))
	t.renderer.Render(display.Second, t.slotValue(t.slots[1]))
}

// Run starts the tick goroutine and runs the render loop until ctx is done.
func (t *Thermostat) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t.scheduler.Run(ctx, t.Tick)
	}()
	defer wg.Wait()

	t.log.Infow("thermostat started")
	t.SampleChannels()

	render := time.NewTicker(renderInterval)
	defer render.Stop()
	sampling := time.NewTicker(t.sampleInterval)
	defer sampling.Stop()

	var lastDropped uint64
	for {
		select {
		case <-ctx.Done():
			t.board.Clear()
			t.log.Infow("thermostat stopped", "ticks", t.Ticks())
			return nil
		case ev := <-t.events:
			t.log.Debugw("setpoint adjusted",
				"button", ev.Button,
				"kind", ev.Kind,
				"delta", ev.Delta,
				"setpoint", t.state.Setpoint(),
			)
		case <-sampling.C:
			t.SampleChannels()
			if d := t.Dropped(); d != lastDropped {
				t.log.Warnw("button events dropped", "total", d)
				lastDropped = d
			}
		case <-render.C:
			t.RenderOnce()
		}
	}
}
