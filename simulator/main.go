package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/ntcstat/pkg/button"
	"github.com/itohio/ntcstat/pkg/config"
	"github.com/itohio/ntcstat/pkg/control"
	"github.com/itohio/ntcstat/pkg/hal"
	"github.com/itohio/ntcstat/pkg/logger"
	"github.com/itohio/ntcstat/pkg/panel"
	"github.com/itohio/ntcstat/pkg/thermostat"
)

// refreshInterval paces panel redraws (~30 FPS).
const refreshInterval = 33 * time.Millisecond

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		exitOnOptionsError(err)
	}

	// Load configuration
	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := opts.apply(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if opts.Save {
		if err := cfg.Save(opts.Config); err != nil {
			log.Fatalw("failed to save configuration", "path", opts.Config, "error", err)
		}
		log.Infow("configuration saved", "path", opts.Config)
		return
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.ntcstat")

	window := application.NewWindow("NTC Thermostat")
	window.Resize(fyne.NewSize(560, 420))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: opts.Config,
		log:        log,
		window:     window,
		panel:      panel.New(),
		status:     widget.NewLabel(""),
	}
	window.SetContent(createContent(state))
	bindKeys(state)

	if err := state.start(cfg); err != nil {
		log.Errorw("failed to start thermostat", "error", err)
		dialog.ShowError(err, window)
	}
	window.SetOnClosed(state.stop)
	window.ShowAndRun()
}

// session is one running thermostat on a simulated board.
type session struct {
	board  *hal.Mock
	device *thermostat.Thermostat
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	log        *logger.Logger
	window     fyne.Window

	panel  *panel.Panel
	status *widget.Label
	temps  [control.Channels]*widget.Slider

	mu      sync.Mutex
	session *session
}

// board returns the current simulated board, or nil when stopped.
func (s *appState) board() *hal.Mock {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	return s.session.board
}

func (s *appState) press(id button.ID) {
	if b := s.board(); b != nil {
		b.Press(id)
	}
}

func (s *appState) release(id button.ID) {
	if b := s.board(); b != nil {
		b.Release(id)
	}
}

// start builds a board and thermostat from cfg and runs them.
func (s *appState) start(cfg *config.Config) error {
	board := hal.NewMock(cfg.Mock, cfg.Thermistor.Table)
	for ch, slider := range s.temps {
		if slider != nil {
			board.SetTemperature(control.Channel(ch), slider.Value)
		}
	}

	device, err := thermostat.New(cfg, board, s.log.SugaredLogger)
	if err != nil {
		board.Close()
		return fmt.Errorf("failed to create thermostat: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{board: board, device: device, cancel: cancel}

	sess.wg.Add(2)
	go func() {
		defer sess.wg.Done()
		if err := device.Run(ctx); err != nil {
			s.log.Errorw("thermostat stopped", "error", err)
		}
	}()
	go func() {
		defer sess.wg.Done()
		s.refreshLoop(ctx, sess)
	}()

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	return nil
}

// stop cancels the running session and waits for it.
func (s *appState) stop() {
	s.mu.Lock()
	sess := s.session
	s.session = nil
	s.mu.Unlock()

	if sess == nil {
		return
	}
	sess.cancel()
	sess.wg.Wait()
	sess.board.Close()
}

// restart applies cfg, carrying the current setpoint over.
func (s *appState) restart(cfg *config.Config) {
	next := *cfg
	s.mu.Lock()
	if s.session != nil {
		next.Setpoint.Initial = int32(s.session.device.State().Setpoint())
	}
	s.mu.Unlock()

	s.stop()
	if err := s.start(&next); err != nil {
		dialog.ShowError(err, s.window)
	}
}

// refreshLoop copies the latched display and state to the UI.
func (s *appState) refreshLoop(ctx context.Context, sess *session) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			patterns := sess.board.Latched()
			text := statusText(sess.device.State().Snapshot(), sess.device.Ticks())
			fyne.Do(func() {
				s.panel.SetPatterns(patterns)
				s.status.SetText(text)
			})
		}
	}
}

func statusText(snap control.Snapshot, ticks uint64) string {
	text := fmt.Sprintf("Setpoint %d °C", snap.Setpoint)
	for ch, sample := range snap.Samples {
		name := control.Channel(ch).String()
		switch {
		case !sample.Valid:
			text += fmt.Sprintf("   %s --", name)
		case sample.Clamped:
			text += fmt.Sprintf("   %s %d °C (out of range)", name, sample.Celsius)
		default:
			text += fmt.Sprintf("   %s %d °C (%.0f Ω)", name, sample.Celsius, sample.Ohms)
		}
	}
	return text + fmt.Sprintf("   ticks %d", ticks)
}

// createContent lays out the panel, the buttons and the sensor controls.
func createContent(state *appState) fyne.CanvasObject {
	plus := newHoldButton("+", func() { state.press(button.Plus) }, func() { state.release(button.Plus) })
	minus := newHoldButton("−", func() { state.press(button.Minus) }, func() { state.release(button.Minus) })

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	sensors := container.NewVBox()
	for ch := range state.temps {
		channel := control.Channel(ch)
		label := widget.NewLabel("")
		slider := widget.NewSlider(-40, 120)
		slider.Step = 0.5
		slider.OnChanged = func(v float64) {
			label.SetText(fmt.Sprintf("%s sensor %.1f °C", channel, v))
			if b := state.board(); b != nil {
				b.SetTemperature(channel, v)
			}
		}
		slider.SetValue(state.cfg.Mock.Celsius[ch])
		state.temps[ch] = slider
		sensors.Add(container.NewBorder(nil, nil, label, nil, slider))
	}

	toolbar := container.NewBorder(nil, nil, nil, settingsBtn, container.NewHBox(minus, plus))

	return container.NewBorder(
		toolbar,
		container.NewVBox(sensors, state.status),
		nil,
		nil,
		state.panel,
	)
}

// bindKeys maps the arrow keys to the buttons while they are held.
func bindKeys(state *appState) {
	dc, ok := state.window.Canvas().(desktop.Canvas)
	if !ok {
		return
	}
	keyButton := func(key fyne.KeyName) (button.ID, bool) {
		switch key {
		case fyne.KeyUp, fyne.KeyPlus:
			return button.Plus, true
		case fyne.KeyDown, fyne.KeyMinus:
			return button.Minus, true
		}
		return 0, false
	}
	dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
		if id, ok := keyButton(ev.Name); ok {
			state.press(id)
		}
	})
	dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
		if id, ok := keyButton(ev.Name); ok {
			state.release(id)
		}
	})
}
