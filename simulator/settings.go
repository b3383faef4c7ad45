package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/ntcstat/pkg/config"
	"github.com/itohio/ntcstat/pkg/display"
	"github.com/itohio/ntcstat/pkg/logger"
	"github.com/itohio/ntcstat/pkg/thermistor"
)

var slotOptions = []string{config.SlotSetpoint, config.SlotChannel1, config.SlotChannel2, config.SlotNone}

var levelOptions = []string{logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel}

// showSettingsDialog displays a settings dialog with tabs for the editable
// configuration sections.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createButtonsTab(state),
		createDisplayTab(state),
		createThermistorTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(480, 360))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(480, 360))
	d.Show()
}

// applySettings validates a modified copy of the configuration, saves it and
// restarts the thermostat with it.
func applySettings(state *appState, modify func(cfg *config.Config) error) {
	next := *state.cfg
	if err := modify(&next); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if err := next.Validate(); err != nil {
		dialog.ShowError(fmt.Errorf("invalid settings: %w", err), state.window)
		return
	}
	if err := next.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}
	state.cfg = &next
	state.log.Infow("settings applied", "path", state.configPath)
	state.restart(state.cfg)
}

// applyLogLevel switches the running logger to level and records it in cfg.
func applyLogLevel(log *logger.Logger, cfg *config.Config, level string) error {
	if err := log.SetLevel(level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	cfg.Log.Level = log.Level().String()
	return nil
}

func parseUint8(text, name string) (uint8, error) {
	v, err := strconv.ParseUint(text, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return uint8(v), nil
}

func parseInt(text, name string) (int, error) {
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// createButtonsTab creates the button timing tab.
func createButtonsTab(state *appState) *container.TabItem {
	b := state.cfg.Buttons

	pressedEntry := widget.NewEntry()
	pressedEntry.SetText(strconv.Itoa(int(b.PressedThreshold)))

	heldEntry := widget.NewEntry()
	heldEntry.SetText(strconv.Itoa(int(b.HeldThreshold)))

	repeatEntry := widget.NewEntry()
	repeatEntry.SetText(strconv.Itoa(int(b.RepeatDelay)))

	fineEntry := widget.NewEntry()
	fineEntry.SetText(strconv.Itoa(b.FineStep))

	coarseEntry := widget.NewEntry()
	coarseEntry.SetText(strconv.Itoa(b.CoarseStep))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Pressed after (ticks)", Widget: pressedEntry},
			{Text: "Held after (ticks)", Widget: heldEntry},
			{Text: "Repeat every (ticks)", Widget: repeatEntry},
			{Text: "Click step (°C)", Widget: fineEntry},
			{Text: "Repeat step (°C)", Widget: coarseEntry},
		},
		OnSubmit: func() {
			applySettings(state, func(cfg *config.Config) error {
				var err error
				if cfg.Buttons.PressedThreshold, err = parseUint8(pressedEntry.Text, "pressed threshold"); err != nil {
					return err
				}
				if cfg.Buttons.HeldThreshold, err = parseUint8(heldEntry.Text, "held threshold"); err != nil {
					return err
				}
				if cfg.Buttons.RepeatDelay, err = parseUint8(repeatEntry.Text, "repeat delay"); err != nil {
					return err
				}
				if cfg.Buttons.FineStep, err = parseInt(fineEntry.Text, "click step"); err != nil {
					return err
				}
				if cfg.Buttons.CoarseStep, err = parseInt(coarseEntry.Text, "repeat step"); err != nil {
					return err
				}
				return nil
			})
		},
	}

	return container.NewTabItem("Buttons", form)
}

// createDisplayTab creates the display drive tab.
func createDisplayTab(state *appState) *container.TabItem {
	d := state.cfg.Display

	modeSelect := widget.NewSelect([]string{string(display.Sequential), string(display.Parallel)}, nil)
	modeSelect.SetSelected(string(d.Mode))

	dwellEntry := widget.NewEntry()
	dwellEntry.SetText(d.Dwell.String())

	firstSelect := widget.NewSelect(slotOptions, nil)
	firstSelect.SetSelected(d.Slots[0])

	secondSelect := widget.NewSelect(slotOptions, nil)
	secondSelect.SetSelected(d.Slots[1])

	levelSelect := widget.NewSelect(levelOptions, nil)
	levelSelect.SetSelected(state.log.Level().String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Drive mode", Widget: modeSelect},
			{Text: "Dwell", Widget: dwellEntry},
			{Text: "Left slot", Widget: firstSelect},
			{Text: "Right slot", Widget: secondSelect},
			{Text: "Log level", Widget: levelSelect},
		},
		OnSubmit: func() {
			applySettings(state, func(cfg *config.Config) error {
				dwell, err := time.ParseDuration(dwellEntry.Text)
				if err != nil {
					return fmt.Errorf("dwell: %w", err)
				}
				cfg.Display.Mode = display.Mode(modeSelect.Selected)
				cfg.Display.Dwell = dwell
				cfg.Display.Slots = [2]string{firstSelect.Selected, secondSelect.Selected}
				return applyLogLevel(state.log, cfg, levelSelect.Selected)
			})
		},
	}

	return container.NewTabItem("Display", form)
}

// createThermistorTab creates the thermistor sampling tab.
func createThermistorTab(state *appState) *container.TabItem {
	th := state.cfg.Thermistor

	anchorSelect := widget.NewSelect([]string{thermistor.AnchorBracketing, thermistor.AnchorFixed}, nil)
	anchorSelect.SetSelected(th.Anchor)

	averageEntry := widget.NewEntry()
	averageEntry.SetText(strconv.Itoa(th.AverageSamples))

	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(th.SampleInterval.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Fit anchors", Widget: anchorSelect},
			{Text: "Average samples (0=disabled)", Widget: averageEntry},
			{Text: "Sample interval", Widget: intervalEntry},
		},
		OnSubmit: func() {
			applySettings(state, func(cfg *config.Config) error {
				avg, err := parseInt(averageEntry.Text, "average samples")
				if err != nil {
					return err
				}
				interval, err := time.ParseDuration(intervalEntry.Text)
				if err != nil {
					return fmt.Errorf("sample interval: %w", err)
				}
				cfg.Thermistor.Anchor = anchorSelect.Selected
				cfg.Thermistor.AverageSamples = avg
				cfg.Thermistor.SampleInterval = interval
				return nil
			})
		},
	}

	return container.NewTabItem("Thermistor", form)
}

// createMockTab creates the simulated board tab.
func createMockTab(state *appState) *container.TabItem {
	m := state.cfg.Mock

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.1f", m.NoiseOhms))

	lagEntry := widget.NewEntry()
	lagEntry.SetText(m.TimeConstant.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Noise (Ω)", Widget: noiseEntry},
			{Text: "Thermal time constant", Widget: lagEntry},
		},
		OnSubmit: func() {
			applySettings(state, func(cfg *config.Config) error {
				noise, err := strconv.ParseFloat(noiseEntry.Text, 64)
				if err != nil {
					return fmt.Errorf("noise: %w", err)
				}
				lag, err := time.ParseDuration(lagEntry.Text)
				if err != nil {
					return fmt.Errorf("time constant: %w", err)
				}
				cfg.Mock.NoiseOhms = noise
				cfg.Mock.TimeConstant = lag
				for ch, slider := range state.temps {
					cfg.Mock.Celsius[ch] = slider.Value
				}
				return nil
			})
		},
	}

	return container.NewTabItem("Mock", form)
}
