// Package panel is a Fyne widget imitating the thermostat's 4-digit
// 7-segment display and its indicator row.
package panel

import (
	"image/color"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/ntcstat/pkg/display"
)

// Segment colors.
var (
	LitColor   = color.RGBA{R: 255, G: 60, B: 30, A: 255}
	UnlitColor = color.RGBA{R: 50, G: 20, B: 15, A: 255}
	Background = color.RGBA{R: 20, G: 20, B: 20, A: 255}
)

// indicators lists the status row symbols left to right.
var indicators = []display.Symbol{
	display.Play,
	display.Pause,
	display.USB,
	display.SD,
	display.MHz,
	display.MP3,
	display.Points,
}

// Panel shows one pattern per display position.
type Panel struct {
	widget.BaseWidget

	mu       sync.RWMutex
	patterns [display.Positions]display.Pattern
}

// New creates a blank panel.
func New() *Panel {
	p := &Panel{}
	p.ExtendBaseWidget(p)
	return p
}

// SetPatterns replaces what the panel shows. Call it from the UI goroutine
// (use fyne.Do from elsewhere).
func (p *Panel) SetPatterns(patterns [display.Positions]display.Pattern) {
	p.mu.Lock()
	changed := p.patterns != patterns
	p.patterns = patterns
	p.mu.Unlock()

	if changed {
		p.Refresh()
	}
}

// Patterns returns what the panel currently shows.
func (p *Panel) Patterns() [display.Positions]display.Pattern {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.patterns
}

// String renders the digits as text for status lines and tests, e.g.
// "-9 25". Unknown patterns print as '?', blanks as ' '.
func (p *Panel) String() string {
	patterns := p.Patterns()

	var b strings.Builder
	for pos := 0; pos < display.Digits; pos++ {
		if pos == 2 {
			b.WriteByte(' ')
		}
		b.WriteByte(glyphChar(patterns[pos]))
	}
	return b.String()
}

func glyphChar(p display.Pattern) byte {
	switch p {
	case display.Blank:
		return ' '
	case display.Dash:
		return '-'
	}
	for d := 0; d <= 9; d++ {
		if display.Digit(d) == p {
			return byte('0' + d)
		}
	}
	return '?'
}

// CreateRenderer creates the widget renderer.
func (p *Panel) CreateRenderer() fyne.WidgetRenderer {
	return newRenderer(p)
}
