package panel

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/itohio/ntcstat/pkg/display"
)

const (
	segmentCount = 7
	digitAspect  = 0.55 // width / height
	digitGap     = 0.25 // gap between digits, fraction of digit width
	slotGap      = 0.8  // extra gap between the two slots
	indicatorRow = 0.18 // indicator row height, fraction of total
)

// panelRenderer renders the panel widget.
type panelRenderer struct {
	panel *Panel

	background *canvas.Rectangle
	segments   [display.Digits][segmentCount]*canvas.Rectangle
	labels     []*canvas.Text

	objects []fyne.CanvasObject
}

func newRenderer(p *Panel) *panelRenderer {
	r := &panelRenderer{
		panel:      p,
		background: canvas.NewRectangle(Background),
	}
	r.objects = append(r.objects, r.background)

	for d := range r.segments {
		for s := range r.segments[d] {
			rect := canvas.NewRectangle(UnlitColor)
			rect.CornerRadius = 2
			r.segments[d][s] = rect
			r.objects = append(r.objects, rect)
		}
	}
	for _, sym := range indicators {
		text := canvas.NewText(strings.ToUpper(sym.String()), UnlitColor)
		text.TextSize = 11
		text.Alignment = fyne.TextAlignCenter
		r.labels = append(r.labels, text)
		r.objects = append(r.objects, text)
	}

	r.Refresh()
	return r
}

// MinSize returns the minimum size of the widget.
func (r *panelRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 160)
}

// Layout arranges the digits in a row over the indicator row.
func (r *panelRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.background.Move(fyne.NewPos(0, 0))

	margin := size.Height * 0.08
	rowH := size.Height * indicatorRow
	digitH := size.Height - rowH - 3*margin

	// Fit the width: 4 digits, 3 gaps, one slot gap
	units := float32(display.Digits) + 3*digitGap + slotGap
	digitW := digitH * digitAspect
	if maxW := (size.Width - 2*margin) / units; digitW > maxW {
		digitW = maxW
		digitH = digitW / digitAspect
	}

	total := digitW * units
	x := (size.Width - total) / 2
	for d := range r.segments {
		for s, rect := range r.segments[d] {
			pos, sz := segmentRect(s, digitW, digitH)
			rect.Move(fyne.NewPos(x+pos.X, margin+pos.Y))
			rect.Resize(sz)
		}
		x += digitW * (1 + digitGap)
		if d == 1 {
			x += digitW * slotGap
		}
	}

	labelW := (size.Width - 2*margin) / float32(len(r.labels))
	labelY := size.Height - margin - rowH
	for i, text := range r.labels {
		text.Move(fyne.NewPos(margin+float32(i)*labelW, labelY))
		text.Resize(fyne.NewSize(labelW, rowH))
	}
}

// segmentRect returns the placement of segment index s (a..g) inside a digit
// cell of width w and height h.
func segmentRect(s int, w, h float32) (fyne.Position, fyne.Size) {
	t := w * 0.16
	vertical := h/2 - t - t/2
	horizontal := w - 2*t

	switch s {
	case 0: // a
		return fyne.NewPos(t, 0), fyne.NewSize(horizontal, t)
	case 1: // b
		return fyne.NewPos(w-t, t), fyne.NewSize(t, vertical)
	case 2: // c
		return fyne.NewPos(w-t, h/2+t/2), fyne.NewSize(t, vertical)
	case 3: // d
		return fyne.NewPos(t, h-t), fyne.NewSize(horizontal, t)
	case 4: // e
		return fyne.NewPos(0, h/2+t/2), fyne.NewSize(t, vertical)
	case 5: // f
		return fyne.NewPos(0, t), fyne.NewSize(t, vertical)
	default: // g
		return fyne.NewPos(t, h/2-t/2), fyne.NewSize(horizontal, t)
	}
}

// Refresh recolors segments and labels from the panel patterns.
func (r *panelRenderer) Refresh() {
	patterns := r.panel.Patterns()

	for d := range r.segments {
		for s, rect := range r.segments[d] {
			fill := UnlitColor
			if patterns[d]&(display.SegA<<s) != 0 {
				fill = LitColor
			}
			if rect.FillColor != fill {
				rect.FillColor = fill
				rect.Refresh()
			}
		}
	}

	row := patterns[display.Indicators]
	for i, sym := range indicators {
		fill := UnlitColor
		if row&sym.Pattern() != 0 {
			fill = LitColor
		}
		if r.labels[i].Color != fill {
			r.labels[i].Color = fill
			r.labels[i].Refresh()
		}
	}
}

// Objects returns all canvas objects.
func (r *panelRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *panelRenderer) Destroy() {}
