package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// holdButton is a button that reports press and release separately, so that
// holding it with the mouse behaves like holding the physical button.
type holdButton struct {
	widget.Button

	onDown func()
	onUp   func()
}

var _ desktop.Mouseable = (*holdButton)(nil)

func newHoldButton(label string, onDown, onUp func()) *holdButton {
	b := &holdButton{onDown: onDown, onUp: onUp}
	b.Text = label
	b.Importance = widget.HighImportance
	b.ExtendBaseWidget(b)
	return b
}

// MouseDown presses the button.
func (b *holdButton) MouseDown(*desktop.MouseEvent) {
	if b.onDown != nil {
		b.onDown()
	}
}

// MouseUp releases the button.
func (b *holdButton) MouseUp(*desktop.MouseEvent) {
	if b.onUp != nil {
		b.onUp()
	}
}

// MinSize keeps the buttons finger sized.
func (b *holdButton) MinSize() fyne.Size {
	size := b.Button.MinSize()
	return fyne.NewSize(max(size.Width, 64), max(size.Height, 48))
}
