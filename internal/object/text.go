package object

import (
	"strings"
	"unicode/utf8"
)

// Text is a line of overlay text. Coordinates are 1-based canvas positions.
// Width pads the value so a shorter value overwrites a longer previous one.
type Text struct {
	X     int
	Y     int
	Value string
	Width int
	Style string // SGR prefix, e.g. draw.ColorBold
}

// Centered returns a text centered on column centerX.
func Centered(centerX, y int, value string) Text {
	return Text{X: centerX - utf8.RuneCountInString(value)/2, Y: y, Value: value}
}

// Update is a no-op for static text.
func (t Text) Update(ctx UpdateContext) (bool, error) {
	return false, nil
}

// Draw writes the text and marks its cells so the canvas repaints them
// once the text is gone.
func (t Text) Draw(ctx DrawContext) error {
	value := t.Value
	n := utf8.RuneCountInString(value)
	if n < t.Width {
		value += strings.Repeat(" ", t.Width-n)
		n = t.Width
	}
	if n == 0 {
		return nil
	}
	x := max(t.X, 1)
	y := max(t.Y, 1)
	ctx.Writer.WriteStyledAt(x, y, t.Style, value)
	ctx.Canvas.MarkTextDirty(x, y, n)
	return nil
}
