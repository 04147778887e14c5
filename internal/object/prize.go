package object

import (
	"time"

	"github.com/tomz197/discoball/internal/particle"
	"github.com/tomz197/discoball/internal/physics"
)

// prizeCells is how many terminal columns a prize symbol occupies.
// The catalog is emoji, which terminals draw double width.
const prizeCells = 2

// Prize draws one live particle. It sits at its spawn percentages of the
// view and drifts downward as it ages. The drift is presentation only.
type Prize struct {
	Particle particle.Particle
	FallRate float64 // Logical units per second
}

// Position returns the prize's logical position in view at now.
func (p Prize) Position(view Screen, now time.Time) (x, y float64) {
	age := p.Particle.Age(now)
	if age < 0 {
		age = 0
	}
	x = p.Particle.X / 100 * float64(view.Width)
	y = p.Particle.Y/100*float64(view.Height) + age.Seconds()*p.FallRate
	return x, y
}

// Update is a no-op; position is derived from age.
func (p Prize) Update(ctx UpdateContext) (bool, error) {
	return false, nil
}

// Draw writes the symbol as text over the canvas.
func (p Prize) Draw(ctx DrawContext) error {
	x, y := p.Position(ctx.View, ctx.Now)
	col, row := ctx.Canvas.LogicalToTerminal(x, y)
	if row < 1 || row > ctx.Canvas.TerminalHeight() {
		return nil
	}
	if col < 1 || col+prizeCells-1 > ctx.Canvas.TerminalWidth() {
		return nil
	}
	ctx.Writer.WriteAt(col, row, p.Particle.Symbol)
	ctx.Canvas.MarkTextDirty(col, row, prizeCells)
	return nil
}

// PrizeAt returns the id of the prize drawn nearest logical (x, y) within
// radius, for click-to-collect.
func PrizeAt(prizes []particle.Particle, view Screen, now time.Time, fallRate, x, y, radius float64) (uint64, bool) {
	xs := make([]float64, len(prizes))
	ys := make([]float64, len(prizes))
	for i, p := range prizes {
		xs[i], ys[i] = Prize{Particle: p, FallRate: fallRate}.Position(view, now)
	}
	i := physics.Nearest(x, y, radius, xs, ys)
	if i < 0 {
		return 0, false
	}
	return prizes[i].ID, true
}
