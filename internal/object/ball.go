package object

import (
	"math"
	"time"

	"github.com/tomz197/discoball/internal/draw"
	"github.com/tomz197/discoball/internal/loop/config"
	"github.com/tomz197/discoball/internal/physics"
)

// groutWidth is the fraction of each tile edge drawn as dark grout.
const groutWidth = 0.14

// DiscoBall is the mirror ball. It hangs from the top of the view on a
// string and rotates in proportion to the session speed.
type DiscoBall struct {
	X, Y   float64 // Center, logical units
	Radius float64 // Horizontal radius, logical units
	Angle  float64 // Rotation in degrees, [0, 360)
	Speed  float64
	Rows   int // Tiles from pole to pole
	Cols   int // Tiles around the equator
}

// NewDiscoBall creates a ball with the default tile layout.
func NewDiscoBall(x, y, radius float64) *DiscoBall {
	return &DiscoBall{
		X:      x,
		Y:      y,
		Radius: radius,
		Rows:   config.BallTileRows,
		Cols:   config.BallTileCols,
	}
}

// Spin advances angle by speed * SpinDegPerUnit degrees for every frame at
// the target frame rate that fits into delta.
func Spin(angle, speed float64, delta time.Duration) float64 {
	frames := delta.Seconds() * config.ClientTargetFPS
	a := math.Mod(angle+speed*config.SpinDegPerUnit*frames, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// Update picks up the latest speed and rotates the ball.
func (b *DiscoBall) Update(ctx UpdateContext) (bool, error) {
	b.Speed = ctx.Speed
	b.Angle = Spin(b.Angle, ctx.Speed, ctx.Delta)
	return false, nil
}

// Draw draws the string and the shaded ball.
func (b *DiscoBall) Draw(ctx DrawContext) error {
	ry := b.Radius * ctx.Canvas.Aspect()
	ctx.Canvas.DrawLine(draw.Point{X: b.X, Y: 0}, draw.Point{X: b.X, Y: b.Y - ry}, draw.Gray)
	ctx.Canvas.FillCircle(b.X, b.Y, b.Radius, b.Shade)
	return nil
}

// Contains reports whether logical (x, y) is on the ball. aspect is the
// canvas aspect, since the ball is only round on screen.
func (b *DiscoBall) Contains(x, y, aspect float64) bool {
	return physics.PointInEllipse(x, y, b.X, b.Y, b.Radius, b.Radius*aspect)
}

// Tile maps a point on the visible hemisphere to its tile. nx and ny are
// normalized to the radius. The fractions give the position inside the tile.
func (b *DiscoBall) Tile(nx, ny float64) (row, col int, fracRow, fracCol float64) {
	ny = clamp(ny, -1, 1)
	lat := math.Asin(ny)
	cosLat := math.Sqrt(1 - ny*ny)
	lon := 0.0
	if cosLat > 0 {
		lon = math.Asin(clamp(nx/cosLat, -1, 1))
	}

	lonDeg := math.Mod(lon*180/math.Pi+90+b.Angle, 360)
	if lonDeg < 0 {
		lonDeg += 360
	}
	colF := lonDeg / (360 / float64(b.Cols))
	rowF := (lat/math.Pi + 0.5) * float64(b.Rows)

	col = int(colF) % b.Cols
	row = min(int(rowF), b.Rows-1)
	return row, col, rowF - math.Floor(rowF), colF - math.Floor(colF)
}

// Shade colors one pixel of the ball. Light comes from the upper left.
func (b *DiscoBall) Shade(nx, ny float64) draw.Color {
	row, col, fr, fc := b.Tile(nx, ny)
	if fr < groutWidth || fc < groutWidth {
		return draw.Black
	}

	if b.Speed > 0 {
		step := int(b.Angle / 20)
		if (row*31+col*17+step)%11 == 0 {
			return draw.Sparkle[(row+col+step)%len(draw.Sparkle)]
		}
	}

	nz := math.Sqrt(math.Max(0, 1-nx*nx-ny*ny))
	light := -0.45*nx - 0.55*ny + 0.7*nz
	switch {
	case light > 0.8:
		return draw.White
	case light > 0.5:
		return draw.Silver
	case light > 0.2:
		return draw.Gray
	default:
		return draw.DarkGray
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
