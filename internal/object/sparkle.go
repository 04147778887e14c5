package object

import (
	"math"
	"sync"

	"github.com/tomz197/discoball/internal/draw"
	"github.com/tomz197/discoball/internal/particle"
)

// sparklePool reuses Sparkle objects; a burst creates dozens at once.
var sparklePool = sync.Pool{
	New: func() any {
		return &Sparkle{}
	},
}

// Sparkle is a short-lived glint thrown off the ball when it hits max speed.
type Sparkle struct {
	X, Y        float64
	VX, VY      float64
	Lifetime    float64 // Seconds remaining
	MaxLifetime float64
	Drag        float64 // Velocity kept per 1/60s; 1.0 = no drag
	Color       draw.Color
}

// NewSparkle takes a sparkle from the pool.
func NewSparkle(x, y, vx, vy, lifetime float64, color draw.Color) *Sparkle {
	s := sparklePool.Get().(*Sparkle)
	*s = Sparkle{
		X:           x,
		Y:           y,
		VX:          vx,
		VY:          vy,
		Lifetime:    lifetime,
		MaxLifetime: lifetime,
		Drag:        0.93,
		Color:       color,
	}
	return s
}

// Release returns the sparkle to the pool.
func (s *Sparkle) Release() {
	sparklePool.Put(s)
}

// SpawnBurst throws count sparkles outward from the rim of a ball centered
// at (x, y) with the given radius.
func SpawnBurst(x, y, radius float64, count int, speed, lifetime float64, rng particle.RandSource, spawner Spawner) {
	if spawner == nil || rng == nil {
		return
	}
	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		spd := speed * (0.5 + rng.Float64())
		life := lifetime * (0.5 + rng.Float64()*0.5)
		cos, sin := math.Cos(angle), math.Sin(angle)
		color := draw.Sparkle[rng.Intn(len(draw.Sparkle))]
		spawner.Spawn(NewSparkle(x+cos*radius, y+sin*radius, cos*spd, sin*spd, life, color))
	}
}

// Update moves the sparkle. Returns true once its lifetime is spent.
func (s *Sparkle) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta.Seconds()
	s.Lifetime -= dt
	if s.Lifetime <= 0 {
		return true, nil
	}

	dragFactor := math.Pow(s.Drag, dt*60)
	s.VX *= dragFactor
	s.VY *= dragFactor
	s.X += s.VX * dt
	s.Y += s.VY * dt
	return false, nil
}

// Draw plots the sparkle. It disappears during the last quarter of its life.
func (s *Sparkle) Draw(ctx DrawContext) error {
	if s.MaxLifetime > 0 && s.Lifetime/s.MaxLifetime < 0.25 {
		return nil
	}
	ctx.Canvas.Set(s.X, s.Y, s.Color)
	return nil
}
