package object

import (
	"time"

	"github.com/tomz197/discoball/internal/draw"
)

// Spawner allows objects to spawn new objects during update.
type Spawner interface {
	Spawn(obj Object)
}

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Delta   time.Duration
	Speed   float64 // Current ball speed from the latest snapshot
	Spawner Spawner
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas      // High-resolution canvas (2x vertical)
	Writer *draw.ChunkWriter // Text overlay (prize symbols, HUD)
	View   Screen            // Logical viewport
	Now    time.Time         // Logical time of the snapshot being drawn
}

// Screen represents viewport dimensions.
type Screen struct {
	Width   int
	Height  int
	CenterX int
	CenterY int
}

// NewScreen returns a screen of the given size with its center filled in.
func NewScreen(width, height int) Screen {
	return Screen{Width: width, Height: height, CenterX: width / 2, CenterY: height / 2}
}

// Object is a drawable and updatable visual.
type Object interface {
	// Update advances the object by one frame. Returns true if it should be removed.
	Update(ctx UpdateContext) (remove bool, err error)

	// Draw draws the object. Use ctx.Canvas for shapes, ctx.Writer for text.
	Draw(ctx DrawContext) error
}

// Releasable is implemented by pooled objects that can be returned to a pool.
type Releasable interface {
	Release()
}

// ReleaseObject releases an object back to its pool if it implements Releasable.
func ReleaseObject(obj Object) {
	if r, ok := obj.(Releasable); ok {
		r.Release()
	}
}

// ShouldRenderBlink reports whether a blinking element is visible at the
// given elapsed time for a blink frequency in Hz.
func ShouldRenderBlink(elapsed float64, frequency float64) bool {
	if elapsed <= 0 {
		return true
	}
	phase := int(elapsed * frequency * 2)
	return phase%2 == 0
}
