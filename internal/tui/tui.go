// Package tui renders a disco ball session with tcell, with real mouse
// clicks on the ball.
package tui

import (
	"context"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/tomz197/discoball/internal/draw"
	"github.com/tomz197/discoball/internal/loop/config"
	"github.com/tomz197/discoball/internal/loop/server"
	"github.com/tomz197/discoball/internal/object"
	"github.com/tomz197/discoball/internal/physics"
)

const (
	ballFill      = 0.3 // Ball radius as a share of screen height
	prizeHitRange = 1.5 // Cells around a prize that count as a click on it
	hint          = "SPACE / click: spin   M: mute   Q: quit"
)

var (
	stringStyle = tcell.StyleDefault.Foreground(tcell.PaletteColor(int(draw.Gray)))
	textStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	barStyle    = tcell.StyleDefault.Foreground(tcell.PaletteColor(int(draw.Cyan)))
	bannerStyle = tcell.StyleDefault.Foreground(tcell.PaletteColor(int(draw.Gold))).Bold(true)
	hintStyle   = tcell.StyleDefault.Foreground(tcell.PaletteColor(int(draw.DarkGray)))
)

// Options configures a Renderer.
type Options struct {
	Muted  bool
	OnMute func(muted bool)
	Logger *log.Logger
}

// Renderer draws snapshots to a tcell screen and turns mouse presses and
// keys into clicks. Render and HandleEvent are called from one goroutine.
type Renderer struct {
	screen tcell.Screen
	ball   server.Controls
	disco  *object.DiscoBall
	frames int

	running     bool
	muted       bool
	onMute      func(muted bool)
	lastButtons tcell.ButtonMask
	logger      *log.Logger
}

// New creates a renderer on an initialized screen.
func New(screen tcell.Screen, ball server.Controls, opts Options) *Renderer {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Renderer{
		screen:  screen,
		ball:    ball,
		disco:   object.NewDiscoBall(0, 0, 0),
		running: true,
		muted:   opts.Muted,
		onMute:  opts.OnMute,
		logger:  logger,
	}
}

// Running reports whether the user is still playing.
func (r *Renderer) Running() bool {
	return r.running
}

// Angle returns the ball's rotation in degrees.
func (r *Renderer) Angle() float64 {
	return r.disco.Angle
}

// Run draws a frame every ClientTargetFrameTime and handles input until the
// user quits, the session closes or ctx is cancelled. The caller owns the
// screen and calls Fini afterwards, which also stops the event reader.
func (r *Renderer) Run(ctx context.Context) error {
	r.screen.EnableMouse()
	r.screen.HideCursor()
	defer r.screen.DisableMouse()

	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(config.ClientTargetFrameTime)
	defer ticker.Stop()

	for r.running {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			r.HandleEvent(ev)
		case <-ticker.C:
			snap := r.ball.Snapshot()
			if snap == nil {
				continue
			}
			if snap.Closed {
				return nil
			}
			if err := r.Render(snap); err != nil {
				return err
			}
		}
	}
	return nil
}

// HandleEvent applies one tcell event. Returns false once the user quits.
func (r *Renderer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		r.handleKey(ev)
	case *tcell.EventMouse:
		r.handleMouse(ev)
	case *tcell.EventResize:
		r.screen.Sync()
	}
	return r.running
}

func (r *Renderer) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		r.running = false
	case tcell.KeyEnter:
		r.click()
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			r.click()
		case 'q', 'Q':
			r.running = false
		case 'm', 'M':
			r.muted = !r.muted
			if r.onMute != nil {
				r.onMute(r.muted)
			}
		}
	}
}

// handleMouse reacts to the left button going down, not to drags.
func (r *Renderer) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && r.lastButtons&tcell.Button1 == 0
	r.lastButtons = buttons
	if !pressed {
		return
	}

	col, row := ev.Position()
	x, y := float64(col)+0.5, float64(row)+0.5

	if snap := r.ball.Snapshot(); snap != nil {
		w, h := r.screen.Size()
		if id, ok := object.PrizeAt(snap.Particles, object.NewScreen(w, h), snap.Now, fallRate(h), x, y, prizeHitRange); ok {
			r.ball.PostRemove(id)
			return
		}
	}

	cx, cy, ry := r.geometry()
	// Cells are about twice as tall as wide, so halve x to test in a round space.
	if physics.PointInCircle(x/2, y, cx/2, cy, ry) {
		r.click()
	}
}

func (r *Renderer) click() {
	if !r.ball.PostClick() {
		r.logger.Debug("click dropped")
	}
}

// geometry returns the ball center in cells and its vertical radius in rows.
func (r *Renderer) geometry() (cx, cy, ry float64) {
	w, h := r.screen.Size()
	cx = float64(w) / 2
	cy = float64(h) * config.DefaultSpawnOrigin / 100
	ry = math.Min(float64(h)*ballFill, float64(w)/4)
	return cx, cy, ry
}

// fallRate scales the prize drift to screen rows.
func fallRate(rows int) float64 {
	return config.PrizeFallRate * float64(rows) / config.ViewHeight
}

// Render draws one frame. Each call is one frame of rotation.
func (r *Renderer) Render(snap *server.Snapshot) error {
	if snap == nil {
		return nil
	}
	r.frames++
	r.disco.Speed = snap.Speed
	r.disco.Angle = object.Spin(r.disco.Angle, snap.Speed, config.ClientTargetFrameTime)

	r.screen.Clear()
	r.drawBall()
	r.drawPrizes(snap)
	r.drawHUD(snap)
	r.screen.Show()
	return nil
}

// drawBall draws the string and the ball with half-block cells, two shaded
// samples per cell.
func (r *Renderer) drawBall() {
	w, h := r.screen.Size()
	cx, cy, ry := r.geometry()
	rx := ry * 2

	for y := 0; y < int(cy-ry); y++ {
		r.screen.SetContent(int(cx), y, '│', nil, stringStyle)
	}

	x0, x1 := max(0, int(cx-rx)), min(w-1, int(cx+rx))
	y0, y1 := max(0, int(cy-ry)), min(h-1, int(cy+ry))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			nx := (float64(x) + 0.5 - cx) / rx
			top, topOK := r.sample(nx, (float64(y)+0.25-cy)/ry)
			bot, botOK := r.sample(nx, (float64(y)+0.75-cy)/ry)

			switch {
			case topOK && botOK:
				r.screen.SetContent(x, y, '▀', nil, tcell.StyleDefault.Foreground(top).Background(bot))
			case topOK:
				r.screen.SetContent(x, y, '▀', nil, tcell.StyleDefault.Foreground(top))
			case botOK:
				r.screen.SetContent(x, y, '▄', nil, tcell.StyleDefault.Foreground(bot))
			}
		}
	}
}

func (r *Renderer) sample(nx, ny float64) (tcell.Color, bool) {
	if nx*nx+ny*ny > 1 {
		return tcell.ColorDefault, false
	}
	return tcell.PaletteColor(int(r.disco.Shade(nx, ny))), true
}

func (r *Renderer) drawPrizes(snap *server.Snapshot) {
	w, h := r.screen.Size()
	view := object.NewScreen(w, h)
	for _, p := range snap.Particles {
		x, y := object.Prize{Particle: p, FallRate: fallRate(h)}.Position(view, snap.Now)
		col, row := int(x), int(y)
		if col < 0 || col >= w || row < 0 || row >= h {
			continue
		}
		runes := []rune(p.Symbol)
		if len(runes) == 0 {
			continue
		}
		r.screen.SetContent(col, row, runes[0], runes[1:], tcell.StyleDefault)
	}
}

func (r *Renderer) drawHUD(snap *server.Snapshot) {
	w, h := r.screen.Size()
	hud := object.HUD{
		Speed:    snap.Speed,
		MaxSpeed: snap.MaxSpeed,
		Clicks:   snap.Clicks,
		Prizes:   len(snap.Particles),
		AtMax:    snap.AtMax,
	}

	r.text(2, 1, hud.SpeedText(), textStyle)
	r.text(2, 2, hud.Bar(), barStyle)
	r.text(2, 3, hud.CountsText(), textStyle)

	// Blink at 2Hz.
	if snap.AtMax && (r.frames/(config.ClientTargetFPS/4))%2 == 0 {
		r.centered(w, h-3, object.Banner, bannerStyle)
	}

	line := hint
	if r.muted {
		line += "   [muted]"
	}
	r.centered(w, h-1, line, hintStyle)
}

func (r *Renderer) centered(w, y int, s string, style tcell.Style) {
	r.text(w/2-len([]rune(s))/2, y, s, style)
}

func (r *Renderer) text(x, y int, s string, style tcell.Style) {
	for _, c := range s {
		r.screen.SetContent(x, y, c, nil, style)
		x++
	}
}

var _ server.Renderer = (*Renderer)(nil)
