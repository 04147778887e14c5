package client

import (
	"bufio"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/discoball/internal/draw"
	"github.com/tomz197/discoball/internal/input"
	"github.com/tomz197/discoball/internal/loop/config"
	"github.com/tomz197/discoball/internal/loop/server"
	"github.com/tomz197/discoball/internal/object"
	"github.com/tomz197/discoball/internal/particle"
)

// Sparkle burst thrown off the ball when it reaches max speed.
const (
	burstCount    = 40
	burstSpeed    = 30.0
	burstLifetime = 0.8
	prizeHitRange = 3.0 // Logical units around a prize that count as a click on it
)

// Client renders one session to an ANSI terminal and turns keys and mouse
// presses into clicks.
type Client struct {
	ball         server.Controls
	state        *ClientState
	scene        object.Scene
	discoBall    *object.DiscoBall
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	termSizeFunc draw.TermSizeFunc
	shutdownCh   <-chan struct{}
	onMute       func(muted bool)
	rng          particle.RandSource
	logger       *log.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	ShuttingDown <-chan struct{}  // Closed when the host is going away
	OnMute       func(muted bool) // Called when the user toggles sound
	Muted        bool             // Initial mute state
	Rand         particle.RandSource
	Logger       *log.Logger
}

// NewClient creates a client for the given session. A nil reader means the
// client has no keyboard, which is only useful in tests.
func NewClient(ball server.Controls, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	state := NewClientState()
	state.termSizeFunc = termSizeFunc
	state.Muted = opts.Muted
	state.View = object.NewScreen(config.ViewWidth, config.ViewHeight)

	termWidth, termHeight, _ := draw.TerminalSizeRawWith(termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := draw.ClampTermSize(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	c := &Client{
		ball:         ball,
		state:        state,
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		lastInput:    time.Now(),
		termSizeFunc: termSizeFunc,
		shutdownCh:   opts.ShuttingDown,
		onMute:       opts.OnMute,
		rng:          rng,
		logger:       logger,
	}
	if r != nil {
		c.inputStream = input.StartStream(r)
	}

	ballY := float64(config.ViewHeight) * config.DefaultSpawnOrigin / 100
	c.discoBall = object.NewDiscoBall(float64(config.ViewWidth)/2, ballY, config.BallRadius)
	c.scene.Add(c.discoBall)
	return c
}

// State returns the client's presentation state.
func (c *Client) State() *ClientState {
	return c.state
}

// Run starts the client loop. Blocks until the user quits, the session ends
// or the host shuts down.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	draw.EnableMouse(c.writer)
	defer draw.ShowCursor(c.writer)
	defer draw.DisableMouse(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()
	for c.state.Running {
		frameStart := time.Now()
		delta := frameStart.Sub(lastTime)
		lastTime = frameStart

		if err := c.Frame(delta, c.readInput()); err != nil {
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(c.writer)
	return nil
}

// Frame runs one input, update, draw cycle.
func (c *Client) Frame(delta time.Duration, in input.Input) error {
	c.state.delta = delta
	c.state.elapsed += delta.Seconds()

	c.handleInput(in)
	c.processHostEvents()
	c.updateScreen()

	snap := c.ball.Snapshot()
	if snap == nil {
		return nil
	}
	if snap.Closed && c.state.Phase != PhaseShutdown {
		c.state.Running = false
	}

	switch c.state.Phase {
	case PhaseSpinning:
		if err := c.updateSpinning(snap); err != nil {
			return err
		}
	case PhaseShutdown:
		c.updateShutdown()
	}

	return c.drawFrame(snap)
}

func (c *Client) readInput() input.Input {
	if c.inputStream == nil {
		return input.Input{}
	}
	in := input.ReadInput(c.inputStream)
	if c.inputStream.Closed() {
		c.state.Running = false
	}
	return in
}

// handleInput applies one batch of input.
func (c *Client) handleInput(in input.Input) {
	c.state.Input = in

	now := time.Now()
	if in.Active() {
		c.lastInput = now
		c.state.isInactive = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if in.Quit || in.Escape {
		c.state.Running = false
		return
	}
	if in.Mute {
		c.state.Muted = !c.state.Muted
		if c.onMute != nil {
			c.onMute(c.state.Muted)
		}
	}

	switch c.state.Phase {
	case PhaseStart:
		if in.Presses > 0 || len(in.Mouse) > 0 {
			c.state.Phase = PhaseSpinning
		}
	case PhaseSpinning:
		for range in.Presses {
			c.click()
		}
		for _, m := range in.Mouse {
			c.mouseClick(m)
		}
	}
}

func (c *Client) click() {
	if !c.ball.PostClick() {
		c.logger.Debug("click dropped")
	}
}

// mouseClick clicks the ball or collects a prize under the pointer.
func (c *Client) mouseClick(m input.MouseClick) {
	x, y := c.canvas.TerminalToLogical(m.Col, m.Row)
	if snap := c.ball.Snapshot(); snap != nil {
		if id, ok := object.PrizeAt(snap.Particles, c.state.View, snap.Now, config.PrizeFallRate, x, y, prizeHitRange); ok {
			c.ball.PostRemove(id)
			return
		}
	}
	if c.discoBall.Contains(x, y, c.canvas.Aspect()) {
		c.click()
	}
}

// processHostEvents switches to the shutdown screen once the host says so.
func (c *Client) processHostEvents() {
	if c.shutdownCh == nil || c.state.Phase == PhaseShutdown {
		return
	}
	select {
	case <-c.shutdownCh:
		c.state.Phase = PhaseShutdown
		c.state.shutdownTimer = config.ShutdownDisplaySeconds
	default:
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := draw.TerminalSizeRawWith(c.termSizeFunc)
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := draw.ClampTermSize(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// updateSpinning advances the ball and throws sparkles on reaching max speed.
func (c *Client) updateSpinning(snap *server.Snapshot) error {
	if snap.AtMax && !c.state.wasAtMax {
		b := c.discoBall
		object.SpawnBurst(b.X, b.Y, b.Radius, burstCount, burstSpeed, burstLifetime, c.rng, &c.scene)
	}
	c.state.wasAtMax = snap.AtMax

	return c.scene.Update(object.UpdateContext{
		Delta: c.state.delta,
		Speed: snap.Speed,
	})
}

// updateShutdown counts down the shutdown screen.
func (c *Client) updateShutdown() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
