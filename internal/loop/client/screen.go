package client

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/tomz197/discoball/internal/draw"
	"github.com/tomz197/discoball/internal/loop/config"
	"github.com/tomz197/discoball/internal/loop/server"
	"github.com/tomz197/discoball/internal/object"
)

// hudWidth pads HUD lines so shrinking values leave no residue.
const hudWidth = 30

// drawFrame draws the current frame.
func (c *Client) drawFrame(snap *server.Snapshot) error {
	// On phase or inactivity transitions, do a full terminal clear
	// so UI elements from the previous screen don't persist.
	phaseChanged := c.state.Phase != c.state.prevPhase
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if phaseChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevPhase = c.state.Phase
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	ctx := object.DrawContext{
		Canvas: c.canvas,
		Writer: c.chunkWriter,
		View:   c.state.View,
		Now:    snap.Now,
	}

	showBall := c.state.Phase == PhaseSpinning && !c.state.isInactive
	if showBall {
		if err := c.scene.Draw(ctx); err != nil {
			return err
		}
	}

	c.canvas.Render(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)

	// Prizes are text, so they go on top of the rendered canvas.
	if showBall {
		for _, p := range snap.Particles {
			prize := object.Prize{Particle: p, FallRate: config.PrizeFallRate}
			if err := prize.Draw(ctx); err != nil {
				return err
			}
		}
	}

	if err := c.drawUI(ctx, snap); err != nil {
		return err
	}
	return c.chunkWriter.Flush()
}

// drawUI draws the overlay for the current phase.
func (c *Client) drawUI(ctx object.DrawContext, snap *server.Snapshot) error {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.Phase == PhaseShutdown {
		return c.drawShutdownScreen(ctx, centerX, centerY)
	}
	if c.state.isInactive {
		return c.drawInactivityScreen(ctx, centerX, centerY)
	}

	switch c.state.Phase {
	case PhaseStart:
		return c.drawStartScreen(ctx, centerX, centerY)
	case PhaseSpinning:
		return c.drawHUD(ctx, termWidth, termHeight, snap)
	}
	return nil
}

func drawLines(ctx object.DrawContext, lines []object.Text) error {
	for _, t := range lines {
		if err := t.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}

// drawHUD draws the speed readout, the banner and the key hints.
func (c *Client) drawHUD(ctx object.DrawContext, termWidth, termHeight int, snap *server.Snapshot) error {
	hud := object.HUD{
		Speed:    snap.Speed,
		MaxSpeed: snap.MaxSpeed,
		Clicks:   snap.Clicks,
		Prizes:   len(snap.Particles),
		AtMax:    snap.AtMax,
	}

	lines := []object.Text{
		{X: 2, Y: 1, Value: hud.SpeedText(), Width: hudWidth},
		{X: 2, Y: 2, Value: hud.Bar(), Width: hudWidth, Style: draw.ColorBrightCyan},
		{X: 2, Y: 3, Value: hud.CountsText(), Width: hudWidth},
	}

	banner := object.Centered(termWidth/2, termHeight-2, object.Banner)
	if !snap.AtMax || !object.ShouldRenderBlink(c.state.elapsed, 2) {
		banner.Value = ""
	}
	banner.Width = utf8.RuneCountInString(object.Banner)
	banner.Style = draw.ColorBold + draw.ColorYellow
	lines = append(lines, banner)

	hint := "SPACE / click: spin   M: mute   Q: quit"
	if c.state.Muted {
		hint = "SPACE / click: spin   M: unmute Q: quit"
	}
	hintText := object.Centered(termWidth/2, termHeight, hint)
	hintText.Style = draw.ColorDim
	lines = append(lines, hintText)

	return drawLines(ctx, lines)
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(ctx object.DrawContext, centerX, centerY int) error {
	titleArt := []string{
		` ___  ___ ___  ___ ___    ___   _   _    _    `,
		`|   \|_ _/ __|/ __/ _ \  | _ ) /_\ | |  | |   `,
		`| |) || |\__ \ (_| (_) | | _ \/ _ \| |__| |__ `,
		`|___/|___|___/\___\___/  |___/_/ \_\____|____|`,
	}

	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}

	var lines []object.Text
	titleStartY := centerY - 6
	for i, line := range titleArt {
		lines = append(lines, object.Text{X: centerX - titleWidth/2, Y: titleStartY + i, Value: line, Style: draw.ColorMagenta})
	}

	subtitle := "~ click it faster ~"
	lines = append(lines, object.Centered(centerX, titleStartY+len(titleArt)+1, subtitle))

	controlsY := titleStartY + len(titleArt) + 3
	controls := []string{
		"SPACE / click  . . .  Spin",
		"M  . . . . . . . . .  Mute",
		"Q  . . . . . . . . .  Quit",
	}
	for i, line := range controls {
		lines = append(lines, object.Centered(centerX, controlsY+i, line))
	}

	prompt := object.Centered(centerX, controlsY+len(controls)+1, ">>  Press SPACE to start  <<")
	prompt.Width = utf8.RuneCountInString(prompt.Value)
	prompt.Style = draw.ColorBold
	if !object.ShouldRenderBlink(c.state.elapsed, 0.8) {
		prompt.Value = ""
	}
	lines = append(lines, prompt)

	return drawLines(ctx, lines)
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(ctx object.DrawContext, centerX, centerY int) error {
	remaining := int(config.InactivityDisconnectUser - time.Since(c.lastInput).Seconds())
	msg := fmt.Sprintf("You have been idle too long. Disconnecting in %d seconds.", max(remaining, 0))
	return drawLines(ctx, []object.Text{
		object.Centered(centerX, centerY-2, "INACTIVITY WARNING"),
		object.Centered(centerX, centerY, msg),
		object.Centered(centerX, centerY+2, "Press any key to continue"),
	})
}

// drawShutdownScreen draws the host shutdown notice.
func (c *Client) drawShutdownScreen(ctx object.DrawContext, centerX, centerY int) error {
	remaining := int(c.state.shutdownTimer) + 1
	title := object.Centered(centerX, centerY-3, "SERVER SHUTTING DOWN")
	title.Style = draw.ColorBold + draw.ColorYellow
	return drawLines(ctx, []object.Text{
		title,
		object.Centered(centerX, centerY-1, "The server is restarting for maintenance."),
		object.Centered(centerX, centerY, "Please reconnect in a moment."),
		object.Centered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining)),
		object.Centered(centerX, centerY+4, "Press Q to disconnect now"),
	})
}

// Render draws one snapshot outside the frame loop. It satisfies
// server.Renderer for hosts that push snapshots instead of polling.
func (c *Client) Render(snap *server.Snapshot) error {
	if snap == nil {
		return nil
	}
	return c.drawFrame(snap)
}

var _ server.Renderer = (*Client)(nil)
