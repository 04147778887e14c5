package object

import (
	"fmt"
	"math"
	"strings"
)

// barWidth is the number of cells in the speed bar.
const barWidth = 20

// Banner is shown while the ball is at max speed.
const Banner = "MAX SPEED! PRIZES!"

// HUD formats the status lines shown over the ball.
type HUD struct {
	Speed    float64
	MaxSpeed float64
	Clicks   int
	Prizes   int
	AtMax    bool
}

// Percent returns speed as a percentage of max speed.
func (h HUD) Percent() float64 {
	if h.MaxSpeed <= 0 {
		return 0
	}
	return h.Speed / h.MaxSpeed * 100
}

// SpeedText returns e.g. "Speed:  24.0 / 50".
func (h HUD) SpeedText() string {
	return fmt.Sprintf("Speed: %5.1f / %.0f", h.Speed, h.MaxSpeed)
}

// Bar returns the speed bar with its percentage.
func (h HUD) Bar() string {
	pct := h.Percent()
	filled := int(math.Round(pct / 100 * barWidth))
	filled = max(0, min(barWidth, filled))
	return fmt.Sprintf("[%s%s] %3.0f%%",
		strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled), pct)
}

// CountsText returns the click and live prize counters.
func (h HUD) CountsText() string {
	return fmt.Sprintf("Clicks: %d  Prizes: %d", h.Clicks, h.Prizes)
}

// Lines returns every HUD line, the banner last when at max speed.
func (h HUD) Lines() []string {
	lines := []string{h.SpeedText(), h.Bar(), h.CountsText()}
	if h.AtMax {
		lines = append(lines, Banner)
	}
	return lines
}
