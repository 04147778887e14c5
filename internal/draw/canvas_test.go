package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(c *Canvas) string {
	var buf bytes.Buffer
	c.Render(&buf)
	return buf.String()
}

func TestCanvas_RenderOnlyChangedCells(t *testing.T) {
	c := NewCanvas(4, 2)

	c.Set(0, 0, Gold)
	out := render(c)
	assert.Contains(t, out, "\033[1;1H\033[0m\033[38;5;220m▀")
	assert.NotContains(t, out, "\033[1;2H", "empty cells are skipped after a clear")

	assert.Empty(t, render(c), "unchanged frame emits nothing")

	c.Clear()
	assert.Contains(t, render(c), "\033[1;1H\033[0m ")
}

func TestCanvas_TwoColorsInOneCell(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(1, 0, Gold)
	c.Set(1, 1, Pink)

	assert.Contains(t, render(c), "\033[38;5;220m\033[48;5;213m▀")
}

func TestCanvas_SameColorUsesFullBlock(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(2, 2, Cyan)
	c.Set(2, 3, Cyan)

	assert.Contains(t, render(c), "\033[2;3H\033[0m\033[38;5;51m█")
}

func TestCanvas_MarkTextDirtyRepaints(t *testing.T) {
	c := NewCanvas(4, 2)
	render(c)

	c.MarkTextDirty(2, 1, 1)
	assert.Equal(t, "\033[1;2H\033[0m \033[0m", render(c))
	assert.Empty(t, render(c))
}

func TestCanvas_FillCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.FillCircle(10, 10, 5, func(nx, ny float64) Color {
		if nx < 0 {
			return None
		}
		return White
	})

	assert.Equal(t, White, c.At(10, 10))
	assert.Equal(t, White, c.At(10, 5))
	assert.Equal(t, None, c.At(10, 4), "outside the radius")
	assert.Equal(t, None, c.At(7, 10), "shade returned None")
	assert.Equal(t, None, c.At(-1, 0))
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(Point{X: 0, Y: 0}, Point{X: 0, Y: 9}, Silver)

	for y := 0; y < 10; y++ {
		assert.Equal(t, Silver, c.At(0, y), "y=%d", y)
	}
	assert.Equal(t, None, c.At(1, 0))
}

func TestCanvas_TerminalToLogical(t *testing.T) {
	c := NewScaledCanvas(60, 20, 120, 80)
	c.SetOffset(2, 1)

	x, y := c.TerminalToLogical(3, 2)
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 2.0, y)

	x, y = c.TerminalToLogical(62, 21)
	assert.InDelta(t, 119.0, x, 1e-9)
	assert.InDelta(t, 78.0, y, 1e-9)
}

func TestCanvas_ResizeForcesRedraw(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0, Gold)
	render(c)

	c.Resize(8, 4)
	assert.Equal(t, 8, c.TerminalWidth())
	assert.Equal(t, 4, c.TerminalHeight())
	assert.Equal(t, None, c.At(0, 0), "pixels are reallocated")
}

func TestCanvas_RenderBorder(t *testing.T) {
	c := NewCanvas(3, 1)
	var buf bytes.Buffer
	c.RenderBorder(&buf)
	assert.Empty(t, buf.String(), "no border without an offset")

	c.SetOffset(1, 1)
	c.RenderBorder(&buf)
	out := buf.String()
	assert.Contains(t, out, "\033[1;1H┌───┐")
	assert.Contains(t, out, "\033[3;1H└───┘")
	assert.Equal(t, 2, strings.Count(out, "│"))
}

func TestClampTermSize(t *testing.T) {
	w, h, col, row := ClampTermSize(200, 60, 160, 50)
	assert.Equal(t, []int{160, 50, 20, 5}, []int{w, h, col, row})

	w, h, col, row = ClampTermSize(100, 30, 160, 50)
	assert.Equal(t, []int{100, 30, 0, 0}, []int{w, h, col, row})
}

func TestChunkWriter_AppliesOffsetAndBuffersUntilFlush(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, 2, 1)

	cw.WriteAt(1, 1, "hi")
	assert.Zero(t, buf.Len())

	require.NoError(t, cw.Flush())
	assert.Equal(t, "\033[2;3Hhi", buf.String())
}

func TestChunkWriter_StyledText(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, 0, 0)

	cw.WriteStyledAt(5, 2, ColorBold+ColorYellow, "MAX")
	cw.WriteStyledAt(1, 3, "", "plain")
	assert.Equal(t, len("\033[2;5H\033[1m\033[93mMAX\033[0m\033[3;1Hplain"), cw.Buffered())

	require.NoError(t, cw.Flush())
	assert.Equal(t, "\033[2;5H\033[1m\033[93mMAX\033[0m\033[3;1Hplain", buf.String())
	assert.Zero(t, cw.Buffered())
}
