package draw

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Color is an xterm-256 palette index. Zero means the pixel is unset.
type Color uint8

// None marks an empty pixel.
const None Color = 0

// cell is one terminal character: two stacked sub-pixels.
type cell struct {
	top, bottom Color
}

// Canvas is a color drawing buffer with 2x vertical resolution using
// half-block characters. It maps logical coordinates to terminal sub-pixels
// and only re-emits cells that changed since the previous Render.
type Canvas struct {
	termWidth      int
	termHeight     int
	subPixelHeight int     // termHeight * 2
	pixels         []Color // [y * termWidth + x]

	logicalWidth  float64
	logicalHeight float64 // In sub-pixels
	scaleX        float64
	scaleY        float64

	// 0-based terminal offsets for centering inside a larger terminal.
	offsetCol int
	offsetRow int

	prev      []cell // Last rendered frame
	dirty     []bool // Cells overwritten by text since the last Render
	forceFull bool

	renderBuf strings.Builder
	numBuf    [20]byte
}

// NewCanvas creates an unscaled canvas for the given terminal dimensions.
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas that scales logical coordinates to terminal pixels.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.allocate(termWidth, termHeight)
	return c
}

func (c *Canvas) allocate(termWidth, termHeight int) {
	if termWidth < 0 {
		termWidth = 0
	}
	if termHeight < 0 {
		termHeight = 0
	}
	c.termWidth = termWidth
	c.termHeight = termHeight
	c.subPixelHeight = termHeight * 2
	c.pixels = make([]Color, c.subPixelHeight*termWidth)
	c.prev = make([]cell, termHeight*termWidth)
	c.dirty = make([]bool, termHeight*termWidth)
	c.forceFull = true
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// Resize updates the canvas for new terminal dimensions, keeping the logical size.
// A size change forces the next Render to redraw everything.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth == c.termWidth && termHeight == c.termHeight {
		return
	}
	c.allocate(termWidth, termHeight)
}

// SetOffset sets the 0-based column and row offset of the render area.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.forceFull = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// ForceRedraw makes the next Render emit every cell.
func (c *Canvas) ForceRedraw() {
	c.forceFull = true
}

// MarkTextDirty records that text was written over n cells starting at the
// 1-based canvas position (col, row), so Render repaints them next frame.
func (c *Canvas) MarkTextDirty(col, row, n int) {
	r := row - 1
	if r < 0 || r >= c.termHeight {
		return
	}
	for i := 0; i < n; i++ {
		x := col - 1 + i
		if x >= 0 && x < c.termWidth {
			c.dirty[r*c.termWidth+x] = true
		}
	}
}

// Clear resets all pixels.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

func (c *Canvas) setPixel(x, y int, color Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = color
	}
}

// At returns the color of the sub-pixel at terminal pixel coordinates.
func (c *Canvas) At(x, y int) Color {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return None
	}
	return c.pixels[y*c.termWidth+x]
}

// Set colors the pixel at logical coordinates.
func (c *Canvas) Set(x, y float64, color Color) {
	c.setPixel(int(math.Round(x*c.scaleX)), int(math.Round(y*c.scaleY)), color)
}

// DrawLine draws a line between logical points using Bresenham's algorithm.
func (c *Canvas) DrawLine(p1, p2 Point, color Color) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		c.setPixel(x1, y1, color)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// ShadeFunc picks the color of a disc pixel. nx and ny are the pixel's offset
// from the center divided by the radius, so nx*nx+ny*ny <= 1.
type ShadeFunc func(nx, ny float64) Color

// FillCircle fills a disc centered at logical (cx, cy) with logical radius r.
// The radius is measured in horizontal units; the vertical extent in logical
// units is r * Aspect() so the disc looks round on screen.
func (c *Canvas) FillCircle(cx, cy, r float64, shade ShadeFunc) {
	if r <= 0 {
		return
	}
	pcx := cx * c.scaleX
	pcy := cy * c.scaleY
	rx := r * c.scaleX
	// A sub-pixel is roughly square on a typical terminal, so the vertical
	// radius in sub-pixels equals the horizontal one.
	ry := rx

	yStart := int(math.Floor(pcy - ry))
	yEnd := int(math.Ceil(pcy + ry))
	xStart := int(math.Floor(pcx - rx))
	xEnd := int(math.Ceil(pcx + rx))

	for y := yStart; y <= yEnd; y++ {
		ny := (float64(y) + 0.5 - pcy) / ry
		for x := xStart; x <= xEnd; x++ {
			nx := (float64(x) + 0.5 - pcx) / rx
			if nx*nx+ny*ny > 1 {
				continue
			}
			if color := shade(nx, ny); color != None {
				c.setPixel(x, y, color)
			}
		}
	}
}

// maxChunkSize is the most bytes written at once. Matches a typical MTU so
// frames stream smoothly over SSH.
const maxChunkSize = 1400

// Render writes the cells that changed since the previous call using
// half-block characters with 256-color escapes.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	var fg, bg Color
	styled := false
	for row := 0; row < c.termHeight; row++ {
		for col := 0; col < c.termWidth; col++ {
			i := row*c.termWidth + col
			cur := cell{
				top:    c.pixels[row*2*c.termWidth+col],
				bottom: c.pixels[(row*2+1)*c.termWidth+col],
			}
			if !c.forceFull && !c.dirty[i] && cur == c.prev[i] {
				continue
			}
			c.prev[i] = cur
			c.dirty[i] = false

			if cur == (cell{}) && c.forceFull {
				// Full redraws follow a screen clear.
				continue
			}

			c.moveCursor(row+1+c.offsetRow, col+1+c.offsetCol)

			glyph, wantFg, wantBg := glyphFor(cur)
			if wantFg != fg || wantBg != bg || !styled {
				c.renderBuf.WriteString(ColorReset)
				if wantFg != None {
					c.writeSGR(38, wantFg)
				}
				if wantBg != None {
					c.writeSGR(48, wantBg)
				}
				fg, bg, styled = wantFg, wantBg, true
			}
			c.renderBuf.WriteRune(glyph)
		}
	}
	if styled {
		c.renderBuf.WriteString(ColorReset)
	}
	c.forceFull = false

	writeChunked(w, c.renderBuf.String())
}

func glyphFor(cl cell) (glyph rune, fg, bg Color) {
	switch {
	case cl.top != None && cl.bottom != None && cl.top == cl.bottom:
		return BlockFull, cl.top, None
	case cl.top != None && cl.bottom != None:
		return BlockUpperHalf, cl.top, cl.bottom
	case cl.top != None:
		return BlockUpperHalf, cl.top, None
	case cl.bottom != None:
		return BlockLowerHalf, cl.bottom, None
	default:
		return BlockEmpty, None, None
	}
}

func (c *Canvas) moveCursor(row, col int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

func (c *Canvas) writeSGR(kind int, color Color) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(kind), 10))
	c.renderBuf.WriteString(";5;")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(color), 10))
	c.renderBuf.WriteByte('m')
}

func writeChunked(w io.Writer, data string) {
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// RenderBorder draws a box around the canvas when the terminal exceeds the
// max render resolution. Horizontal bars need a row offset, vertical bars a
// column offset.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1
	if !hasH && !hasV {
		return
	}

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	bar := strings.Repeat("─", c.termWidth)

	var buf strings.Builder
	move := func(row, col int) {
		buf.WriteString("\033[")
		buf.WriteString(strconv.Itoa(row))
		buf.WriteByte(';')
		buf.WriteString(strconv.Itoa(col))
		buf.WriteByte('H')
	}

	if hasV {
		if hasH {
			move(top, left)
			buf.WriteString("┌" + bar + "┐")
			move(bottom, left)
			buf.WriteString("└" + bar + "┘")
		} else {
			move(top, c.offsetCol+1)
			buf.WriteString(bar)
			move(bottom, c.offsetCol+1)
			buf.WriteString(bar)
		}
	}
	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			move(row, left)
			buf.WriteString("│")
			move(row, right)
			buf.WriteString("│")
		}
	}
	io.WriteString(w, buf.String())
}

// Aspect returns how many logical vertical units span the same screen
// distance as one logical horizontal unit.
func (c *Canvas) Aspect() float64 {
	if c.scaleY == 0 {
		return 1
	}
	return c.scaleX / c.scaleY
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height in sub-pixels.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the canvas width in terminal columns.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the canvas height in terminal rows.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to a 1-based canvas position.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	return px + 1, py/2 + 1
}

// TerminalToLogical converts a 1-based terminal position, offset included,
// to the logical coordinates of the cell's center.
func (c *Canvas) TerminalToLogical(col, row int) (x, y float64) {
	px := float64(col-1-c.offsetCol) + 0.5
	py := float64(row-1-c.offsetRow)*2 + 1
	if c.scaleX == 0 || c.scaleY == 0 {
		return 0, 0
	}
	return px / c.scaleX, py / c.scaleY
}
