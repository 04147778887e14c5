package draw

import (
	"fmt"
	"io"
)

// Point is a 2D coordinate in logical space.
type Point struct {
	X, Y float64
}

// Block characters.
const (
	BlockFull      = '█'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Text color escapes.
const (
	ColorReset      = "\033[0m"
	ColorBold       = "\033[1m"
	ColorBrightCyan = "\033[96m"
	ColorMagenta    = "\033[95m"
	ColorYellow     = "\033[93m"
	ColorDim        = "\033[2m"
)

// Palette entries used for the ball and prizes.
const (
	Black     Color = 16
	White     Color = 231
	Silver    Color = 250
	Gray      Color = 244
	DarkGray  Color = 238
	Gold      Color = 220
	Pink      Color = 213
	Cyan      Color = 51
	Violet    Color = 141
	Lime      Color = 118
	Orange    Color = 208
	SkyBlue   Color = 117
	HotPink   Color = 198
	LightGold Color = 229
)

// Sparkle is the cycle of highlight colors a spinning ball flashes through.
var Sparkle = []Color{White, Pink, Cyan, Gold, Violet, Lime, Orange, SkyBlue}

// ClearScreen clears the terminal and moves the cursor to the top-left.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25h")
}

// EnableMouse turns on button press reporting in SGR encoding.
func EnableMouse(w io.Writer) {
	fmt.Fprint(w, "\033[?1000h\033[?1006h")
}

// DisableMouse turns mouse reporting back off.
func DisableMouse(w io.Writer) {
	fmt.Fprint(w, "\033[?1006l\033[?1000l")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
