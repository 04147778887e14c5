package draw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ChunkWriter collects one frame of terminal output (canvas cells plus HUD
// text) and sends it to the connection in MTU-sized chunks on Flush.
// Positions are 1-based canvas cells; the centering offset is added here.
type ChunkWriter struct {
	frame  strings.Builder
	out    *bufio.Writer
	numBuf [20]byte
	offCol int
	offRow int
}

// NewChunkWriter creates a ChunkWriter that writes to w with the given
// centering offset.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		out:    bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset updates the centering offset after a resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol = offsetCol
	cw.offRow = offsetRow
}

// MoveCursor queues a cursor move to canvas cell (col, row).
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.frame.WriteString("\033[")
	cw.frame.Write(strconv.AppendInt(cw.numBuf[:0], int64(row+cw.offRow), 10))
	cw.frame.WriteByte(';')
	cw.frame.Write(strconv.AppendInt(cw.numBuf[:0], int64(col+cw.offCol), 10))
	cw.frame.WriteByte('H')
}

// Write queues raw bytes. Canvas.Render writes through this.
func (cw *ChunkWriter) Write(p []byte) (n int, err error) {
	return cw.frame.Write(p)
}

// WriteString queues raw text.
func (cw *ChunkWriter) WriteString(s string) {
	cw.frame.WriteString(s)
}

// WriteAt queues s at canvas cell (col, row).
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.frame.WriteString(s)
}

// WriteStyledAt queues s at canvas cell (col, row) wrapped in an SGR style,
// e.g. ColorBold+ColorYellow. The style is reset afterwards.
func (cw *ChunkWriter) WriteStyledAt(col, row int, style, s string) {
	if style == "" {
		cw.WriteAt(col, row, s)
		return
	}
	cw.MoveCursor(col, row)
	cw.frame.WriteString(style)
	cw.frame.WriteString(s)
	cw.frame.WriteString(ColorReset)
}

// Buffered returns the number of bytes queued for the next Flush.
func (cw *ChunkWriter) Buffered() int {
	return cw.frame.Len()
}

// Ensure ChunkWriter satisfies io.Writer.
var _ io.Writer = (*ChunkWriter)(nil)

// Flush sends the queued frame and starts a new one.
func (cw *ChunkWriter) Flush() error {
	data := cw.frame.String()
	cw.frame.Reset()
	writeChunked(cw.out, data)
	return cw.out.Flush()
}

// TermSizeFunc is a function that returns the terminal dimensions.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc returns terminal size from os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// FixedTermSize returns a TermSizeFunc reporting a constant size.
func FixedTermSize(width, height int) TermSizeFunc {
	return func() (int, int, error) {
		return width, height, nil
	}
}

// TerminalSizeRawWith returns actual terminal dimensions using the provided size function.
func TerminalSizeRawWith(sizeFunc TermSizeFunc) (width, height int, err error) {
	return sizeFunc()
}

// ClampTermSize clamps terminal dimensions to maxWidth x maxHeight and
// returns the offset that centers the clamped area.
func ClampTermSize(termWidth, termHeight, maxWidth, maxHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, maxWidth)
	renderHeight = min(termHeight, maxHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}
