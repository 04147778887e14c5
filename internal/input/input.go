package input

import (
	"bufio"
	"strconv"
)

// MouseClick is a button press reported by the terminal, 1-based.
type MouseClick struct {
	Col, Row int
	Button   int
}

// Input is everything the user did since the previous read.
type Input struct {
	Quit    bool
	Escape  bool
	Mute    bool         // Toggle sound
	Presses int          // Space and Enter presses; each one is a click
	Mouse   []MouseClick // Button presses, releases are dropped
	Pressed []byte       // Raw bytes, for inactivity tracking
}

// Active reports whether the user did anything at all.
func (in Input) Active() bool {
	return len(in.Pressed) > 0
}

// Stream delivers input bytes from a reader goroutine.
type Stream struct {
	ch     chan byte
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader has hit an error or EOF.
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput drains all available bytes from the stream without blocking.
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	return Parse(buf)
}

// Parse decodes one batch of terminal input.
func Parse(buf []byte) Input {
	in := Input{Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' {
			if i+1 < len(buf) && buf[i+1] == '[' {
				if n, click, ok := parseSGRMouse(buf[i:]); ok {
					if click != nil {
						in.Mouse = append(in.Mouse, *click)
					}
					i += n - 1
					continue
				}
				// Other CSI sequences (arrows and friends) are ignored.
				i += csiLength(buf[i:]) - 1
				continue
			}
			in.Escape = true
			continue
		}

		switch b {
		case 'q', 'Q', 0x03:
			in.Quit = true
		case ' ', '\n', '\r':
			in.Presses++
		case 'm', 'M':
			in.Mute = !in.Mute
		}
	}
	return in
}

// parseSGRMouse decodes "ESC [ < button ; col ; row (M|m)". It returns the
// sequence length and the click, which is nil for releases and motion.
func parseSGRMouse(buf []byte) (n int, click *MouseClick, ok bool) {
	if len(buf) < 3 || buf[2] != '<' {
		return 0, nil, false
	}
	var fields [3]int
	field := 0
	start := 3
	for i := 3; i < len(buf); i++ {
		switch c := buf[i]; {
		case c >= '0' && c <= '9':
		case c == ';':
			if field >= 2 {
				return 0, nil, false
			}
			v, err := strconv.Atoi(string(buf[start:i]))
			if err != nil {
				return 0, nil, false
			}
			fields[field] = v
			field++
			start = i + 1
		case c == 'M' || c == 'm':
			if field != 2 {
				return 0, nil, false
			}
			v, err := strconv.Atoi(string(buf[start:i]))
			if err != nil {
				return 0, nil, false
			}
			fields[2] = v
			button := fields[0]
			// Bit 5 is motion, bits 6 and 7 are wheel events.
			if c == 'M' && button&(32|64|128) == 0 {
				click = &MouseClick{Col: fields[1], Row: fields[2], Button: button & 3}
			}
			return i + 1, click, true
		default:
			return 0, nil, false
		}
	}
	return 0, nil, false
}

// csiLength returns how many bytes a CSI sequence spans, up to and including
// its final byte. An unterminated sequence consumes the rest of the buffer.
func csiLength(buf []byte) int {
	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			return i + 1
		}
	}
	return len(buf)
}
