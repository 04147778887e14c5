// Package sound plays short synthesized cues for session events.
package sound

import (
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/tomz197/discoball/internal/loop/server"
)

const sampleRate = beep.SampleRate(44100)

// Chime: a rising arpeggio (C5 E5 G5 C6) played on reaching max speed.
var chimeNotes = []float64{523.25, 659.25, 783.99, 1046.50}

const (
	chimeNote   = 90 * time.Millisecond
	blipFreq    = 1318.51 // E6
	blipLength  = 40 * time.Millisecond
	cueVolume   = 0.35
	bufferDelay = 100 * time.Millisecond
)

// Output receives finished cue streams.
type Output interface {
	Play(s ...beep.Streamer)
}

// speakerOutput plays through the system audio device.
type speakerOutput struct{}

func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }

// Player turns session events into sound. It is safe to subscribe one Player
// to several sessions.
type Player struct {
	out    Output
	logger *log.Logger
	muted  atomic.Bool

	mu      sync.Mutex
	enabled bool
}

// Option configures a Player.
type Option func(*Player)

// WithOutput replaces the speaker. Enables the player without touching the
// audio device.
func WithOutput(out Output) Option {
	return func(p *Player) {
		p.out = out
		p.enabled = true
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Player) {
		p.logger = l
	}
}

// WithMuted sets the initial mute state.
func WithMuted(muted bool) Option {
	return func(p *Player) {
		p.muted.Store(muted)
	}
}

// NewPlayer creates a player. Sound stays off until Init succeeds unless an
// output was given with WithOutput.
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		out:    speakerOutput{},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init opens the audio device. A failure leaves the player silent; the
// error is returned for the caller to log.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.enabled {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(bufferDelay)); err != nil {
		p.logger.Warn("audio initialization failed, sound disabled", "err", err)
		return err
	}
	p.enabled = true
	return nil
}

// Enabled reports whether cues reach an output.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// SetMuted mutes or unmutes the player.
func (p *Player) SetMuted(muted bool) {
	p.muted.Store(muted)
}

// Muted reports whether the player is muted.
func (p *Player) Muted() bool {
	return p.muted.Load()
}

// Handle plays the cue for ev, if it has one. It has the shape of a session
// listener and returns quickly.
func (p *Player) Handle(ev server.Event) {
	if p.muted.Load() || !p.Enabled() {
		return
	}

	var cue beep.Streamer
	switch ev.Type {
	case server.EventMaxSpeedReached:
		cue = Chime()
	case server.EventParticleSpawned:
		cue = Blip()
	default:
		return
	}
	if cue == nil {
		return
	}
	p.out.Play(cue)
}

// Chime returns the max-speed cue.
func Chime() beep.Streamer {
	notes := make([]beep.Streamer, 0, len(chimeNotes))
	for _, freq := range chimeNotes {
		tone := note(freq, chimeNote)
		if tone == nil {
			return nil
		}
		notes = append(notes, tone)
	}
	return volume(beep.Seq(notes...), cueVolume)
}

// Blip returns the prize-spawn cue.
func Blip() beep.Streamer {
	tone := note(blipFreq, blipLength)
	if tone == nil {
		return nil
	}
	return volume(tone, cueVolume*0.6)
}

// note is a sine tone of the given length with a linear fade out.
func note(freq float64, length time.Duration) beep.Streamer {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return nil
	}
	return &fadeOut{Streamer: beep.Take(sampleRate.N(length), sine), total: sampleRate.N(length)}
}

func volume(s beep.Streamer, vol float64) beep.Streamer {
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// fadeOut ramps the stream down to silence over total samples so notes end
// without a click.
type fadeOut struct {
	beep.Streamer
	pos   int
	total int
}

func (f *fadeOut) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		gain := 1 - float64(f.pos)/float64(f.total)
		if gain < 0 {
			gain = 0
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		f.pos++
	}
	return n, ok
}
