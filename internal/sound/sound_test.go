package sound

import (
	"testing"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/discoball/internal/loop/server"
)

type recorder struct {
	played []beep.Streamer
}

func (r *recorder) Play(s ...beep.Streamer) {
	r.played = append(r.played, s...)
}

// drain streams s to the end and returns every sample of the left channel.
func drain(t *testing.T, s beep.Streamer) []float64 {
	t.Helper()
	var out []float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			out = append(out, buf[i][0])
		}
		if !ok {
			break
		}
	}
	require.NoError(t, s.Err())
	return out
}

func TestPlayer_CuesPerEvent(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(WithOutput(rec))
	require.True(t, p.Enabled())

	p.Handle(server.Event{Type: server.EventMaxSpeedReached})
	p.Handle(server.Event{Type: server.EventParticleSpawned})
	p.Handle(server.Event{Type: server.EventMaxSpeedLost})
	p.Handle(server.Event{Type: server.EventParticleRemoved})

	assert.Len(t, rec.played, 2)
}

func TestPlayer_Muted(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(WithOutput(rec), WithMuted(true))

	p.Handle(server.Event{Type: server.EventMaxSpeedReached})
	assert.Empty(t, rec.played)

	p.SetMuted(false)
	assert.False(t, p.Muted())
	p.Handle(server.Event{Type: server.EventMaxSpeedReached})
	assert.Len(t, rec.played, 1)
}

func TestPlayer_SilentUntilInit(t *testing.T) {
	p := NewPlayer()
	assert.False(t, p.Enabled())
	// Must not touch the speaker.
	p.Handle(server.Event{Type: server.EventMaxSpeedReached})
}

func TestChime_Length(t *testing.T) {
	samples := drain(t, Chime())
	assert.Len(t, samples, len(chimeNotes)*sampleRate.N(chimeNote))

	for _, v := range samples {
		assert.LessOrEqual(t, v, 1.0)
		assert.GreaterOrEqual(t, v, -1.0)
	}
}

func TestBlip_FadesOut(t *testing.T) {
	samples := drain(t, Blip())
	require.Len(t, samples, sampleRate.N(blipLength))

	tail := samples[len(samples)-20:]
	for _, v := range tail {
		assert.InDelta(t, 0, v, 0.01)
	}
}
