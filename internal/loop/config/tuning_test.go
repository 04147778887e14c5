package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())

	assert.Equal(t, 50.0, d.MaxSpeed)
	assert.Equal(t, 2.0, d.ClickIncrement)
	assert.Equal(t, 0.5, d.DecayRate)
	assert.Equal(t, 100*time.Millisecond, d.DecayPeriod)
	assert.Equal(t, 200*time.Millisecond, d.SpawnGap)
	assert.Equal(t, 3*time.Second, d.ParticleLifetime)
	assert.Len(t, d.Symbols, 8)

	p := d.Particles()
	assert.Equal(t, 10.0, p.RangeMin)
	assert.Equal(t, 90.0, p.RangeMax)
	assert.Equal(t, 40.0, p.Origin)
}

func TestParse_OverridesOnlyGivenKeys(t *testing.T) {
	doc := `
max_speed: 20
decay_period: 50ms
particle_lifetime: 1.5s
symbols: ["*", "+"]
spawn_range: [25, 75]
max_live_particles: 12
`
	tn, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 20.0, tn.MaxSpeed)
	assert.Equal(t, 50*time.Millisecond, tn.DecayPeriod)
	assert.Equal(t, 1500*time.Millisecond, tn.ParticleLifetime)
	assert.Equal(t, []string{"*", "+"}, tn.Symbols)
	assert.Equal(t, []float64{25, 75}, tn.SpawnRange)
	assert.Equal(t, 12, tn.MaxLiveParticles)

	assert.Equal(t, 2.0, tn.ClickIncrement, "untouched keys keep defaults")
	assert.Equal(t, 200*time.Millisecond, tn.SpawnGap)
}

func TestParse_EmptyDocumentGivesDefaults(t *testing.T) {
	tn, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), tn)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "unknown key", doc: "max_sped: 10", wantErr: "failed to parse tuning"},
		{name: "bad duration", doc: "spawn_gap: soon", wantErr: "failed to parse tuning"},
		{name: "negative decay", doc: "decay_rate: -1", wantErr: "decay rate"},
		{name: "zero period", doc: "decay_period: 0s", wantErr: "decay period"},
		{name: "range arity", doc: "spawn_range: [10]", wantErr: "two values"},
		{name: "empty catalog", doc: "symbols: []", wantErr: "catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	tn, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), tn)

	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("click_increment: 5\n"), 0o644))
	tn, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, tn.ClickIncrement)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open tuning file")
}
