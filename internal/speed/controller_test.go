package speed

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/discoball/internal/invariant"
)

var reference = Config{MaxSpeed: 50, ClickIncrement: 2, DecayRate: 0.5}

func newStrict(t *testing.T, cfg Config) *Controller {
	t.Helper()
	c, err := New(cfg, WithChecker(invariant.NewChecker(true, nil)))
	require.NoError(t, err)
	return c
}

func TestController_StartsAtZero(t *testing.T) {
	c := newStrict(t, reference)
	assert.Equal(t, 0.0, c.Speed())
	assert.False(t, c.AtMax())
	assert.Equal(t, 0, c.Clicks())
}

func TestController_ReachesMaxAfter25Clicks(t *testing.T) {
	c := newStrict(t, reference)

	raised := 0
	for i := 0; i < 25; i++ {
		if c.RegisterClick() {
			raised++
		}
	}

	assert.Equal(t, 50.0, c.Speed())
	assert.True(t, c.AtMax())
	assert.Equal(t, 1, raised, "max signal raised exactly once")
	assert.Equal(t, 100.0, c.Percent())

	assert.True(t, c.Tick(), "tick below the ceiling drops the signal")
	assert.Equal(t, 49.5, c.Speed())
	assert.False(t, c.AtMax())
}

func TestController_ClickClampsAtCeiling(t *testing.T) {
	c := newStrict(t, reference)
	for i := 0; i < 100; i++ {
		c.RegisterClick()
	}
	assert.Equal(t, 50.0, c.Speed())
	assert.Equal(t, 100, c.Clicks())

	assert.False(t, c.RegisterClick(), "already at max, no new edge")
}

func TestController_DecayFloorsAtZero(t *testing.T) {
	c := newStrict(t, Config{MaxSpeed: 50, ClickIncrement: 2, DecayRate: 0.75})
	c.RegisterClick()

	prev := c.Speed()
	for i := 0; i < 10; i++ {
		c.Tick()
		assert.LessOrEqual(t, c.Speed(), prev, "decay never increases speed")
		prev = c.Speed()
	}
	assert.Equal(t, 0.0, c.Speed())

	c.Tick()
	assert.Equal(t, 0.0, c.Speed(), "stays at zero")
}

func TestController_BoundsHoldForRandomSequences(t *testing.T) {
	c := newStrict(t, reference)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 10000; i++ {
		if rng.Intn(3) == 0 {
			c.Tick()
		} else {
			c.RegisterClick()
		}
		require.GreaterOrEqual(t, c.Speed(), 0.0)
		require.LessOrEqual(t, c.Speed(), 50.0)
		require.Equal(t, c.Speed() == 50.0, c.AtMax())
	}
}

func TestController_ClickThenTickVersusTickThenClick(t *testing.T) {
	a := newStrict(t, reference)
	b := newStrict(t, reference)
	for i := 0; i < 3; i++ {
		a.RegisterClick()
		b.RegisterClick()
	}

	a.RegisterClick()
	a.Tick()
	b.Tick()
	b.RegisterClick()

	assert.Equal(t, 7.5, a.Speed())
	assert.Equal(t, 7.5, b.Speed())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "reference", cfg: reference},
		{name: "zero decay allowed", cfg: Config{MaxSpeed: 1, ClickIncrement: 1}},
		{name: "zero max", cfg: Config{ClickIncrement: 1}, wantErr: "max speed"},
		{name: "negative increment", cfg: Config{MaxSpeed: 1, ClickIncrement: -1}, wantErr: "click increment"},
		{name: "negative decay", cfg: Config{MaxSpeed: 1, ClickIncrement: 1, DecayRate: -1}, wantErr: "decay rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid speed config")
}
