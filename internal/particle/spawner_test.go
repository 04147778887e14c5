package particle

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/discoball/internal/invariant"
	"github.com/tomz197/discoball/internal/sched"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// cycleRand hands out symbols in catalog order and a fixed fraction for positions.
type cycleRand struct {
	next int
	frac float64
}

func (r *cycleRand) Intn(n int) int {
	v := r.next % n
	r.next++
	return v
}

func (r *cycleRand) Float64() float64 { return r.frac }

func referenceConfig() Config {
	return Config{
		SpawnPeriod: 200 * time.Millisecond,
		SpawnGap:    200 * time.Millisecond,
		Lifetime:    3 * time.Second,
		Catalog:     DefaultCatalog,
		RangeMin:    10,
		RangeMax:    90,
		Origin:      40,
	}
}

type harness struct {
	sched   *sched.Scheduler
	spawner *Spawner
	changes []Change
}

func newHarness(t *testing.T, cfg Config, rng RandSource) *harness {
	t.Helper()
	h := &harness{sched: sched.New(epoch)}
	s, err := NewSpawner(cfg, h.sched, rng,
		WithChecker(invariant.NewChecker(true, nil)),
		WithObserver(func(c Change) { h.changes = append(h.changes, c) }),
	)
	require.NoError(t, err)
	h.spawner = s
	return h
}

func (h *harness) count(kind ChangeKind) int {
	n := 0
	for _, c := range h.changes {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func TestSpawner_InactiveNeverSpawns(t *testing.T) {
	h := newHarness(t, referenceConfig(), &cycleRand{frac: 0.5})

	_, ok := h.spawner.SpawnTick()
	assert.False(t, ok)
	h.sched.Advance(10 * time.Second)
	assert.Equal(t, 0, h.spawner.Len())
	assert.Empty(t, h.changes)
}

func TestSpawner_FirstSpawnWaitsOnePeriod(t *testing.T) {
	h := newHarness(t, referenceConfig(), &cycleRand{frac: 0.5})

	h.spawner.OnMaxSpeedChanged(true)
	assert.Equal(t, 0, h.spawner.Len())

	h.sched.Advance(199 * time.Millisecond)
	assert.Equal(t, 0, h.spawner.Len())

	h.sched.Advance(time.Millisecond)
	live := h.spawner.Live()
	require.Len(t, live, 1)
	p := live[0]
	assert.Equal(t, uint64(0), p.ID)
	assert.Equal(t, "🎁", p.Symbol)
	assert.Equal(t, 50.0, p.X)
	assert.Equal(t, 40.0, p.Y)
	assert.Equal(t, epoch.Add(200*time.Millisecond), p.CreatedAt)
}

func TestSpawner_FourTicksIn200msYieldOneParticle(t *testing.T) {
	h := newHarness(t, referenceConfig(), &cycleRand{frac: 0.5})

	h.spawner.OnMaxSpeedChanged(true)
	spawned := 0
	for range 4 {
		h.sched.Advance(50 * time.Millisecond)
		if _, ok := h.spawner.SpawnTick(); ok {
			spawned++
		}
	}

	assert.Equal(t, epoch.Add(200*time.Millisecond), h.sched.Now())
	assert.Equal(t, 1, spawned)
	assert.Equal(t, 1, h.count(ChangeSpawned), "the cadence tick at 200ms is gated too")
	assert.Equal(t, epoch.Add(50*time.Millisecond), h.spawner.Live()[0].CreatedAt)
}

func TestSpawner_GateOpensExactlyOneGapLater(t *testing.T) {
	h := newHarness(t, referenceConfig(), &cycleRand{frac: 0.5})

	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(10 * time.Millisecond)
	first, ok := h.spawner.SpawnTick()
	require.True(t, ok)

	h.sched.Advance(199 * time.Millisecond)
	_, ok = h.spawner.SpawnTick()
	assert.False(t, ok, "one millisecond short of the gap")

	h.sched.Advance(time.Millisecond)
	second, ok := h.spawner.SpawnTick()
	require.True(t, ok, "exactly one gap after the last spawn")
	assert.Equal(t, referenceConfig().SpawnGap, second.CreatedAt.Sub(first.CreatedAt))

	// The cadence tick at 400ms is 190ms after the spawn at 210ms; the one at 600ms passes.
	h.sched.Advance(200 * time.Millisecond)
	assert.Equal(t, 2, h.spawner.Len())
	h.sched.Advance(200 * time.Millisecond)
	assert.Equal(t, 3, h.spawner.Len())
}

func TestSpawner_GateIndependentOfTickPeriod(t *testing.T) {
	cfg := referenceConfig()
	cfg.SpawnPeriod = 10 * time.Millisecond
	h := newHarness(t, cfg, &cycleRand{frac: 0.5})

	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(time.Second)

	// Spawns at 10, 210, 410, 610, 810.
	assert.Equal(t, 5, h.count(ChangeSpawned))

	live := h.spawner.Live()
	for i := 1; i < len(live); i++ {
		gap := live[i].CreatedAt.Sub(live[i-1].CreatedAt)
		assert.GreaterOrEqual(t, gap, cfg.SpawnGap)
	}
}

func TestSpawner_CadenceWhileActive(t *testing.T) {
	h := newHarness(t, referenceConfig(), &cycleRand{frac: 0.5})

	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(1000 * time.Millisecond)

	// Spawns at 200, 400, 600, 800, 1000.
	assert.Equal(t, 5, h.spawner.Len())
	assert.Equal(t, uint64(5), h.spawner.NextID())
}

func TestSpawner_DeactivationCancelsPendingSpawn(t *testing.T) {
	h := newHarness(t, referenceConfig(), &cycleRand{frac: 0.5})

	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(150 * time.Millisecond)
	h.spawner.OnMaxSpeedChanged(false)
	assert.False(t, h.spawner.Active())
	assert.Equal(t, 0, h.sched.Pending())

	h.sched.Advance(time.Second)
	assert.Equal(t, 0, h.count(ChangeSpawned), "the tick pending at 200ms must not fire")

	_, ok := h.spawner.SpawnTick()
	assert.False(t, ok)
}

func TestSpawner_ReactivationKeepsGate(t *testing.T) {
	h := newHarness(t, referenceConfig(), &cycleRand{frac: 0.5})

	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(200 * time.Millisecond)
	require.Equal(t, 1, h.spawner.Len())

	h.spawner.OnMaxSpeedChanged(false)
	h.sched.Advance(50 * time.Millisecond)
	h.spawner.OnMaxSpeedChanged(true)

	_, ok := h.spawner.SpawnTick()
	assert.False(t, ok, "reactivation 50ms after a spawn is gated")

	h.sched.Advance(150 * time.Millisecond)
	_, ok = h.spawner.SpawnTick()
	assert.True(t, ok, "a full gap after the last spawn")

	// The cadence tick at 450ms is only 50ms after that.
	h.sched.Advance(50 * time.Millisecond)
	assert.Equal(t, 2, h.spawner.Len())
}

func TestSpawner_RepeatedActivationKeepsCadence(t *testing.T) {
	h := newHarness(t, referenceConfig(), &cycleRand{frac: 0.5})

	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(150 * time.Millisecond)
	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(50 * time.Millisecond)

	assert.Equal(t, 1, h.spawner.Len(), "cadence tick at 200ms still fires")
}

// spawnOne activates the spawner, lets the first cadence tick spawn at 200ms
// and deactivates again.
func spawnOne(t *testing.T, h *harness) Particle {
	t.Helper()
	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(200 * time.Millisecond)
	h.spawner.OnMaxSpeedChanged(false)
	live := h.spawner.Live()
	require.Len(t, live, 1)
	return live[0]
}

func TestSpawner_ParticleExpiresAfterLifetime(t *testing.T) {
	h := newHarness(t, referenceConfig(), &cycleRand{frac: 0.5})

	p := spawnOne(t, h)
	born := p.CreatedAt

	h.sched.AdvanceTo(born.Add(2999 * time.Millisecond))
	assert.Equal(t, 1, h.spawner.Len(), "present at t=2999")

	h.sched.AdvanceTo(born.Add(3001 * time.Millisecond))
	assert.Equal(t, 0, h.spawner.Len(), "absent at t=3001")

	require.Equal(t, 1, h.count(ChangeRemoved))
	last := h.changes[len(h.changes)-1]
	assert.Equal(t, ReasonExpired, last.Reason)
	assert.Equal(t, p.ID, last.Particle.ID)
}

func TestSpawner_ExplicitRemovalCancelsExpiry(t *testing.T) {
	h := newHarness(t, referenceConfig(), &cycleRand{frac: 0.5})

	p := spawnOne(t, h)

	assert.True(t, h.spawner.Remove(p.ID))
	assert.False(t, h.spawner.Remove(p.ID), "second removal is a silent no-op")
	assert.False(t, h.spawner.Remove(99), "unknown id is a silent no-op")

	// The strict checker panics if the cancelled expiry still fires.
	h.sched.Advance(10 * time.Second)
	assert.Equal(t, 1, h.count(ChangeRemoved))
	assert.Equal(t, 0, h.sched.Pending())
}

func TestSpawner_IDsUniqueAndNeverReused(t *testing.T) {
	h := newHarness(t, referenceConfig(), rand.New(rand.NewSource(7)))

	h.spawner.OnMaxSpeedChanged(true)
	for i := 0; i < 100; i++ {
		h.sched.Advance(200 * time.Millisecond)
		if i%3 == 0 {
			for _, p := range h.spawner.Live() {
				h.spawner.Remove(p.ID)
			}
		}
	}

	seen := make(map[uint64]bool)
	var last uint64
	for _, c := range h.changes {
		if c.Kind != ChangeSpawned {
			continue
		}
		require.False(t, seen[c.Particle.ID], "id %d reused", c.Particle.ID)
		if len(seen) > 0 {
			require.Greater(t, c.Particle.ID, last)
		}
		seen[c.Particle.ID] = true
		last = c.Particle.ID
	}
	assert.Len(t, seen, 100)
}

func TestSpawner_EveryParticleRemovedExactlyOnceWithinLifetime(t *testing.T) {
	cfg := referenceConfig()
	h := newHarness(t, cfg, rand.New(rand.NewSource(3)))

	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(5 * time.Second)
	h.spawner.OnMaxSpeedChanged(false)
	h.sched.Advance(cfg.Lifetime + time.Millisecond)

	spawned := make(map[uint64]time.Time)
	removed := make(map[uint64]int)
	for _, c := range h.changes {
		switch c.Kind {
		case ChangeSpawned:
			spawned[c.Particle.ID] = c.Particle.CreatedAt
		case ChangeRemoved:
			removed[c.Particle.ID]++
		}
	}

	require.NotEmpty(t, spawned)
	for id := range spawned {
		assert.Equal(t, 1, removed[id], "particle %d", id)
	}
	assert.Equal(t, 0, h.spawner.Len())
}

func TestSpawner_PositionsStayInRange(t *testing.T) {
	h := newHarness(t, referenceConfig(), rand.New(rand.NewSource(11)))

	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(2 * time.Second)

	catalog := make(map[string]bool)
	for _, s := range DefaultCatalog {
		catalog[s] = true
	}
	for _, c := range h.changes {
		p := c.Particle
		assert.GreaterOrEqual(t, p.X, 10.0)
		assert.Less(t, p.X, 90.0)
		assert.Equal(t, 40.0, p.Y)
		assert.True(t, catalog[p.Symbol], "symbol %q not in catalog", p.Symbol)
	}
}

func TestSpawner_SeededSourceReplays(t *testing.T) {
	run := func() []Particle {
		h := newHarness(t, referenceConfig(), rand.New(rand.NewSource(99)))
		h.spawner.OnMaxSpeedChanged(true)
		h.sched.Advance(2 * time.Second)
		return h.spawner.Live()
	}
	assert.Equal(t, run(), run())
}

func TestSpawner_MaxLiveCap(t *testing.T) {
	cfg := referenceConfig()
	cfg.MaxLive = 3
	h := newHarness(t, cfg, &cycleRand{frac: 0.5})

	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(2 * time.Second)
	assert.Equal(t, 3, h.spawner.Len())

	h.spawner.Remove(0)
	h.sched.Advance(200 * time.Millisecond)
	assert.Equal(t, 3, h.spawner.Len(), "freed slot refilled on the next tick")
}

func TestSpawner_CloseCancelsEverything(t *testing.T) {
	h := newHarness(t, referenceConfig(), &cycleRand{frac: 0.5})

	h.spawner.OnMaxSpeedChanged(true)
	h.sched.Advance(time.Second)
	require.Greater(t, h.sched.Pending(), 0)

	h.spawner.Close()
	assert.Equal(t, 0, h.sched.Pending())
	assert.Equal(t, 0, h.spawner.Len())
	assert.False(t, h.spawner.Active())

	h.spawner.OnMaxSpeedChanged(true)
	assert.False(t, h.spawner.Active(), "closed spawner stays closed")
	h.spawner.Close()
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "reference", mutate: func(*Config) {}},
		{name: "zero period", mutate: func(c *Config) { c.SpawnPeriod = 0 }, wantErr: "spawn period"},
		{name: "negative gap", mutate: func(c *Config) { c.SpawnGap = -1 }, wantErr: "spawn gap"},
		{name: "zero lifetime", mutate: func(c *Config) { c.Lifetime = 0 }, wantErr: "lifetime"},
		{name: "empty catalog", mutate: func(c *Config) { c.Catalog = nil }, wantErr: "catalog"},
		{name: "inverted range", mutate: func(c *Config) { c.RangeMin, c.RangeMax = 90, 10 }, wantErr: "spawn range"},
		{name: "range past 100", mutate: func(c *Config) { c.RangeMax = 120 }, wantErr: "spawn range"},
		{name: "negative cap", mutate: func(c *Config) { c.MaxLive = -1 }, wantErr: "max live"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := referenceConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewSpawner_RequiresCollaborators(t *testing.T) {
	_, err := NewSpawner(referenceConfig(), nil, &cycleRand{})
	assert.Error(t, err)

	_, err = NewSpawner(referenceConfig(), sched.New(epoch), nil)
	assert.Error(t, err)
}
