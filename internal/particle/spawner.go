package particle

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/discoball/internal/invariant"
	"github.com/tomz197/discoball/internal/sched"
)

// Scheduler is the timer capability the spawner needs. *sched.Scheduler implements it.
type Scheduler interface {
	Now() time.Time
	After(d time.Duration, fn func()) *sched.Handle
	Every(d time.Duration, fn func()) *sched.Handle
}

// Config holds the spawner's constants.
type Config struct {
	SpawnPeriod time.Duration // Cadence of spawn ticks while active
	SpawnGap    time.Duration // Minimum time between two successful spawns
	Lifetime    time.Duration // Time a particle stays live
	Catalog     []string      // Symbols to draw from
	RangeMin    float64       // Lower horizontal bound, percent
	RangeMax    float64       // Upper horizontal bound, percent
	Origin      float64       // Vertical spawn position, percent
	MaxLive     int           // Cap on live particles, 0 for none
}

// Validate checks the constants are usable.
func (c Config) Validate() error {
	var errs []error
	if c.SpawnPeriod <= 0 {
		errs = append(errs, fmt.Errorf("spawn period must be positive, got %v", c.SpawnPeriod))
	}
	if c.SpawnGap < 0 {
		errs = append(errs, fmt.Errorf("spawn gap must not be negative, got %v", c.SpawnGap))
	}
	if c.Lifetime <= 0 {
		errs = append(errs, fmt.Errorf("particle lifetime must be positive, got %v", c.Lifetime))
	}
	if len(c.Catalog) == 0 {
		errs = append(errs, errors.New("symbol catalog must not be empty"))
	}
	if c.RangeMin < 0 || c.RangeMax > 100 || c.RangeMin >= c.RangeMax {
		errs = append(errs, fmt.Errorf("spawn range [%v, %v] must satisfy 0 <= min < max <= 100", c.RangeMin, c.RangeMax))
	}
	if c.MaxLive < 0 {
		errs = append(errs, fmt.Errorf("max live particles must not be negative, got %d", c.MaxLive))
	}
	return errors.Join(errs...)
}

// Spawner emits particles while the max-speed signal is up. Like the rest of
// the core it runs on the scheduler's goroutine and is not safe for concurrent use.
type Spawner struct {
	cfg     Config
	sched   Scheduler
	rng     RandSource
	live    *LiveSet
	checker *invariant.Checker
	logger  *log.Logger
	observe func(Change)

	nextID    uint64
	lastSpawn time.Time
	hasSpawn  bool
	active    bool
	closed    bool
	cadence   *sched.Handle
}

// Option configures a Spawner.
type Option func(*Spawner)

// WithChecker sets how invariant violations are reported.
func WithChecker(c *invariant.Checker) Option {
	return func(s *Spawner) {
		s.checker = c
	}
}

// WithLogger sets the spawner's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Spawner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers fn to be called for every spawn and removal.
func WithObserver(fn func(Change)) Option {
	return func(s *Spawner) {
		s.observe = fn
	}
}

// NewSpawner creates an inactive spawner.
func NewSpawner(cfg Config, sc Scheduler, rng RandSource, opts ...Option) (*Spawner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spawner config: %w", err)
	}
	if sc == nil {
		return nil, errors.New("spawner needs a scheduler")
	}
	if rng == nil {
		return nil, errors.New("spawner needs a random source")
	}
	cfg.Catalog = append([]string(nil), cfg.Catalog...)

	s := &Spawner{
		cfg:     cfg,
		sched:   sc,
		rng:     rng,
		live:    NewLiveSet(),
		checker: invariant.NewChecker(false, nil),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OnMaxSpeedChanged starts or stops the spawn cadence. The first spawn tick
// comes one SpawnPeriod after activation. Deactivation cancels the pending
// spawn tick before returning.
func (s *Spawner) OnMaxSpeedChanged(active bool) {
	if s.closed || active == s.active {
		return
	}
	s.active = active

	if !active {
		s.cadence.Cancel()
		s.cadence = nil
		s.logger.Debug("spawner deactivated", "live", s.live.Len())
		return
	}

	s.logger.Debug("spawner activated", "live", s.live.Len())
	s.cadence = s.sched.Every(s.cfg.SpawnPeriod, func() {
		s.SpawnTick()
	})
}

// SpawnTick creates one particle if the spawner is active, the gate is open
// and the live cap is not reached. The gate opens SpawnGap after the last
// spawn, so any half-open window [t, t+SpawnGap) holds at most one spawn.
// A refused tick is a silent no-op.
func (s *Spawner) SpawnTick() (Particle, bool) {
	if s.closed || !s.active {
		return Particle{}, false
	}
	now := s.sched.Now()
	if s.hasSpawn && now.Sub(s.lastSpawn) < s.cfg.SpawnGap {
		return Particle{}, false
	}
	if s.cfg.MaxLive > 0 && s.live.Len() >= s.cfg.MaxLive {
		return Particle{}, false
	}

	p := Particle{
		ID:        s.nextID,
		Symbol:    s.cfg.Catalog[s.rng.Intn(len(s.cfg.Catalog))],
		X:         s.cfg.RangeMin + s.rng.Float64()*(s.cfg.RangeMax-s.cfg.RangeMin),
		Y:         s.cfg.Origin,
		CreatedAt: now,
	}
	if !s.checker.Check(!s.live.Contains(p.ID), invariant.CodeDuplicateID, "particle id %d already live", p.ID) {
		s.nextID++
		return Particle{}, false
	}
	s.nextID++

	id := p.ID
	expiry := s.sched.After(s.cfg.Lifetime, func() {
		s.expire(id)
	})
	s.live.add(p, expiry)
	s.lastSpawn = now
	s.hasSpawn = true

	s.notify(Change{Kind: ChangeSpawned, Particle: p})
	return p, true
}

// Remove takes a particle out early and cancels its expiry.
// Removing an id that is not live is a no-op.
func (s *Spawner) Remove(id uint64) bool {
	e, ok := s.live.take(id)
	if !ok {
		return false
	}
	e.expiry.Cancel()
	s.notify(Change{Kind: ChangeRemoved, Particle: e.p, Reason: ReasonRemoved})
	return true
}

func (s *Spawner) expire(id uint64) {
	e, ok := s.live.take(id)
	if !s.checker.Check(ok, invariant.CodeDoubleRemoval, "expiry fired for particle %d which is not live", id) {
		return
	}
	s.notify(Change{Kind: ChangeRemoved, Particle: e.p, Reason: ReasonExpired})
}

func (s *Spawner) notify(c Change) {
	if s.observe != nil {
		s.observe(c)
	}
}

// Live returns the live particles in spawn order.
func (s *Spawner) Live() []Particle {
	return s.live.Particles()
}

// Len returns the number of live particles.
func (s *Spawner) Len() int {
	return s.live.Len()
}

// Active reports whether the spawn cadence is running.
func (s *Spawner) Active() bool {
	return s.active
}

// NextID returns the id the next particle will get.
func (s *Spawner) NextID() uint64 {
	return s.nextID
}

// Close stops the cadence and cancels every pending expiry. Live particles are
// dropped without removal notifications. Further calls are no-ops.
func (s *Spawner) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.active = false
	s.cadence.Cancel()
	s.cadence = nil
	s.live.clear()
}
