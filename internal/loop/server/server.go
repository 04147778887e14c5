package server

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/discoball/internal/invariant"
	"github.com/tomz197/discoball/internal/loop/config"
	"github.com/tomz197/discoball/internal/particle"
	"github.com/tomz197/discoball/internal/sched"
	"github.com/tomz197/discoball/internal/speed"
)

// Controls is the surface renderers use to drive a session from their own
// goroutine. Decouples renderers from the concrete Session.
type Controls interface {
	Snapshot() *Snapshot
	PostClick() bool
	PostRemove(id uint64) bool
}

// Compile-time check that Session implements Controls.
var _ Controls = (*Session)(nil)

// Session is one disco ball: its speed, its prize shower and the clock that
// drives both. All mutation happens on one logical thread, either the
// caller of Click/Tick/Advance (manual driving) or the goroutine inside Run.
// Only Snapshot, PostClick, Subscribe and Close may be called from elsewhere.
type Session struct {
	id      string
	tuning  config.Tuning
	logger  *log.Logger
	sched   *sched.Scheduler
	driver  *sched.Driver
	speed   *speed.Controller
	spawner *particle.Spawner
	decay   *sched.Handle

	snapshot atomic.Pointer[Snapshot]

	listenerMu sync.RWMutex
	listeners  []func(Event)

	mu      sync.Mutex
	closed  bool
	runDone chan struct{}
	ended   bool // Torn down; owned by the loop thread
}

type sessionOptions struct {
	id        string
	start     time.Time
	rng       particle.RandSource
	logger    *log.Logger
	strict    bool
	listeners []func(Event)
}

// Option configures a Session.
type Option func(*sessionOptions)

// WithID sets the session id. Defaults to a random UUID.
func WithID(id string) Option {
	return func(o *sessionOptions) {
		o.id = id
	}
}

// WithClock sets the logical clock's starting time.
func WithClock(t time.Time) Option {
	return func(o *sessionOptions) {
		o.start = t
	}
}

// WithRand sets the random source for prize symbols and positions.
func WithRand(r particle.RandSource) Option {
	return func(o *sessionOptions) {
		o.rng = r
	}
}

// WithSeed seeds a math/rand source. A zero seed is time-based.
func WithSeed(seed int64) Option {
	return func(o *sessionOptions) {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		o.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(o *sessionOptions) {
		o.logger = l
	}
}

// WithStrict makes invariant violations panic instead of self-correcting.
func WithStrict(strict bool) Option {
	return func(o *sessionOptions) {
		o.strict = strict
	}
}

// WithListener registers a listener before the session starts.
func WithListener(fn func(Event)) Option {
	return func(o *sessionOptions) {
		o.listeners = append(o.listeners, fn)
	}
}

// NewSession creates a session at speed 0 with its decay tick scheduled.
func NewSession(t config.Tuning, opts ...Option) (*Session, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}

	o := sessionOptions{start: time.Now()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	logger := o.logger.With("session", o.id)
	checker := invariant.NewChecker(o.strict, logger)

	sc := sched.New(o.start)
	ctrl, err := speed.New(t.Speed(), speed.WithChecker(checker))
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:        o.id,
		tuning:    t,
		logger:    logger,
		sched:     sc,
		driver:    sched.NewDriver(sc),
		speed:     ctrl,
		listeners: o.listeners,
	}

	s.spawner, err = particle.NewSpawner(t.Particles(), sc, o.rng,
		particle.WithChecker(checker),
		particle.WithLogger(logger),
		particle.WithObserver(s.onParticleChange),
	)
	if err != nil {
		return nil, err
	}

	s.decay = sc.Every(t.DecayPeriod, s.Tick)
	s.publish()
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Tuning returns the session's tuning.
func (s *Session) Tuning() config.Tuning {
	return s.tuning
}

// Click registers one click. Loop thread only; see PostClick.
func (s *Session) Click() {
	if s.ended {
		return
	}
	if s.speed.RegisterClick() {
		s.setMaxSpeed(true)
	}
	s.publish()
}

// Tick applies one decay step. The session schedules it every DecayPeriod.
func (s *Session) Tick() {
	if s.ended {
		return
	}
	if s.speed.Tick() {
		s.setMaxSpeed(false)
	}
	s.publish()
}

// RemoveParticle takes a prize off screen early. Loop thread only.
func (s *Session) RemoveParticle(id uint64) bool {
	if s.ended {
		return false
	}
	return s.spawner.Remove(id)
}

// Advance drives the logical clock by hand. Must not be used while Run is active.
func (s *Session) Advance(d time.Duration) {
	if s.ended {
		return
	}
	s.sched.Advance(d)
}

// PostClick queues a click from any goroutine. It is applied on the loop
// thread once Run is active. Returns false if the click was dropped.
func (s *Session) PostClick() bool {
	return s.driver.Post(s.Click)
}

// PostRemove queues an early prize removal from any goroutine.
func (s *Session) PostRemove(id uint64) bool {
	return s.driver.Post(func() {
		s.RemoveParticle(id)
	})
}

// Snapshot returns the latest published state. Safe from any goroutine.
func (s *Session) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Subscribe adds a listener. Listeners run on the loop thread and must not block.
func (s *Session) Subscribe(fn func(Event)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Pending returns the number of outstanding timers. Loop thread only.
func (s *Session) Pending() int {
	return s.sched.Pending()
}

// Run drives the session from wall time until ctx is cancelled or Close is
// called, then tears it down. Blocks.
func (s *Session) Run(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.runDone != nil {
		s.mu.Unlock()
		return
	}
	done := make(chan struct{})
	s.runDone = done
	s.mu.Unlock()
	defer close(done)

	s.logger.Info("session started")
	s.driver.Run(ctx)
	s.teardown()
}

// Close stops the session and cancels every outstanding timer: the decay
// tick, the spawn cadence and each prize's expiry. Blocks until the loop has
// exited if Run is active. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	done := s.runDone
	s.mu.Unlock()

	s.driver.Stop()
	if done != nil {
		<-done
		return
	}
	s.teardown()
}

func (s *Session) teardown() {
	if s.ended {
		return
	}
	s.decay.Cancel()
	s.spawner.Close()
	s.sched.CancelAll()
	s.ended = true

	snap := s.buildSnapshot()
	snap.Closed = true
	s.snapshot.Store(snap)
	s.logger.Info("session ended", "clicks", s.speed.Clicks())
}

func (s *Session) setMaxSpeed(active bool) {
	typ := EventMaxSpeedLost
	if active {
		typ = EventMaxSpeedReached
		s.logger.Info("max speed reached", "clicks", s.speed.Clicks())
	} else {
		s.logger.Debug("max speed lost", "speed", s.speed.Speed())
	}
	s.emit(Event{Type: typ, At: s.sched.Now(), Speed: s.speed.Speed()})
	s.spawner.OnMaxSpeedChanged(active)
}

func (s *Session) onParticleChange(c particle.Change) {
	ev := Event{At: s.sched.Now(), Speed: s.speed.Speed(), Particle: c.Particle}
	switch c.Kind {
	case particle.ChangeSpawned:
		ev.Type = EventParticleSpawned
		s.logger.Debug("prize spawned", "id", c.Particle.ID, "symbol", c.Particle.Symbol)
	case particle.ChangeRemoved:
		ev.Type = EventParticleRemoved
		ev.Reason = c.Reason
		s.logger.Debug("prize removed", "id", c.Particle.ID, "reason", c.Reason)
	}
	s.emit(ev)
	s.publish()
}

func (s *Session) emit(ev Event) {
	s.listenerMu.RLock()
	listeners := s.listeners
	s.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (s *Session) publish() {
	s.snapshot.Store(s.buildSnapshot())
}

func (s *Session) buildSnapshot() *Snapshot {
	return &Snapshot{
		SessionID: s.id,
		Speed:     s.speed.Speed(),
		MaxSpeed:  s.speed.MaxSpeed(),
		AtMax:     s.speed.AtMax(),
		Clicks:    s.speed.Clicks(),
		Particles: s.spawner.Live(),
		Now:       s.sched.Now(),
	}
}
