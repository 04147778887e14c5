package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// maxIdle bounds how long the driver sleeps when no timer is pending.
const maxIdle = time.Second

// Driver hosts a Scheduler on a single goroutine and advances it from wall time.
// Other goroutines hand work to that goroutine with Post.
type Driver struct {
	s       *Scheduler
	tasks   chan func()
	stopCh  chan struct{}
	stopOne sync.Once
	stopped atomic.Bool
	running atomic.Bool
	wallNow func() time.Time
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithQueueSize sets how many posted tasks may wait before Post starts dropping.
func WithQueueSize(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.tasks = make(chan func(), n)
		}
	}
}

// WithWallClock replaces time.Now as the driver's wall clock.
func WithWallClock(now func() time.Time) DriverOption {
	return func(d *Driver) {
		d.wallNow = now
	}
}

// NewDriver creates a driver for s. The scheduler must not be touched from any
// other goroutine once Run has started.
func NewDriver(s *Scheduler, opts ...DriverOption) *Driver {
	d := &Driver{
		s:       s,
		tasks:   make(chan func(), 256),
		stopCh:  make(chan struct{}),
		wallNow: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Post queues fn to run on the loop goroutine. It never blocks: it returns
// false when the driver is stopped or the queue is full.
func (d *Driver) Post(fn func()) bool {
	if d.stopped.Load() {
		return false
	}
	select {
	case d.tasks <- fn:
		return true
	default:
		return false
	}
}

// Running reports whether Run is currently executing.
func (d *Driver) Running() bool {
	return d.running.Load()
}

// Stop makes Run return. Safe to call more than once and from any goroutine.
func (d *Driver) Stop() {
	d.stopOne.Do(func() {
		d.stopped.Store(true)
		close(d.stopCh)
	})
}

// Run advances the scheduler in step with wall time until ctx is cancelled or
// Stop is called. Timers and posted tasks all execute on this goroutine.
func (d *Driver) Run(ctx context.Context) {
	if !d.running.CompareAndSwap(false, true) {
		return
	}
	defer d.running.Store(false)

	wallStart := d.wallNow()
	logicalStart := d.s.Now()
	logicalNow := func() time.Time {
		return logicalStart.Add(d.wallNow().Sub(wallStart))
	}

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for {
		now := logicalNow()
		d.s.AdvanceTo(now)

		wait := maxIdle
		if due, ok := d.s.NextDue(); ok {
			wait = due.Sub(now)
			if wait < 0 {
				wait = 0
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case <-d.stopCh:
			return
		case fn := <-d.tasks:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			d.s.AdvanceTo(logicalNow())
			fn()
		case <-timer.C:
		}
	}
}
