// Package sched provides the single logical thread that drives the toy.
//
// A Scheduler owns a logical clock and a queue of timers. Timers never fire
// on their own: the host advances the clock (Advance / AdvanceTo), and every
// timer that falls due runs to completion, in due order, on the calling
// goroutine. Tests advance the clock by hand; Driver advances it from wall
// time. Either way no two callbacks ever overlap, so the state they touch
// needs no locking.
package sched

import (
	"container/heap"
	"time"
)

// Clock reports the current logical time.
type Clock interface {
	Now() time.Time
}

// Handle is an owned registration returned by After and Every.
// Cancelling it guarantees the callback will not run again.
type Handle struct {
	s        *Scheduler
	due      time.Time
	period   time.Duration // 0 for one-shot timers
	seq      uint64        // registration order, breaks ties between equal due times
	fn       func()
	index    int // position in the heap, -1 when not queued
	canceled bool
}

// Cancel stops the timer. It reports true only on the call that actually
// removed a pending timer; cancelling a fired or already cancelled timer
// is a no-op.
func (h *Handle) Cancel() bool {
	if h == nil || h.canceled {
		return false
	}
	h.canceled = true
	if h.index < 0 {
		return false
	}
	heap.Remove(&h.s.queue, h.index)
	return true
}

// Active reports whether the timer is still scheduled to fire.
func (h *Handle) Active() bool {
	return h != nil && !h.canceled && h.index >= 0
}

// Due returns the next time the timer fires.
func (h *Handle) Due() time.Time {
	return h.due
}

// Scheduler is a deterministic timer queue on a logical clock.
// It is not safe for concurrent use; see Driver for a goroutine-safe host.
type Scheduler struct {
	now     time.Time
	queue   timerQueue
	nextSeq uint64
}

// Compile-time check that Scheduler implements Clock.
var _ Clock = (*Scheduler)(nil)

// New creates a scheduler whose clock starts at start.
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the current logical time.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// After schedules fn to run once, d from now.
func (s *Scheduler) After(d time.Duration, fn func()) *Handle {
	return s.schedule(d, 0, fn)
}

// Every schedules fn to run every d, first firing d from now.
// A non-positive period is raised to one nanosecond so Advance always terminates.
func (s *Scheduler) Every(d time.Duration, fn func()) *Handle {
	if d <= 0 {
		d = time.Nanosecond
	}
	return s.schedule(d, d, fn)
}

func (s *Scheduler) schedule(d, period time.Duration, fn func()) *Handle {
	if d < 0 {
		d = 0
	}
	h := &Handle{
		s:      s,
		due:    s.now.Add(d),
		period: period,
		seq:    s.nextSeq,
		fn:     fn,
		index:  -1,
	}
	s.nextSeq++
	heap.Push(&s.queue, h)
	return h
}

// Advance moves the clock forward by d, firing every timer that falls due.
func (s *Scheduler) Advance(d time.Duration) int {
	return s.AdvanceTo(s.now.Add(d))
}

// AdvanceTo moves the clock to t, firing due timers in order. The clock is set
// to each timer's due time before its callback runs. Returns the number of
// callbacks run. Moving backwards is ignored.
func (s *Scheduler) AdvanceTo(t time.Time) int {
	fired := 0
	for len(s.queue) > 0 {
		h := s.queue[0]
		if h.due.After(t) {
			break
		}
		heap.Pop(&s.queue)
		if h.due.After(s.now) {
			s.now = h.due
		}
		if h.period > 0 {
			h.due = h.due.Add(h.period)
			h.seq = s.nextSeq
			s.nextSeq++
			heap.Push(&s.queue, h)
		}
		h.fn()
		fired++
	}
	if t.After(s.now) {
		s.now = t
	}
	return fired
}

// NextDue returns the due time of the earliest pending timer.
func (s *Scheduler) NextDue() (time.Time, bool) {
	if len(s.queue) == 0 {
		return time.Time{}, false
	}
	return s.queue[0].due, true
}

// Pending returns the number of scheduled timers.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// CancelAll cancels every pending timer.
func (s *Scheduler) CancelAll() {
	for len(s.queue) > 0 {
		h := heap.Pop(&s.queue).(*Handle)
		h.canceled = true
	}
}

// timerQueue is a min-heap ordered by (due, seq).
type timerQueue []*Handle

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	h := x.(*Handle)
	h.index = len(*q)
	*q = append(*q, h)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	h := old[n-1]
	old[n-1] = nil
	h.index = -1
	*q = old[:n-1]
	return h
}
