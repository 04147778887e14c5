package particle

import "github.com/tomz197/discoball/internal/sched"

type liveEntry struct {
	p      Particle
	expiry *sched.Handle
}

// LiveSet holds the particles currently on screen, keyed by id.
// Iteration follows insertion order so snapshots are deterministic.
type LiveSet struct {
	byID  map[uint64]*liveEntry
	order []uint64
}

// NewLiveSet creates an empty set.
func NewLiveSet() *LiveSet {
	return &LiveSet{byID: make(map[uint64]*liveEntry)}
}

// add inserts p. It refuses ids that are already live.
func (s *LiveSet) add(p Particle, expiry *sched.Handle) bool {
	if _, ok := s.byID[p.ID]; ok {
		return false
	}
	s.byID[p.ID] = &liveEntry{p: p, expiry: expiry}
	s.order = append(s.order, p.ID)
	return true
}

// take removes and returns the entry for id.
func (s *LiveSet) take(id uint64) (*liveEntry, bool) {
	e, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return e, true
}

// Get returns the live particle with the given id.
func (s *LiveSet) Get(id uint64) (Particle, bool) {
	e, ok := s.byID[id]
	if !ok {
		return Particle{}, false
	}
	return e.p, true
}

// Contains reports whether id is live.
func (s *LiveSet) Contains(id uint64) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of live particles.
func (s *LiveSet) Len() int {
	return len(s.order)
}

// Particles returns a copy of the live particles in insertion order.
func (s *LiveSet) Particles() []Particle {
	out := make([]Particle, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].p)
	}
	return out
}

// clear drops every entry, cancelling pending expiries.
func (s *LiveSet) clear() {
	for _, e := range s.byID {
		e.expiry.Cancel()
	}
	clear(s.byID)
	s.order = s.order[:0]
}
