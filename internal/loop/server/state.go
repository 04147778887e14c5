package server

import (
	"time"

	"github.com/tomz197/discoball/internal/particle"
)

// Snapshot is an immutable view of a session for rendering.
// A new one is published after every state change.
type Snapshot struct {
	SessionID string
	Speed     float64
	MaxSpeed  float64
	AtMax     bool
	Clicks    int
	Particles []particle.Particle // Spawn order
	Now       time.Time           // Logical time the snapshot was taken
	Closed    bool                // Session has been torn down
}

// Percent returns speed as a percentage of max speed.
func (s *Snapshot) Percent() float64 {
	if s.MaxSpeed <= 0 {
		return 0
	}
	return s.Speed / s.MaxSpeed * 100
}

// Renderer consumes snapshots. Renderers never feed back into a session
// except through clicks.
type Renderer interface {
	Render(snapshot *Snapshot) error
}

// EventType identifies the type of session event.
type EventType int

const (
	EventMaxSpeedReached EventType = iota
	EventMaxSpeedLost
	EventParticleSpawned
	EventParticleRemoved
)

// String implements fmt.Stringer.
func (t EventType) String() string {
	switch t {
	case EventMaxSpeedReached:
		return "max_speed_reached"
	case EventMaxSpeedLost:
		return "max_speed_lost"
	case EventParticleSpawned:
		return "particle_spawned"
	case EventParticleRemoved:
		return "particle_removed"
	default:
		return "unknown"
	}
}

// Event is pushed to listeners on the session's loop goroutine.
type Event struct {
	Type     EventType
	At       time.Time
	Speed    float64
	Particle particle.Particle     // Spawn and removal events
	Reason   particle.RemoveReason // Removal events
}
