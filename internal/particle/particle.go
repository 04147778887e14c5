// Package particle implements the prize shower: a rate-limited spawner that
// runs while the ball is at max speed, and the live set of prizes, each of
// which removes itself after a fixed lifetime.
package particle

import "time"

// DefaultCatalog is the set of prize symbols a particle is drawn from.
var DefaultCatalog = []string{"🎁", "🎉", "⭐", "💎", "🏆", "🎊", "✨", "🌟"}

// Particle is a single falling prize.
type Particle struct {
	ID        uint64    // Unique for the session, never reused
	Symbol    string    // Drawn from the catalog
	X         float64   // Horizontal position, percent of width
	Y         float64   // Spawn origin, percent of height
	CreatedAt time.Time // Logical time of creation
}

// Age returns how long the particle has been alive at now.
func (p Particle) Age(now time.Time) time.Duration {
	return now.Sub(p.CreatedAt)
}

// RandSource is the randomness the spawner draws from. *math/rand.Rand satisfies it;
// tests inject a seeded or scripted source for replay.
type RandSource interface {
	Intn(n int) int
	Float64() float64
}

// RemoveReason says why a particle left the live set.
type RemoveReason int

const (
	ReasonExpired RemoveReason = iota // Lifetime elapsed
	ReasonRemoved                     // Explicit early removal
)

// String implements fmt.Stringer.
func (r RemoveReason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// ChangeKind identifies a live-set change.
type ChangeKind int

const (
	ChangeSpawned ChangeKind = iota
	ChangeRemoved
)

// Change is delivered to the spawner's observer whenever the live set changes.
type Change struct {
	Kind     ChangeKind
	Particle Particle
	Reason   RemoveReason // Only meaningful for ChangeRemoved
}
