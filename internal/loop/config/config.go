// Package config centralizes all tunable parameters.
package config

import "time"

// Speed. The ball reaches max speed after MaxSpeed/ClickIncrement clicks.
const (
	DefaultMaxSpeed       = 50.0
	DefaultClickIncrement = 2.0
	DefaultDecayRate      = 0.5 // Per decay tick
	DefaultDecayPeriod    = 100 * time.Millisecond
)

// Prizes
const (
	DefaultSpawnPeriod      = 200 * time.Millisecond
	DefaultSpawnGap         = 200 * time.Millisecond
	DefaultParticleLifetime = 3 * time.Second
	DefaultSpawnMin         = 10.0 // Percent of width
	DefaultSpawnMax         = 90.0 // Percent of width
	DefaultSpawnOrigin      = 40.0 // Percent of height, where the ball sits
	DefaultMaxLiveParticles = 0    // No cap
)

// View resolution - the visible viewport in logical units.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 120 // Logical viewport width
	ViewHeight = 80  // Logical viewport height (in sub-pixels, so 40 terminal rows)
)

// Max render resolution. Larger terminals get a centered, bordered area.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Ball rendering
const (
	BallRadius     = 22.0 // Logical units
	BallTileRows   = 10
	BallTileCols   = 12
	SpinDegPerUnit = 0.1 // Degrees advanced per frame per unit of speed
	PrizeFallRate  = 12.0
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Shutdown
const (
	ShutdownDisplaySeconds = 3.0 // Seconds to show shutdown message before auto-disconnect
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)
