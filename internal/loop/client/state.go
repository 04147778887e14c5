package client

import (
	"time"

	"github.com/tomz197/discoball/internal/draw"
	"github.com/tomz197/discoball/internal/input"
	"github.com/tomz197/discoball/internal/object"
)

// Phase is the screen a client is showing.
type Phase int

const (
	PhaseStart    Phase = iota // Title screen
	PhaseSpinning              // The ball
	PhaseShutdown              // Host is shutting down
)

// ClientState holds per-connection presentation state. The disco ball's own
// state lives in the session; this is only what this viewer needs.
type ClientState struct {
	Input     input.Input
	View      object.Screen // Logical viewport
	Phase     Phase
	Running   bool
	Muted     bool
	wasAtMax  bool    // AtMax in the previous frame, for sparkle bursts
	elapsed   float64 // Seconds since the client started, drives blinking
	delta     time.Duration
	prevPhase Phase

	termSizeFunc  draw.TermSizeFunc
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown
	isInactive    bool
	wasInactive   bool
}

// NewClientState creates a client state on the title screen.
func NewClientState() *ClientState {
	return &ClientState{
		Phase:   PhaseStart,
		Running: true,
	}
}
