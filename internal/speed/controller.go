// Package speed implements the disco ball's spin speed: clicks push it up,
// a periodic tick decays it, and reaching the ceiling raises the max-speed signal.
package speed

import (
	"errors"
	"fmt"

	"github.com/tomz197/discoball/internal/invariant"
)

// Config holds the controller's constants.
type Config struct {
	MaxSpeed       float64 // Ceiling for speed
	ClickIncrement float64 // Added per click
	DecayRate      float64 // Subtracted per tick
}

// Validate checks the constants are usable.
func (c Config) Validate() error {
	var errs []error
	if c.MaxSpeed <= 0 {
		errs = append(errs, fmt.Errorf("max speed must be positive, got %v", c.MaxSpeed))
	}
	if c.ClickIncrement <= 0 {
		errs = append(errs, fmt.Errorf("click increment must be positive, got %v", c.ClickIncrement))
	}
	if c.DecayRate < 0 {
		errs = append(errs, fmt.Errorf("decay rate must not be negative, got %v", c.DecayRate))
	}
	return errors.Join(errs...)
}

// Controller owns the current speed. It is not safe for concurrent use;
// callers run it on the scheduler's goroutine.
type Controller struct {
	cfg     Config
	speed   float64
	clicks  int
	checker *invariant.Checker
}

// Option configures a Controller.
type Option func(*Controller)

// WithChecker sets how invariant violations are reported.
func WithChecker(c *invariant.Checker) Option {
	return func(ctrl *Controller) {
		ctrl.checker = c
	}
}

// New creates a controller at speed 0.
func New(cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid speed config: %w", err)
	}
	c := &Controller{
		cfg:     cfg,
		checker: invariant.NewChecker(false, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RegisterClick adds one click increment, clamped to the ceiling.
// Returns true when the click raised the max-speed signal.
func (c *Controller) RegisterClick() bool {
	wasMax := c.AtMax()
	c.clicks++
	c.speed = min(c.cfg.MaxSpeed, c.speed+c.cfg.ClickIncrement)
	c.verify()
	return !wasMax && c.AtMax()
}

// Tick applies one decay step, floored at 0.
// Returns true when the tick dropped the max-speed signal.
func (c *Controller) Tick() bool {
	wasMax := c.AtMax()
	c.speed = max(0, c.speed-c.cfg.DecayRate)
	c.verify()
	return wasMax && !c.AtMax()
}

// Speed returns the current speed.
func (c *Controller) Speed() float64 {
	return c.speed
}

// MaxSpeed returns the ceiling.
func (c *Controller) MaxSpeed() float64 {
	return c.cfg.MaxSpeed
}

// AtMax reports whether speed has reached the ceiling.
func (c *Controller) AtMax() bool {
	return c.speed >= c.cfg.MaxSpeed
}

// Clicks returns the number of clicks registered this session.
func (c *Controller) Clicks() int {
	return c.clicks
}

// Percent returns speed as a percentage of the ceiling.
func (c *Controller) Percent() float64 {
	return c.speed / c.cfg.MaxSpeed * 100
}

func (c *Controller) verify() {
	if !c.checker.Check(c.speed >= 0 && c.speed <= c.cfg.MaxSpeed,
		invariant.CodeSpeedOutOfRange, "speed %v outside [0, %v]", c.speed, c.cfg.MaxSpeed) {
		c.speed = min(max(c.speed, 0), c.cfg.MaxSpeed)
	}
}
