// Package invariant classifies logic defects in the toy's core.
//
// A violation is never a user-facing error. In strict mode (tests,
// development builds) it panics with a *Violation so the defect surfaces at
// the point it happened. Otherwise it is logged and the caller corrects the
// state (clamping speed, skipping a duplicate insert) and carries on.
package invariant

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Code identifies the violated invariant.
type Code string

const (
	// CodeSpeedOutOfRange indicates speed left [0, MaxSpeed].
	CodeSpeedOutOfRange Code = "SPEED_OUT_OF_RANGE"

	// CodeDuplicateID indicates a particle id was assigned twice.
	CodeDuplicateID Code = "DUPLICATE_PARTICLE_ID"

	// CodeDoubleRemoval indicates a particle was removed more than once.
	CodeDoubleRemoval Code = "DOUBLE_REMOVAL"
)

// Violation is the panic value and error type for a broken invariant.
type Violation struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

// IsViolation reports whether err is a *Violation, optionally of one of the given codes.
func IsViolation(err error, codes ...Code) bool {
	var v *Violation
	if !errors.As(err, &v) {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if v.Code == c {
			return true
		}
	}
	return false
}

// Checker reports violations.
type Checker struct {
	Strict bool
	Logger *log.Logger
}

// NewChecker returns a checker. A nil logger discards output.
func NewChecker(strict bool, logger *log.Logger) *Checker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Checker{Strict: strict, Logger: logger}
}

// Check reports a violation when ok is false and returns ok, so callers can
// write `if !c.Check(...) { correct() }`.
func (c *Checker) Check(ok bool, code Code, format string, args ...any) bool {
	if ok {
		return true
	}
	v := &Violation{Code: code, Message: fmt.Sprintf(format, args...)}
	if c == nil {
		panic(v)
	}
	if c.Strict {
		panic(v)
	}
	c.Logger.Warn("invariant violated, correcting", "code", string(v.Code), "detail", v.Message)
	return false
}
