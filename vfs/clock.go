package vfs

import (
	"time"

	"github.com/jacobsa/timeutil"
)

// Clock supplies wall-clock time. precision is the coarsest acceptable
// resolution; 0 asks for the finest the clock has.
type Clock interface {
	Now(precision time.Duration) time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func(precision time.Duration) time.Time

// Now calls f(precision).
func (f ClockFunc) Now(precision time.Duration) time.Time {
	return f(precision)
}

// SystemClock is a Clock over a timeutil.Clock. Readings are truncated to the
// requested precision.
type SystemClock struct {
	clock timeutil.Clock
}

// NewSystemClock wraps c. Pass timeutil.RealClock() in production and a
// *timeutil.SimulatedClock in tests.
func NewSystemClock(c timeutil.Clock) *SystemClock {
	return &SystemClock{clock: c}
}

// Now implements Clock.
func (c *SystemClock) Now(precision time.Duration) time.Time {
	t := c.clock.Now()
	if precision > 0 {
		t = t.Truncate(precision)
	}
	return t
}
