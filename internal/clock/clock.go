package clock

import "time"

// Clock abstracts time lookups so cache expiry and token lifetimes
// can be tested without the system clock
type Clock interface {
	// Now returns the current time
	Now() time.Time
}

// SystemClock uses the real system clock
type SystemClock struct{}

// NewSystemClock creates a clock backed by the real system time
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current system time
func (c *SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a controllable clock for testing
// Tests set a starting point and advance it explicitly
type ManualClock struct {
	current time.Time
}

// NewManualClock creates a manual clock starting at the given time
// A zero time starts the clock at time.Now()
func NewManualClock(start time.Time) *ManualClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &ManualClock{current: start}
}

// Now returns the clock's current time
func (c *ManualClock) Now() time.Time {
	return c.current
}

// Set moves the clock to a specific time
func (c *ManualClock) Set(t time.Time) {
	c.current = t
}

// Advance moves the clock forward by the given duration
func (c *ManualClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
