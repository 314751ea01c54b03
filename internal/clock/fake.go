package clock

import "time"

// FakeClock is a Clock frozen at a chosen instant. Tests that exercise
// grace periods or token expiry move it forward with Advance.
type FakeClock struct {
	now time.Time
}

// NewFakeClock returns a clock pinned to t, normalized to UTC like the
// system clock.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d. Not safe for concurrent use.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
