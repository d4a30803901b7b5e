package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source. Booking scenarios pin services to a
// known instant so that desk-day comparisons and retention cutoffs are
// reproducible.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock set to start. A zero start falls back to the
// shared ReferenceTime so fixtures and services agree on "today".
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now reports the instant the clock currently holds.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc adapts the clock to the now-function signature the services take.
// A nil clock yields the real time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to an absolute instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance shifts the clock forward by d, e.g. to cross a booking date or a
// retention boundary, and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	updated := c.current
	c.mu.Unlock()
	return updated
}

// Current is an alias for Now used where the caller only inspects the frozen
// instant and never advances it.
func (c *Clock) Current() time.Time {
	return c.Now()
}
