package gesture

import "time"

// Continuity measures how long a condition has been continuously true.
// A single false observation resets the measurement: both recognizers
// demand unbroken evidence, not merely frequent evidence.
type Continuity struct {
	since  time.Time
	active bool
}

// Observe records the condition at the given instant and returns the
// duration it has been continuously true, zero if it is false now.
func (c *Continuity) Observe(ok bool, now time.Time) time.Duration {
	if !ok {
		c.active = false
		return 0
	}
	if !c.active {
		c.active = true
		c.since = now
	}
	return now.Sub(c.since)
}

// Active reports whether the condition was true at the last observation.
func (c *Continuity) Active() bool {
	return c.active
}

// Since returns the instant the condition became continuously true.
// Only meaningful while Active.
func (c *Continuity) Since() time.Time {
	return c.since
}

// Reset forgets any accumulated duration.
func (c *Continuity) Reset() {
	c.active = false
	c.since = time.Time{}
}
