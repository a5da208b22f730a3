package rng

import "time"

// Clock abstracts wall-clock time so SA's time budget can be driven by a
// deterministic virtual clock in tests (§8 Reproducibility:
// same seed + same inputs + same time budget, with wall clock replaced by
// a deterministic virtual clock driven by iteration count, must produce
// an identical best solution).
type Clock interface {
	Now() time.Time
}

// WallClock is the production Clock backed by time.Now.
type WallClock struct{}

// Now returns the current wall-clock time.
func (WallClock) Now() time.Time { return time.Now() }

// VirtualClock advances only when Tick is called, giving tests a fully
// deterministic notion of elapsed time independent of scheduling jitter.
type VirtualClock struct {
	now time.Time
}

// NewVirtualClock returns a VirtualClock starting at the Unix epoch.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{now: time.Unix(0, 0)}
}

// Now returns the clock's current simulated time.
func (c *VirtualClock) Now() time.Time { return c.now }

// Tick advances the simulated time by d.
func (c *VirtualClock) Tick(d time.Duration) { c.now = c.now.Add(d) }
