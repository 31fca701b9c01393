package engine

import (
	"sync"
	"time"
)

// OffsetClock is a clock pinned to a base instant plus a settable offset.
// Offline renderers use it to sample a scene at exact times.
type OffsetClock struct {
	mu     sync.Mutex
	base   time.Time
	offset time.Duration
}

func NewOffsetClock() *OffsetClock {
	return &OffsetClock{base: time.Unix(0, 0)}
}

func (c *OffsetClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base.Add(c.offset)
}

// Set moves the clock to base+d.
func (c *OffsetClock) Set(d time.Duration) {
	c.mu.Lock()
	c.offset = d
	c.mu.Unlock()
}
