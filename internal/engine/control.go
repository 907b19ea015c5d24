package engine

import (
	"context"
	"sync"
)

// Control is the pause/resume gate the Manager installs on a run,
// honored by the scheduler at wave boundaries only (spec §9 "pause
// checked at wave boundary; in-flight nodes finish; subsequent waves
// wait on the flag").
type Control struct {
	mu       sync.Mutex
	paused   bool
	resumeCh chan struct{}
}

func NewControl() *Control {
	return &Control{resumeCh: make(chan struct{})}
}

func (c *Control) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
}

func (c *Control) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		c.paused = false
		close(c.resumeCh)
		c.resumeCh = make(chan struct{})
	}
}

func (c *Control) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// WaitIfPaused blocks until resumed or ctx is done, returning ctx.Err()
// in the latter case. It is a no-op when not paused.
func (c *Control) WaitIfPaused(ctx context.Context) error {
	for {
		c.mu.Lock()
		paused := c.paused
		ch := c.resumeCh
		c.mu.Unlock()
		if !paused {
			return nil
		}
		select {
		case <-ch:
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
