package events

import "sync"

// Collector retains emitted events in memory so callers (tests, the RPC event
// feed) can inspect them after the fact. The zero value is ready to use.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Emit implements the Emitter interface.
func (c *Collector) Emit(evt Event) {
	if c == nil || evt == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
}

// Events returns a snapshot of everything emitted so far.
func (c *Collector) Events() []Event {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Reset discards the retained events.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}
