package alignment

import "sync"

// Cached wraps an Alignable and keeps the window masses it computed, so a
// sequence aligned many times pays for them once. It is safe for concurrent
// use when the wrapped value is.
type Cached struct {
	Alignable

	mu     sync.Mutex
	masses map[int]*WindowMasses
}

// NewCached wraps a.
func NewCached(a Alignable) *Cached {
	return &Cached{Alignable: a, masses: make(map[int]*WindowMasses)}
}

func (c *Cached) CalculateMasses(steps int) *WindowMasses {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := c.masses[steps]; ok {
		return w
	}
	w := c.Alignable.CalculateMasses(steps)
	c.masses[steps] = w
	return w
}

// Validate forwards to the wrapped value when it can be malformed.
func (c *Cached) Validate() error {
	return validateShape(c.Alignable)
}
