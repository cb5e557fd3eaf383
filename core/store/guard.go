package store

import (
	"sync"

	"github.com/trezcool/masomo-portal/core"
)

// Guard lets at most one submission through at a time.
// It is the equivalent of disabling a submit button while its request is pending.
type Guard struct {
	mu      sync.Mutex
	pending bool
}

// Pending reports whether a submission is in flight.
func (g *Guard) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// Do runs fn unless another submission is pending, in which case core.ErrBusy is returned
// and fn is not called.
func (g *Guard) Do(fn func() error) error {
	g.mu.Lock()
	if g.pending {
		g.mu.Unlock()
		return core.ErrBusy
	}
	g.pending = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.pending = false
		g.mu.Unlock()
	}()
	return fn()
}
