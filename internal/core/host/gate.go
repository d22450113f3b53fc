package host

import (
	"sync"
	"time"
)

// Gate tracks whether protected work is in flight.
//
// Enter and Exit bracket each run; WaitIdle lets a shutdown path wait, with a
// bound, for all runs to finish.
type Gate struct {
	mu       sync.Mutex
	inFlight int
	idle     chan struct{}
	closed   chan struct{}
	once     sync.Once
}

// NewGate returns an idle gate.
func NewGate() *Gate {
	idle := make(chan struct{})
	close(idle)
	return &Gate{
		idle:   idle,
		closed: make(chan struct{}),
	}
}

// Enter marks one more run as in flight.
func (g *Gate) Enter() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight == 0 {
		g.idle = make(chan struct{})
	}
	g.inFlight++
}

// Exit marks one run as finished. Calls without a matching Enter are ignored.
func (g *Gate) Exit() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight == 0 {
		return
	}
	g.inFlight--
	if g.inFlight == 0 {
		close(g.idle)
	}
}

// Busy reports whether any run is in flight.
func (g *Gate) Busy() bool {
	return g.InFlight() > 0
}

// InFlight returns the number of runs in flight.
func (g *Gate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// WaitIdle blocks until no run is in flight, timeout elapses or the gate is
// closed. It reports whether the gate was idle; callers are expected to
// proceed either way.
func (g *Gate) WaitIdle(timeout time.Duration) bool {
	g.mu.Lock()
	idle := g.idle
	g.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-idle:
		return true
	case <-g.closed:
		return !g.Busy()
	case <-timer.C:
		return false
	}
}

// Close releases every pending and future WaitIdle call. Safe to call more
// than once.
func (g *Gate) Close() {
	g.once.Do(func() {
		close(g.closed)
	})
}
