package host

import (
	"sync"
	"testing"
	"time"
)

func TestGate_EnterExit(t *testing.T) {
	g := NewGate()
	if g.Busy() {
		t.Fatal("new gate is busy")
	}

	g.Enter()
	g.Enter()
	if got := g.InFlight(); got != 2 {
		t.Errorf("InFlight() = %d, want 2", got)
	}

	g.Exit()
	if !g.Busy() {
		t.Error("gate idle with one run in flight")
	}
	g.Exit()
	g.Exit() // unmatched, ignored
	if g.Busy() || g.InFlight() != 0 {
		t.Errorf("InFlight() = %d after matching exits, want 0", g.InFlight())
	}
}

func TestGate_WaitIdle(t *testing.T) {
	tests := []struct {
		name     string
		hold     time.Duration
		timeout  time.Duration
		wantIdle bool
	}{
		{name: "idle gate", hold: 0, timeout: time.Second, wantIdle: true},
		{name: "finishes in time", hold: 50 * time.Millisecond, timeout: time.Second, wantIdle: true},
		{name: "times out", hold: time.Second, timeout: 50 * time.Millisecond, wantIdle: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate()
			var wg sync.WaitGroup
			if tt.hold > 0 {
				g.Enter()
				wg.Add(1)
				go func() {
					defer wg.Done()
					time.Sleep(tt.hold)
					g.Exit()
				}()
			}

			if got := g.WaitIdle(tt.timeout); got != tt.wantIdle {
				t.Errorf("WaitIdle() = %v, want %v", got, tt.wantIdle)
			}
			wg.Wait()
		})
	}
}

func TestGate_ReusedAfterIdle(t *testing.T) {
	g := NewGate()
	g.Enter()
	g.Exit()

	g.Enter()
	if g.WaitIdle(20 * time.Millisecond) {
		t.Error("WaitIdle() reported idle for a second, unfinished run")
	}
	g.Exit()
	if !g.WaitIdle(time.Second) {
		t.Error("WaitIdle() = false after exit")
	}
}

func TestGate_CloseReleasesWaiters(t *testing.T) {
	g := NewGate()
	g.Enter()

	done := make(chan bool)
	go func() {
		done <- g.WaitIdle(time.Minute)
	}()

	time.Sleep(20 * time.Millisecond)
	g.Close()
	g.Close()

	select {
	case idle := <-done:
		if idle {
			t.Error("WaitIdle() = true while a run is in flight")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not release WaitIdle")
	}
}
