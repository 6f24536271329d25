// Package timectrl drives the simulation loop. It converts wall-clock ticks
// (or an accelerated tight loop) into fixed-delta listener callbacks, so the
// world advances by the same simulated step regardless of how fast the host
// runs.
package timectrl

import (
	"context"
	"sync"
	"time"
)

// SimClock is read-only access to simulation time, for components that need
// the current sim instant without the ability to drive it.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances one step per wall-clock tick interval.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still
	// stepping by the fixed tick.
	Accelerated
)

// TimeController drives simulation time and notifies registered listeners
// once per step with the fixed delta in seconds. It implements SimClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	// currentTime tracks the current simulation time. It is updated as the
	// controller advances.
	currentTime time.Time

	listeners []func(simTime time.Time, delta float64)
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime overrides the current simulation time. Intended for harnesses that
// place the clock before running.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// AddListener registers a callback invoked on every step. Listeners must be
// registered before the controller starts.
func (tc *TimeController) AddListener(fn func(simTime time.Time, delta float64)) {
	tc.listeners = append(tc.listeners, fn)
}

// Run advances the simulation for the given number of steps, blocking until
// they complete or the context is cancelled. steps <= 0 means run until
// cancelled. It returns the number of steps executed.
func (tc *TimeController) Run(ctx context.Context, steps int) int {
	delta := tc.Tick.Seconds()

	var ticker *time.Ticker
	if tc.Mode == RealTime {
		ticker = time.NewTicker(tc.Tick)
		defer ticker.Stop()
	}

	executed := 0
	for steps <= 0 || executed < steps {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return executed
			case <-ticker.C:
			}
		} else {
			select {
			case <-ctx.Done():
				return executed
			default:
			}
		}

		tc.mu.Lock()
		tc.currentTime = tc.currentTime.Add(tc.Tick)
		now := tc.currentTime
		tc.mu.Unlock()

		for _, fn := range tc.listeners {
			fn(now, delta)
		}
		executed++
	}
	return executed
}

// Start runs the controller in a separate goroutine and returns a channel
// that is closed when it finishes.
func (tc *TimeController) Start(ctx context.Context, steps int) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		tc.Run(ctx, steps)
	}()
	return done
}
