package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/signalsfoundry/traffic-simulator/core"
	"github.com/signalsfoundry/traffic-simulator/timectrl"
)

// TestIntegration_DemoWorldCommute drives the demo world through the time
// controller and checks that the economy actually produces traffic.
func TestIntegration_DemoWorldCommute(t *testing.T) {
	world := core.New(core.Config{Seed: 99})
	core.BuildDemoWorld(world)

	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	tc := timectrl.NewTimeController(start, 250*time.Millisecond, timectrl.Accelerated)

	sawCars := false
	tc.AddListener(func(_ time.Time, delta float64) {
		world.Tick(delta)
		if world.CarCount() > 0 {
			sawCars = true
		}
	})

	executed := tc.Run(context.Background(), 600)
	if executed != 600 {
		t.Fatalf("executed = %d, want 600", executed)
	}
	if !sawCars {
		t.Fatalf("expected the demo world to spawn at least one vehicle in 600 ticks")
	}
	if got, want := world.Clock(), 150.0; got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("Clock() = %v, want %v", got, want)
	}
}

func TestRenderMapShowsEntities(t *testing.T) {
	world := core.New(core.Config{Seed: 1})
	core.BuildDemoWorld(world)

	out := renderMap(world, 72, 28)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 28 {
		t.Fatalf("rendered %d rows, want 28", len(lines))
	}
	for _, glyph := range []string{"+", ".", "R", "F", "S"} {
		if !strings.Contains(out, glyph) {
			t.Fatalf("expected glyph %q in rendered map:\n%s", glyph, out)
		}
	}
}

func TestRenderMapEmptyWorld(t *testing.T) {
	world := core.New(core.Config{Seed: 1})
	if out := renderMap(world, 10, 5); out != "(empty world)\n" {
		t.Fatalf("renderMap(empty) = %q", out)
	}
}
