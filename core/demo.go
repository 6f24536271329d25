package core

import "github.com/signalsfoundry/traffic-simulator/model"

// BuildDemoWorld populates a world with the stock demo town: a 3x3 two-way
// grid with residences on the corners, factories on the edges and center, and
// two shops. It is the default headless scenario and the fixture most
// end-to-end tests run against.
func BuildDemoWorld(w *World) {
	const spacing = 20.0

	var grid [3][3]model.IntersectionID
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			grid[row][col] = w.AddIntersection(model.Position{
				X: (float64(col) - 1) * spacing,
				Z: (float64(row) - 1) * spacing,
			})
		}
	}

	for row := 0; row < 3; row++ {
		for col := 0; col < 2; col++ {
			w.AddTwoWayRoad(grid[row][col], grid[row][col+1])
		}
	}
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			w.AddTwoWayRoad(grid[row][col], grid[row+1][col])
		}
	}

	// Residences hang off the four corners.
	residences := []struct {
		anchor model.IntersectionID
		pos    model.Position
	}{
		{grid[0][0], model.Position{X: -30, Z: -30}},
		{grid[0][2], model.Position{X: 30, Z: -30}},
		{grid[2][0], model.Position{X: -30, Z: 30}},
		{grid[2][2], model.Position{X: 30, Z: 30}},
	}
	for _, r := range residences {
		at := w.AddIntersection(r.pos)
		w.AddTwoWayRoad(r.anchor, at)
		w.AddResidence(at)
	}

	// Factories off the edge midpoints and two off the center.
	factories := []struct {
		anchor model.IntersectionID
		pos    model.Position
	}{
		{grid[0][1], model.Position{Z: -35}},
		{grid[1][0], model.Position{X: -35}},
		{grid[1][2], model.Position{X: 35}},
		{grid[2][1], model.Position{Z: 35}},
		{grid[1][1], model.Position{X: -12, Z: -12}},
		{grid[1][1], model.Position{X: 12, Z: 12}},
	}
	for _, f := range factories {
		at := w.AddIntersection(f.pos)
		w.AddTwoWayRoad(f.anchor, at)
		w.AddFactory(at)
	}

	shops := []struct {
		anchor model.IntersectionID
		pos    model.Position
	}{
		{grid[0][0], model.Position{X: -30, Z: -25}},
		{grid[2][2], model.Position{X: 30, Z: 25}},
	}
	for _, s := range shops {
		at := w.AddIntersection(s.pos)
		w.AddTwoWayRoad(s.anchor, at)
		w.AddShop(at)
	}
}
