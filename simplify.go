package main

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// SimplifyPath thins a coordinate polyline into autopilot waypoints with
// Douglas-Peucker. The first and last points are always kept. The input is not modified.
func SimplifyPath(path orb.LineString, tolerance float64) orb.LineString {
	waypoints := path.Clone()
	if tolerance <= 0 || len(waypoints) <= 2 {
		return waypoints
	}
	return simplify.DouglasPeucker(tolerance).LineString(waypoints)
}
