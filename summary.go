package main

import (
	"fmt"
)

// RouteSummary aggregates what a route costs to fly. The per-cell slices are
// parallel to the route: index i describes the vehicle on arrival at route[i].
type RouteSummary struct {
	TotalTime        float64   `json:"totalTimeSeconds"`
	TotalEnergy      float64   `json:"totalEnergyWh"`
	ClimbPenaltyTime float64   `json:"climbPenaltySeconds"`
	DistanceCells    float64   `json:"distanceCells"`
	DistanceMeters   float64   `json:"distanceMeters"`
	PathMeters       float64   `json:"pathMeters,omitempty"` // great-circle length of the georeferenced route, set by the planner
	Elevations       []float64 `json:"elevations"`
	CumulativeTime   []float64 `json:"cumulativeTime"`
	CumulativeEnergy []float64 `json:"cumulativeEnergy"`
}

// Summarize replays route through model.StepCost and accumulates totals
func Summarize(grid *ElevationGrid, route Route, model CostModel, wind WindVector) (*RouteSummary, error) {
	if len(route) == 0 {
		return nil, fmt.Errorf("%w: empty route", ErrInvalidInput)
	}
	if err := model.Vehicle.Validate(wind); err != nil {
		return nil, err
	}
	for i, c := range route {
		if err := grid.checkCell(fmt.Sprintf("route[%d]", i), c); err != nil {
			return nil, err
		}
		if i > 0 && !route[i-1].IsNeighbor(c) {
			return nil, fmt.Errorf("%w: route[%d] %v is not adjacent to %v", ErrInvalidInput, i, c, route[i-1])
		}
	}

	summary := &RouteSummary{
		Elevations:       make([]float64, len(route)),
		CumulativeTime:   make([]float64, len(route)),
		CumulativeEnergy: make([]float64, len(route)),
	}
	summary.Elevations[0] = grid.Elevation(route[0])

	for i := 1; i < len(route); i++ {
		step := model.StepCost(grid, route[i-1], route[i], wind)

		summary.TotalTime += step.Time
		summary.TotalEnergy += step.Energy
		summary.ClimbPenaltyTime += step.ClimbPenalty
		summary.DistanceCells += route[i-1].Distance(route[i])

		summary.Elevations[i] = grid.Elevation(route[i])
		summary.CumulativeTime[i] = summary.TotalTime
		summary.CumulativeEnergy[i] = summary.TotalEnergy
	}
	summary.DistanceMeters = summary.DistanceCells * model.MetersPerCell

	return summary, nil
}
