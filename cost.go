package main

import (
	"fmt"
	"math"
)

// standardGravity is the gravity HoverPowerRef was measured under
const standardGravity = 9.81

// CostModel turns grid steps into flight time and battery energy.
// The search and the route summarizer both call StepCost, so the cost a route
// was optimized for is exactly the cost it is reported with.
type CostModel struct {
	Vehicle       VehicleConfig
	MetersPerCell float64
}

// StepCost is the price of moving between two adjacent cells
type StepCost struct {
	Time         float64 // seconds, horizontal travel plus ClimbPenalty
	ClimbPenalty float64 // seconds spent on the vertical excess the step could not absorb
	Energy       float64 // Wh
}

// NewCostModel validates the vehicle for the given wind and terrain scale
func NewCostModel(cfg Config, wind WindVector) (CostModel, error) {
	if err := cfg.Vehicle.Validate(wind); err != nil {
		return CostModel{}, err
	}
	if !positive(cfg.Terrain.MetersPerCell) {
		return CostModel{}, fmt.Errorf("%w: metersPerCell must be positive, got %v", ErrInvalidInput, cfg.Terrain.MetersPerCell)
	}
	return CostModel{Vehicle: cfg.Vehicle, MetersPerCell: cfg.Terrain.MetersPerCell}, nil
}

// TravelTime returns the seconds needed to cover stepDistance cells heading along
// (dRow, dCol). Ground speed is the magnitude of the airspeed vector plus the wind.
// Rows grow southwards and columns eastwards.
func (m CostModel) TravelTime(stepDistance float64, dRow, dCol float64, wind WindVector) float64 {
	norm := math.Hypot(dRow, dCol)
	if stepDistance == 0 || norm == 0 {
		return 0
	}

	east := dCol / norm * m.Vehicle.Airspeed
	north := -dRow / norm * m.Vehicle.Airspeed
	groundSpeed := math.Hypot(east+wind.East, north+wind.North)

	// cells per second
	effectiveSpeed := groundSpeed / m.MetersPerCell
	return stepDistance / effectiveSpeed
}

// StillAirTime is the horizontal time for stepDistance cells without wind
func (m CostModel) StillAirTime(stepDistance float64) float64 {
	return stepDistance * m.MetersPerCell / m.Vehicle.Airspeed
}

// MaxAltitudeChange is the elevation the vehicle can gain or lose at its vertical
// rate while covering stepDistance cells horizontally
func (m CostModel) MaxAltitudeChange(stepDistance float64) float64 {
	return m.Vehicle.VerticalRate * m.StillAirTime(stepDistance)
}

// ClimbPenalty returns the extra seconds needed when the gain dh exceeds the
// sustainable climb for the step. The excess is flown at the vertical rate;
// descents never pay a penalty.
func (m CostModel) ClimbPenalty(dh, stepDistance float64) float64 {
	excess := dh - m.MaxAltitudeChange(stepDistance)
	if excess <= 0 {
		return 0
	}
	return excess / m.Vehicle.VerticalRate
}

// HoverPower is the baseline power draw in watts for the vehicle's weight
func (m CostModel) HoverPower() float64 {
	v := m.Vehicle
	weightRatio := (v.Mass * v.Gravity) / (v.HoverMassRef * standardGravity)
	return v.HoverPowerRef * math.Pow(weightRatio, v.HoverExponent)
}

// MovePower is the cruise power draw in watts
func (m CostModel) MovePower() float64 {
	return m.Vehicle.MoveFactor * m.HoverPower()
}

// ClimbPower is the power draw in watts while climbing at the vertical rate
func (m CostModel) ClimbPower() float64 {
	return m.Vehicle.ClimbFactor * m.HoverPower()
}

// EnergyCost returns the Wh spent moving stepDistance cells from elevationA to elevationB.
//
//   - gain >= MaxAltitudeChange (and > 0): ClimbPower over the time to climb the gain at the vertical rate
//   - 0 < gain < MaxAltitudeChange: MovePower × ClimbSurcharge over the still-air time
//   - gain <= 0: MovePower over the still-air time
func (m CostModel) EnergyCost(elevationA, elevationB, stepDistance float64) float64 {
	dh := elevationB - elevationA
	horizontal := m.StillAirTime(stepDistance)

	var joules float64
	switch {
	case dh > 0 && dh >= m.MaxAltitudeChange(stepDistance):
		joules = m.ClimbPower() * dh / m.Vehicle.VerticalRate
	case dh > 0:
		joules = m.MovePower() * m.Vehicle.ClimbSurcharge * horizontal
	default:
		joules = m.MovePower() * horizontal
	}
	return joules / 3600
}

// StepTime is the edge weight of the search: horizontal travel time plus the
// climb penalty for moving from one adjacent cell to another
func (m CostModel) StepTime(grid *ElevationGrid, from, to Cell, wind WindVector) (total, penalty float64) {
	dRow := float64(to.Row - from.Row)
	dCol := float64(to.Col - from.Col)
	distance := math.Hypot(dRow, dCol)

	penalty = m.ClimbPenalty(grid.Elevation(to)-grid.Elevation(from), distance)
	return m.TravelTime(distance, dRow, dCol, wind) + penalty, penalty
}

// StepCost prices the move between two adjacent cells of grid
func (m CostModel) StepCost(grid *ElevationGrid, from, to Cell, wind WindVector) StepCost {
	total, penalty := m.StepTime(grid, from, to, wind)
	distance := from.Distance(to)
	return StepCost{
		Time:         total,
		ClimbPenalty: penalty,
		Energy:       m.EnergyCost(grid.Elevation(from), grid.Elevation(to), distance),
	}
}

// MinTimePerCell is the fastest possible time to cover one cell, flying with the
// full wind at our back. Scaling straight-line distance by it keeps the A*
// heuristic admissible for any heading.
func (m CostModel) MinTimePerCell(wind WindVector) float64 {
	return m.MetersPerCell / (m.Vehicle.Airspeed + wind.Speed())
}
