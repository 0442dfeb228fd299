package main

import (
	"fmt"
	"math"
)

// Cell identifies a grid position by row and column
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Distance returns the Euclidean distance between two cells in grid units
func (c Cell) Distance(other Cell) float64 {
	dr := float64(c.Row - other.Row)
	dc := float64(c.Col - other.Col)
	return math.Sqrt(dr*dr + dc*dc)
}

// IsNeighbor reports whether other is one of the 8 cells sharing an edge or corner with c
func (c Cell) IsNeighbor(other Cell) bool {
	dr := c.Row - other.Row
	dc := c.Col - other.Col
	if dr == 0 && dc == 0 {
		return false
	}
	return dr >= -1 && dr <= 1 && dc >= -1 && dc <= 1
}

// Step is one move of the 8-connected neighbourhood
type Step struct {
	DRow, DCol int
	Distance   float64 // 1 for orthogonal moves, √2 for diagonal ones
}

// neighborSteps lists the 8 moves in a fixed order so searches are reproducible
var neighborSteps = [8]Step{
	{-1, -1, math.Sqrt2}, {-1, 0, 1}, {-1, 1, math.Sqrt2},
	{0, -1, 1}, {0, 1, 1},
	{1, -1, math.Sqrt2}, {1, 0, 1}, {1, 1, math.Sqrt2},
}

// ElevationGrid is a rows × cols raster of ground elevations in meters.
// It is never mutated by the planner, so one grid may back many concurrent searches.
type ElevationGrid struct {
	Rows, Cols int
	data       []float64
}

// NewElevationGrid copies a rectangular 2-D slice of elevations into a grid
func NewElevationGrid(elevations [][]float64) (*ElevationGrid, error) {
	if len(elevations) == 0 || len(elevations[0]) == 0 {
		return nil, fmt.Errorf("%w: elevation grid must have at least one row and one column", ErrInvalidInput)
	}

	rows, cols := len(elevations), len(elevations[0])
	data := make([]float64, 0, rows*cols)
	for r, row := range elevations {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidInput, r, len(row), cols)
		}
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite elevation at %v", ErrInvalidInput, Cell{r, c})
			}
		}
		data = append(data, row...)
	}

	return &ElevationGrid{Rows: rows, Cols: cols, data: data}, nil
}

// InBounds reports whether c lies inside the grid
func (g *ElevationGrid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

// Elevation returns the elevation of an in-bounds cell
func (g *ElevationGrid) Elevation(c Cell) float64 {
	return g.data[c.Row*g.Cols+c.Col]
}

// Stats returns the minimum and maximum elevation in the grid
func (g *ElevationGrid) Stats() (minElevation, maxElevation float64) {
	minElevation, maxElevation = math.Inf(1), math.Inf(-1)
	for _, v := range g.data {
		minElevation = math.Min(minElevation, v)
		maxElevation = math.Max(maxElevation, v)
	}
	return minElevation, maxElevation
}

// checkCell wraps ErrOutOfBounds with the offending cell and role
func (g *ElevationGrid) checkCell(role string, c Cell) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: %s %v not in %dx%d grid", ErrOutOfBounds, role, c, g.Rows, g.Cols)
	}
	return nil
}
