package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// tolerance for float comparisons of accumulated times
const eps = 1e-9

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Search.Timeout = 0
	return cfg
}

func testModel(t *testing.T) CostModel {
	t.Helper()
	model, err := NewCostModel(testConfig(), WindVector{})
	require.NoError(t, err)
	return model
}

// flatGrid returns a rows × cols grid where every cell has the same elevation
func flatGrid(rows, cols int, elevation float64) *ElevationGrid {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = elevation
	}
	return &ElevationGrid{Rows: rows, Cols: cols, data: data}
}

func gridFrom(t *testing.T, rows [][]float64) *ElevationGrid {
	t.Helper()
	grid, err := NewElevationGrid(rows)
	require.NoError(t, err)
	return grid
}

// secondsPerCell is the still-air time for one orthogonal step with the default vehicle
func secondsPerCell(model CostModel) float64 {
	return model.MetersPerCell / model.Vehicle.Airspeed
}

// cellCenter returns the coordinate in the middle of a cell, safe from floor rounding
func cellCenter(g *Geodesy, c Cell) Coordinate {
	dLat := (g.Bound.Top() - g.Bound.Bottom()) / float64(g.Rows)
	dLon := (g.Bound.Right() - g.Bound.Left()) / float64(g.Cols)
	lat, lon := g.CellToCoordinate(c.Row, c.Col)
	return Coordinate{Lat: lat - dLat/2, Lon: lon + dLon/2}
}

func testDEM(t *testing.T, grid *ElevationGrid) *DEM {
	t.Helper()
	geodesy, err := NewGeodesy(BoundsConfig{LatMin: 46.0, LatMax: 46.2, LonMin: 13.0, LonMax: 13.2}, grid.Rows, grid.Cols)
	require.NoError(t, err)
	return &DEM{Grid: grid, Geodesy: geodesy}
}

func testSite(t *testing.T, dem *DEM, name string, c Cell) LaunchSite {
	t.Helper()
	at := cellCenter(dem.Geodesy, c)
	site, err := NewLaunchSite(name, at.Lat, at.Lon, dem.Geodesy, dem.Grid)
	require.NoError(t, err)
	require.Equal(t, c, site.Cell)
	return site
}
