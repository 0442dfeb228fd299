package main

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Geodesy maps between latitude/longitude and grid cells by linear
// interpolation over the DEM footprint. Row 0 is the northern edge and
// column 0 the western edge.
type Geodesy struct {
	Bound      orb.Bound // Min is the south-west corner, Max the north-east corner (lon, lat)
	Rows, Cols int
}

// NewGeodesy validates the footprint and grid size
func NewGeodesy(bounds BoundsConfig, rows, cols int) (*Geodesy, error) {
	for _, v := range []float64{bounds.LatMin, bounds.LatMax, bounds.LonMin, bounds.LonMax} {
		if !finite(v) {
			return nil, fmt.Errorf("%w: non-finite bounds %+v", ErrInvalidInput, bounds)
		}
	}
	if bounds.LatMax <= bounds.LatMin || bounds.LonMax <= bounds.LonMin {
		return nil, fmt.Errorf("%w: degenerate bounds %+v", ErrInvalidInput, bounds)
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidInput, rows, cols)
	}

	return &Geodesy{
		Bound: orb.Bound{
			Min: orb.Point{bounds.LonMin, bounds.LatMin},
			Max: orb.Point{bounds.LonMax, bounds.LatMax},
		},
		Rows: rows,
		Cols: cols,
	}, nil
}

// Bounds returns the footprint in config form
func (g *Geodesy) Bounds() BoundsConfig {
	return BoundsConfig{
		LatMin: g.Bound.Bottom(),
		LatMax: g.Bound.Top(),
		LonMin: g.Bound.Left(),
		LonMax: g.Bound.Right(),
	}
}

// FractionalCell returns the un-truncated (row, col) position of a coordinate
func (g *Geodesy) FractionalCell(lat, lon float64) (row, col float64) {
	row = (g.Bound.Top() - lat) * float64(g.Rows) / (g.Bound.Top() - g.Bound.Bottom())
	col = (lon - g.Bound.Left()) * float64(g.Cols) / (g.Bound.Right() - g.Bound.Left())
	return row, col
}

// CoordinateToCell truncates the fractional position to a cell. Coordinates
// outside the footprint map to out-of-range cells; the search rejects those.
func (g *Geodesy) CoordinateToCell(lat, lon float64) (Cell, error) {
	if !finite(lat) || !finite(lon) {
		return Cell{}, fmt.Errorf("%w: non-finite coordinate (%v, %v)", ErrInvalidInput, lat, lon)
	}
	row, col := g.FractionalCell(lat, lon)
	return Cell{Row: int(math.Floor(row)), Col: int(math.Floor(col))}, nil
}

// CellToCoordinate returns the coordinate of the cell's north-west corner
func (g *Geodesy) CellToCoordinate(row, col int) (lat, lon float64) {
	lat = g.Bound.Top() - float64(row)*(g.Bound.Top()-g.Bound.Bottom())/float64(g.Rows)
	lon = g.Bound.Left() + float64(col)*(g.Bound.Right()-g.Bound.Left())/float64(g.Cols)
	return lat, lon
}

// CellPoint is CellToCoordinate as an orb point (lon, lat)
func (g *Geodesy) CellPoint(c Cell) orb.Point {
	lat, lon := g.CellToCoordinate(c.Row, c.Col)
	return orb.Point{lon, lat}
}

// Contains reports whether the coordinate lies inside the DEM footprint
func (g *Geodesy) Contains(lat, lon float64) bool {
	return g.Bound.Contains(orb.Point{lon, lat})
}

// RoutePath converts a route to a coordinate polyline
func (g *Geodesy) RoutePath(route Route) orb.LineString {
	path := make(orb.LineString, len(route))
	for i, c := range route {
		path[i] = g.CellPoint(c)
	}
	return path
}

// CellSizeMeters estimates the ground size of one cell at the footprint centre
func (g *Geodesy) CellSizeMeters() (height, width float64) {
	center := g.Bound.Center()
	north := orb.Point{center.Lon(), center.Lat() + (g.Bound.Top()-g.Bound.Bottom())/float64(g.Rows)}
	east := orb.Point{center.Lon() + (g.Bound.Right()-g.Bound.Left())/float64(g.Cols), center.Lat()}
	return geo.Distance(center, north), geo.Distance(center, east)
}

// PathLengthMeters is the great-circle length of a coordinate polyline
func PathLengthMeters(path orb.LineString) float64 {
	return geo.Length(path)
}
