package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/tiff"
)

// DEM is a decoded elevation raster together with its georeference
type DEM struct {
	Grid    *ElevationGrid
	Geodesy *Geodesy
}

// demJSON is the on-disk JSON elevation format
type demJSON struct {
	Bounds     *BoundsConfig `json:"bounds,omitempty"`
	Elevations [][]float64   `json:"elevations"`
}

// LoadDEM reads an elevation raster from disk. ESRI ASCII grids (.asc) carry their
// own georeference; JSON grids use their "bounds" field, or fallback when it is absent;
// GeoTIFFs (.tif, .tiff) always use fallback.
func LoadDEM(path string, fallback BoundsConfig) (*DEM, error) {
	log.Printf("📂 Loading DEM from %s...\n", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DEM: %w", err)
	}
	defer f.Close()

	var dem *DEM
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".asc":
		dem, err = ParseASCIIGrid(f)
	case ".json":
		dem, err = ParseJSONGrid(f, fallback)
	case ".tif", ".tiff":
		dem, err = ParseTIFFGrid(f, fallback)
	default:
		return nil, fmt.Errorf("%w: unsupported DEM format %q", ErrInvalidInput, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	lo, hi := dem.Grid.Stats()
	log.Printf("   ✅ DEM loaded: %dx%d cells, elevation %.0f..%.0f m\n", dem.Grid.Rows, dem.Grid.Cols, lo, hi)
	return dem, nil
}

// ParseJSONGrid decodes the JSON elevation format
func ParseJSONGrid(r io.Reader, fallback BoundsConfig) (*DEM, error) {
	var raw demJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	grid, err := NewElevationGrid(raw.Elevations)
	if err != nil {
		return nil, err
	}

	bounds := fallback
	if raw.Bounds != nil {
		bounds = *raw.Bounds
	}
	geodesy, err := NewGeodesy(bounds, grid.Rows, grid.Cols)
	if err != nil {
		return nil, err
	}
	return &DEM{Grid: grid, Geodesy: geodesy}, nil
}

// ParseTIFFGrid decodes a single-band integer GeoTIFF, one elevation in meters per
// pixel. GeoTIFF georeference tags are not read; bounds gives the footprint.
func ParseTIFFGrid(r io.Reader, bounds BoundsConfig) (*DEM, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var sample func(x, y int) float64
	switch src := img.(type) {
	case *image.Gray16:
		sample = func(x, y int) float64 { return float64(src.Gray16At(x, y).Y) }
	case *image.Gray:
		sample = func(x, y int) float64 { return float64(src.GrayAt(x, y).Y) }
	default:
		return nil, fmt.Errorf("%w: TIFF DEM must be single-band 8 or 16 bit, got %T", ErrInvalidInput, img)
	}

	b := img.Bounds()
	elevations := make([][]float64, b.Dy())
	for i := range elevations {
		row := make([]float64, b.Dx())
		for j := range row {
			row[j] = sample(b.Min.X+j, b.Min.Y+i)
		}
		elevations[i] = row
	}

	grid, err := NewElevationGrid(elevations)
	if err != nil {
		return nil, err
	}
	geodesy, err := NewGeodesy(bounds, grid.Rows, grid.Cols)
	if err != nil {
		return nil, err
	}
	return &DEM{Grid: grid, Geodesy: geodesy}, nil
}

// asciiHeader holds the ESRI ASCII grid header fields
type asciiHeader struct {
	ncols, nrows int
	xll, yll     float64
	centered     bool
	cellSize     float64
	noData       float64
	hasNoData    bool
	seen         map[string]bool
}

// ParseASCIIGrid decodes an ESRI ASCII grid in geographic degrees
func ParseASCIIGrid(r io.Reader) (*DEM, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	scanner.Split(bufio.ScanWords)

	h := asciiHeader{seen: make(map[string]bool)}
	var pending string

	// header keys run until the first numeric token
	for scanner.Scan() {
		key := strings.ToLower(scanner.Text())
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			pending = key
			break
		}
		if !scanner.Scan() {
			return nil, fmt.Errorf("%w: header key %q has no value", ErrInvalidInput, key)
		}
		if err := h.set(key, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	elevations := make([][]float64, h.nrows)
	next := func() (string, bool) {
		if pending != "" {
			tok := pending
			pending = ""
			return tok, true
		}
		if scanner.Scan() {
			return scanner.Text(), true
		}
		return "", false
	}

	for i := 0; i < h.nrows; i++ {
		row := make([]float64, 0, h.ncols)
		for j := 0; j < h.ncols; j++ {
			tok, ok := next()
			if !ok {
				return nil, fmt.Errorf("%w: raster ends at row %d col %d, expected %dx%d", ErrInvalidInput, i, j, h.nrows, h.ncols)
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad sample %q at %v", ErrInvalidInput, tok, Cell{i, j})
			}
			if h.hasNoData && v == h.noData {
				return nil, fmt.Errorf("%w: NODATA sample at %v", ErrInvalidInput, Cell{i, j})
			}
			row = append(row, v)
		}
		elevations[i] = row
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	grid, err := NewElevationGrid(elevations)
	if err != nil {
		return nil, err
	}
	geodesy, err := NewGeodesy(h.bounds(), grid.Rows, grid.Cols)
	if err != nil {
		return nil, err
	}
	return &DEM{Grid: grid, Geodesy: geodesy}, nil
}

func (h *asciiHeader) set(key, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%w: header %s=%q", ErrInvalidInput, key, value)
	}

	switch key {
	case "ncols":
		h.ncols = int(v)
	case "nrows":
		h.nrows = int(v)
	case "xllcorner":
		h.xll = v
	case "xllcenter":
		h.xll, h.centered = v, true
	case "yllcorner":
		h.yll = v
	case "yllcenter":
		h.yll, h.centered = v, true
	case "cellsize":
		h.cellSize = v
	case "nodata_value":
		h.noData, h.hasNoData = v, true
	default:
		return fmt.Errorf("%w: unknown header key %q", ErrInvalidInput, key)
	}
	h.seen[strings.TrimSuffix(strings.TrimSuffix(key, "corner"), "center")] = true
	return nil
}

func (h *asciiHeader) validate() error {
	for _, key := range []string{"ncols", "nrows", "xll", "yll", "cellsize"} {
		if !h.seen[key] {
			return fmt.Errorf("%w: missing header %s", ErrInvalidInput, key)
		}
	}
	if h.ncols <= 0 || h.nrows <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidInput, h.nrows, h.ncols)
	}
	if !positive(h.cellSize) {
		return fmt.Errorf("%w: cellsize must be positive", ErrInvalidInput)
	}
	return nil
}

// bounds derives the footprint from the lower-left reference and cell size
func (h *asciiHeader) bounds() BoundsConfig {
	lonMin, latMin := h.xll, h.yll
	if h.centered {
		lonMin -= h.cellSize / 2
		latMin -= h.cellSize / 2
	}
	return BoundsConfig{
		LatMin: latMin,
		LatMax: latMin + float64(h.nrows)*h.cellSize,
		LonMin: lonMin,
		LonMax: lonMin + float64(h.ncols)*h.cellSize,
	}
}

// MetersPerCell estimates the horizontal cell size of a DEM from its georeference
func (d *DEM) MetersPerCell() float64 {
	height, width := d.Geodesy.CellSizeMeters()
	return math.Sqrt(height * width)
}
