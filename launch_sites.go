package main

import (
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LaunchSite is a named place the drone can take off from
type LaunchSite struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Cell Cell    `json:"cell"`
}

// defaultSites are the valley bases the service ships with
var defaultSites = []struct {
	name     string
	lat, lon float64
}{
	{"Bovec", 46.337521, 13.551915},
	{"Trenta", 46.382153, 13.754251},
	{"Bohinjska Bistrica", 46.270995, 13.957429},
}

// DefaultLaunchSites places the built-in bases on the given DEM, dropping any outside it
func DefaultLaunchSites(geodesy *Geodesy, grid *ElevationGrid) []LaunchSite {
	sites := make([]LaunchSite, 0, len(defaultSites))
	for _, d := range defaultSites {
		site, err := NewLaunchSite(d.name, d.lat, d.lon, geodesy, grid)
		if err != nil {
			continue
		}
		sites = append(sites, site)
	}
	return sites
}

// NewLaunchSite resolves a coordinate to its cell, rejecting sites off the grid
func NewLaunchSite(name string, lat, lon float64, geodesy *Geodesy, grid *ElevationGrid) (LaunchSite, error) {
	cell, err := geodesy.CoordinateToCell(lat, lon)
	if err != nil {
		return LaunchSite{}, err
	}
	if err := grid.checkCell("launch site "+name, cell); err != nil {
		return LaunchSite{}, err
	}
	return LaunchSite{Name: name, Lat: lat, Lon: lon, Cell: cell}, nil
}

// LoadLaunchSites reads Point features from a GeoJSON FeatureCollection.
// Each feature's "name" property names the site; sites off the DEM are skipped.
func LoadLaunchSites(path string, geodesy *Geodesy, grid *ElevationGrid) ([]LaunchSite, error) {
	log.Printf("📂 Loading launch sites from %s...\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseLaunchSites(data, geodesy, grid)
}

// ParseLaunchSites decodes launch sites from GeoJSON bytes
func ParseLaunchSites(data []byte, geodesy *Geodesy, grid *ElevationGrid) ([]LaunchSite, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: launch sites: %v", ErrInvalidInput, err)
	}

	var sites []LaunchSite
	for i, feature := range fc.Features {
		point, ok := feature.Geometry.(orb.Point)
		if !ok {
			log.Printf("⚠️  Skipping feature %d: geometry %T is not a Point\n", i, feature.Geometry)
			continue
		}

		name := feature.Properties.MustString("name", fmt.Sprintf("site-%d", i))
		site, err := NewLaunchSite(name, point.Lat(), point.Lon(), geodesy, grid)
		if err != nil {
			log.Printf("⚠️  Skipping launch site %s: %v\n", name, err)
			continue
		}
		sites = append(sites, site)
	}

	log.Printf("   ✅ Loaded %d launch sites\n", len(sites))
	return sites, nil
}

// SitesFeatureCollection renders launch sites as GeoJSON points
func SitesFeatureCollection(sites []LaunchSite) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, site := range sites {
		f := geojson.NewFeature(orb.Point{site.Lon, site.Lat})
		f.Properties["name"] = site.Name
		f.Properties["row"] = site.Cell.Row
		f.Properties["col"] = site.Cell.Col
		fc.Append(f)
	}
	return fc
}
