package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"
)

// WindVector is a constant wind in meters per second, east and north components
type WindVector struct {
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Speed returns the wind magnitude
func (w WindVector) Speed() float64 {
	return math.Hypot(w.East, w.North)
}

// VehicleConfig holds the flight and power parameters of the drone
type VehicleConfig struct {
	Airspeed     float64 `json:"airspeed"`     // horizontal speed through the air, m/s
	VerticalRate float64 `json:"verticalRate"` // sustainable climb/descent rate, m/s
	Mass         float64 `json:"mass"`         // kg
	Gravity      float64 `json:"gravity"`      // m/s²

	// Hover power scales as (weight / reference weight)^HoverExponent
	HoverPowerRef  float64 `json:"hoverPowerRef"` // W at HoverMassRef under standard gravity
	HoverMassRef   float64 `json:"hoverMassRef"`  // kg
	HoverExponent  float64 `json:"hoverExponent"`
	MoveFactor     float64 `json:"moveFactor"`     // P_move = MoveFactor × P_hover
	ClimbFactor    float64 `json:"climbFactor"`    // P_climb = ClimbFactor × P_hover
	ClimbSurcharge float64 `json:"climbSurcharge"` // steady climbs draw ClimbSurcharge × P_move
}

// BoundsConfig is the geographic footprint of the DEM in degrees
type BoundsConfig struct {
	LatMin float64 `json:"latMin"`
	LatMax float64 `json:"latMax"`
	LonMin float64 `json:"lonMin"`
	LonMax float64 `json:"lonMax"`
}

// TerrainConfig describes how grid cells map to the ground
type TerrainConfig struct {
	MetersPerCell float64      `json:"metersPerCell"`
	Bounds        BoundsConfig `json:"bounds"` // used only when the DEM file carries no georeference
}

// SearchConfig bounds the work a single plan may do
type SearchConfig struct {
	MaxExpansions int           `json:"maxExpansions"` // 0 means unlimited
	Timeout       time.Duration `json:"timeout"`       // "30s" or nanoseconds; 0 means no deadline
	MaxCandidates int           `json:"maxCandidates"` // launch sites tried per plan
}

// UnmarshalJSON accepts the timeout as a duration string ("30s") or as nanoseconds
func (s *SearchConfig) UnmarshalJSON(data []byte) error {
	type plain SearchConfig
	aux := struct {
		*plain
		Timeout interface{} `json:"timeout"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch v := aux.Timeout.(type) {
	case nil:
	case float64:
		s.Timeout = time.Duration(v)
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: search timeout %q: %v", ErrInvalidInput, v, err)
		}
		s.Timeout = d
	default:
		return fmt.Errorf("%w: search timeout must be a duration string or nanoseconds", ErrInvalidInput)
	}
	return nil
}

// Config is the immutable configuration passed to every planner component
type Config struct {
	Vehicle           VehicleConfig `json:"vehicle"`
	Terrain           TerrainConfig `json:"terrain"`
	Wind              WindVector    `json:"wind"`
	Search            SearchConfig  `json:"search"`
	SimplifyTolerance float64       `json:"simplifyTolerance"` // degrees
	Addr              string        `json:"addr"`
}

// Soča valley DEM the planner was first flown over
const (
	defaultLatMin = 46.1731
	defaultLatMax = 46.5011
	defaultLonMin = 13.2697
	defaultLonMax = 14.3210
	defaultRows   = 779
	defaultCols   = 2494
)

// DefaultConfig returns the parameters of the reference 24 kg medical drone
func DefaultConfig() Config {
	return Config{
		Vehicle: VehicleConfig{
			Airspeed:       15,
			VerticalRate:   2.5,
			Mass:           24,
			Gravity:        9.81,
			HoverPowerRef:  4400,
			HoverMassRef:   36.9,
			HoverExponent:  1.5,
			MoveFactor:     1.2,
			ClimbFactor:    1.3,
			ClimbSurcharge: 1.3,
		},
		Terrain: TerrainConfig{
			MetersPerCell: 47,
			Bounds: BoundsConfig{
				LatMin: defaultLatMin,
				LatMax: defaultLatMax,
				LonMin: defaultLonMin,
				LonMax: defaultLonMax,
			},
		},
		Search: SearchConfig{
			MaxExpansions: 0,
			Timeout:       30 * time.Second,
			MaxCandidates: 3,
		},
		SimplifyTolerance: 0.0005,
		Addr:              ":8080",
	}
}

// LoadConfig reads a JSON config file on top of the defaults. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PLANNER_* environment variables
func (c *Config) ApplyEnv() error {
	floats := map[string]*float64{
		"PLANNER_AIRSPEED":        &c.Vehicle.Airspeed,
		"PLANNER_VERTICAL_RATE":   &c.Vehicle.VerticalRate,
		"PLANNER_MASS":            &c.Vehicle.Mass,
		"PLANNER_METERS_PER_CELL": &c.Terrain.MetersPerCell,
		"PLANNER_WIND_EAST":       &c.Wind.East,
		"PLANNER_WIND_NORTH":      &c.Wind.North,
	}
	for key, dst := range floats {
		raw, ok := os.LookupEnv(key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidInput, key, raw, err)
		}
		*dst = v
	}

	if raw := os.Getenv("PLANNER_MAX_EXPANSIONS"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: PLANNER_MAX_EXPANSIONS=%q: %v", ErrInvalidInput, raw, err)
		}
		c.Search.MaxExpansions = v
	}
	if raw := os.Getenv("PLANNER_TIMEOUT"); raw != "" {
		v, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%w: PLANNER_TIMEOUT=%q: %v", ErrInvalidInput, raw, err)
		}
		c.Search.Timeout = v
	}
	if raw := os.Getenv("PLANNER_ADDR"); raw != "" {
		c.Addr = raw
	}
	return nil
}

// Validate checks the vehicle and terrain parameters
func (c Config) Validate() error {
	if err := c.Vehicle.Validate(c.Wind); err != nil {
		return err
	}
	if !positive(c.Terrain.MetersPerCell) {
		return fmt.Errorf("%w: metersPerCell must be positive, got %v", ErrInvalidInput, c.Terrain.MetersPerCell)
	}
	if c.Search.MaxExpansions < 0 || c.Search.MaxCandidates < 0 || c.Search.Timeout < 0 {
		return fmt.Errorf("%w: search limits must not be negative", ErrInvalidInput)
	}
	return nil
}

// Validate checks the vehicle can fly in the given wind. The wind must be slower
// than the airspeed so every heading still makes forward progress.
func (v VehicleConfig) Validate(wind WindVector) error {
	checks := []struct {
		name  string
		value float64
	}{
		{"airspeed", v.Airspeed},
		{"verticalRate", v.VerticalRate},
		{"mass", v.Mass},
		{"gravity", v.Gravity},
		{"hoverPowerRef", v.HoverPowerRef},
		{"hoverMassRef", v.HoverMassRef},
		{"moveFactor", v.MoveFactor},
		{"climbFactor", v.ClimbFactor},
		{"climbSurcharge", v.ClimbSurcharge},
	}
	for _, check := range checks {
		if !positive(check.value) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidInput, check.name, check.value)
		}
	}
	if !finite(v.HoverExponent) {
		return fmt.Errorf("%w: hoverExponent must be finite", ErrInvalidInput)
	}
	if !finite(wind.East) || !finite(wind.North) {
		return fmt.Errorf("%w: wind must be finite", ErrInvalidInput)
	}
	if wind.Speed() >= v.Airspeed {
		return fmt.Errorf("%w: wind speed %.2f m/s must be below airspeed %.2f m/s", ErrInvalidInput, wind.Speed(), v.Airspeed)
	}
	return nil
}

// LogSummary prints the effective configuration at startup
func (c Config) LogSummary() {
	log.Printf("   Airspeed: %.1f m/s, vertical rate: %.1f m/s, mass: %.1f kg\n",
		c.Vehicle.Airspeed, c.Vehicle.VerticalRate, c.Vehicle.Mass)
	log.Printf("   Cell size: %.1f m, wind: (%.1f E, %.1f N) m/s\n",
		c.Terrain.MetersPerCell, c.Wind.East, c.Wind.North)
	if c.Search.MaxExpansions > 0 {
		log.Printf("   Expansion cap: %d\n", c.Search.MaxExpansions)
	}
	if c.Search.Timeout > 0 {
		log.Printf("   Search timeout: %s\n", c.Search.Timeout)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}
