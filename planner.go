package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"
)

// Strategy selects which launch sites a plan searches from
type Strategy string

const (
	// StrategyClosest searches only from the site nearest the destination
	StrategyClosest Strategy = "closest"
	// StrategyFastest searches from the nearest Search.MaxCandidates sites and keeps the quickest route
	StrategyFastest Strategy = "fastest"
)

// Coordinate is a latitude/longitude pair in degrees
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PlanRequest asks for a route to a destination
type PlanRequest struct {
	Destination Coordinate  `json:"destination"`
	Start       *Coordinate `json:"start,omitempty"` // overrides launch-site selection
	Strategy    Strategy    `json:"strategy,omitempty"`
	Wind        *WindVector `json:"wind,omitempty"` // overrides the configured wind
}

// CandidateOutcome records how the search from one launch site went
type CandidateOutcome struct {
	Site     string  `json:"site"`
	Cell     Cell    `json:"cell"`
	Found    bool    `json:"found"`
	Time     float64 `json:"timeSeconds,omitempty"`
	Expanded int     `json:"expanded"`
	Error    string  `json:"error,omitempty"`
}

// Plan is the winning route and what it costs to fly
type Plan struct {
	Site       LaunchSite         `json:"site"`
	Goal       Cell               `json:"goal"`
	Route      Route              `json:"route"`
	Path       orb.LineString     `json:"path"`
	Waypoints  orb.LineString     `json:"waypoints"`
	Summary    *RouteSummary      `json:"summary"`
	Wind       WindVector         `json:"wind"`
	Candidates []CandidateOutcome `json:"candidates"`
}

// searchFunc matches Search so tests can substitute the engine
type searchFunc func(ctx context.Context, grid *ElevationGrid, model CostModel, start, goal Cell, wind WindVector, opts ...SearchOption) (*SearchResult, error)

// Planner answers route requests over one DEM and a set of launch sites.
// It holds no mutable state, so Plan may be called concurrently.
type Planner struct {
	cfg    Config
	dem    *DEM
	sites  *SiteIndex
	search searchFunc
}

// NewPlanner validates cfg and indexes the launch sites
func NewPlanner(cfg Config, dem *DEM, sites []LaunchSite) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dem == nil || dem.Grid == nil || dem.Geodesy == nil {
		return nil, fmt.Errorf("%w: planner needs a DEM", ErrInvalidInput)
	}
	return &Planner{
		cfg:    cfg,
		dem:    dem,
		sites:  NewSiteIndex(sites),
		search: Search,
	}, nil
}

// Sites returns the launch sites in load order
func (p *Planner) Sites() []LaunchSite {
	return p.sites.Sites()
}

// DEM returns the elevation model the planner searches over
func (p *Planner) DEM() *DEM {
	return p.dem
}

type candidateResult struct {
	site   LaunchSite
	result *SearchResult
	err    error
}

// Plan searches from each candidate start concurrently and returns the fastest route.
// Candidates whose search is unreachable or capped are skipped; the plan fails only
// when none succeeds.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*Plan, error) {
	wind := p.cfg.Wind
	if req.Wind != nil {
		wind = *req.Wind
	}
	model, err := NewCostModel(p.cfg, wind)
	if err != nil {
		return nil, err
	}

	goal, err := p.dem.Geodesy.CoordinateToCell(req.Destination.Lat, req.Destination.Lon)
	if err != nil {
		return nil, err
	}
	if !p.dem.Geodesy.Contains(req.Destination.Lat, req.Destination.Lon) {
		return nil, fmt.Errorf("%w: destination (%.6f, %.6f) outside the DEM footprint",
			ErrOutOfBounds, req.Destination.Lat, req.Destination.Lon)
	}
	if err := p.dem.Grid.checkCell("goal", goal); err != nil {
		return nil, err
	}

	candidates, err := p.candidates(req, goal)
	if err != nil {
		return nil, err
	}

	if p.cfg.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Search.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	log.Printf("🔍 Running A* from %d candidate start(s) to %v...\n", len(candidates), goal)

	results := make([]candidateResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, site := range candidates {
		g.Go(func() error {
			res, err := p.search(gctx, p.dem.Grid, model, site.Cell, goal, wind,
				WithMaxExpansions(p.cfg.Search.MaxExpansions))
			results[i] = candidateResult{site: site, result: res, err: err}
			if err != nil && !errors.Is(err, ErrUnreachable) && !errors.Is(err, ErrSearchLimit) {
				return fmt.Errorf("search from %s: %w", site.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := &Plan{Goal: goal, Wind: wind, Candidates: make([]CandidateOutcome, len(results))}
	best := -1
	limited := false
	for i, r := range results {
		outcome := CandidateOutcome{Site: r.site.Name, Cell: r.site.Cell}
		if r.result != nil {
			outcome.Expanded = r.result.Expanded
		}
		switch {
		case r.err != nil:
			outcome.Error = r.err.Error()
			limited = limited || errors.Is(r.err, ErrSearchLimit)
			log.Printf("   ⚠️  %s: %v\n", r.site.Name, r.err)
		default:
			outcome.Found = true
			outcome.Time = r.result.Cost
			log.Printf("   %s: %.1f s (%d cells expanded)\n", r.site.Name, r.result.Cost, r.result.Expanded)
			// strict comparison keeps the nearer site on equal times
			if best < 0 || r.result.Cost < results[best].result.Cost {
				best = i
			}
		}
		plan.Candidates[i] = outcome
	}

	if best < 0 {
		if limited {
			return nil, fmt.Errorf("%w: no candidate reached %v within the cap", ErrSearchLimit, goal)
		}
		return nil, fmt.Errorf("%w: no launch site reaches %v", ErrUnreachable, goal)
	}

	winner := results[best]
	route, err := winner.result.Route()
	if err != nil {
		return nil, err
	}
	summary, err := Summarize(p.dem.Grid, route, model, wind)
	if err != nil {
		return nil, err
	}

	plan.Site = winner.site
	plan.Route = route
	plan.Path = p.dem.Geodesy.RoutePath(route)
	plan.Waypoints = SimplifyPath(plan.Path, p.cfg.SimplifyTolerance)
	summary.PathMeters = PathLengthMeters(plan.Path)
	plan.Summary = summary

	log.Printf("✅ Route from %s: %d cells, %d waypoints, %.1f s, %.2f Wh (%.2f s search)\n",
		winner.site.Name, len(route), len(plan.Waypoints), summary.TotalTime, summary.TotalEnergy,
		time.Since(startTime).Seconds())
	return plan, nil
}

// candidates picks the starts to search from, nearest first
func (p *Planner) candidates(req PlanRequest, goal Cell) ([]LaunchSite, error) {
	if req.Start != nil {
		site, err := NewLaunchSite("start", req.Start.Lat, req.Start.Lon, p.dem.Geodesy, p.dem.Grid)
		if err != nil {
			return nil, err
		}
		return []LaunchSite{site}, nil
	}

	var k int
	switch req.Strategy {
	case "", StrategyClosest:
		k = 1
	case StrategyFastest:
		k = p.cfg.Search.MaxCandidates
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, req.Strategy)
	}

	sites := p.sites.Nearest(goal, k)
	if len(sites) == 0 {
		return nil, ErrNoLaunchSites
	}
	return sites, nil
}

// FeatureCollection renders the plan for map clients: the route line plus start and goal points
func (plan *Plan) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := geojson.NewFeature(plan.Path)
	line.Properties["kind"] = "route"
	line.Properties["site"] = plan.Site.Name
	line.Properties["timeSeconds"] = plan.Summary.TotalTime
	line.Properties["energyWh"] = plan.Summary.TotalEnergy
	line.Properties["distanceMeters"] = plan.Summary.DistanceMeters
	fc.Append(line)

	if len(plan.Path) > 0 {
		start := geojson.NewFeature(plan.Path[0])
		start.Properties["kind"] = "start"
		start.Properties["name"] = plan.Site.Name
		fc.Append(start)

		goal := geojson.NewFeature(plan.Path[len(plan.Path)-1])
		goal.Properties["kind"] = "goal"
		fc.Append(goal)
	}
	return fc
}
