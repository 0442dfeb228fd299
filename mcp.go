package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer exposes the planner as MCP tools for assistant clients
func NewMCPServer(planner *Planner, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Terrain Route Planner",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Terrain Route Planner - MCP Interface

Plans minimum-time drone routes over a digital elevation model, taking climb
limits and wind into account, and estimates flight time and battery energy.

AVAILABLE TOOLS:
- plan_route: Fly from the best launch site to a destination (lat/lon)
- list_launch_sites: List the launch sites routes can start from`),
	)

	tools := &mcpTools{planner: planner}
	s.AddTool(mcp.Tool{
		Name:        "plan_route",
		Description: "Plan the fastest drone route to a destination and report flight time and energy",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"lat": map[string]interface{}{
					"type":        "number",
					"description": "Destination latitude in degrees",
				},
				"lon": map[string]interface{}{
					"type":        "number",
					"description": "Destination longitude in degrees",
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(StrategyClosest), string(StrategyFastest)},
					"description": "closest: fly from the nearest launch site; fastest: try several and keep the quickest",
				},
				"wind_east": map[string]interface{}{
					"type":        "number",
					"description": "Optional wind east component in m/s",
				},
				"wind_north": map[string]interface{}{
					"type":        "number",
					"description": "Optional wind north component in m/s",
				},
			},
			Required: []string{"lat", "lon"},
		},
	}, tools.handlePlanRoute)

	s.AddTool(mcp.Tool{
		Name:        "list_launch_sites",
		Description: "List the launch sites routes can start from",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, tools.handleListLaunchSites)

	return s
}

type mcpTools struct {
	planner *Planner
}

// planRouteResult is the compact answer returned to assistants
type planRouteResult struct {
	Site        string       `json:"site"`
	TimeSeconds float64      `json:"timeSeconds"`
	EnergyWh    float64      `json:"energyWh"`
	Distance    float64      `json:"distanceMeters"`
	Waypoints   []Coordinate `json:"waypoints"`
}

func (t *mcpTools) handlePlanRoute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("arguments must be an object"), nil
	}

	lat, okLat := args["lat"].(float64)
	lon, okLon := args["lon"].(float64)
	if !okLat || !okLon {
		return mcp.NewToolResultError("lat and lon are required numbers"), nil
	}

	req := PlanRequest{Destination: Coordinate{Lat: lat, Lon: lon}}
	if strategy, ok := args["strategy"].(string); ok {
		req.Strategy = Strategy(strategy)
	}
	east, hasEast := args["wind_east"].(float64)
	north, hasNorth := args["wind_north"].(float64)
	if hasEast || hasNorth {
		req.Wind = &WindVector{East: east, North: north}
	}

	plan, err := t.planner.Plan(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := planRouteResult{
		Site:        plan.Site.Name,
		TimeSeconds: plan.Summary.TotalTime,
		EnergyWh:    plan.Summary.TotalEnergy,
		Distance:    plan.Summary.DistanceMeters,
		Waypoints:   make([]Coordinate, len(plan.Waypoints)),
	}
	for i, p := range plan.Waypoints {
		result.Waypoints[i] = Coordinate{Lat: p.Lat(), Lon: p.Lon()}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode plan: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (t *mcpTools) handleListLaunchSites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(t.planner.Sites(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode sites: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
