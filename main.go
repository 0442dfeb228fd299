// Command terrain-planner serves minimum-time drone routes over a digital
// elevation model.
//
// Modes:
//  1. "server" (default) – HTTP API (/route, /health, /launchSites) plus a /ws feed for map clients
//  2. "mcp" – MCP stdio server exposing the plan_route tool
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

const (
	Version = "1.0.0"
	AppName = "Terrain Route Planner"
)

var (
	configPath = flag.String("config", "", "JSON config file (or PLANNER_CONFIG)")
	demPath    = flag.String("dem", "", "Elevation raster, .tif, .asc or .json (or PLANNER_DEM, default dem.asc)")
	sitesPath  = flag.String("sites", "", "GeoJSON launch sites (or PLANNER_SITES, built-in sites otherwise)")
	addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	version    = flag.Bool("version", false, "Show version information")
)

// fromEnv fills an unset flag from the environment
func fromEnv(dst *string, key, fallback string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
		return
	}
	*dst = fallback
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server   Run the HTTP API (default)\n")
		fmt.Fprintf(os.Stderr, "  mcp      Run an MCP stdio server\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
	flag.Parse()
	fromEnv(configPath, "PLANNER_CONFIG", "")
	fromEnv(demPath, "PLANNER_DEM", "dem.asc")
	fromEnv(sitesPath, "PLANNER_SITES", "")

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	log.Println("========================================")
	log.Printf("🚀 %s v%s (mode: %s)\n", AppName, Version, mode)
	log.Println("========================================")

	planner, cfg, err := initializePlanner()
	if err != nil {
		log.Fatalf("❌ Failed to initialize planner: %v", err)
	}

	switch mode {
	case "mcp", "stdio-mcp":
		if err := server.ServeStdio(NewMCPServer(planner, Version)); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}
	case "server", "http":
		runHTTPServer(planner, cfg)
	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'mcp'", mode)
	}
}

// initializePlanner loads config, DEM and launch sites
func initializePlanner() (*Planner, Config, error) {
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return nil, cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, cfg, err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}
	cfg.LogSummary()

	dem, err := LoadDEM(*demPath, cfg.Terrain.Bounds)
	if err != nil {
		return nil, cfg, err
	}
	if estimate := dem.MetersPerCell(); estimate > 0 {
		log.Printf("   Georeferenced cell size ≈ %.1f m (configured %.1f m)\n", estimate, cfg.Terrain.MetersPerCell)
	}

	var sites []LaunchSite
	if *sitesPath != "" {
		sites, err = LoadLaunchSites(*sitesPath, dem.Geodesy, dem.Grid)
		if err != nil {
			return nil, cfg, err
		}
	} else {
		sites = DefaultLaunchSites(dem.Geodesy, dem.Grid)
		log.Printf("ℹ️  Using %d built-in launch sites\n", len(sites))
	}
	if len(sites) == 0 {
		log.Println("⚠️  No launch site lies on the DEM; only requests with an explicit start will succeed")
	}

	planner, err := NewPlanner(cfg, dem, sites)
	return planner, cfg, err
}

// runHTTPServer serves the API until SIGINT/SIGTERM, then drains connections
func runHTTPServer(planner *Planner, cfg Config) {
	hub := NewHub()
	go hub.Run()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewServer(planner, hub),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Search.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s\n", cfg.Addr)
		log.Println("")
		log.Println("Endpoints:")
		log.Println("  POST /route        - Compute route to a destination")
		log.Println("  GET  /launchSites  - Launch sites as GeoJSON")
		log.Println("  GET  /health       - Check server status")
		log.Println("  GET  /ws           - Live plan feed for map clients")
		log.Println("")
		log.Println("CORS enabled for all origins")
		log.Println("========================================")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	hub.Stop()
	log.Println("Server stopped")
}
