package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/floorplan-studio/backend/internal/api"
	"github.com/floorplan-studio/backend/internal/config"
	"github.com/floorplan-studio/backend/internal/geometry"
	"github.com/floorplan-studio/backend/internal/plan"
	"github.com/floorplan-studio/backend/internal/store"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "FloorPlanStudio.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Geometry tolerances come from config so air-gapped installs can be
	// tuned without a rebuild
	opts := geometry.Options{
		SnapTolerance: cfg.Geometry.SnapToleranceMm,
		MinRoomArea:   cfg.Geometry.MinRoomAreaM2,
		MaxRoomArea:   cfg.Geometry.MaxRoomAreaM2,
	}

	// Initialize plan persistence (optional, in-memory only when disabled)
	var planStore store.PlanStore
	if cfg.Storage.EnablePersistence {
		planStore, err = store.NewDuckPlanStore(cfg.Storage.DatabaseFile)
		if err != nil {
			fmt.Printf("Failed to initialize plan database: %v\n", err)
			os.Exit(1)
		}
		defer planStore.Close()
	} else {
		fmt.Println("Persistence disabled; plans are kept in memory only")
	}

	// Initialize export storage
	exportStore, err := store.NewExportStore(cfg.GetExportsDir())
	if err != nil {
		fmt.Printf("Failed to initialize export storage: %v\n", err)
		os.Exit(1)
	}

	// Initialize plan manager
	planMgr := plan.NewManager(planStore, opts)

	// Start background plan cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Geometry.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			planMgr.CleanupOldPlans(time.Duration(cfg.Geometry.PlanTimeoutMinutes) * time.Minute)
		}
	}()

	// Initialize API handler
	h := api.NewHandler(planMgr, exportStore)

	// Initialize WebSocket hub
	hub := api.NewPlanHub()
	h.SetHub(hub)

	// Load the default material library on startup
	if err := h.LoadDefaultLibrary(cfg.GetDataDir()); err != nil {
		fmt.Printf("Warning: failed to load material library: %v\n", err)
	} else {
		fmt.Println("Material library loaded successfully")
	}

	e := echo.New()

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" || strings.Contains(path, "/ws/")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.Contains(path, "/ws/") ||
				strings.Contains(path, "/import") ||
				strings.Contains(path, "/export")
		},
		ErrorMessage: "Request timeout - geometry recomputation took too long",
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.Contains(c.Request().URL.Path, "/ws/")
		},
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// API Routes
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", h.HandleHealth)

	// WebSocket endpoint
	apiGroup.GET("/ws/plans", hub.HandleWebSocket)

	// Plan management
	apiGroup.POST("/plans", h.HandleCreatePlan)
	apiGroup.GET("/plans", h.HandleListPlans)
	apiGroup.GET("/plans/:id", h.HandleGetPlan)
	apiGroup.PUT("/plans/:id", h.HandleRenamePlan)
	apiGroup.DELETE("/plans/:id", h.HandleDeletePlan)

	// Wall editing
	apiGroup.POST("/plans/:id/walls", h.HandleAddWall)
	apiGroup.PUT("/plans/:id/walls/:wallId", h.HandleUpdateWall)
	apiGroup.DELETE("/plans/:id/walls/:wallId", h.HandleDeleteWall)

	// Derived geometry
	apiGroup.GET("/plans/:id/geometry", h.HandleGetGeometry)
	apiGroup.GET("/plans/:id/geometry/msgpack", h.HandleGetGeometryMsgpack)

	// Rooms
	apiGroup.GET("/plans/:id/rooms", h.HandleGetRooms)
	apiGroup.PUT("/plans/:id/rooms/:roomId", h.HandleUpdateRoom)
	apiGroup.POST("/plans/:id/rooms/merge", h.HandleMergeRooms)
	apiGroup.POST("/plans/:id/rooms/:roomId/split", h.HandleSplitRoom)

	// Export / import
	apiGroup.POST("/plans/:id/export", h.HandleExportPlan)
	apiGroup.GET("/exports/recent", h.HandleRecentExports)
	apiGroup.GET("/exports/:id/download", h.HandleDownloadExport)
	apiGroup.POST("/plans/import", h.HandleImportPlan)

	// Material library
	apiGroup.GET("/materials", h.HandleGetMaterials)
	apiGroup.POST("/materials", h.HandleUploadMaterials)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	persistence := "Disabled (in-memory)"
	if cfg.Storage.EnablePersistence {
		persistence = cfg.Storage.DatabaseFile
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Floor Plan Studio Server                        ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("║  Plan DB:   %-46s║\n", persistence)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
