package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zinye/prm/backend/internal/activity"
	"github.com/zinye/prm/backend/internal/api"
	"github.com/zinye/prm/backend/internal/api/handlers"
	"github.com/zinye/prm/backend/internal/metrics"
	"github.com/zinye/prm/backend/internal/partner"
	"github.com/zinye/prm/backend/pkg/config"
	"github.com/zinye/prm/backend/pkg/database"
	"github.com/zinye/prm/backend/pkg/logger"
	"github.com/zinye/prm/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

This command:
- Starts the HTTP API server
- Serves partner performance snapshots
- Triggers score recalculation

Endpoints:
  GET  /health                                  - Health check
  GET  /api/partners/{id}/performance           - Performance snapshot
  POST /api/partners/{id}/score/recalculate     - Recalculate and persist score
  GET  /api/partners/{id}/commission            - Commission quote

Example:
  go run ./cmd/prm api
  go run ./cmd/prm api --port 8090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== PRM API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (no-op client when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 5. Create repositories
	partnerRepo := partner.NewRepository(db.Pool)
	activityRepo := activity.NewRepository(db.Pool)

	// 6. Create the metrics engine
	engine := metrics.NewEngine(
		metrics.NewCollector(partnerRepo, activityRepo, log),
		metrics.NewTrendAggregator(),
		metrics.NewScoreCalculator(cfg.Scoring),
		partnerRepo,
		redis.NewCache(redisClient, "prm"),
		cfg.Scoring.SnapshotCacheTTL,
		log,
	)

	// 7. Create handler and router
	perfHandler := handlers.NewPerformanceHandler(engine, partnerRepo, log)
	router := api.NewRouter(perfHandler, log)

	// 8. Create server
	server := api.New(cfg, log, router)

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/partners/{id}/performance")
	fmt.Println("  POST /api/partners/{id}/score/recalculate")
	fmt.Println("  GET  /api/partners/{id}/commission")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
