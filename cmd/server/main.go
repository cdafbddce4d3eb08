/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env / environment, then parse command-line flags
  2. Build the rate table registry (built-in + optional tables file)
  3. Initialize SQLite history store
  4. Create API handler, router and history pruner
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (override environment):
  -port       HTTP server port (PORT, default: 8080)
  -db         SQLite database path (DATABASE_PATH, default: payroll.db)
              Use ":memory:" for an in-memory database
  -tables     Extra rate tables, JSON or YAML (TABLES_PATH)
  -log.level  trace, debug, info, warn, error (LOG_LEVEL)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the pruner and close the database
  4. Exit

EXAMPLES:
  ./server -db=":memory:"
  ./server -tables=./tables/2026.yaml -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment variables
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/store/sqlite"
	"github.com/warp/payroll-engine/tables"
)

var log = logrus.WithField("module", "server")

func main() {
	cfg := config.Load()

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	tablesPath := flag.String("tables", cfg.TablesPath, "extra rate tables file (JSON or YAML)")
	logLevel := flag.String("log.level", cfg.LogLevel, "log level (trace debug info warn error)")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.0000"})
	config.ApplyLogLevel(*logLevel)

	registry := tables.Default
	if *tablesPath != "" {
		def, err := factory.LoadFile(*tablesPath)
		if err != nil {
			log.Fatalf("Failed to load tables: %v", err)
		}
		registry, err = registry.Merge(def)
		if err != nil {
			log.Fatalf("Invalid tables in %s: %v", *tablesPath, err)
		}
		log.Infof("Loaded extra rate tables from %s", *tablesPath)
	}
	log.Infof("Contribution tables: %v", registry.ContributionYears())

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	handler := api.NewHandler(registry, store, cfg.CacheTTL)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	pruner := api.NewHistoryPruner(store, cfg.HistoryRetention)
	pruner.CheckInterval = cfg.PruneInterval
	pruner.Start()
	defer pruner.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
		return
	}

	log.Info("Server stopped")
}
