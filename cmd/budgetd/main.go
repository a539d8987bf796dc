/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the budget engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (env vars, optional budgetd.yaml)
  2. Initialize SQLite store
  3. Build the planner from the configured policy constants
  4. Create API handler and router
  5. Start the background scheduler
  6. Start server with graceful shutdown

CONFIGURATION:
  BUDGETD_PORT, BUDGETD_DB_PATH, BUDGETD_LOG_LEVEL, BUDGETD_LOG_JSON,
  BUDGETD_CRON_SPEC, BUDGETD_SCHEDULER_ENABLED, and the
  BUDGETD_SIMULATOR_* planner constants. See config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  BUDGETD_DB_PATH=./data/budgetd.db ./budgetd

  # Run with in-memory database
  BUDGETD_DB_PATH=":memory:" ./budgetd

  # Run on a different port
  BUDGETD_PORT=3000 ./budgetd

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/budget-engine/api"
	"github.com/warp/budget-engine/config"
	"github.com/warp/budget-engine/engine"
	"github.com/warp/budget-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := newLogger(cfg)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Build the planner from the configured policy constants
	planner, err := engine.NewPlanner(cfg.PlannerConfig())
	if err != nil {
		log.WithError(err).Fatal("invalid simulator configuration")
	}

	// Initialize handler and router
	handler := api.NewHandler(store, planner, log)
	router := api.NewRouter(handler)

	// Background jobs
	sched := api.NewScheduler(handler, log)
	if cfg.SchedulerEnabled {
		if err := sched.Start(cfg.CronSpec); err != nil {
			log.WithError(err).Fatal("failed to start scheduler")
		}
		defer sched.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"port": cfg.Port,
			"db":   cfg.DBPath,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
