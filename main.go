package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/task-api/config"
	"github.com/example/task-api/modules/activity"
	"github.com/example/task-api/modules/api"
	"github.com/example/task-api/modules/cache"
	"github.com/example/task-api/modules/store"
	"github.com/example/task-api/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	serveCmd := newServeCommand(&configFile)
	root := &cobra.Command{
		Use:          "tasks",
		Short:        "Task management REST API",
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", os.Getenv("TASKS_CONFIG"), "config file path")
	root.AddCommand(serveCmd, newMigrateCommand(&configFile))
	return root
}

func newServeCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			os.Exit(serve(cfg))
			return nil
		},
	}
}

func newMigrateCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			app, err := mono.NewMonoApplication(
				mono.WithLogLevel(mono.LogLevelError),
				mono.WithLogFormat(mono.LogFormatText),
				mono.WithNATSPort(cfg.NATSPort),
			)
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}

			// Starting the store applies the schema.
			s := store.NewModule(cfg.Database, app.Logger())
			ctx := cmd.Context()
			if err := s.Start(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Printf("Schema applied (driver: %s)", cfg.Database.Driver)
			return s.Stop(ctx)
		},
	}
}

// serve runs the application until a shutdown signal and returns the exit code.
func serve(cfg *config.Config) int {
	log.Println("=== Task API ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithNATSPort(cfg.NATSPort),
	)
	if err != nil {
		log.Printf("Failed to create application: %v", err)
		return 1
	}
	logger := app.Logger()

	// The task module reads its repository from the store, or from the
	// cache module wrapping the store when Redis is configured.
	storeModule := store.NewModule(cfg.Database, logger)
	var provider task.RepositoryProvider = storeModule
	checks := []api.HealthChecker{storeModule}

	app.Register(storeModule)
	if cfg.Cache.Enabled() {
		cacheModule := cache.NewModule(cfg.Cache, storeModule, logger)
		app.Register(cacheModule)
		provider = cacheModule
		checks = append(checks, cacheModule)
	}

	activityModule := activity.NewModule(logger)
	apiModule := api.NewModule(api.Options{
		Port:        cfg.HTTPPort,
		CORSOrigins: cfg.CORSOrigins,
	}, activityModule, logger, checks...)

	app.Register(activityModule)                   // Event consumer (subscribes to task events)
	app.Register(task.NewModule(provider, logger)) // Core domain (emits events)
	app.Register(apiModule)                        // Driving adapter (depends on task)

	if err := app.Start(context.Background()); err != nil {
		log.Printf("Failed to start application: %v", err)
		return 1
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	return exitCode
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("  Store:  %s", cfg.Database.Driver)
	if cfg.Cache.Enabled() {
		log.Printf("  Cache:  redis at %s (ttl %s)", cfg.Cache.RedisAddr, cfg.Cache.TTL)
	} else {
		log.Println("  Cache:  disabled")
	}
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.HTTPPort)
	log.Println("  POST   /tasks               - Add a task")
	log.Println("  GET    /tasks               - List all tasks")
	log.Println("  GET    /tasks/:id           - Get a task by ID")
	log.Println("  PUT    /tasks/:id           - Update a task")
	log.Println("  DELETE /tasks/:id           - Delete a task")
	log.Println("  PUT    /tasks/:id/complete  - Mark a task completed")
	log.Println("  GET    /activity            - Recent task events")
	log.Println("  GET    /health              - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
