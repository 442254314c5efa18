package store

import (
	"context"
	"fmt"

	"github.com/example/task-api/config"
	domain "github.com/example/task-api/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Module owns the task database connection and exposes the repository.
type Module struct {
	cfg    config.Database
	logger types.Logger
	db     *gorm.DB
	pool   *pgxpool.Pool
	repo   domain.Repository
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new store module for the configured driver.
func NewModule(cfg config.Database, logger types.Logger) *Module {
	return &Module{
		cfg:    cfg,
		logger: logger.WithModule("store"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "store"
}

// Repository returns the task repository. It is nil before Start.
func (m *Module) Repository() domain.Repository {
	return m.repo
}

// Start opens the database connection and runs migrations.
func (m *Module) Start(ctx context.Context) error {
	switch m.cfg.Driver {
	case config.DriverPostgres:
		return m.startPostgres(ctx)
	default:
		return m.startSQLite()
	}
}

func (m *Module) startSQLite() error {
	m.logger.Info("Connecting to SQLite database", "path", m.cfg.Path)

	logLevel := gormlogger.Silent
	if m.cfg.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	repo := NewGormRepository(db)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	m.repo = repo

	m.logger.Info("Store started", "driver", config.DriverSQLite)
	return nil
}

func (m *Module) startPostgres(ctx context.Context) error {
	m.logger.Info("Connecting to PostgreSQL")

	pool, err := pgxpool.New(ctx, m.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	m.pool = pool

	repo := NewPostgresRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	m.repo = repo

	m.logger.Info("Store started", "driver", config.DriverPostgres)
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.pool != nil {
		m.pool.Close()
		m.logger.Info("Connection pool closed")
	}
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	m.logger.Info("Database connection closed")
	return nil
}

// Health pings the active database.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	switch {
	case m.pool != nil:
		if err := m.pool.Ping(ctx); err != nil {
			return unhealthy(fmt.Sprintf("database ping failed: %v", err))
		}
		return mono.HealthStatus{
			Healthy: true,
			Message: "operational",
			Details: map[string]any{"driver": "pgx/v5"},
		}
	case m.db != nil:
		sqlDB, err := m.db.DB()
		if err != nil {
			return unhealthy(fmt.Sprintf("failed to get sql.DB: %v", err))
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return unhealthy(fmt.Sprintf("database ping failed: %v", err))
		}
		return mono.HealthStatus{
			Healthy: true,
			Message: "operational",
			Details: map[string]any{"driver": "sqlite", "path": m.cfg.Path},
		}
	default:
		return unhealthy("database not initialized")
	}
}

func unhealthy(msg string) mono.HealthStatus {
	return mono.HealthStatus{Healthy: false, Message: msg}
}
