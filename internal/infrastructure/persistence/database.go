package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/motorshop/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the shared PostgreSQL handle. Repositories take DB directly.
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

// Options tunes how the connection is opened
type Options struct {
	// Logger receives SQL logs. Nil is silent.
	Logger logger.Interface
	// Tracing adds a span per statement through otelgorm
	Tracing bool
}

// NewDatabase opens the pool described by cfg and checks it with a ping
func NewDatabase(cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	gl := opts.Logger
	if gl == nil {
		gl = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if opts.Tracing {
		plugin := otelgorm.NewPlugin(otelgorm.WithDBName(cfg.DBName), otelgorm.WithoutQueryVariables())
		if err := db.Use(plugin); err != nil {
			return nil, fmt.Errorf("failed to register tracing plugin: %w", err)
		}
	}

	d, err := wrap(db)
	if err != nil {
		return nil, err
	}
	d.sql.SetMaxOpenConns(cfg.MaxOpenConns)
	d.sql.SetMaxIdleConns(cfg.MaxIdleConns)
	d.sql.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := d.Ping(context.Background()); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

func wrap(db *gorm.DB) (*Database, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return &Database{DB: db, sql: sqlDB}, nil
}

// SQL returns the pool for tools that need database/sql, such as migrations
func (d *Database) SQL() *sql.DB {
	return d.sql
}

// Ping checks that the database answers within ctx
func (d *Database) Ping(ctx context.Context) error {
	if err := d.sql.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	return d.sql.Close()
}
