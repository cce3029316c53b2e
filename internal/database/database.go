package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/ledger/internal/config"
)

type Database struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// Options describes how to open the ledger database.
type Options struct {
	Driver     string // "sqlite" or "postgres"
	DSN        string // file path for sqlite, connection URL for postgres
	MaxConns   int    // default: 10
	LogQueries bool
}

// OptionsFromConfig maps the database section of the application config.
func OptionsFromConfig(cfg config.Database) Options {
	return Options{
		Driver:     cfg.Driver,
		DSN:        cfg.DSN,
		MaxConns:   cfg.MaxConns,
		LogQueries: cfg.LogQueries,
	}
}

func dialector(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case config.DriverSQLite, "":
		// Foreign keys are off by default in SQLite; cascades need them.
		return sqlite.Open(opts.DSN + sqliteParams(opts.DSN)), nil
	case config.DriverPostgres:
		return postgres.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func sqliteParams(dsn string) string {
	if strings.Contains(dsn, "?") {
		return "&_foreign_keys=on"
	}
	return "?_foreign_keys=on"
}

// Open connects, configures the pool and applies pending migrations.
func Open(opts Options) (*Database, error) {
	d, err := dialector(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: newGormLogger(opts.LogQueries),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	if opts.Driver != config.DriverPostgres {
		// SQLite allows a single writer.
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(max(1, maxConns/2))
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("driver", driverName(opts.Driver)).Int("max_conns", maxConns).Msg("Database initialized")

	return &Database{DB: db, sqlDB: sqlDB}, nil
}

// NewDatabase opens a SQLite database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(Options{Driver: config.DriverSQLite, DSN: dbPath})
}

func driverName(driver string) string {
	if driver == "" {
		return config.DriverSQLite
	}
	return driver
}

func (d *Database) Close() error {
	return d.sqlDB.Close()
}

// Ping verifies the connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

// Stats returns connection pool statistics.
func (d *Database) Stats() sql.DBStats {
	return d.sqlDB.Stats()
}
