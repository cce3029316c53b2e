package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
	EnvProduction  Environment = "production"
)

type (
	Config struct {
		App         App
		HTTP        HTTP
		Global      Global
		Database    Database
		Log         Log
		BankCleanup BankCleanup
		Audit       Audit
	}

	App struct {
		// Env is free-form; only development, test and production change defaults.
		Env Environment `validate:"required"`
	}
	HTTP struct {
		Port int32 `validate:"gt=0,lt=65536"`
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int `validate:"gte=0"`
	}
	Database struct {
		Driver     string `validate:"required,oneof=sqlite postgres"`
		DSN        string `validate:"required"`
		MaxConns   int    `validate:"gte=0"`
		LogQueries bool
		// CacheClient keeps the shared client in the process-wide slot so a
		// re-created provider reuses it instead of opening a new pool.
		CacheClient bool
	}
	Log struct {
		Level  string `validate:"required,oneof=trace debug info warn error"`
		Format string `validate:"required,oneof=console json"`
	}
	BankCleanup struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Audit struct {
		RetentionDays int `validate:"gte=1"`
	}
)

var validate = validator.New()

// IsProduction reports whether the process runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// Validate checks the loaded values against their struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("app_env", string(EnvDevelopment))
	v.SetDefault("port", DefaultPort)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_dsn", DefaultDatabasePath)
	v.SetDefault("database_max_conns", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("bank_cleanup_enabled", false)
	v.SetDefault("bank_cleanup_schedule", "0 3 * * *")
	v.SetDefault("audit_retention_days", DefaultAuditRetentionDays)

	env := Environment(strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))))

	// Query logging and client caching follow the environment unless set explicitly.
	v.SetDefault("database_log_queries", env == EnvDevelopment)
	v.SetDefault("database_cache_client", env != EnvProduction)

	return &Config{
		App: App{
			Env: env,
		},
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:      strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:         v.GetString("DATABASE_DSN"),
			MaxConns:    v.GetInt("DATABASE_MAX_CONNS"),
			LogQueries:  v.GetBool("DATABASE_LOG_QUERIES"),
			CacheClient: v.GetBool("DATABASE_CACHE_CLIENT"),
		},
		Log: Log{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
		BankCleanup: BankCleanup{
			Enabled:  v.GetBool("BANK_CLEANUP_ENABLED"),
			Schedule: v.GetString("BANK_CLEANUP_SCHEDULE"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
	}
}
