package config

const (
	// DefaultDatabasePath is the default SQLite file for the ledger database
	DefaultDatabasePath = "./ledger.db"

	// DefaultPort is the default HTTP port
	DefaultPort = 8190

	// DefaultAuditRetentionDays is how long prune-audit keeps audit events
	DefaultAuditRetentionDays = 90
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)
