package http

import (
	"github.com/mrlokans/ledger/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Database backs every repository.
	Database *database.Database

	// Source is asked for the handle on each health check. Defaults to
	// Database when nil.
	Source DatabaseSource

	// Application info
	Version string
}

// staticSource serves a fixed handle.
type staticSource struct {
	db *database.Database
}

func (s staticSource) Get() (*database.Database, error) {
	return s.db, nil
}
