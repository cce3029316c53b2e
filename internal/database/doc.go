// Package database provides the data access layer for the ledger.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), pool, migrations
//	├── client.go        # Shared client provider and the process-wide slot
//	├── query.go         # ListOptions and the Paginate scope
//	├── customers/       # Customer CRUD, upsert by name
//	├── suppliers/       # Supplier CRUD, upsert by name
//	├── banks/           # Bank CRUD, statement counts, orphan cleanup
//	├── statements/      # Bank statements with nested transactions, balance validation
//	├── transactions/    # Statement lines, aggregates and group-by
//	├── invoices/        # Invoice CRUD, upsert, aggregates and group-by
//	└── audit/           # Audit event trail and retention
//
// # Shared client
//
// Code that needs the database asks the shared provider instead of calling
// Open directly:
//
//	db, err := database.Shared(cfg.Database)
//	invoicesRepo := invoices.NewRepository(db.DB)
//
// When cfg.Database.CacheClient is set (the default outside production) the
// handle is kept in DefaultSlot, so rebuilding the provider reuses the open
// pool instead of dialing again.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add a migration in migrations.go
package database
