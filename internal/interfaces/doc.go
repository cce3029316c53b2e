// Package interfaces holds compile-time checks that the concrete types wired
// together in the router, the scheduler and the CLI satisfy the interfaces
// their consumers declare.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - CustomerStore, SupplierStore: counterparties (internal/http/customers.go, suppliers.go)
//   - BankStore: banks and orphan cleanup (internal/http/banks.go)
//   - StatementStore, TransactionStore: bank statements and their lines (internal/http/statements.go)
//   - InvoiceStore: invoices, summaries and grouping (internal/http/invoices.go)
//   - AuditStore: audit event listing (internal/http/audit.go)
//
// ## Client Accessor
//
//   - DatabaseSource: the shared database handle used by the health check (internal/http/health.go)
//
// ## Background Jobs
//
//   - BankCleaner: periodic orphan cleanup (internal/scheduler/bank_cleanup.go)
//   - audit.Store: audit event persistence (internal/audit/service.go)
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Add a gormigrate step in internal/database/migrations.go
//
//  4. Declare the consumer's interface next to its controller and add a check:
//
//     var _ http.DomainStore = (*domain.Repository)(nil)
package interfaces
