package interfaces

// Compile-time interface implementation checks.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/ledger/internal/audit"
	"github.com/mrlokans/ledger/internal/dashboard"
	"github.com/mrlokans/ledger/internal/database"
	auditRepo "github.com/mrlokans/ledger/internal/database/audit"
	"github.com/mrlokans/ledger/internal/database/banks"
	"github.com/mrlokans/ledger/internal/database/customers"
	"github.com/mrlokans/ledger/internal/database/invoices"
	"github.com/mrlokans/ledger/internal/database/statements"
	"github.com/mrlokans/ledger/internal/database/suppliers"
	"github.com/mrlokans/ledger/internal/database/transactions"
	"github.com/mrlokans/ledger/internal/http"
	"github.com/mrlokans/ledger/internal/scheduler"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.CustomerStore = (*customers.Repository)(nil)
var _ http.SupplierStore = (*suppliers.Repository)(nil)
var _ http.BankStore = (*banks.Repository)(nil)
var _ http.StatementStore = (*statements.Repository)(nil)
var _ http.TransactionStore = (*transactions.Repository)(nil)
var _ http.InvoiceStore = (*invoices.Repository)(nil)
var _ http.AuditStore = (*auditRepo.Repository)(nil)
var _ dashboard.StatementSource = (*statements.Repository)(nil)
var _ dashboard.InvoiceSource = (*invoices.Repository)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.DashboardSource = (*dashboard.Service)(nil)

// =============================================================================
// Client Accessor
// =============================================================================

var _ http.DatabaseSource = (*database.Provider)(nil)

// =============================================================================
// Background Jobs
// =============================================================================

var _ scheduler.BankCleaner = (*banks.Repository)(nil)
var _ audit.Store = (*auditRepo.Repository)(nil)
