package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ledger/internal/audit"
	"github.com/mrlokans/ledger/internal/dashboard"
	auditRepo "github.com/mrlokans/ledger/internal/database/audit"
	"github.com/mrlokans/ledger/internal/database/banks"
	"github.com/mrlokans/ledger/internal/database/customers"
	"github.com/mrlokans/ledger/internal/database/invoices"
	"github.com/mrlokans/ledger/internal/database/statements"
	"github.com/mrlokans/ledger/internal/database/suppliers"
	"github.com/mrlokans/ledger/internal/database/transactions"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(AccessLogMiddleware())

	source := cfg.Source
	if source == nil && cfg.Database != nil {
		source = staticSource{db: cfg.Database}
	}
	health := NewHealthController(source, cfg.Version)

	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	if cfg.Database == nil {
		return router
	}
	db := cfg.Database.DB

	auditEvents := auditRepo.NewRepository(db)
	recorder := audit.NewRecorder(auditEvents, audit.SourceAPI)
	invoiceRepo := invoices.NewRepository(db)
	statementRepo := statements.NewRepository(db)

	customersController := NewCustomersController(customers.NewRepository(db))
	suppliersController := NewSuppliersController(suppliers.NewRepository(db))
	banksController := NewBanksController(banks.NewRepository(db), recorder)
	statementsController := NewStatementsController(statementRepo, transactions.NewRepository(db), recorder)
	invoicesController := NewInvoicesController(invoiceRepo, recorder)
	dashboardController := NewDashboardController(dashboard.NewService(statementRepo, invoiceRepo))
	auditController := NewAuditController(auditEvents)

	api := router.Group("/api")

	customerRoutes := api.Group("/customers")
	customerRoutes.GET("", customersController.List)
	customerRoutes.POST("", customersController.Create)
	customerRoutes.GET("/:id", customersController.Get)
	customerRoutes.PUT("/:id", customersController.Update)
	customerRoutes.DELETE("/:id", customersController.Delete)

	supplierRoutes := api.Group("/suppliers")
	supplierRoutes.GET("", suppliersController.List)
	supplierRoutes.POST("", suppliersController.Create)
	supplierRoutes.GET("/:id", suppliersController.Get)
	supplierRoutes.PUT("/:id", suppliersController.Update)
	supplierRoutes.DELETE("/:id", suppliersController.Delete)

	bankRoutes := api.Group("/banks")
	bankRoutes.GET("", banksController.List)
	bankRoutes.POST("", banksController.Create)
	bankRoutes.GET("/statement-counts", banksController.StatementCounts)
	bankRoutes.POST("/cleanup", banksController.Cleanup)
	bankRoutes.GET("/:id", banksController.Get)
	bankRoutes.PUT("/:id", banksController.Update)
	bankRoutes.DELETE("/:id", banksController.Delete)

	statementRoutes := api.Group("/bank-statements")
	statementRoutes.GET("", statementsController.List)
	statementRoutes.POST("", statementsController.Create)
	statementRoutes.GET("/:id", statementsController.Get)
	statementRoutes.PUT("/:id", statementsController.Update)
	statementRoutes.DELETE("/:id", statementsController.Delete)
	statementRoutes.POST("/:id/validate", statementsController.Validate)
	statementRoutes.GET("/:id/transactions", statementsController.ListTransactions)
	statementRoutes.POST("/:id/transactions", statementsController.CreateTransaction)
	statementRoutes.GET("/:id/transactions/summary", statementsController.TransactionSummary)
	statementRoutes.PUT("/:id/transactions/:transactionId", statementsController.UpdateTransaction)
	statementRoutes.DELETE("/:id/transactions/:transactionId", statementsController.DeleteTransaction)

	invoiceRoutes := api.Group("/invoices")
	invoiceRoutes.GET("", invoicesController.List)
	invoiceRoutes.POST("", invoicesController.Create)
	invoiceRoutes.GET("/summary", invoicesController.Summary)
	invoiceRoutes.GET("/group", invoicesController.Group)
	invoiceRoutes.GET("/:id", invoicesController.Get)
	invoiceRoutes.PUT("/:id", invoicesController.Update)
	invoiceRoutes.DELETE("/:id", invoicesController.Delete)
	invoiceRoutes.GET("/:id/payment-schedule", invoicesController.PaymentSchedule)

	api.GET("/dashboard/stats", dashboardController.Stats)

	auditRoutes := api.Group("/audit-events")
	auditRoutes.GET("", auditController.List)
	auditRoutes.GET("/:id", auditController.Get)

	return router
}
