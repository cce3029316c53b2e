package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mrlokans/ledger/internal/audit"
	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/database/statements"
	"github.com/mrlokans/ledger/internal/database/transactions"
	"github.com/mrlokans/ledger/internal/entities"
)

// StatementStore defines database operations for bank statements.
type StatementStore interface {
	Create(ctx context.Context, stmt *entities.BankStatement) error
	GetByID(ctx context.Context, id uint, withTransactions bool) (*entities.BankStatement, error)
	List(ctx context.Context, filter statements.Filter, opts database.ListOptions) (database.Page[entities.BankStatement], error)
	Update(ctx context.Context, stmt *entities.BankStatement) error
	Delete(ctx context.Context, id uint) (bool, error)
	Validate(ctx context.Context, id uint) (*entities.BankStatement, statements.ValidationResult, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// TransactionStore defines database operations for statement lines.
type TransactionStore interface {
	Create(ctx context.Context, txn *entities.Transaction) error
	GetByID(ctx context.Context, id uint) (*entities.Transaction, error)
	ListForStatement(ctx context.Context, statementID uint) ([]entities.Transaction, error)
	Update(ctx context.Context, txn *entities.Transaction) error
	Delete(ctx context.Context, statementID, id uint) error
	Aggregate(ctx context.Context, statementID uint) (transactions.Summary, error)
	GroupByEntity(ctx context.Context, statementID uint) ([]transactions.EntityTotal, error)
}

type transactionRequest struct {
	TransactionDate time.Time           `json:"transaction_date"`
	CreditAmount    decimal.NullDecimal `json:"credit_amount"`
	DebitAmount     decimal.NullDecimal `json:"debit_amount"`
	Balance         decimal.NullDecimal `json:"balance"`
	Description     string              `json:"description"`
	PageNumber      string              `json:"page_number" binding:"max=16"`
	EntityName      string              `json:"entity_name" binding:"max=255"`
	Currency        string              `json:"currency" binding:"max=8"`
}

func (r transactionRequest) toEntity() entities.Transaction {
	return entities.Transaction{
		TransactionDate: r.TransactionDate,
		CreditAmount:    r.CreditAmount,
		DebitAmount:     r.DebitAmount,
		Balance:         r.Balance,
		Description:     r.Description,
		PageNumber:      r.PageNumber,
		EntityName:      r.EntityName,
		Currency:        r.Currency,
	}
}

// statementHeader holds the fields shared by create and update requests.
type statementHeader struct {
	CustomerID           *uint           `json:"customer_id"`
	SupplierID           *uint           `json:"supplier_id"`
	FileName             string          `json:"file_name" binding:"max=512"`
	FileURL              string          `json:"file_url" binding:"max=2048"`
	AccountNumber        string          `json:"account_number" binding:"max=64"`
	AccountType          string          `json:"account_type" binding:"max=64"`
	AccountCurrency      string          `json:"account_currency" binding:"max=8"`
	StatementPeriodStart time.Time       `json:"statement_period_start" binding:"required"`
	StatementPeriodEnd   time.Time       `json:"statement_period_end" binding:"required,gtefield=StatementPeriodStart"`
	StartingBalance      decimal.Decimal `json:"starting_balance"`
	EndingBalance        decimal.Decimal `json:"ending_balance"`
}

type createStatementRequest struct {
	statementHeader
	BankID       uint                 `json:"bank_id"`
	BankName     string               `json:"bank_name" binding:"required_without=BankID,max=255"`
	Parsed       bool                 `json:"parsed"`
	Transactions []transactionRequest `json:"transactions" binding:"dive"`
}

type validateResponse struct {
	Statement *entities.BankStatement     `json:"statement"`
	Result    statements.ValidationResult `json:"result"`
}

type transactionSummaryResponse struct {
	transactions.Summary
	ByEntity []transactions.EntityTotal `json:"by_entity"`
}

type StatementsController struct {
	statements   StatementStore
	transactions TransactionStore
	recorder     *audit.Recorder
}

func NewStatementsController(stmtStore StatementStore, txnStore TransactionStore, recorder *audit.Recorder) *StatementsController {
	return &StatementsController{statements: stmtStore, transactions: txnStore, recorder: recorder}
}

// List returns a page of statements without their transactions.
// GET /api/bank-statements?bank_id=&customer_id=&supplier_id=&status=&account_number=
func (sc *StatementsController) List(c *gin.Context) {
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	var filter statements.Filter
	if filter.BankID, ok = parseOptionalQueryID(c, "bank_id"); !ok {
		return
	}
	if filter.CustomerID, ok = parseOptionalQueryID(c, "customer_id"); !ok {
		return
	}
	if filter.SupplierID, ok = parseOptionalQueryID(c, "supplier_id"); !ok {
		return
	}
	if status := c.Query("status"); status != "" {
		switch s := entities.ValidationStatus(status); s {
		case entities.ValidationStatusPending, entities.ValidationStatusPassed, entities.ValidationStatusFailed:
			filter.ValidationStatus = s
		default:
			respondBadRequest(c, "invalid status")
			return
		}
	}
	filter.AccountNumber = c.Query("account_number")

	page, err := sc.statements.List(c.Request.Context(), filter, opts)
	if err != nil {
		respondInternalError(c, err, "list statements")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(page, opts))
}

// Create stores a statement together with its transactions.
// POST /api/bank-statements
func (sc *StatementsController) Create(c *gin.Context) {
	var req createStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	stmt := &entities.BankStatement{
		BankID:               req.BankID,
		BankName:             req.BankName,
		CustomerID:           req.CustomerID,
		SupplierID:           req.SupplierID,
		FileName:             req.FileName,
		FileURL:              req.FileURL,
		AccountNumber:        req.AccountNumber,
		AccountType:          req.AccountType,
		AccountCurrency:      req.AccountCurrency,
		StatementPeriodStart: req.StatementPeriodStart,
		StatementPeriodEnd:   req.StatementPeriodEnd,
		StartingBalance:      req.StartingBalance,
		EndingBalance:        req.EndingBalance,
		Parsed:               req.Parsed,
		ValidationStatus:     entities.ValidationStatusPending,
	}
	for _, t := range req.Transactions {
		stmt.Transactions = append(stmt.Transactions, t.toEntity())
	}

	ctx := c.Request.Context()
	if err := sc.statements.Create(ctx, stmt); err != nil {
		if database.IsNotFound(err) {
			respondNotFound(c, "bank")
			return
		}
		if errors.Is(err, statements.ErrBankRequired) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create statement")
		return
	}

	created, err := sc.statements.GetByID(ctx, stmt.ID, true)
	if err != nil {
		respondInternalError(c, err, "create statement")
		return
	}
	respondCreated(c, created)
}

// Get returns a statement with its transactions.
// GET /api/bank-statements/:id
func (sc *StatementsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	stmt, err := sc.statements.GetByID(c.Request.Context(), id, true)
	if err != nil {
		respondStoreError(c, err, "statement", "get statement")
		return
	}
	c.JSON(http.StatusOK, stmt)
}

// Update replaces the statement header and resets its validation.
// PUT /api/bank-statements/:id
func (sc *StatementsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req statementHeader
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	err := sc.statements.Update(ctx, &entities.BankStatement{
		ID:                   id,
		CustomerID:           req.CustomerID,
		SupplierID:           req.SupplierID,
		FileName:             req.FileName,
		FileURL:              req.FileURL,
		AccountNumber:        req.AccountNumber,
		AccountType:          req.AccountType,
		AccountCurrency:      req.AccountCurrency,
		StatementPeriodStart: req.StatementPeriodStart,
		StatementPeriodEnd:   req.StatementPeriodEnd,
		StartingBalance:      req.StartingBalance,
		EndingBalance:        req.EndingBalance,
	})
	if err != nil {
		respondStoreError(c, err, "statement", "update statement")
		return
	}
	stmt, err := sc.statements.GetByID(ctx, id, false)
	if err != nil {
		respondStoreError(c, err, "statement", "update statement")
		return
	}
	c.JSON(http.StatusOK, stmt)
}

// Delete removes a statement and its transactions, and the bank if it has
// no statements left.
// DELETE /api/bank-statements/:id
func (sc *StatementsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bankRemoved, err := sc.statements.Delete(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "statement", "delete statement")
		return
	}
	sc.recorder.StatementDeleted(c.Request.Context(), requestID(c), id, bankRemoved)
	c.JSON(http.StatusOK, gin.H{
		"message":      "statement deleted",
		"bank_removed": bankRemoved,
	})
}

// Validate reconciles the statement's balances with its transactions.
// POST /api/bank-statements/:id/validate
func (sc *StatementsController) Validate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	stmt, result, err := sc.statements.Validate(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "statement", "validate statement")
		return
	}
	sc.recorder.StatementValidated(c.Request.Context(), requestID(c), id, result.Status, result.Notes)
	c.JSON(http.StatusOK, validateResponse{Statement: stmt, Result: result})
}

// GET /api/bank-statements/:id/transactions
func (sc *StatementsController) ListTransactions(c *gin.Context) {
	id, ok := sc.requireStatement(c)
	if !ok {
		return
	}
	lines, err := sc.transactions.ListForStatement(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "list transactions")
		return
	}
	if lines == nil {
		lines = []entities.Transaction{}
	}
	c.JSON(http.StatusOK, lines)
}

// POST /api/bank-statements/:id/transactions
func (sc *StatementsController) CreateTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	txn := req.toEntity()
	txn.BankStatementID = id
	if err := sc.transactions.Create(c.Request.Context(), &txn); err != nil {
		respondStoreError(c, err, "statement", "create transaction")
		return
	}
	respondCreated(c, txn)
}

// PUT /api/bank-statements/:id/transactions/:transactionId
func (sc *StatementsController) UpdateTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	txnID, ok := parseIDParam(c, "transactionId")
	if !ok {
		return
	}
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	txn := req.toEntity()
	txn.ID = txnID
	txn.BankStatementID = id
	if err := sc.transactions.Update(ctx, &txn); err != nil {
		respondStoreError(c, err, "transaction", "update transaction")
		return
	}
	updated, err := sc.transactions.GetByID(ctx, txnID)
	if err != nil {
		respondStoreError(c, err, "transaction", "update transaction")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/bank-statements/:id/transactions/:transactionId
func (sc *StatementsController) DeleteTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	txnID, ok := parseIDParam(c, "transactionId")
	if !ok {
		return
	}
	if err := sc.transactions.Delete(c.Request.Context(), id, txnID); err != nil {
		respondStoreError(c, err, "transaction", "delete transaction")
		return
	}
	respondSuccess(c, "transaction deleted")
}

// TransactionSummary totals a statement's lines overall and per counterparty.
// GET /api/bank-statements/:id/transactions/summary
func (sc *StatementsController) TransactionSummary(c *gin.Context) {
	id, ok := sc.requireStatement(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	summary, err := sc.transactions.Aggregate(ctx, id)
	if err != nil {
		respondInternalError(c, err, "transaction summary")
		return
	}
	byEntity, err := sc.transactions.GroupByEntity(ctx, id)
	if err != nil {
		respondInternalError(c, err, "transaction summary")
		return
	}
	if byEntity == nil {
		byEntity = []transactions.EntityTotal{}
	}
	c.JSON(http.StatusOK, transactionSummaryResponse{Summary: summary, ByEntity: byEntity})
}

// requireStatement parses :id and responds 404 when no such statement exists.
func (sc *StatementsController) requireStatement(c *gin.Context) (uint, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return 0, false
	}
	exists, err := sc.statements.Exists(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "find statement")
		return 0, false
	}
	if !exists {
		respondNotFound(c, "statement")
		return 0, false
	}
	return id, true
}
