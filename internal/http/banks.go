package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ledger/internal/audit"
	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/database/banks"
	"github.com/mrlokans/ledger/internal/entities"
)

// BankStore defines database operations for banks.
type BankStore interface {
	Create(ctx context.Context, bank *entities.Bank) error
	GetByID(ctx context.Context, id uint) (*entities.Bank, error)
	GetByName(ctx context.Context, name string) (*entities.Bank, error)
	List(ctx context.Context, search string, opts database.ListOptions) (database.Page[entities.Bank], error)
	Update(ctx context.Context, bank *entities.Bank) error
	Delete(ctx context.Context, id uint) error
	StatementCounts(ctx context.Context) ([]banks.StatementCount, error)
	CleanupAllOrphaned(ctx context.Context) (banks.CleanupResult, error)
}

type bankRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type BanksController struct {
	store    BankStore
	recorder *audit.Recorder
}

func NewBanksController(store BankStore, recorder *audit.Recorder) *BanksController {
	return &BanksController{store: store, recorder: recorder}
}

// GET /api/banks?q=&limit=&offset=
func (bc *BanksController) List(c *gin.Context) {
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	page, err := bc.store.List(c.Request.Context(), c.Query("q"), opts)
	if err != nil {
		respondInternalError(c, err, "list banks")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(page, opts))
}

// POST /api/banks
func (bc *BanksController) Create(c *gin.Context) {
	var req bankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	ctx := c.Request.Context()
	if _, err := bc.store.GetByName(ctx, req.Name); err == nil {
		respondConflict(c, "bank already exists")
		return
	}

	bank := &entities.Bank{Name: req.Name}
	if err := bc.store.Create(ctx, bank); err != nil {
		respondInternalError(c, err, "create bank")
		return
	}
	respondCreated(c, bank)
}

// GET /api/banks/:id
func (bc *BanksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bank, err := bc.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "bank", "get bank")
		return
	}
	c.JSON(http.StatusOK, bank)
}

// PUT /api/banks/:id
func (bc *BanksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req bankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	ctx := c.Request.Context()
	if other, err := bc.store.GetByName(ctx, req.Name); err == nil && other.ID != id {
		respondConflict(c, "another bank already uses this name")
		return
	}

	if err := bc.store.Update(ctx, &entities.Bank{ID: id, Name: req.Name}); err != nil {
		respondStoreError(c, err, "bank", "update bank")
		return
	}
	bank, err := bc.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "bank", "update bank")
		return
	}
	c.JSON(http.StatusOK, bank)
}

// Delete removes a bank that has no statements.
// DELETE /api/banks/:id
func (bc *BanksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	err := bc.store.Delete(c.Request.Context(), id)
	switch {
	case err == nil:
		respondSuccess(c, "bank deleted")
	case errors.Is(err, banks.ErrBankHasStatements):
		respondConflict(c, err.Error())
	default:
		respondStoreError(c, err, "bank", "delete bank")
	}
}

// StatementCounts lists every bank with its number of statements.
// GET /api/banks/statement-counts
func (bc *BanksController) StatementCounts(c *gin.Context) {
	counts, err := bc.store.StatementCounts(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "bank statement counts")
		return
	}
	if counts == nil {
		counts = []banks.StatementCount{}
	}
	c.JSON(http.StatusOK, counts)
}

// Cleanup removes every bank without statements.
// POST /api/banks/cleanup
func (bc *BanksController) Cleanup(c *gin.Context) {
	result, err := bc.store.CleanupAllOrphaned(c.Request.Context())
	bc.recorder.BanksCleaned(c.Request.Context(), requestID(c), result.RemovedBanks, err)
	if err != nil {
		respondInternalError(c, err, "cleanup banks")
		return
	}
	c.JSON(http.StatusOK, result)
}
