package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/entities"
)

// SupplierStore defines database operations for suppliers.
type SupplierStore interface {
	Create(ctx context.Context, supplier *entities.Supplier) error
	GetByID(ctx context.Context, id uint) (*entities.Supplier, error)
	GetByName(ctx context.Context, name string) (*entities.Supplier, error)
	List(ctx context.Context, search string, opts database.ListOptions) (database.Page[entities.Supplier], error)
	Update(ctx context.Context, supplier *entities.Supplier) error
	Delete(ctx context.Context, id uint) error
}

type SuppliersController struct {
	store SupplierStore
}

func NewSuppliersController(store SupplierStore) *SuppliersController {
	return &SuppliersController{store: store}
}

// List returns a page of suppliers, optionally filtered by name.
// GET /api/suppliers?q=&limit=&offset=
func (sc *SuppliersController) List(c *gin.Context) {
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	page, err := sc.store.List(c.Request.Context(), c.Query("q"), opts)
	if err != nil {
		respondInternalError(c, err, "list suppliers")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(page, opts))
}

// POST /api/suppliers
func (sc *SuppliersController) Create(c *gin.Context) {
	req, ok := bindPartyRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := sc.store.GetByName(ctx, req.Name); err == nil {
		respondConflict(c, "supplier already exists")
		return
	} else if !database.IsNotFound(err) {
		respondInternalError(c, err, "create supplier")
		return
	}

	supplier := &entities.Supplier{
		Name:         req.Name,
		Country:      req.Country,
		PaymentTerms: req.PaymentTerms,
		TermsDetail:  req.TermsDetail,
		EtaID:        req.EtaID,
	}
	if err := sc.store.Create(ctx, supplier); err != nil {
		respondInternalError(c, err, "create supplier")
		return
	}
	respondCreated(c, supplier)
}

// Get returns a supplier with its invoices.
// GET /api/suppliers/:id
func (sc *SuppliersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	supplier, err := sc.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "supplier", "get supplier")
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// PUT /api/suppliers/:id
func (sc *SuppliersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindPartyRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if other, err := sc.store.GetByName(ctx, req.Name); err == nil && other.ID != id {
		respondConflict(c, "another supplier already uses this name")
		return
	}

	supplier := &entities.Supplier{
		ID:           id,
		Name:         req.Name,
		Country:      req.Country,
		PaymentTerms: req.PaymentTerms,
		TermsDetail:  req.TermsDetail,
		EtaID:        req.EtaID,
	}
	if err := sc.store.Update(ctx, supplier); err != nil {
		respondStoreError(c, err, "supplier", "update supplier")
		return
	}
	updated, err := sc.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "supplier", "update supplier")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a supplier. Its invoices and statements are kept and unlinked.
// DELETE /api/suppliers/:id
func (sc *SuppliersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := sc.store.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "supplier", "delete supplier")
		return
	}
	respondSuccess(c, "supplier deleted")
}
