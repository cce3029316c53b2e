package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/entities"
	"github.com/mrlokans/ledger/internal/paymentterms"
)

// CustomerStore defines database operations for customers.
type CustomerStore interface {
	Create(ctx context.Context, customer *entities.Customer) error
	GetByID(ctx context.Context, id uint) (*entities.Customer, error)
	GetByName(ctx context.Context, name string) (*entities.Customer, error)
	List(ctx context.Context, search string, opts database.ListOptions) (database.Page[entities.Customer], error)
	Update(ctx context.Context, customer *entities.Customer) error
	Delete(ctx context.Context, id uint) error
}

// partyRequest is the request body for creating or updating a customer or supplier.
type partyRequest struct {
	Name         string                 `json:"name" binding:"required,max=255"`
	Country      string                 `json:"country" binding:"max=64"`
	PaymentTerms string                 `json:"payment_terms" binding:"max=255"`
	TermsDetail  *entities.PaymentTerms `json:"terms_detail"`
	EtaID        string                 `json:"eta_id" binding:"max=64"`
}

// bindPartyRequest binds the body and rejects structured terms that do not
// add up. It writes the error response itself.
func bindPartyRequest(c *gin.Context) (partyRequest, bool) {
	var req partyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return req, false
	}
	if req.TermsDetail == nil {
		return req, true
	}
	if issues := paymentterms.Validate(*req.TermsDetail); len(issues) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "invalid payment terms",
			Code:      "invalid_payment_terms",
			Details:   issues,
			RequestID: requestID(c),
		})
		return req, false
	}
	if req.PaymentTerms == "" {
		req.PaymentTerms = req.TermsDetail.PaymentPeriod
	}
	return req, true
}

type CustomersController struct {
	store CustomerStore
}

func NewCustomersController(store CustomerStore) *CustomersController {
	return &CustomersController{store: store}
}

// List returns a page of customers, optionally filtered by name.
// GET /api/customers?q=&limit=&offset=
func (cc *CustomersController) List(c *gin.Context) {
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	page, err := cc.store.List(c.Request.Context(), c.Query("q"), opts)
	if err != nil {
		respondInternalError(c, err, "list customers")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(page, opts))
}

// POST /api/customers
func (cc *CustomersController) Create(c *gin.Context) {
	req, ok := bindPartyRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := cc.store.GetByName(ctx, req.Name); err == nil {
		respondConflict(c, "customer already exists")
		return
	} else if !database.IsNotFound(err) {
		respondInternalError(c, err, "create customer")
		return
	}

	customer := &entities.Customer{
		Name:         req.Name,
		Country:      req.Country,
		PaymentTerms: req.PaymentTerms,
		TermsDetail:  req.TermsDetail,
		EtaID:        req.EtaID,
	}
	if err := cc.store.Create(ctx, customer); err != nil {
		respondInternalError(c, err, "create customer")
		return
	}
	respondCreated(c, customer)
}

// Get returns a customer with its invoices.
// GET /api/customers/:id
func (cc *CustomersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	customer, err := cc.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "customer", "get customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// PUT /api/customers/:id
func (cc *CustomersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindPartyRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if other, err := cc.store.GetByName(ctx, req.Name); err == nil && other.ID != id {
		respondConflict(c, "another customer already uses this name")
		return
	}

	customer := &entities.Customer{
		ID:           id,
		Name:         req.Name,
		Country:      req.Country,
		PaymentTerms: req.PaymentTerms,
		TermsDetail:  req.TermsDetail,
		EtaID:        req.EtaID,
	}
	if err := cc.store.Update(ctx, customer); err != nil {
		respondStoreError(c, err, "customer", "update customer")
		return
	}
	updated, err := cc.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "customer", "update customer")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a customer. Its invoices and statements are kept and unlinked.
// DELETE /api/customers/:id
func (cc *CustomersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := cc.store.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "customer", "delete customer")
		return
	}
	respondSuccess(c, "customer deleted")
}
