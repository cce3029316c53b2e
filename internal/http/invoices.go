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
	"github.com/mrlokans/ledger/internal/database/invoices"
	"github.com/mrlokans/ledger/internal/entities"
	"github.com/mrlokans/ledger/internal/paymentterms"
)

const dateLayout = "2006-01-02"

// InvoiceStore defines database operations for invoices.
type InvoiceStore interface {
	GetByID(ctx context.Context, id uint) (*entities.Invoice, error)
	List(ctx context.Context, filter invoices.Filter, opts database.ListOptions) (database.Page[entities.Invoice], error)
	Update(ctx context.Context, inv *entities.Invoice) error
	Delete(ctx context.Context, id uint) error
	Upsert(ctx context.Context, inv *entities.Invoice) (*entities.Invoice, bool, error)
	Aggregate(ctx context.Context, filter invoices.Filter) (invoices.Summary, error)
	GroupBy(ctx context.Context, field string, filter invoices.Filter) ([]invoices.GroupTotal, error)
}

type invoiceRequest struct {
	InvoiceNumber   string                 `json:"invoice_number" binding:"required,max=128"`
	InvoiceDate     time.Time              `json:"invoice_date" binding:"required"`
	IssuerName      string                 `json:"issuer_name" binding:"max=255"`
	ReceiverName    string                 `json:"receiver_name" binding:"max=255"`
	IssuerCountry   string                 `json:"issuer_country" binding:"max=64"`
	ReceiverCountry string                 `json:"receiver_country" binding:"max=64"`
	IssuerEtaID     string                 `json:"issuer_eta_id" binding:"max=64"`
	ReceiverEtaID   string                 `json:"receiver_eta_id" binding:"max=64"`
	TotalSales      decimal.Decimal        `json:"total_sales"`
	TotalDiscount   decimal.Decimal        `json:"total_discount"`
	NetAmount       decimal.Decimal        `json:"net_amount"`
	TaxAmount       decimal.Decimal        `json:"tax_amount"`
	Total           decimal.Decimal        `json:"total"`
	Currency        string                 `json:"currency" binding:"omitempty,len=3"`
	ExchangeRate    decimal.Decimal        `json:"exchange_rate"`
	InvoiceStatus   entities.InvoiceStatus `json:"invoice_status" binding:"omitempty,oneof=Valid Submitted Cancelled Rejected"`
	CustomerID      *uint                  `json:"customer_id"`
	SupplierID      *uint                  `json:"supplier_id"`
}

func (r invoiceRequest) toEntity(id uint) *entities.Invoice {
	return &entities.Invoice{
		ID:              id,
		InvoiceNumber:   r.InvoiceNumber,
		InvoiceDate:     r.InvoiceDate,
		IssuerName:      r.IssuerName,
		ReceiverName:    r.ReceiverName,
		IssuerCountry:   r.IssuerCountry,
		ReceiverCountry: r.ReceiverCountry,
		IssuerEtaID:     r.IssuerEtaID,
		ReceiverEtaID:   r.ReceiverEtaID,
		TotalSales:      r.TotalSales,
		TotalDiscount:   r.TotalDiscount,
		NetAmount:       r.NetAmount,
		TaxAmount:       r.TaxAmount,
		Total:           r.Total,
		Currency:        r.Currency,
		ExchangeRate:    r.ExchangeRate,
		InvoiceStatus:   r.InvoiceStatus,
		CustomerID:      r.CustomerID,
		SupplierID:      r.SupplierID,
	}
}

type InvoicesController struct {
	store    InvoiceStore
	recorder *audit.Recorder
}

func NewInvoicesController(store InvoiceStore, recorder *audit.Recorder) *InvoicesController {
	return &InvoicesController{store: store, recorder: recorder}
}

// GET /api/invoices?customer_id=&supplier_id=&party=&status=&currency=&from=&to=
func (ic *InvoicesController) List(c *gin.Context) {
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	filter, ok := parseInvoiceFilter(c)
	if !ok {
		return
	}
	page, err := ic.store.List(c.Request.Context(), filter, opts)
	if err != nil {
		respondInternalError(c, err, "list invoices")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(page, opts))
}

// Create stores a new invoice. An invoice with the same number and total
// is reported as a conflict.
// POST /api/invoices
func (ic *InvoicesController) Create(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	inv, created, err := ic.store.Upsert(c.Request.Context(), req.toEntity(0))
	if err != nil {
		if errors.Is(err, entities.ErrInvoiceBothParties) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create invoice")
		return
	}
	if !created {
		ic.recorder.InvoiceDuplicate(c.Request.Context(), requestID(c), inv.ID, inv.InvoiceNumber)
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:     "invoice already exists",
			Code:      "duplicate_invoice",
			Details:   gin.H{"id": inv.ID},
			RequestID: requestID(c),
		})
		return
	}
	respondCreated(c, inv)
}

// GET /api/invoices/:id
func (ic *InvoicesController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := ic.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "invoice", "get invoice")
		return
	}
	c.JSON(http.StatusOK, inv)
}

// PUT /api/invoices/:id
func (ic *InvoicesController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	inv := req.toEntity(id)
	if inv.Currency == "" {
		inv.Currency = "EGP"
	}
	if inv.ExchangeRate.IsZero() {
		inv.ExchangeRate = decimal.NewFromInt(1)
	}
	if err := ic.store.Update(ctx, inv); err != nil {
		if errors.Is(err, entities.ErrInvoiceBothParties) {
			respondBadRequest(c, err.Error())
			return
		}
		respondStoreError(c, err, "invoice", "update invoice")
		return
	}
	updated, err := ic.store.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "invoice", "update invoice")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/invoices/:id
func (ic *InvoicesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ic.store.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "invoice", "delete invoice")
		return
	}
	ic.recorder.InvoiceDeleted(c.Request.Context(), requestID(c), id)
	respondSuccess(c, "invoice deleted")
}

type paymentScheduleResponse struct {
	InvoiceID   uint                           `json:"invoice_id"`
	InvoiceDate time.Time                      `json:"invoice_date"`
	Total       decimal.Decimal                `json:"total"`
	Currency    string                         `json:"currency"`
	Party       string                         `json:"party,omitempty"`
	Terms       entities.PaymentTerms          `json:"terms"`
	Summary     string                         `json:"summary"`
	Issues      []string                       `json:"issues,omitempty"`
	Payments    []paymentterms.ExpectedPayment `json:"payments"`
}

// PaymentSchedule lists the payments expected for an invoice under the
// payment terms of its customer or supplier.
// GET /api/invoices/:id/payment-schedule
func (ic *InvoicesController) PaymentSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := ic.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "invoice", "payment schedule")
		return
	}

	resp := paymentScheduleResponse{
		InvoiceID:   inv.ID,
		InvoiceDate: inv.InvoiceDate,
		Total:       inv.Total,
		Currency:    inv.Currency,
	}
	switch {
	case inv.Customer != nil:
		resp.Party = invoices.PartyCustomer
		resp.Terms = paymentterms.Resolve(inv.Customer.TermsDetail, inv.Customer.PaymentTerms)
	case inv.Supplier != nil:
		resp.Party = invoices.PartySupplier
		resp.Terms = paymentterms.Resolve(inv.Supplier.TermsDetail, inv.Supplier.PaymentTerms)
	default:
		resp.Terms = paymentterms.Resolve(nil, "")
	}
	resp.Summary = paymentterms.Summary(resp.Terms)
	resp.Issues = paymentterms.Validate(resp.Terms)
	resp.Payments = paymentterms.Calculate(inv.Total, inv.InvoiceDate, resp.Terms)
	if resp.Payments == nil {
		resp.Payments = []paymentterms.ExpectedPayment{}
	}
	c.JSON(http.StatusOK, resp)
}

// Summary totals the invoices matching the list filters.
// GET /api/invoices/summary
func (ic *InvoicesController) Summary(c *gin.Context) {
	filter, ok := parseInvoiceFilter(c)
	if !ok {
		return
	}
	summary, err := ic.store.Aggregate(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, err, "invoice summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Group totals the invoices matching the list filters per value of ?by=.
// GET /api/invoices/group?by=currency|invoice_status|customer_id|supplier_id
func (ic *InvoicesController) Group(c *gin.Context) {
	by := c.DefaultQuery("by", invoices.GroupCurrency)
	filter, ok := parseInvoiceFilter(c)
	if !ok {
		return
	}
	groups, err := ic.store.GroupBy(c.Request.Context(), by, filter)
	if err != nil {
		if errors.Is(err, invoices.ErrUnknownGroup) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:     "invalid group field",
				Details:   gin.H{"allowed": invoices.GroupFields()},
				RequestID: requestID(c),
			})
			return
		}
		respondInternalError(c, err, "group invoices")
		return
	}
	if groups == nil {
		groups = []invoices.GroupTotal{}
	}
	c.JSON(http.StatusOK, gin.H{"by": by, "groups": groups})
}

func parseInvoiceFilter(c *gin.Context) (invoices.Filter, bool) {
	var filter invoices.Filter
	var ok bool
	if filter.CustomerID, ok = parseOptionalQueryID(c, "customer_id"); !ok {
		return filter, false
	}
	if filter.SupplierID, ok = parseOptionalQueryID(c, "supplier_id"); !ok {
		return filter, false
	}
	switch party := c.Query("party"); party {
	case "", invoices.PartyCustomer, invoices.PartySupplier:
		filter.Party = party
	default:
		respondBadRequest(c, "invalid party, expected customer or supplier")
		return filter, false
	}
	filter.Status = entities.InvoiceStatus(c.Query("status"))
	filter.Currency = c.Query("currency")

	if s := c.Query("from"); s != "" {
		from, err := time.Parse(dateLayout, s)
		if err != nil {
			respondBadRequest(c, "invalid from date, expected YYYY-MM-DD")
			return filter, false
		}
		filter.From = &from
	}
	if s := c.Query("to"); s != "" {
		to, err := time.Parse(dateLayout, s)
		if err != nil {
			respondBadRequest(c, "invalid to date, expected YYYY-MM-DD")
			return filter, false
		}
		// Inclusive of the whole day.
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.To = &to
	}
	return filter, true
}
