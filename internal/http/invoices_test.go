package http

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/ledger/internal/entities"
)

type invoicePage struct {
	Data  []entities.Invoice `json:"data"`
	Total int64              `json:"total"`
}

type invoiceGroups struct {
	By     string `json:"by"`
	Groups []struct {
		Key   string          `json:"key"`
		Count int64           `json:"count"`
		Total decimal.Decimal `json:"total"`
	} `json:"groups"`
}

func invoiceBody(number, date, total string) gin.H {
	return gin.H{
		"invoice_number": number,
		"invoice_date":   date,
		"issuer_name":    "Ledger Co",
		"receiver_name":  "Acme",
		"total":          total,
		"tax_amount":     "14.00",
		"invoice_status": "Valid",
	}
}

func createCustomer(t *testing.T, router *gin.Engine, name string) entities.Customer {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/customers", gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[entities.Customer](t, w)
}

func TestInvoicesAPI_Lifecycle(t *testing.T) {
	router, _ := newTestRouter(t)
	customer := createCustomer(t, router, "Acme")

	body := invoiceBody("INV-1", "2024-02-10T00:00:00Z", "114.00")
	body["customer_id"] = customer.ID
	w := doJSON(t, router, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[entities.Invoice](t, w)
	assert.Equal(t, "EGP", inv.Currency)
	assert.True(t, inv.IsCustomerInvoice())

	w = doJSON(t, router, http.MethodPost, "/api/invoices", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_invoice", decode[ErrorResponse](t, w).Code)

	path := fmt.Sprintf("/api/invoices/%d", inv.ID)
	w = doJSON(t, router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[entities.Invoice](t, w)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Acme", got.Customer.Name)

	body["invoice_status"] = "Cancelled"
	w = doJSON(t, router, http.MethodPut, path, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, entities.InvoiceStatusCancelled, decode[entities.Invoice](t, w).InvoiceStatus)

	w = doJSON(t, router, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoicesAPI_Create_Validation(t *testing.T) {
	router, _ := newTestRouter(t)
	customer := createCustomer(t, router, "Acme")
	w := doJSON(t, router, http.MethodPost, "/api/suppliers", gin.H{"name": "Globex"})
	require.Equal(t, http.StatusCreated, w.Code)
	supplier := decode[entities.Supplier](t, w)

	both := invoiceBody("INV-2", "2024-02-10T00:00:00Z", "10")
	both["customer_id"] = customer.ID
	both["supplier_id"] = supplier.ID
	w = doJSON(t, router, http.MethodPost, "/api/invoices", both)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), entities.ErrInvoiceBothParties.Error())

	badStatus := invoiceBody("INV-3", "2024-02-10T00:00:00Z", "10")
	badStatus["invoice_status"] = "Paid"
	w = doJSON(t, router, http.MethodPost, "/api/invoices", badStatus)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	noNumber := invoiceBody("", "2024-02-10T00:00:00Z", "10")
	w = doJSON(t, router, http.MethodPost, "/api/invoices", noNumber)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoicesAPI_ListSummaryGroup(t *testing.T) {
	router, _ := newTestRouter(t)
	customer := createCustomer(t, router, "Acme")

	for _, b := range []gin.H{
		invoiceBody("INV-1", "2024-01-05T00:00:00Z", "100.50"),
		invoiceBody("INV-2", "2024-01-20T00:00:00Z", "200.25"),
		invoiceBody("INV-3", "2024-02-01T00:00:00Z", "300.00"),
	} {
		b["customer_id"] = customer.ID
		require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/invoices", b).Code)
	}
	usd := invoiceBody("INV-4", "2024-01-10T00:00:00Z", "50.00")
	usd["currency"] = "USD"
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/invoices", usd).Code)

	w := doJSON(t, router, http.MethodGet, "/api/invoices?from=2024-01-01&to=2024-01-20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[invoicePage](t, w)
	assert.Equal(t, int64(3), page.Total)
	require.NotEmpty(t, page.Data)
	assert.Equal(t, "INV-2", page.Data[0].InvoiceNumber)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/invoices?customer_id=%d", customer.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), decode[invoicePage](t, w).Total)

	w = doJSON(t, router, http.MethodGet, "/api/invoices?from=January", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/invoices/summary?currency=EGP", nil)
	require.Equal(t, http.StatusOK, w.Code)
	type invoiceSummary struct {
		Count     int64           `json:"count"`
		Total     decimal.Decimal `json:"total"`
		FirstDate string          `json:"first_date"`
		LastDate  string          `json:"last_date"`
	}
	summary := decode[invoiceSummary](t, w)
	assert.Equal(t, int64(3), summary.Count)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("600.75")), summary.Total.String())
	assert.Contains(t, summary.FirstDate, "2024-01-05")
	assert.Contains(t, summary.LastDate, "2024-02-01")

	w = doJSON(t, router, http.MethodGet, "/api/invoices/group?by=currency", nil)
	require.Equal(t, http.StatusOK, w.Code)
	groups := decode[invoiceGroups](t, w)
	assert.Equal(t, "currency", groups.By)
	require.Len(t, groups.Groups, 2)
	assert.Equal(t, "EGP", groups.Groups[0].Key)
	assert.Equal(t, int64(3), groups.Groups[0].Count)
	assert.Equal(t, "USD", groups.Groups[1].Key)

	w = doJSON(t, router, http.MethodGet, "/api/invoices/group?by=customer_id", nil)
	require.Equal(t, http.StatusOK, w.Code)
	groups = decode[invoiceGroups](t, w)
	require.Len(t, groups.Groups, 2)
	assert.Equal(t, "", groups.Groups[0].Key)
	assert.Equal(t, fmt.Sprint(customer.ID), groups.Groups[1].Key)

	w = doJSON(t, router, http.MethodGet, "/api/invoices/group?by=issuer_name", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "allowed")
}

type paymentSchedule struct {
	InvoiceID uint                  `json:"invoice_id"`
	Party     string                `json:"party"`
	Terms     entities.PaymentTerms `json:"terms"`
	Summary   string                `json:"summary"`
	Payments  []struct {
		Date   time.Time       `json:"date"`
		Amount decimal.Decimal `json:"amount"`
		Type   string          `json:"type"`
	} `json:"payments"`
}

func TestInvoicesAPI_PaymentSchedule(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/customers", gin.H{
		"name": "Acme",
		"terms_detail": gin.H{
			"payment_period": "Net 45",
			"down_payment":   gin.H{"required": true, "percentage": "25", "due_date": "Due on receipt"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customer := decode[entities.Customer](t, w)

	body := invoiceBody("INV-1", "2024-02-10T00:00:00Z", "1000.00")
	body["customer_id"] = customer.ID
	w = doJSON(t, router, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[entities.Invoice](t, w)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/invoices/%d/payment-schedule", inv.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	schedule := decode[paymentSchedule](t, w)

	issued := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, inv.ID, schedule.InvoiceID)
	assert.Equal(t, "customer", schedule.Party)
	assert.Contains(t, schedule.Summary, "Down Payment: 25% (Due on receipt)")
	require.Len(t, schedule.Payments, 2)
	assert.Equal(t, "down_payment", schedule.Payments[0].Type)
	assert.Equal(t, "250", schedule.Payments[0].Amount.String())
	assert.True(t, schedule.Payments[0].Date.Equal(issued))
	assert.Equal(t, "full_payment", schedule.Payments[1].Type)
	assert.Equal(t, "750", schedule.Payments[1].Amount.String())
	assert.True(t, schedule.Payments[1].Date.Equal(issued.AddDate(0, 0, 45)))
}

func TestInvoicesAPI_PaymentSchedule_FreeTextAndDefault(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/suppliers", gin.H{"name": "Globex", "payment_terms": "Due on receipt"})
	require.Equal(t, http.StatusCreated, w.Code)
	supplier := decode[entities.Supplier](t, w)

	purchase := invoiceBody("P-1", "2024-02-10T00:00:00Z", "80.00")
	purchase["supplier_id"] = supplier.ID
	w = doJSON(t, router, http.MethodPost, "/api/invoices", purchase)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	linked := decode[entities.Invoice](t, w)

	w = doJSON(t, router, http.MethodPost, "/api/invoices", invoiceBody("U-1", "2024-02-10T00:00:00Z", "50.00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	unlinked := decode[entities.Invoice](t, w)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/invoices/%d/payment-schedule", linked.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	schedule := decode[paymentSchedule](t, w)
	assert.Equal(t, "supplier", schedule.Party)
	assert.Equal(t, "Due on receipt", schedule.Terms.PaymentPeriod)
	require.Len(t, schedule.Payments, 1)
	assert.True(t, schedule.Payments[0].Date.Equal(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/invoices/%d/payment-schedule", unlinked.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	schedule = decode[paymentSchedule](t, w)
	assert.Empty(t, schedule.Party)
	assert.Equal(t, "Net 30", schedule.Terms.PaymentPeriod)

	w = doJSON(t, router, http.MethodGet, "/api/invoices/999/payment-schedule", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoicesAPI_List_ByParty(t *testing.T) {
	router, _ := newTestRouter(t)
	customer := createCustomer(t, router, "Acme")

	sales := invoiceBody("S-1", "2024-02-10T00:00:00Z", "100.00")
	sales["customer_id"] = customer.ID
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/invoices", sales).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/invoices", invoiceBody("U-1", "2024-02-11T00:00:00Z", "50.00")).Code)

	w := doJSON(t, router, http.MethodGet, "/api/invoices?party=customer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[invoicePage](t, w)
	assert.Equal(t, int64(1), page.Total)

	w = doJSON(t, router, http.MethodGet, "/api/invoices?party=supplier", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[invoicePage](t, w).Total)

	w = doJSON(t, router, http.MethodGet, "/api/invoices?party=bank", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
