// Package invoices provides database operations and reporting queries for
// issued and received invoices.
package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/entities"
)

var orderColumns = []string{"id", "invoice_date", "invoice_number", "total", "created_at"}

// ErrUnknownGroup is returned by GroupBy for a field that cannot be grouped on.
var ErrUnknownGroup = errors.New("unknown group field")

// Group fields accepted by GroupBy.
const (
	GroupCurrency   = "currency"
	GroupStatus     = "invoice_status"
	GroupCustomerID = "customer_id"
	GroupSupplierID = "supplier_id"
)

var groupColumns = map[string]string{
	GroupCurrency:   "COALESCE(currency, '')",
	GroupStatus:     "COALESCE(invoice_status, '')",
	GroupCustomerID: "COALESCE(CAST(customer_id AS TEXT), '')",
	GroupSupplierID: "COALESCE(CAST(supplier_id AS TEXT), '')",
}

// Party kinds accepted by Filter.Party.
const (
	PartyCustomer = "customer"
	PartySupplier = "supplier"
)

// Filter narrows List, Aggregate and GroupBy. Zero values are ignored;
// From and To bound invoice_date inclusively. Party keeps only customer
// (receivable) or supplier (payable) invoices.
type Filter struct {
	CustomerID uint
	SupplierID uint
	Party      string
	Status     entities.InvoiceStatus
	Currency   string
	From       *time.Time
	To         *time.Time
}

func (f Filter) scope(db *gorm.DB) *gorm.DB {
	if f.CustomerID != 0 {
		db = db.Where("customer_id = ?", f.CustomerID)
	}
	if f.SupplierID != 0 {
		db = db.Where("supplier_id = ?", f.SupplierID)
	}
	switch f.Party {
	case PartyCustomer:
		db = db.Where("customer_id IS NOT NULL")
	case PartySupplier:
		db = db.Where("supplier_id IS NOT NULL")
	}
	if f.Status != "" {
		db = db.Where("invoice_status = ?", f.Status)
	}
	if f.Currency != "" {
		db = db.Where("currency = ?", f.Currency)
	}
	if f.From != nil {
		db = db.Where("invoice_date >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("invoice_date <= ?", *f.To)
	}
	return db
}

// Summary totals the invoices matching a filter.
type Summary struct {
	Count     int64           `json:"count"`
	Total     decimal.Decimal `json:"total"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	FirstDate *time.Time      `json:"first_date,omitempty"`
	LastDate  *time.Time      `json:"last_date,omitempty"`
}

// GroupTotal is one row of GroupBy. Key is the grouped value rendered as
// text; invoices with no value land under "".
type GroupTotal struct {
	Key       string          `gorm:"column:group_key" json:"key"`
	Count     int64           `json:"count"`
	Total     decimal.Decimal `json:"total"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, inv *entities.Invoice) error {
	if inv.Currency == "" {
		inv.Currency = "EGP"
	}
	if inv.ExchangeRate.IsZero() {
		inv.ExchangeRate = decimal.NewFromInt(1)
	}
	return r.db.WithContext(ctx).Omit("Customer", "Supplier").Create(inv).Error
}

// GetByID retrieves an invoice with its customer or supplier.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Invoice, error) {
	var inv entities.Invoice
	if err := r.db.WithContext(ctx).Preload("Customer").Preload("Supplier").First(&inv, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &inv, nil
}

// List returns one page of invoices, newest first unless ordered otherwise.
func (r *Repository) List(ctx context.Context, filter Filter, opts database.ListOptions) (database.Page[entities.Invoice], error) {
	var page database.Page[entities.Invoice]
	if opts.OrderBy == "" {
		opts.Desc = true
	}
	opts = opts.Normalize("invoice_date", orderColumns...)

	query := r.db.WithContext(ctx).Model(&entities.Invoice{}).Scopes(filter.scope)
	if err := query.Count(&page.Total).Error; err != nil {
		return page, err
	}
	err := query.Scopes(database.Paginate(opts)).Find(&page.Items).Error
	return page, err
}

func (r *Repository) Update(ctx context.Context, inv *entities.Invoice) error {
	if inv.CustomerID != nil && inv.SupplierID != nil {
		return entities.ErrInvoiceBothParties
	}
	result := r.db.WithContext(ctx).Model(&entities.Invoice{ID: inv.ID}).Updates(map[string]any{
		"invoice_number":   inv.InvoiceNumber,
		"invoice_date":     inv.InvoiceDate,
		"issuer_name":      inv.IssuerName,
		"receiver_name":    inv.ReceiverName,
		"issuer_country":   inv.IssuerCountry,
		"receiver_country": inv.ReceiverCountry,
		"issuer_eta_id":    inv.IssuerEtaID,
		"receiver_eta_id":  inv.ReceiverEtaID,
		"total_sales":      inv.TotalSales,
		"total_discount":   inv.TotalDiscount,
		"net_amount":       inv.NetAmount,
		"tax_amount":       inv.TaxAmount,
		"total":            inv.Total,
		"currency":         inv.Currency,
		"exchange_rate":    inv.ExchangeRate,
		"invoice_status":   inv.InvoiceStatus,
		"customer_id":      inv.CustomerID,
		"supplier_id":      inv.SupplierID,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.Invoice{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Upsert creates the invoice unless one with the same number and total is
// already stored, in which case the stored invoice is returned untouched.
// The boolean reports whether a new row was created.
func (r *Repository) Upsert(ctx context.Context, inv *entities.Invoice) (*entities.Invoice, bool, error) {
	var existing entities.Invoice
	err := r.db.WithContext(ctx).
		Where("invoice_number = ? AND total = ?", inv.InvoiceNumber, inv.Total).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if err := r.Create(ctx, inv); err != nil {
		return nil, false, err
	}
	return inv, true, nil
}

// Aggregate counts and totals the invoices matching filter.
func (r *Repository) Aggregate(ctx context.Context, filter Filter) (Summary, error) {
	var summary Summary
	db := r.db.WithContext(ctx)

	err := db.Model(&entities.Invoice{}).Scopes(filter.scope).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total, COALESCE(SUM(tax_amount), 0) AS tax_amount").
		Scan(&summary).Error
	if err != nil {
		return Summary{}, err
	}
	summary.Total = database.RoundMoney(summary.Total)
	summary.TaxAmount = database.RoundMoney(summary.TaxAmount)
	if summary.Count == 0 {
		return summary, nil
	}

	// Date bounds are read as rows; SQLite returns MIN/MAX of a datetime as text.
	var first, last entities.Invoice
	if err := db.Scopes(filter.scope).Select("invoice_date").Order("invoice_date ASC").First(&first).Error; err != nil {
		return Summary{}, fmt.Errorf("first invoice date: %w", err)
	}
	if err := db.Scopes(filter.scope).Select("invoice_date").Order("invoice_date DESC").First(&last).Error; err != nil {
		return Summary{}, fmt.Errorf("last invoice date: %w", err)
	}
	summary.FirstDate = &first.InvoiceDate
	summary.LastDate = &last.InvoiceDate
	return summary, nil
}

// GroupBy totals the invoices matching filter per value of field, ordered by key.
func (r *Repository) GroupBy(ctx context.Context, field string, filter Filter) ([]GroupTotal, error) {
	column, ok := groupColumns[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, field)
	}

	var groups []GroupTotal
	err := r.db.WithContext(ctx).Model(&entities.Invoice{}).Scopes(filter.scope).
		Select(column + " AS group_key, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total, COALESCE(SUM(tax_amount), 0) AS tax_amount").
		Group(column).
		Order("group_key ASC").
		Scan(&groups).Error
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].Total = database.RoundMoney(groups[i].Total)
		groups[i].TaxAmount = database.RoundMoney(groups[i].TaxAmount)
	}
	return groups, nil
}

// GroupFields lists the fields GroupBy accepts.
func GroupFields() []string {
	return []string{GroupCurrency, GroupStatus, GroupCustomerID, GroupSupplierID}
}
