package entities

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceStatusValid     InvoiceStatus = "Valid"
	InvoiceStatusSubmitted InvoiceStatus = "Submitted"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
	InvoiceStatusRejected  InvoiceStatus = "Rejected"
)

// ErrInvoiceBothParties is returned when an invoice references a customer and a supplier at once.
var ErrInvoiceBothParties = errors.New("invoice cannot belong to both a customer and a supplier")

// Invoice is an issued or received tax invoice. Customer invoices are issued
// by the company, supplier invoices are received by it.
type Invoice struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber   string          `gorm:"uniqueIndex:idx_invoice_number_total;size:128;not null" json:"invoice_number"`
	InvoiceDate     time.Time       `gorm:"index" json:"invoice_date"`
	IssuerName      string          `gorm:"size:255" json:"issuer_name"`
	ReceiverName    string          `gorm:"size:255" json:"receiver_name"`
	IssuerCountry   string          `gorm:"size:64" json:"issuer_country,omitempty"`
	ReceiverCountry string          `gorm:"size:64" json:"receiver_country,omitempty"`
	IssuerEtaID     string          `gorm:"size:64" json:"issuer_eta_id,omitempty"`
	ReceiverEtaID   string          `gorm:"size:64" json:"receiver_eta_id,omitempty"`
	TotalSales      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_sales"`
	TotalDiscount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_discount"`
	NetAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"net_amount"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax_amount"`
	Total           decimal.Decimal `gorm:"uniqueIndex:idx_invoice_number_total;type:decimal(18,2);not null;default:0" json:"total"`
	Currency        string          `gorm:"size:8;index;default:EGP" json:"currency"`
	ExchangeRate    decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1" json:"exchange_rate"`
	InvoiceStatus   InvoiceStatus   `gorm:"size:32;index" json:"invoice_status"`
	CustomerID      *uint           `gorm:"index" json:"customer_id,omitempty"`
	Customer        *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	SupplierID      *uint           `gorm:"index" json:"supplier_id,omitempty"`
	Supplier        *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsCustomerInvoice reports whether the invoice was issued to a customer.
func (i *Invoice) IsCustomerInvoice() bool {
	return i.CustomerID != nil
}

func (i *Invoice) BeforeSave(tx *gorm.DB) error {
	if i.CustomerID != nil && i.SupplierID != nil {
		return ErrInvoiceBothParties
	}
	return nil
}
