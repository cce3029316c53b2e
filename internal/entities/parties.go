package entities

import (
	"time"
)

// Customer is a counterparty the company issues invoices to.
type Customer struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Country        string          `gorm:"size:64" json:"country,omitempty"`
	PaymentTerms   string          `gorm:"size:255" json:"payment_terms,omitempty"`
	TermsDetail    *PaymentTerms   `gorm:"serializer:json;type:text" json:"terms_detail,omitempty"`
	EtaID          string          `gorm:"size:64" json:"eta_id,omitempty"` // tax authority registration number
	Invoices       []Invoice       `gorm:"foreignKey:CustomerID" json:"invoices,omitempty"`
	BankStatements []BankStatement `gorm:"foreignKey:CustomerID" json:"bank_statements,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Supplier is a counterparty that issues invoices to the company.
type Supplier struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Country        string          `gorm:"size:64" json:"country,omitempty"`
	PaymentTerms   string          `gorm:"size:255" json:"payment_terms,omitempty"`
	TermsDetail    *PaymentTerms   `gorm:"serializer:json;type:text" json:"terms_detail,omitempty"`
	EtaID          string          `gorm:"size:64" json:"eta_id,omitempty"`
	Invoices       []Invoice       `gorm:"foreignKey:SupplierID" json:"invoices,omitempty"`
	BankStatements []BankStatement `gorm:"foreignKey:SupplierID" json:"bank_statements,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
