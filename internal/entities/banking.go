package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ValidationStatus string

const (
	ValidationStatusPending ValidationStatus = "pending"
	ValidationStatusPassed  ValidationStatus = "passed"
	ValidationStatusFailed  ValidationStatus = "failed"
)

type Bank struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"uniqueIndex;size:255;not null" json:"name"`
	BankStatements []BankStatement `gorm:"foreignKey:BankID" json:"bank_statements,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BankStatement is one parsed account statement. Deleting it removes its transactions.
type BankStatement struct {
	ID                   uint             `gorm:"primaryKey" json:"id"`
	BankID               uint             `gorm:"index;not null" json:"bank_id"`
	Bank                 *Bank            `gorm:"foreignKey:BankID" json:"bank,omitempty"`
	CustomerID           *uint            `gorm:"index" json:"customer_id,omitempty"`
	SupplierID           *uint            `gorm:"index" json:"supplier_id,omitempty"`
	FileName             string           `gorm:"size:512" json:"file_name"`
	FileURL              string           `gorm:"size:2048" json:"file_url,omitempty"`
	BankName             string           `gorm:"size:255" json:"bank_name"`
	AccountNumber        string           `gorm:"index;size:64" json:"account_number"`
	AccountType          string           `gorm:"size:64" json:"account_type,omitempty"`
	AccountCurrency      string           `gorm:"size:8" json:"account_currency,omitempty"`
	StatementPeriodStart time.Time        `json:"statement_period_start"`
	StatementPeriodEnd   time.Time        `json:"statement_period_end"`
	StartingBalance      decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"starting_balance"`
	EndingBalance        decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"ending_balance"`
	Parsed               bool             `gorm:"default:false" json:"parsed"`
	Validated            bool             `gorm:"default:false" json:"validated"`
	ValidationStatus     ValidationStatus `gorm:"size:16;default:pending;index" json:"validation_status"`
	ValidationNotes      string           `gorm:"type:text" json:"validation_notes,omitempty"`
	ValidatedAt          *time.Time       `json:"validated_at,omitempty"`
	Transactions         []Transaction    `gorm:"foreignKey:BankStatementID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// Account types that mark a credit facility rather than a cash account.
var facilityAccountTypes = []string{
	"overdraft",
	"short-term loans (stl)",
	"long-term loans (ltl)",
	"credit facility",
	"credit line",
	"line of credit",
	"term loan",
	"credit",
}

var regularAccountTypes = []string{
	"checking",
	"savings",
	"business",
	"current account",
	"deposit account",
}

func matchesAccountType(accountType string, known []string) bool {
	for _, k := range known {
		if strings.Contains(accountType, k) || strings.Contains(k, accountType) {
			return true
		}
	}
	return false
}

// IsFacility reports whether the statement belongs to a credit facility.
// The account type decides when it is recognised; otherwise a negative
// ending balance does.
func (s *BankStatement) IsFacility() bool {
	accountType := strings.ToLower(strings.TrimSpace(s.AccountType))
	if accountType != "" {
		if matchesAccountType(accountType, facilityAccountTypes) {
			return true
		}
		if matchesAccountType(accountType, regularAccountTypes) {
			return false
		}
	}
	return s.EndingBalance.IsNegative()
}

// Transaction is a single line of a bank statement. Credit and debit are
// both optional; a line normally carries one of them.
type Transaction struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	BankStatementID uint                `gorm:"index;not null" json:"bank_statement_id"`
	TransactionDate time.Time           `gorm:"index" json:"transaction_date"`
	CreditAmount    decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"credit_amount"`
	DebitAmount     decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"debit_amount"`
	Balance         decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"balance"`
	Description     string              `gorm:"type:text" json:"description,omitempty"`
	PageNumber      string              `gorm:"size:16" json:"page_number,omitempty"`
	EntityName      string              `gorm:"index;size:255" json:"entity_name,omitempty"`
	Currency        string              `gorm:"size:8" json:"currency,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
