package entities

import (
	"github.com/shopspring/decimal"
)

// Payment periods with a fixed meaning. Any "Net N" period is also accepted.
const (
	PeriodDueOnReceipt = "Due on receipt"
	PeriodDueOnSigning = "Due on signing"
	PeriodCustom       = "Custom"
)

// PaymentTerms is the structured form of a party's payment terms. When
// Percentage is set on a down payment or installment it wins over Amount.
type PaymentTerms struct {
	PaymentPeriod string        `json:"payment_period" binding:"required,max=64"`
	DownPayment   *DownPayment  `json:"down_payment,omitempty"`
	Installments  []Installment `json:"installments,omitempty" binding:"omitempty,dive"`
}

type DownPayment struct {
	Required   bool                `json:"required"`
	Amount     decimal.NullDecimal `json:"amount"`
	Percentage decimal.NullDecimal `json:"percentage"`
	DueDate    string              `json:"due_date" binding:"max=64"` // "Due on signing", "Due on receipt" or "Net N"
}

type Installment struct {
	ID          string              `json:"id" binding:"max=64"`
	Amount      decimal.NullDecimal `json:"amount"`
	Percentage  decimal.NullDecimal `json:"percentage"`
	DueDays     int                 `json:"due_days" binding:"gte=0"` // relative to the invoice date
	Description string              `json:"description,omitempty" binding:"max=255"`
}
