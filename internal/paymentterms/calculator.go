// Package paymentterms turns a party's payment terms into the payments an
// invoice is expected to produce.
//
// Terms come either as structured entities.PaymentTerms or as the free-text
// period stored on the party ("Net 30", "Due on receipt"). Percentages are
// taken of the invoice total and rounded to cents; whatever the down payment
// and installments leave over becomes one last payment due after the period.
package paymentterms

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/ledger/internal/entities"
)

type PaymentType string

const (
	TypeDownPayment  PaymentType = "down_payment"
	TypeInstallment  PaymentType = "installment"
	TypeFinalPayment PaymentType = "final_payment"
	TypeFullPayment  PaymentType = "full_payment"
)

// DefaultPeriod applies when a party has no terms or the period is not understood.
const (
	DefaultPeriod     = "Net 30"
	DefaultPeriodDays = 30
)

var (
	netPeriod = regexp.MustCompile(`(?i)^net\s*(\d+)$`)
	hundred   = decimal.NewFromInt(100)
)

// ExpectedPayment is one scheduled payment of an invoice.
type ExpectedPayment struct {
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Type          PaymentType     `json:"type"`
	InstallmentID string          `json:"installment_id,omitempty"`
}

// Resolve picks the terms to apply for a party: the structured terms when
// present, otherwise the free-text period, otherwise DefaultPeriod.
func Resolve(detail *entities.PaymentTerms, text string) entities.PaymentTerms {
	if detail != nil {
		return *detail
	}
	if text = strings.TrimSpace(text); text != "" {
		return entities.PaymentTerms{PaymentPeriod: text}
	}
	return entities.PaymentTerms{PaymentPeriod: DefaultPeriod}
}

// PeriodDays returns the number of days a payment period allows.
func PeriodDays(period string) int {
	return offsetDays(period, DefaultPeriodDays)
}

func offsetDays(period string, fallback int) int {
	period = strings.TrimSpace(period)
	if strings.EqualFold(period, entities.PeriodDueOnReceipt) || strings.EqualFold(period, entities.PeriodDueOnSigning) {
		return 0
	}
	if m := netPeriod.FindStringSubmatch(period); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			return days
		}
	}
	return fallback
}

// share is the part of total a down payment or installment covers.
func share(total decimal.Decimal, percentage, amount decimal.NullDecimal) decimal.Decimal {
	if percentage.Valid && !percentage.Decimal.IsZero() {
		return total.Mul(percentage.Decimal).Div(hundred).Round(2)
	}
	if amount.Valid {
		return amount.Decimal
	}
	return decimal.Zero
}

// Calculate lists the payments expected for an invoice of total issued on
// invoiceDate. Entries that come to zero or less are left out.
func Calculate(total decimal.Decimal, invoiceDate time.Time, terms entities.PaymentTerms) []ExpectedPayment {
	var payments []ExpectedPayment
	remaining := total

	if dp := terms.DownPayment; dp != nil && dp.Required {
		amount := share(total, dp.Percentage, dp.Amount)
		if amount.IsPositive() {
			payments = append(payments, ExpectedPayment{
				Date:        invoiceDate.AddDate(0, 0, offsetDays(dp.DueDate, 0)),
				Amount:      amount,
				Description: "Down payment",
				Type:        TypeDownPayment,
			})
			remaining = remaining.Sub(amount)
		}
	}

	for i, inst := range terms.Installments {
		amount := share(total, inst.Percentage, inst.Amount)
		if !amount.IsPositive() {
			continue
		}
		description := inst.Description
		if description == "" {
			description = fmt.Sprintf("Installment %d", i+1)
		}
		payments = append(payments, ExpectedPayment{
			Date:          invoiceDate.AddDate(0, 0, inst.DueDays),
			Amount:        amount,
			Description:   description,
			Type:          TypeInstallment,
			InstallmentID: inst.ID,
		})
		remaining = remaining.Sub(amount)
	}

	if remaining.IsPositive() {
		payment := ExpectedPayment{
			Date:        invoiceDate.AddDate(0, 0, PeriodDays(terms.PaymentPeriod)),
			Amount:      remaining,
			Description: "Full payment",
			Type:        TypeFullPayment,
		}
		if len(terms.Installments) > 0 {
			payment.Description = "Final payment"
			payment.Type = TypeFinalPayment
		}
		payments = append(payments, payment)
	}
	return payments
}

// Validate lists the problems with a set of terms. An empty result means
// the terms are usable.
func Validate(terms entities.PaymentTerms) []string {
	var issues []string

	negative := func(d decimal.NullDecimal) bool { return d.Valid && d.Decimal.IsNegative() }
	overHundred := func(d decimal.NullDecimal) bool { return d.Valid && d.Decimal.GreaterThan(hundred) }

	if dp := terms.DownPayment; dp != nil {
		if negative(dp.Amount) || negative(dp.Percentage) {
			issues = append(issues, "Down payment cannot be negative")
		}
		if overHundred(dp.Percentage) {
			issues = append(issues, "Down payment percentage exceeds 100%")
		}
	}

	seen := make(map[string]bool, len(terms.Installments))
	duplicate := false
	for i, inst := range terms.Installments {
		if negative(inst.Amount) || negative(inst.Percentage) {
			issues = append(issues, fmt.Sprintf("Installment %d cannot be negative", i+1))
		}
		if inst.DueDays < 0 {
			issues = append(issues, fmt.Sprintf("Installment %d is due before the invoice date", i+1))
		}
		if inst.ID == "" {
			continue
		}
		if seen[inst.ID] {
			duplicate = true
		}
		seen[inst.ID] = true
	}
	if duplicate {
		issues = append(issues, "Duplicate installment IDs found")
	}

	if dp := terms.DownPayment; dp != nil && dp.Required && len(terms.Installments) > 0 {
		total := decimal.Zero
		if dp.Percentage.Valid {
			total = total.Add(dp.Percentage.Decimal)
		}
		for _, inst := range terms.Installments {
			if inst.Percentage.Valid {
				total = total.Add(inst.Percentage.Decimal)
			}
		}
		switch {
		case total.GreaterThan(hundred):
			issues = append(issues, "Total payment percentages exceed 100%")
		case total.IsPositive() && total.LessThan(decimal.NewFromInt(99)):
			issues = append(issues, "Payment percentages do not add up to 100%")
		}
	}
	return issues
}

// Summary renders terms as a few human-readable lines.
func Summary(terms entities.PaymentTerms) string {
	var b strings.Builder
	b.WriteString("Payment Period: " + terms.PaymentPeriod)

	if dp := terms.DownPayment; dp != nil && dp.Required {
		fmt.Fprintf(&b, "\nDown Payment: %s (%s)", describeShare(dp.Percentage, dp.Amount), dp.DueDate)
	}
	if len(terms.Installments) > 0 {
		b.WriteString("\nInstallments:")
		for i, inst := range terms.Installments {
			fmt.Fprintf(&b, "\n  %d. %s due in %d days", i+1, describeShare(inst.Percentage, inst.Amount), inst.DueDays)
			if inst.Description != "" {
				fmt.Fprintf(&b, " (%s)", inst.Description)
			}
		}
	}
	return b.String()
}

func describeShare(percentage, amount decimal.NullDecimal) string {
	switch {
	case percentage.Valid && !percentage.Decimal.IsZero():
		return percentage.Decimal.String() + "%"
	case amount.Valid && !amount.Decimal.IsZero():
		return amount.Decimal.StringFixed(2)
	default:
		return "TBD"
	}
}
