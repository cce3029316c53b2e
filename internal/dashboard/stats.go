// Package dashboard computes the headline figures of the ledger: cash on
// hand from the latest statement of each account, and the receivables and
// payables invoiced in the period leading up to that statement.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/database/invoices"
	"github.com/mrlokans/ledger/internal/entities"
)

// PeriodDays is the length of the invoice windows compared by Stats.
const PeriodDays = 30

type Trend string

const (
	TrendIncrease Trend = "increase"
	TrendDecrease Trend = "decrease"
	TrendNeutral  Trend = "neutral"
)

type StatementSource interface {
	LatestPerAccount(ctx context.Context, asOf time.Time) ([]entities.BankStatement, error)
}

type InvoiceSource interface {
	Aggregate(ctx context.Context, filter invoices.Filter) (invoices.Summary, error)
}

// Account is the latest known position of one bank account.
type Account struct {
	StatementID   uint            `json:"statement_id"`
	BankID        uint            `json:"bank_id"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	AccountType   string          `json:"account_type,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	EndingBalance decimal.Decimal `json:"ending_balance"`
	PeriodEnd     time.Time       `json:"period_end"`
	Facility      bool            `json:"facility"`
	Validated     bool            `json:"validated"`
}

// Outstanding compares the invoices of the current window with the one before it.
type Outstanding struct {
	Current       invoices.Summary `json:"current"`
	Previous      invoices.Summary `json:"previous"`
	ChangePercent decimal.Decimal  `json:"change_percent"`
	Trend         Trend            `json:"trend"`
}

// Stats is the dashboard snapshot. ReferenceDate is the latest statement
// period end, or the requested date when one was given, and the invoice
// windows end on it. CashOnHand sums the positive balances of non-facility
// accounts.
type Stats struct {
	ReferenceDate   time.Time                  `json:"reference_date"`
	HasData         bool                       `json:"has_data"`
	PeriodDays      int                        `json:"period_days"`
	CashOnHand      decimal.Decimal            `json:"cash_on_hand"`
	CashByCurrency  map[string]decimal.Decimal `json:"cash_by_currency"`
	FacilityBalance decimal.Decimal            `json:"facility_balance"`
	Accounts        []Account                  `json:"accounts"`
	Receivables     Outstanding                `json:"receivables"`
	Payables        Outstanding                `json:"payables"`
}

type Service struct {
	statements StatementSource
	invoices   InvoiceSource
	now        func() time.Time
}

func NewService(statements StatementSource, invoices InvoiceSource) *Service {
	return &Service{statements: statements, invoices: invoices, now: time.Now}
}

// Stats builds the dashboard figures as of asOf. A zero asOf uses the
// latest statement on file, or the current time when there is none.
func (s *Service) Stats(ctx context.Context, asOf time.Time) (*Stats, error) {
	latest, err := s.statements.LatestPerAccount(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("latest statements: %w", err)
	}

	stats := &Stats{
		ReferenceDate:   asOf,
		HasData:         len(latest) > 0,
		PeriodDays:      PeriodDays,
		CashOnHand:      decimal.Zero,
		CashByCurrency:  map[string]decimal.Decimal{},
		FacilityBalance: decimal.Zero,
		Accounts:        make([]Account, 0, len(latest)),
	}

	for i := range latest {
		stmt := &latest[i]
		account := Account{
			StatementID:   stmt.ID,
			BankID:        stmt.BankID,
			BankName:      stmt.BankName,
			AccountNumber: stmt.AccountNumber,
			AccountType:   stmt.AccountType,
			Currency:      stmt.AccountCurrency,
			EndingBalance: stmt.EndingBalance,
			PeriodEnd:     stmt.StatementPeriodEnd,
			Facility:      stmt.IsFacility(),
			Validated:     stmt.Validated,
		}
		stats.Accounts = append(stats.Accounts, account)

		switch {
		case account.Facility:
			stats.FacilityBalance = stats.FacilityBalance.Add(account.EndingBalance)
		case account.EndingBalance.IsPositive():
			stats.CashOnHand = stats.CashOnHand.Add(account.EndingBalance)
			stats.CashByCurrency[account.Currency] = stats.CashByCurrency[account.Currency].Add(account.EndingBalance)
		}
		if asOf.IsZero() && account.PeriodEnd.After(stats.ReferenceDate) {
			stats.ReferenceDate = account.PeriodEnd
		}
	}
	if stats.ReferenceDate.IsZero() {
		stats.ReferenceDate = s.now()
	}
	sort.Slice(stats.Accounts, func(i, j int) bool {
		a, b := stats.Accounts[i], stats.Accounts[j]
		if a.BankName != b.BankName {
			return a.BankName < b.BankName
		}
		return a.AccountNumber < b.AccountNumber
	})

	if stats.Receivables, err = s.outstanding(ctx, invoices.PartyCustomer, stats.ReferenceDate); err != nil {
		return nil, fmt.Errorf("receivables: %w", err)
	}
	if stats.Payables, err = s.outstanding(ctx, invoices.PartySupplier, stats.ReferenceDate); err != nil {
		return nil, fmt.Errorf("payables: %w", err)
	}
	return stats, nil
}

func (s *Service) outstanding(ctx context.Context, party string, ref time.Time) (Outstanding, error) {
	windowStart := ref.AddDate(0, 0, -PeriodDays)
	previousStart := windowStart.AddDate(0, 0, -PeriodDays)
	previousEnd := windowStart.Add(-time.Nanosecond)

	current, err := s.invoices.Aggregate(ctx, invoices.Filter{Party: party, From: &windowStart, To: &ref})
	if err != nil {
		return Outstanding{}, err
	}
	previous, err := s.invoices.Aggregate(ctx, invoices.Filter{Party: party, From: &previousStart, To: &previousEnd})
	if err != nil {
		return Outstanding{}, err
	}
	return Outstanding{
		Current:       current,
		Previous:      previous,
		ChangePercent: changePercent(current.Total, previous.Total),
		Trend:         trend(current.Total, previous.Total),
	}, nil
}

func changePercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return database.RoundMoney(current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)))
}

func trend(current, previous decimal.Decimal) Trend {
	switch current.Cmp(previous) {
	case 1:
		return TrendIncrease
	case -1:
		return TrendDecrease
	default:
		return TrendNeutral
	}
}
