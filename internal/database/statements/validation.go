package statements

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/ledger/internal/entities"
)

// BalanceTolerance is the largest discrepancy still treated as a rounding difference.
var BalanceTolerance = decimal.RequireFromString("0.01")

// ValidationResult is the outcome of reconciling a statement's balances with its lines.
type ValidationResult struct {
	Status            entities.ValidationStatus `json:"status"`
	Notes             string                    `json:"notes"`
	StartingBalance   decimal.Decimal           `json:"starting_balance"`
	EndingBalance     decimal.Decimal           `json:"ending_balance"`
	CalculatedBalance decimal.Decimal           `json:"calculated_balance"`
	TotalCredits      decimal.Decimal           `json:"total_credits"`
	TotalDebits       decimal.Decimal           `json:"total_debits"`
	Discrepancy       decimal.Decimal           `json:"discrepancy"`
	TransactionCount  int                       `json:"transaction_count"`
}

// CheckBalance verifies starting + credits - debits against the ending balance.
func CheckBalance(stmt *entities.BankStatement) ValidationResult {
	credits := decimal.Zero
	debits := decimal.Zero
	for _, tx := range stmt.Transactions {
		if tx.CreditAmount.Valid {
			credits = credits.Add(tx.CreditAmount.Decimal)
		}
		if tx.DebitAmount.Valid {
			debits = debits.Add(tx.DebitAmount.Decimal)
		}
	}

	calculated := stmt.StartingBalance.Add(credits).Sub(debits)
	discrepancy := calculated.Sub(stmt.EndingBalance).Abs()

	result := ValidationResult{
		StartingBalance:   stmt.StartingBalance,
		EndingBalance:     stmt.EndingBalance,
		CalculatedBalance: calculated,
		TotalCredits:      credits,
		TotalDebits:       debits,
		Discrepancy:       discrepancy,
		TransactionCount:  len(stmt.Transactions),
	}

	if discrepancy.LessThanOrEqual(BalanceTolerance) {
		result.Status = entities.ValidationStatusPassed
		result.Notes = fmt.Sprintf("Validation passed. Starting balance (%s) + Credits (%s) - Debits (%s) = Ending balance (%s)",
			stmt.StartingBalance.StringFixed(2), credits.StringFixed(2), debits.StringFixed(2), stmt.EndingBalance.StringFixed(2))
	} else {
		result.Status = entities.ValidationStatusFailed
		result.Notes = fmt.Sprintf("Validation failed. Expected ending balance: %s, Actual: %s, Discrepancy: %s",
			calculated.StringFixed(2), stmt.EndingBalance.StringFixed(2), discrepancy.StringFixed(2))
	}
	return result
}
