package statements

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/ledger/internal/entities"
)

func TestCheckBalance(t *testing.T) {
	tests := []struct {
		name        string
		ending      string
		wantStatus  entities.ValidationStatus
		discrepancy string
	}{
		{"exact match", "1250.50", entities.ValidationStatusPassed, "0"},
		{"within tolerance", "1250.51", entities.ValidationStatusPassed, "0.01"},
		{"outside tolerance", "1250.52", entities.ValidationStatusFailed, "0.02"},
		{"short", "1200.00", entities.ValidationStatusFailed, "50.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := sampleStatement()
			stmt.EndingBalance = decimal.RequireFromString(tt.ending)

			result := CheckBalance(stmt)

			assert.Equal(t, tt.wantStatus, result.Status)
			assert.True(t, result.TotalCredits.Equal(decimal.RequireFromString("500.50")))
			assert.True(t, result.TotalDebits.Equal(decimal.RequireFromString("250")))
			assert.True(t, result.CalculatedBalance.Equal(decimal.RequireFromString("1250.50")))
			assert.True(t, result.Discrepancy.Equal(decimal.RequireFromString(tt.discrepancy)), "got %s", result.Discrepancy)
		})
	}
}

func TestCheckBalance_Notes(t *testing.T) {
	stmt := sampleStatement()
	result := CheckBalance(stmt)
	assert.Equal(t, "Validation passed. Starting balance (1000.00) + Credits (500.50) - Debits (250.00) = Ending balance (1250.50)", result.Notes)

	stmt.EndingBalance = decimal.RequireFromString("1300")
	result = CheckBalance(stmt)
	assert.Equal(t, "Validation failed. Expected ending balance: 1250.50, Actual: 1300.00, Discrepancy: 49.50", result.Notes)
}

func TestCheckBalance_NoTransactions(t *testing.T) {
	stmt := &entities.BankStatement{
		StartingBalance: decimal.RequireFromString("10"),
		EndingBalance:   decimal.RequireFromString("10"),
	}
	result := CheckBalance(stmt)
	assert.Equal(t, entities.ValidationStatusPassed, result.Status)
	assert.Zero(t, result.TransactionCount)
}
