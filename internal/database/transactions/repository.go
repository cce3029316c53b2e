// Package transactions provides database operations for individual bank
// statement lines and their per-statement totals.
package transactions

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/entities"
)

// Summary totals the lines of one statement.
type Summary struct {
	Count        int64           `json:"count"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	Net          decimal.Decimal `json:"net"`
}

// EntityTotal is Summary narrowed to one counterparty name.
type EntityTotal struct {
	EntityName   string          `json:"entity_name"`
	Count        int64           `json:"count"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create adds a line to an existing statement. The line takes the
// statement's account currency when it has none.
func (r *Repository) Create(ctx context.Context, txn *entities.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stmt entities.BankStatement
		if err := tx.Select("id", "account_currency", "statement_period_start").First(&stmt, txn.BankStatementID).Error; err != nil {
			return fmt.Errorf("statement %d: %w", txn.BankStatementID, database.TranslateError(err))
		}
		if txn.Currency == "" {
			txn.Currency = stmt.AccountCurrency
		}
		if txn.TransactionDate.IsZero() {
			txn.TransactionDate = stmt.StatementPeriodStart
		}
		return tx.Create(txn).Error
	})
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Transaction, error) {
	var txn entities.Transaction
	if err := r.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &txn, nil
}

// ListForStatement returns the statement's lines in date order.
func (r *Repository) ListForStatement(ctx context.Context, statementID uint) ([]entities.Transaction, error) {
	var lines []entities.Transaction
	err := r.db.WithContext(ctx).
		Where("bank_statement_id = ?", statementID).
		Order("transaction_date ASC, id ASC").
		Find(&lines).Error
	return lines, err
}

// Update overwrites a line. The owning statement cannot be changed.
func (r *Repository) Update(ctx context.Context, txn *entities.Transaction) error {
	result := r.db.WithContext(ctx).Model(&entities.Transaction{ID: txn.ID}).
		Where("bank_statement_id = ?", txn.BankStatementID).
		Updates(map[string]any{
			"transaction_date": txn.TransactionDate,
			"credit_amount":    txn.CreditAmount,
			"debit_amount":     txn.DebitAmount,
			"balance":          txn.Balance,
			"description":      txn.Description,
			"page_number":      txn.PageNumber,
			"entity_name":      txn.EntityName,
			"currency":         txn.Currency,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes one line of statementID.
func (r *Repository) Delete(ctx context.Context, statementID, id uint) error {
	result := r.db.WithContext(ctx).
		Where("bank_statement_id = ?", statementID).
		Delete(&entities.Transaction{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Aggregate totals the credits and debits of a statement.
func (r *Repository) Aggregate(ctx context.Context, statementID uint) (Summary, error) {
	var summary Summary
	err := r.db.WithContext(ctx).Model(&entities.Transaction{}).
		Select("COUNT(*) AS count, COALESCE(SUM(credit_amount), 0) AS total_credits, COALESCE(SUM(debit_amount), 0) AS total_debits").
		Where("bank_statement_id = ?", statementID).
		Scan(&summary).Error
	if err != nil {
		return Summary{}, err
	}
	summary.TotalCredits = database.RoundMoney(summary.TotalCredits)
	summary.TotalDebits = database.RoundMoney(summary.TotalDebits)
	summary.Net = summary.TotalCredits.Sub(summary.TotalDebits)
	return summary, nil
}

// GroupByEntity totals a statement's lines per counterparty, largest
// credit first. Lines without an entity name are grouped under "".
func (r *Repository) GroupByEntity(ctx context.Context, statementID uint) ([]EntityTotal, error) {
	var totals []EntityTotal
	err := r.db.WithContext(ctx).Model(&entities.Transaction{}).
		Select("COALESCE(entity_name, '') AS entity_name, COUNT(*) AS count, " +
			"COALESCE(SUM(credit_amount), 0) AS total_credits, COALESCE(SUM(debit_amount), 0) AS total_debits").
		Where("bank_statement_id = ?", statementID).
		Group("COALESCE(entity_name, '')").
		Order("total_credits DESC, entity_name ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	for i := range totals {
		totals[i].TotalCredits = database.RoundMoney(totals[i].TotalCredits)
		totals[i].TotalDebits = database.RoundMoney(totals[i].TotalDebits)
	}
	return totals, nil
}
