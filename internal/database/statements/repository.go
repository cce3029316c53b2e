// Package statements provides database operations for bank statements and
// their transactions.
//
// A statement is created together with its transactions in one database
// transaction. Deleting a statement removes its transactions and, if the
// bank has nothing else left, the bank itself.
package statements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/database/banks"
	"github.com/mrlokans/ledger/internal/entities"
)

var orderColumns = []string{"id", "statement_period_start", "statement_period_end", "bank_name", "created_at"}

// ErrBankRequired is returned when a statement has neither a bank ID nor a bank name.
var ErrBankRequired = errors.New("statement requires a bank id or bank name")

// Filter narrows List results. Zero values are ignored.
type Filter struct {
	BankID           uint
	CustomerID       uint
	SupplierID       uint
	ValidationStatus entities.ValidationStatus
	AccountNumber    string
}

type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Create stores a statement and its transactions. When BankID is zero the
// bank is looked up (or created) by BankName. Transactions without a
// currency take the statement's account currency.
func (r *Repository) Create(ctx context.Context, stmt *entities.BankStatement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if stmt.BankID == 0 {
			if stmt.BankName == "" {
				return ErrBankRequired
			}
			bank, _, err := banks.UpsertTx(tx, stmt.BankName)
			if err != nil {
				return fmt.Errorf("resolve bank: %w", err)
			}
			stmt.BankID = bank.ID
		} else if stmt.BankName == "" {
			var bank entities.Bank
			if err := tx.First(&bank, stmt.BankID).Error; err != nil {
				return fmt.Errorf("resolve bank: %w", database.TranslateError(err))
			}
			stmt.BankName = bank.Name
		}

		if stmt.ValidationStatus == "" {
			stmt.ValidationStatus = entities.ValidationStatusPending
		}
		for i := range stmt.Transactions {
			if stmt.Transactions[i].Currency == "" {
				stmt.Transactions[i].Currency = stmt.AccountCurrency
			}
			if stmt.Transactions[i].TransactionDate.IsZero() {
				stmt.Transactions[i].TransactionDate = stmt.StatementPeriodStart
			}
		}

		return tx.Omit("Bank").Create(stmt).Error
	})
}

// GetByID retrieves a statement, optionally with its transactions in date order.
func (r *Repository) GetByID(ctx context.Context, id uint, withTransactions bool) (*entities.BankStatement, error) {
	var stmt entities.BankStatement
	query := r.db.WithContext(ctx).Preload("Bank")
	if withTransactions {
		query = query.Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("transaction_date ASC, id ASC")
		})
	}
	if err := query.First(&stmt, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &stmt, nil
}

// List returns one page of statements matching filter, without transactions.
func (r *Repository) List(ctx context.Context, filter Filter, opts database.ListOptions) (database.Page[entities.BankStatement], error) {
	var page database.Page[entities.BankStatement]
	if opts.OrderBy == "" {
		opts.Desc = true
	}
	opts = opts.Normalize("statement_period_start", orderColumns...)

	query := r.db.WithContext(ctx).Model(&entities.BankStatement{})
	if filter.BankID != 0 {
		query = query.Where("bank_id = ?", filter.BankID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.SupplierID != 0 {
		query = query.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.ValidationStatus != "" {
		query = query.Where("validation_status = ?", filter.ValidationStatus)
	}
	if filter.AccountNumber != "" {
		query = query.Where("account_number = ?", filter.AccountNumber)
	}

	if err := query.Count(&page.Total).Error; err != nil {
		return page, err
	}
	err := query.Scopes(database.Paginate(opts)).Find(&page.Items).Error
	return page, err
}

// Update overwrites the statement header. Transactions are managed
// separately and validation state is reset to pending.
func (r *Repository) Update(ctx context.Context, stmt *entities.BankStatement) error {
	result := r.db.WithContext(ctx).Model(&entities.BankStatement{ID: stmt.ID}).
		Updates(map[string]any{
			"customer_id":            stmt.CustomerID,
			"supplier_id":            stmt.SupplierID,
			"file_name":              stmt.FileName,
			"file_url":               stmt.FileURL,
			"account_number":         stmt.AccountNumber,
			"account_type":           stmt.AccountType,
			"account_currency":       stmt.AccountCurrency,
			"statement_period_start": stmt.StatementPeriodStart,
			"statement_period_end":   stmt.StatementPeriodEnd,
			"starting_balance":       stmt.StartingBalance,
			"ending_balance":         stmt.EndingBalance,
			"validated":              false,
			"validation_status":      entities.ValidationStatusPending,
			"validation_notes":       "",
			"validated_at":           nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a statement and its transactions, then drops the bank if
// it has no statements left. Reports whether the bank was removed.
func (r *Repository) Delete(ctx context.Context, id uint) (bool, error) {
	bankRemoved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stmt entities.BankStatement
		if err := tx.First(&stmt, id).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Where("bank_statement_id = ?", id).Delete(&entities.Transaction{}).Error; err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		if err := tx.Delete(&stmt).Error; err != nil {
			return err
		}
		removed, _, err := banks.CleanupOrphanedTx(tx, stmt.BankID)
		if err != nil {
			return fmt.Errorf("cleanup bank: %w", err)
		}
		bankRemoved = removed
		return nil
	})
	return bankRemoved, err
}

// Validate reconciles the statement's balances against its transactions and
// stores the outcome on the statement.
func (r *Repository) Validate(ctx context.Context, id uint) (*entities.BankStatement, ValidationResult, error) {
	stmt, err := r.GetByID(ctx, id, true)
	if err != nil {
		return nil, ValidationResult{}, err
	}

	result := CheckBalance(stmt)
	validatedAt := r.now()

	err = r.db.WithContext(ctx).Model(&entities.BankStatement{ID: id}).Updates(map[string]any{
		"validation_status": result.Status,
		"validation_notes":  result.Notes,
		"validated":         result.Status == entities.ValidationStatusPassed,
		"validated_at":      validatedAt,
	}).Error
	if err != nil {
		return nil, result, err
	}

	stmt.ValidationStatus = result.Status
	stmt.ValidationNotes = result.Notes
	stmt.Validated = result.Status == entities.ValidationStatusPassed
	stmt.ValidatedAt = &validatedAt
	return stmt, result, nil
}

// Exists reports whether a statement with id exists.
func (r *Repository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.BankStatement{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// LatestPerAccount returns the newest statement of every bank account whose
// period ends on or before asOf, without transactions. A zero asOf means no
// bound. Accounts are keyed by bank and account number.
func (r *Repository) LatestPerAccount(ctx context.Context, asOf time.Time) ([]entities.BankStatement, error) {
	query := r.db.WithContext(ctx).Model(&entities.BankStatement{})
	if !asOf.IsZero() {
		query = query.Where("statement_period_end <= ?", asOf)
	}

	var all []entities.BankStatement
	err := query.Order("bank_id").Order("account_number").
		Order("statement_period_end DESC").Order("id DESC").
		Find(&all).Error
	if err != nil {
		return nil, err
	}

	latest := make([]entities.BankStatement, 0, len(all))
	for i, stmt := range all {
		if i > 0 && stmt.BankID == all[i-1].BankID && stmt.AccountNumber == all[i-1].AccountNumber {
			continue
		}
		latest = append(latest, stmt)
	}
	return latest, nil
}
