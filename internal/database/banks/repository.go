// Package banks provides database operations for banks, including removal
// of banks that no longer have any statements.
package banks

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/entities"
)

var orderColumns = []string{"id", "name", "created_at"}

// StatementCount is the number of statements held by one bank.
type StatementCount struct {
	BankID     uint   `json:"bank_id"`
	BankName   string `json:"bank_name"`
	Statements int64  `json:"statements"`
}

// CleanupResult reports which orphaned banks were removed.
type CleanupResult struct {
	RemovedCount int      `json:"removed_count"`
	RemovedBanks []string `json:"removed_banks"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, bank *entities.Bank) error {
	return r.db.WithContext(ctx).Create(bank).Error
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Bank, error) {
	var bank entities.Bank
	if err := r.db.WithContext(ctx).First(&bank, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &bank, nil
}

// GetByName retrieves a bank by name (case-insensitive).
func (r *Repository) GetByName(ctx context.Context, name string) (*entities.Bank, error) {
	var bank entities.Bank
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&bank).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &bank, nil
}

func (r *Repository) List(ctx context.Context, search string, opts database.ListOptions) (database.Page[entities.Bank], error) {
	var page database.Page[entities.Bank]
	opts = opts.Normalize("name", orderColumns...)

	query := r.db.WithContext(ctx).Model(&entities.Bank{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	if err := query.Count(&page.Total).Error; err != nil {
		return page, err
	}
	err := query.Scopes(database.Paginate(opts)).Find(&page.Items).Error
	return page, err
}

// Update renames a bank. Statements keep their own copy of the bank name.
func (r *Repository) Update(ctx context.Context, bank *entities.Bank) error {
	result := r.db.WithContext(ctx).Model(&entities.Bank{ID: bank.ID}).Update("name", bank.Name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// ErrBankHasStatements is returned when deleting a bank that still owns statements.
var ErrBankHasStatements = errors.New("bank still has statements")

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var statements int64
		if err := tx.Model(&entities.BankStatement{}).Where("bank_id = ?", id).Count(&statements).Error; err != nil {
			return err
		}
		if statements > 0 {
			return ErrBankHasStatements
		}
		result := tx.Delete(&entities.Bank{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return nil
	})
}

// Upsert finds a bank by name or creates it.
func (r *Repository) Upsert(ctx context.Context, name string) (*entities.Bank, bool, error) {
	return UpsertTx(r.db.WithContext(ctx), name)
}

// UpsertTx is Upsert on an existing transaction.
func UpsertTx(tx *gorm.DB, name string) (*entities.Bank, bool, error) {
	var bank entities.Bank
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&bank).Error
	if err == nil {
		return &bank, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	bank = entities.Bank{Name: name}
	if err := tx.Create(&bank).Error; err != nil {
		return nil, false, err
	}
	return &bank, true, nil
}

// StatementCounts groups statements by bank, including banks with none.
func (r *Repository) StatementCounts(ctx context.Context) ([]StatementCount, error) {
	var counts []StatementCount
	err := r.db.WithContext(ctx).Model(&entities.Bank{}).
		Select("banks.id AS bank_id, banks.name AS bank_name, COUNT(bank_statements.id) AS statements").
		Joins("LEFT JOIN bank_statements ON bank_statements.bank_id = banks.id").
		Group("banks.id, banks.name").
		Order("banks.name ASC").
		Scan(&counts).Error
	return counts, err
}

// CleanupOrphaned deletes the bank if it has no statements left.
// Reports whether the bank was removed and its name.
func (r *Repository) CleanupOrphaned(ctx context.Context, id uint) (bool, string, error) {
	return CleanupOrphanedTx(r.db.WithContext(ctx), id)
}

// CleanupOrphanedTx is CleanupOrphaned on an existing transaction.
func CleanupOrphanedTx(tx *gorm.DB, id uint) (bool, string, error) {
	var remaining int64
	if err := tx.Model(&entities.BankStatement{}).Where("bank_id = ?", id).Count(&remaining).Error; err != nil {
		return false, "", err
	}
	if remaining > 0 {
		log.Debug().Uint("bank_id", id).Int64("statements", remaining).Msg("Bank still has statements, keeping it")
		return false, "", nil
	}

	var bank entities.Bank
	err := tx.First(&bank, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	if err := tx.Delete(&bank).Error; err != nil {
		return false, "", err
	}
	log.Info().Uint("bank_id", id).Str("bank", bank.Name).Msg("Removed orphaned bank")
	return true, bank.Name, nil
}

// CleanupAllOrphaned deletes every bank without statements.
func (r *Repository) CleanupAllOrphaned(ctx context.Context) (CleanupResult, error) {
	result := CleanupResult{RemovedBanks: []string{}}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orphans []entities.Bank
		err := tx.Where("NOT EXISTS (SELECT 1 FROM bank_statements WHERE bank_statements.bank_id = banks.id)").
			Order("name ASC").
			Find(&orphans).Error
		if err != nil {
			return err
		}
		if len(orphans) == 0 {
			return nil
		}

		ids := make([]uint, len(orphans))
		for i, bank := range orphans {
			ids[i] = bank.ID
			result.RemovedBanks = append(result.RemovedBanks, bank.Name)
		}
		deleted := tx.Delete(&entities.Bank{}, ids)
		if deleted.Error != nil {
			return deleted.Error
		}
		result.RemovedCount = int(deleted.RowsAffected)
		return nil
	})
	if err != nil {
		return CleanupResult{}, err
	}

	if result.RemovedCount > 0 {
		log.Info().Int("count", result.RemovedCount).Strs("banks", result.RemovedBanks).Msg("Cleaned up orphaned banks")
	}
	return result, nil
}
