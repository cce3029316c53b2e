// Package suppliers provides database operations for suppliers.
//
// # Usage
//
//	repo := suppliers.NewRepository(db.DB)
//	supplier, created, err := repo.Upsert(ctx, &entities.Supplier{Name: "Globex"})
package suppliers

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/entities"
)

var orderColumns = []string{"id", "name", "country", "created_at"}

// Repository handles all supplier database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new suppliers repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new supplier.
func (r *Repository) Create(ctx context.Context, supplier *entities.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

// GetByID retrieves a supplier with its invoices, newest first.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Supplier, error) {
	var supplier entities.Supplier
	err := r.db.WithContext(ctx).Preload("Invoices", func(db *gorm.DB) *gorm.DB {
		return db.Order("invoice_date DESC")
	}).First(&supplier, id).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &supplier, nil
}

// GetByName retrieves a supplier by name (case-insensitive).
func (r *Repository) GetByName(ctx context.Context, name string) (*entities.Supplier, error) {
	var supplier entities.Supplier
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&supplier).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &supplier, nil
}

// List returns one page of suppliers whose name contains search.
func (r *Repository) List(ctx context.Context, search string, opts database.ListOptions) (database.Page[entities.Supplier], error) {
	var page database.Page[entities.Supplier]
	opts = opts.Normalize("name", orderColumns...)

	query := r.db.WithContext(ctx).Model(&entities.Supplier{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	if err := query.Count(&page.Total).Error; err != nil {
		return page, err
	}
	err := query.Scopes(database.Paginate(opts)).Find(&page.Items).Error
	return page, err
}

// Update overwrites the editable fields of an existing supplier.
func (r *Repository) Update(ctx context.Context, supplier *entities.Supplier) error {
	result := r.db.WithContext(ctx).Model(&entities.Supplier{ID: supplier.ID}).
		Select("name", "country", "payment_terms", "terms_detail", "eta_id").
		Updates(supplier)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a supplier. Invoices and statements keep their rows but lose the reference.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Invoice{}).Where("supplier_id = ?", id).Update("supplier_id", nil).Error; err != nil {
			return fmt.Errorf("detach invoices: %w", err)
		}
		if err := tx.Model(&entities.BankStatement{}).Where("supplier_id = ?", id).Update("supplier_id", nil).Error; err != nil {
			return fmt.Errorf("detach statements: %w", err)
		}
		result := tx.Delete(&entities.Supplier{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return nil
	})
}

// Upsert finds a supplier by name or creates it. For an existing supplier
// the non-empty fields of supplier are written over the stored ones.
// Returns the stored supplier and whether it was created.
func (r *Repository) Upsert(ctx context.Context, supplier *entities.Supplier) (*entities.Supplier, bool, error) {
	var stored entities.Supplier
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("LOWER(name) = LOWER(?)", supplier.Name).First(&stored).Error
		if err == gorm.ErrRecordNotFound {
			stored = *supplier
			created = true
			return tx.Create(&stored).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&stored).Updates(entities.Supplier{
			Country:      supplier.Country,
			PaymentTerms: supplier.PaymentTerms,
			TermsDetail:  supplier.TermsDetail,
			EtaID:        supplier.EtaID,
		}).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}

// Count returns the number of suppliers.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Supplier{}).Count(&count).Error
	return count, err
}
