// Package customers provides database operations for customers.
//
// # Usage
//
//	repo := customers.NewRepository(db.DB)
//	customer, created, err := repo.Upsert(ctx, &entities.Customer{Name: "Acme"})
package customers

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/entities"
)

var orderColumns = []string{"id", "name", "country", "created_at"}

// Repository handles all customer database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new customers repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new customer.
func (r *Repository) Create(ctx context.Context, customer *entities.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// GetByID retrieves a customer with its invoices, newest first.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Customer, error) {
	var customer entities.Customer
	err := r.db.WithContext(ctx).Preload("Invoices", func(db *gorm.DB) *gorm.DB {
		return db.Order("invoice_date DESC")
	}).First(&customer, id).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &customer, nil
}

// GetByName retrieves a customer by name (case-insensitive).
func (r *Repository) GetByName(ctx context.Context, name string) (*entities.Customer, error) {
	var customer entities.Customer
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&customer).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &customer, nil
}

// List returns one page of customers whose name contains search.
func (r *Repository) List(ctx context.Context, search string, opts database.ListOptions) (database.Page[entities.Customer], error) {
	var page database.Page[entities.Customer]
	opts = opts.Normalize("name", orderColumns...)

	query := r.db.WithContext(ctx).Model(&entities.Customer{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	if err := query.Count(&page.Total).Error; err != nil {
		return page, err
	}
	err := query.Scopes(database.Paginate(opts)).Find(&page.Items).Error
	return page, err
}

// Update overwrites the editable fields of an existing customer.
func (r *Repository) Update(ctx context.Context, customer *entities.Customer) error {
	result := r.db.WithContext(ctx).Model(&entities.Customer{ID: customer.ID}).
		Select("name", "country", "payment_terms", "terms_detail", "eta_id").
		Updates(customer)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a customer. Invoices and statements keep their rows but lose the reference.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Invoice{}).Where("customer_id = ?", id).Update("customer_id", nil).Error; err != nil {
			return fmt.Errorf("detach invoices: %w", err)
		}
		if err := tx.Model(&entities.BankStatement{}).Where("customer_id = ?", id).Update("customer_id", nil).Error; err != nil {
			return fmt.Errorf("detach statements: %w", err)
		}
		result := tx.Delete(&entities.Customer{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return nil
	})
}

// Upsert finds a customer by name or creates it. For an existing customer
// the non-empty fields of customer are written over the stored ones.
// Returns the stored customer and whether it was created.
func (r *Repository) Upsert(ctx context.Context, customer *entities.Customer) (*entities.Customer, bool, error) {
	var stored entities.Customer
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("LOWER(name) = LOWER(?)", customer.Name).First(&stored).Error
		if err == gorm.ErrRecordNotFound {
			stored = *customer
			created = true
			return tx.Create(&stored).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&stored).Updates(entities.Customer{
			Country:      customer.Country,
			PaymentTerms: customer.PaymentTerms,
			TermsDetail:  customer.TermsDetail,
			EtaID:        customer.EtaID,
		}).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}

// Count returns the number of customers.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Customer{}).Count(&count).Error
	return count, err
}
