package database

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/mrlokans/ledger/internal/entities"
)

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "001_parties",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&entities.Customer{}, &entities.Supplier{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("suppliers", "customers")
			},
		},
		{
			ID: "002_banking",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&entities.Bank{}, &entities.BankStatement{}, &entities.Transaction{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("transactions", "bank_statements", "banks")
			},
		},
		{
			ID: "003_invoices",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&entities.Invoice{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("invoices")
			},
		},
		{
			ID: "004_audit_events",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&entities.AuditEvent{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("audit_events")
			},
		},
		{
			ID: "005_party_terms_detail",
			Migrate: func(tx *gorm.DB) error {
				for _, model := range []any{&entities.Customer{}, &entities.Supplier{}} {
					if tx.Migrator().HasColumn(model, "TermsDetail") {
						continue
					}
					if err := tx.Migrator().AddColumn(model, "TermsDetail"); err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				for _, model := range []any{&entities.Customer{}, &entities.Supplier{}} {
					if err := tx.Migrator().DropColumn(model, "TermsDetail"); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

// Migrate applies all pending schema migrations.
func Migrate(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations()).Migrate()
}

// RollbackLast reverts the most recently applied migration.
func RollbackLast(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations()).RollbackLast()
}
