package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/ledger/internal/database"
	"github.com/mrlokans/ledger/internal/entities"
)

var orderColumns = []string{"id", "created_at", "action"}

// Filter narrows audit event listings. Zero values match everything.
type Filter struct {
	Action     entities.AuditAction
	EntityType string
	EntityID   uint
	Since      *time.Time
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record saves an audit event.
func (r *Repository) Record(ctx context.Context, event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.AuditEvent, error) {
	var event entities.AuditEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &event, nil
}

// List returns one page of events, most recent first unless ordered otherwise.
func (r *Repository) List(ctx context.Context, filter Filter, opts database.ListOptions) (database.Page[entities.AuditEvent], error) {
	var page database.Page[entities.AuditEvent]
	if opts.OrderBy == "" {
		opts.Desc = true
	}
	opts = opts.Normalize("id", orderColumns...)

	query := r.db.WithContext(ctx).Model(&entities.AuditEvent{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", filter.Since.UTC())
	}

	if err := query.Count(&page.Total).Error; err != nil {
		return page, err
	}
	err := query.Scopes(database.Paginate(opts)).Find(&page.Items).Error
	return page, err
}

// DeleteOlderThan removes events created before cutoff and returns how many were deleted.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
