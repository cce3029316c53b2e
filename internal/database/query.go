package database

import (
	"gorm.io/gorm"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ListOptions controls pagination and ordering of list queries.
type ListOptions struct {
	Limit   int
	Offset  int
	OrderBy string
	Desc    bool
}

// Normalize clamps the limit and falls back to fallbackOrder when OrderBy is
// not one of the allowed columns.
func (o ListOptions) Normalize(fallbackOrder string, allowed ...string) ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	ok := false
	for _, col := range allowed {
		if o.OrderBy == col {
			ok = true
			break
		}
	}
	if !ok {
		o.OrderBy = fallbackOrder
	}
	return o
}

// Paginate is a gorm scope applying limit, offset and order.
// Call Normalize first so OrderBy is a known column.
func Paginate(o ListOptions) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		order := o.OrderBy
		if order != "" {
			if o.Desc {
				order += " DESC"
			} else {
				order += " ASC"
			}
			db = db.Order(order)
		}
		if o.Limit > 0 {
			db = db.Limit(o.Limit)
		}
		if o.Offset > 0 {
			db = db.Offset(o.Offset)
		}
		return db
	}
}

// Page is one page of a list query together with the unpaginated total.
type Page[T any] struct {
	Items []T
	Total int64
}
