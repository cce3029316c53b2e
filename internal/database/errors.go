package database

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by repositories when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// IsNotFound reports whether err is a missing-row error from a repository or gorm.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// TranslateError maps gorm's not-found error onto ErrNotFound and leaves the rest untouched.
func TranslateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
