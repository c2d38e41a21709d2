package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates a lookup matched no record.
	ErrNotFound = errors.New("record not found")
	// ErrAmbiguous indicates a lookup that must match one record matched several.
	ErrAmbiguous = errors.New("multiple records found")
)

// findExactlyOne runs query and requires exactly one row.
func findExactlyOne[T any](query *gorm.DB) (T, error) {
	var zero T
	var rows []T
	if err := query.Limit(2).Find(&rows).Error; err != nil {
		return zero, err
	}

	switch len(rows) {
	case 0:
		return zero, ErrNotFound
	case 1:
		return rows[0], nil
	default:
		return zero, ErrAmbiguous
	}
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
