package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrVersionConflict is returned when a compare-and-swap update finds the
	// row at a different version than the caller read.
	ErrVersionConflict = errors.New("version conflict")
	ErrDuplicate       = errors.New("duplicate record")
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
