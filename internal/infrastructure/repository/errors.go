package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicate reports whether err comes from a violated unique constraint.
// The driver does not always translate to gorm.ErrDuplicatedKey, so the
// postgres error text is matched as a fallback.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}
