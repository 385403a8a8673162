package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is the storage-level absence signal. The gorm implementation
// returns gorm.ErrRecordNotFound directly; the in-memory one returns this.
var ErrNotFound = errors.New("record not found")

// ErrInvalidStatus is returned by the storage boundary when a record carries
// a status outside the closed enum.
var ErrInvalidStatus = errors.New("invalid record status")

// IsNotFoundError reports whether err means the entity is absent, regardless
// of which implementation produced it.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}
