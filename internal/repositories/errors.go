package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record lookup misses.
var ErrNotFound = errors.New("record not found")

// ErrStaleVersion is returned when a paper save carries an out-of-date
// version and would clobber a newer write.
var ErrStaleVersion = errors.New("stale paper version")

// IsNotFoundError reports whether err is a record-miss from any layer.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsStaleVersionError reports whether err is an optimistic-concurrency miss.
func IsStaleVersionError(err error) bool {
	return errors.Is(err, ErrStaleVersion)
}
