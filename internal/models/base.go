// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Now returns the current time in the precision the database stores.
// Cursor comparisons rely on timestamps round-tripping unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NewID returns a random UUID string for entity primary keys.
func NewID() string {
	return uuid.NewString()
}

// IsUUID reports whether s is a canonical UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = NewID()
	}
	if createdAt.IsZero() {
		*createdAt = Now()
	} else {
		*createdAt = createdAt.UTC().Truncate(time.Microsecond)
	}
}
