// Package id generates identifiers for persisted entities.
package id

import (
	"github.com/google/uuid"
)

type ID = uuid.UUID

// New returns a UUIDv7. Its timestamp prefix keeps primary key inserts
// append-only in the btree.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse panics on malformed input. Tests and constants only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

func IsNil(v ID) bool {
	return v == uuid.Nil
}
