// Package entity holds the base types shared by documents and catalogs.
package entity

import (
	"context"
	"strings"
	"time"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
)

// Validatable is implemented by entities that check their own invariants
// without touching the database.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity carries identity and the optimistic-lock version.
type BaseEntity struct {
	ID id.ID `db:"id" json:"id"`

	// Version is incremented by the repository on every update.
	Version int `db:"version" json:"version"`
}

func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:      id.New(),
		Version: 1,
	}
}

func (b *BaseEntity) SetVersion(v int) {
	b.Version = v
}

// BaseDocument extends BaseEntity with timestamps.
type BaseDocument struct {
	BaseEntity

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func NewBaseDocument() BaseDocument {
	now := time.Now().UTC()
	return BaseDocument{
		BaseEntity: NewBaseEntity(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch stamps UpdatedAt.
func (b *BaseDocument) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// Catalog is the base for reference data such as accounts and contacts.
type Catalog struct {
	BaseEntity

	// Code is a human-readable identifier, unique per catalog.
	Code string `db:"code" json:"code"`
}

func NewCatalog(code string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Code:       strings.TrimSpace(code),
	}
}

func (c *Catalog) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Code) == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	return nil
}
