// Package contact provides the Contact catalog: individual people that place orders.
package contact

import (
	"context"
	"strings"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/entity"
)

type Contact struct {
	entity.Catalog

	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
}

func NewContact(code, firstName, lastName string) *Contact {
	return &Contact{
		Catalog:   entity.NewCatalog(code),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
}

func (c *Contact) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if c.DisplayName() == "" {
		return apperror.NewValidation("first or last name is required").
			WithDetail("field", "lastName")
	}
	return nil
}

// DisplayName is "first last" with missing parts dropped.
func (c *Contact) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}
