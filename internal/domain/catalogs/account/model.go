// Package account provides the Account catalog: organisations that place orders.
package account

import (
	"context"
	"strings"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/entity"
)

type Account struct {
	entity.Catalog

	Name string `db:"name" json:"name"`
}

func NewAccount(code, name string) *Account {
	return &Account{
		Catalog: entity.NewCatalog(code),
		Name:    strings.TrimSpace(name),
	}
}

func (a *Account) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(a.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// DisplayName is the name used in document numbers.
func (a *Account) DisplayName() string {
	return a.Name
}
