package customer

import (
	"context"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/domain/catalogs/account"
	"salesdesk/internal/domain/catalogs/contact"
)

type AccountReader interface {
	GetByID(ctx context.Context, id id.ID) (*account.Account, error)
}

type ContactReader interface {
	GetByID(ctx context.Context, id id.ID) (*contact.Contact, error)
}

// NameFunc loads the display name of the record with the given id.
type NameFunc func(ctx context.Context, id id.ID) (string, error)

// Resolver maps a Ref to a display name through a per-kind table.
type Resolver struct {
	byKind map[Kind]NameFunc
}

// NewResolver registers the account and contact kinds.
func NewResolver(accounts AccountReader, contacts ContactReader) *Resolver {
	r := &Resolver{byKind: make(map[Kind]NameFunc)}
	r.Register(KindAccount, func(ctx context.Context, refID id.ID) (string, error) {
		a, err := accounts.GetByID(ctx, refID)
		if err != nil {
			return "", err
		}
		return a.DisplayName(), nil
	})
	r.Register(KindContact, func(ctx context.Context, refID id.ID) (string, error) {
		c, err := contacts.GetByID(ctx, refID)
		if err != nil {
			return "", err
		}
		return c.DisplayName(), nil
	})
	return r
}

// Register sets the resolver for kind, replacing any existing one.
func (r *Resolver) Register(kind Kind, fn NameFunc) {
	r.byKind[kind] = fn
}

// DisplayName resolves ref. A kind with no registered resolver fails with
// CodeUnresolvableReference; lookup errors propagate unchanged.
func (r *Resolver) DisplayName(ctx context.Context, ref Ref) (string, error) {
	fn, ok := r.byKind[ref.Kind]
	if !ok {
		return "", apperror.NewUnresolvableReference(string(ref.Kind)).
			WithDetail("id", ref.ID.String())
	}
	return fn(ctx, ref.ID)
}
