// Package customer models the polymorphic customer reference carried by
// orders and summaries, and resolves it to a display name.
package customer

import (
	"fmt"

	"salesdesk/internal/core/id"
)

// Kind tags which catalog a Ref points into.
type Kind string

const (
	KindAccount Kind = "account"
	KindContact Kind = "contact"
)

func (k Kind) Valid() bool {
	switch k {
	case KindAccount, KindContact:
		return true
	}
	return false
}

// Ref is a reference to either an Account or a Contact.
type Ref struct {
	Kind Kind  `json:"kind"`
	ID   id.ID `json:"id"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// RefFromColumns assembles a Ref from its nullable column pair. Either column
// missing yields nil.
func RefFromColumns(kind *Kind, refID *id.ID) *Ref {
	if kind == nil || refID == nil || *kind == "" || id.IsNil(*refID) {
		return nil
	}
	return &Ref{Kind: *kind, ID: *refID}
}

// Columns splits r into its nullable column pair.
func (r *Ref) Columns() (*Kind, *id.ID) {
	if r == nil {
		return nil, nil
	}
	kind, refID := r.Kind, r.ID
	return &kind, &refID
}
