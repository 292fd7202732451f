// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/domain/customer"
)

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

type IDResponse struct {
	ID string `json:"id"`
}

// CustomerRef is the tagged customer reference: {"kind":"account","id":"..."}.
type CustomerRef struct {
	Kind string `json:"kind" binding:"required"`
	ID   string `json:"id" binding:"required,uuid"`
}

// ToDomain validates the kind. Kinds outside the resolver table are
// rejected here rather than at numbering time.
func (r *CustomerRef) ToDomain() (*customer.Ref, error) {
	if r == nil {
		return nil, nil
	}
	kind := customer.Kind(r.Kind)
	if !kind.Valid() {
		return nil, apperror.NewUnresolvableReference(r.Kind)
	}
	refID, err := id.Parse(r.ID)
	if err != nil {
		return nil, apperror.NewValidation("invalid customer id").WithDetail("field", "customer.id")
	}
	return &customer.Ref{Kind: kind, ID: refID}, nil
}

func FromCustomerRef(ref *customer.Ref) *CustomerRef {
	if ref == nil {
		return nil
	}
	return &CustomerRef{Kind: string(ref.Kind), ID: ref.ID.String()}
}
