// Package domain provides shared repository contracts, lifecycle hooks and the
// generic catalog service.
package domain

import (
	"context"

	"salesdesk/internal/core/entity"
	"salesdesk/internal/core/id"
)

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search matches against the entity's searchable text columns.
	Search string

	IDs []id.ID

	// OrderBy is a column name, prefixed with "-" for descending.
	OrderBy string

	Limit  int
	Offset int
}

func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "code",
	}
}

// ListResult is one page of results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// CatalogRepository defines persistence for catalog entities.
type CatalogRepository[T entity.Validatable] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, id id.ID) (T, error)
	GetByCode(ctx context.Context, code string) (T, error)
	// Update writes with optimistic locking on version.
	Update(ctx context.Context, entity T) error
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
