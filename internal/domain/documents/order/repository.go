package order

import (
	"context"
	"time"

	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/customer"
)

type Repository interface {
	Create(ctx context.Context, doc *Order) error
	GetByID(ctx context.Context, docID id.ID) (*Order, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, docID id.ID) (*Order, error)
	Update(ctx context.Context, doc *Order) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error)

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	// SaveLines replaces all lines of the document.
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error
}

type ListFilter struct {
	domain.ListFilter

	Customer *customer.Ref
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
}
