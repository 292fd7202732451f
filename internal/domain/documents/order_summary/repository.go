package order_summary

import (
	"context"

	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/customer"
	"salesdesk/internal/domain/summary"
)

type Repository interface {
	summary.TotalsWriter

	Create(ctx context.Context, doc *OrderSummary) error
	GetByID(ctx context.Context, docID id.ID) (*OrderSummary, error)
	// Update writes everything except the totals, with optimistic locking.
	Update(ctx context.Context, doc *OrderSummary) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*OrderSummary], error)

	// FindByScope returns the summaries for customer and month.
	FindByScope(ctx context.Context, ref customer.Ref, year, month int) ([]*OrderSummary, error)
}

type ListFilter struct {
	domain.ListFilter

	Customer *customer.Ref
	Year     *int
	Month    *int
}
