// Package order_summary provides the OrderSummary document: denormalized
// monthly totals of a customer's finished orders.
package order_summary

import (
	"context"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/entity"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain/customer"
	"salesdesk/internal/domain/summary"
)

type OrderSummary struct {
	entity.BaseDocument

	CustomerKind *customer.Kind `db:"customer_kind" json:"-"`
	CustomerID   *id.ID         `db:"customer_id" json:"-"`

	Year  *int `db:"year" json:"year"`
	Month *int `db:"month" json:"month"`

	// Totals stay nil until the first recompute.
	TotalQuantity *int64       `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   *types.Money `db:"total_amount" json:"totalAmount"`
}

func NewOrderSummary() *OrderSummary {
	return &OrderSummary{BaseDocument: entity.NewBaseDocument()}
}

func (s *OrderSummary) CustomerRef() *customer.Ref {
	return customer.RefFromColumns(s.CustomerKind, s.CustomerID)
}

func (s *OrderSummary) SetCustomer(ref *customer.Ref) {
	s.CustomerKind, s.CustomerID = ref.Columns()
}

func (s *OrderSummary) Scope() summary.Scope {
	return summary.Scope{
		ID:       s.ID,
		Customer: s.CustomerRef(),
		Year:     s.Year,
		Month:    s.Month,
	}
}

func (s *OrderSummary) ApplyTotals(t summary.Totals) {
	qty, amount := t.Quantity, t.Amount
	s.TotalQuantity = &qty
	s.TotalAmount = &amount
}

func (s *OrderSummary) Validate(ctx context.Context) error {
	if s.Month != nil && (*s.Month < 1 || *s.Month > 12) {
		return apperror.NewValidation("month must be between 1 and 12").
			WithDetail("field", "month")
	}
	if s.Year != nil && *s.Year < 1 {
		return apperror.NewValidation("year must be positive").
			WithDetail("field", "year")
	}
	if (s.CustomerKind == nil) != (s.CustomerID == nil) {
		return apperror.NewValidation("customer kind and id must be set together").
			WithDetail("field", "customer")
	}
	if ref := s.CustomerRef(); ref != nil && !ref.Kind.Valid() {
		return apperror.NewUnresolvableReference(string(ref.Kind))
	}
	return nil
}
