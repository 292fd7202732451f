package dto

import (
	"time"

	"salesdesk/internal/core/types"
	"salesdesk/internal/domain/documents/order_summary"
)

type CreateOrderSummaryRequest struct {
	Customer *CustomerRef `json:"customer"`
	Year     *int         `json:"year" binding:"omitempty,min=1,max=9999"`
	Month    *int         `json:"month" binding:"omitempty,min=1,max=12"`
}

func (r *CreateOrderSummaryRequest) ToEntity() (*order_summary.OrderSummary, error) {
	doc := order_summary.NewOrderSummary()
	ref, err := r.Customer.ToDomain()
	if err != nil {
		return nil, err
	}
	doc.SetCustomer(ref)
	doc.Year, doc.Month = r.Year, r.Month
	return doc, nil
}

type UpdateOrderSummaryRequest struct {
	CreateOrderSummaryRequest
	Version int `json:"version" binding:"required"`
}

func (r *UpdateOrderSummaryRequest) ApplyTo(doc *order_summary.OrderSummary) error {
	ref, err := r.Customer.ToDomain()
	if err != nil {
		return err
	}
	doc.SetCustomer(ref)
	doc.Year, doc.Month = r.Year, r.Month
	doc.Version = r.Version
	return nil
}

type OrderSummaryResponse struct {
	ID            string       `json:"id"`
	Version       int          `json:"version"`
	Customer      *CustomerRef `json:"customer"`
	Year          *int         `json:"year"`
	Month         *int         `json:"month"`
	TotalQuantity *int64       `json:"totalQuantity"`
	TotalAmount   *types.Money `json:"totalAmount"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func FromOrderSummary(doc *order_summary.OrderSummary) OrderSummaryResponse {
	return OrderSummaryResponse{
		ID:            doc.ID.String(),
		Version:       doc.Version,
		Customer:      FromCustomerRef(doc.CustomerRef()),
		Year:          doc.Year,
		Month:         doc.Month,
		TotalQuantity: doc.TotalQuantity,
		TotalAmount:   doc.TotalAmount,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}
