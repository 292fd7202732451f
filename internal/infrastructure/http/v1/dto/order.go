package dto

import (
	"time"

	"salesdesk/internal/core/types"
	"salesdesk/internal/domain/documents/order"
)

type OrderLine struct {
	Quantity  int64       `json:"quantity" binding:"required,gt=0"`
	UnitPrice types.Money `json:"unitPrice"`
}

// CreateOrderRequest may omit customer and date; the order then gets its
// number on the first update that supplies both.
type CreateOrderRequest struct {
	Date     *time.Time   `json:"date"`
	Customer *CustomerRef `json:"customer"`
	Status   string       `json:"status" binding:"omitempty,oneof=draft finished"`
	Comment  string       `json:"comment"`
	Lines    []OrderLine  `json:"lines" binding:"dive"`
}

func (r *CreateOrderRequest) ToEntity() (*order.Order, error) {
	o := order.NewOrder()
	if err := applyOrderFields(o, r.Date, r.Customer, r.Comment, r.Lines); err != nil {
		return nil, err
	}
	if r.Status != "" {
		o.Status = order.Status(r.Status)
	}
	return o, nil
}

// UpdateOrderRequest replaces the editable fields of a draft order.
// Number and status cannot be changed here.
type UpdateOrderRequest struct {
	Date     *time.Time   `json:"date"`
	Customer *CustomerRef `json:"customer"`
	Comment  string       `json:"comment"`
	Lines    []OrderLine  `json:"lines" binding:"dive"`
	Version  int          `json:"version" binding:"required"`
}

func (r *UpdateOrderRequest) ApplyTo(o *order.Order) error {
	if err := applyOrderFields(o, r.Date, r.Customer, r.Comment, r.Lines); err != nil {
		return err
	}
	o.Version = r.Version
	return nil
}

func applyOrderFields(o *order.Order, date *time.Time, cust *CustomerRef, comment string, lines []OrderLine) error {
	ref, err := cust.ToDomain()
	if err != nil {
		return err
	}
	o.SetCustomer(ref)
	if date != nil {
		d := date.UTC()
		o.Date = &d
	} else {
		o.Date = nil
	}
	o.Comment = comment
	o.Lines = o.Lines[:0]
	for _, l := range lines {
		o.AddLine(l.Quantity, l.UnitPrice)
	}
	return nil
}

type OrderLineResponse struct {
	LineNo    int         `json:"lineNo"`
	Quantity  int64       `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
	Amount    types.Money `json:"amount"`
}

type OrderResponse struct {
	ID          string              `json:"id"`
	Version     int                 `json:"version"`
	Number      *string             `json:"number"`
	Date        *time.Time          `json:"date"`
	Customer    *CustomerRef        `json:"customer"`
	Status      order.Status        `json:"status"`
	Comment     string              `json:"comment,omitempty"`
	Lines       []OrderLineResponse `json:"lines"`
	TotalAmount types.Money         `json:"totalAmount"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func FromOrder(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID.String(),
		Version:     o.Version,
		Number:      o.Number,
		Date:        o.Date,
		Customer:    FromCustomerRef(o.CustomerRef()),
		Status:      o.Status,
		Comment:     o.Comment,
		Lines:       make([]OrderLineResponse, 0, len(o.Lines)),
		TotalAmount: types.Zero(),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for _, l := range o.Lines {
		amount := l.Amount()
		resp.TotalAmount = resp.TotalAmount.Add(amount)
		resp.Lines = append(resp.Lines, OrderLineResponse{
			LineNo:    l.LineNo,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    amount,
		})
	}
	return resp
}
