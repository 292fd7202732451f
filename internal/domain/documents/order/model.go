// Package order provides the Order document: a dated sale to a customer whose
// number is allocated from the customer's monthly counter.
package order

import (
	"context"
	"time"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/entity"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain/customer"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusFinished Status = "finished"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusFinished
}

type Order struct {
	entity.BaseDocument

	// Number is nil until both customer and date are known. Once set it never changes.
	Number *string `db:"number" json:"number"`

	// Date is the occurrence date; it selects the counter month and summary window.
	Date *time.Time `db:"date" json:"date"`

	CustomerKind *customer.Kind `db:"customer_kind" json:"-"`
	CustomerID   *id.ID         `db:"customer_id" json:"-"`

	Status  Status `db:"status" json:"status"`
	Comment string `db:"comment" json:"comment,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

type Line struct {
	LineID    id.ID       `db:"line_id" json:"lineId"`
	LineNo    int         `db:"line_no" json:"lineNo"`
	Quantity  int64       `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
}

// Amount is Quantity * UnitPrice.
func (l Line) Amount() types.Money {
	return types.LineAmount(l.Quantity, l.UnitPrice)
}

func NewOrder() *Order {
	return &Order{
		BaseDocument: entity.NewBaseDocument(),
		Status:       StatusDraft,
		Lines:        make([]Line, 0),
	}
}

func (o *Order) AddLine(qty int64, price types.Money) {
	o.Lines = append(o.Lines, Line{
		LineID:    id.New(),
		LineNo:    len(o.Lines) + 1,
		Quantity:  qty,
		UnitPrice: price,
	})
}

func (o *Order) CustomerRef() *customer.Ref {
	return customer.RefFromColumns(o.CustomerKind, o.CustomerID)
}

func (o *Order) SetCustomer(ref *customer.Ref) {
	o.CustomerKind, o.CustomerID = ref.Columns()
}

func (o *Order) OccurrenceDate() *time.Time {
	return o.Date
}

func (o *Order) SetNumber(number string) {
	o.Number = &number
}

func (o *Order) HasNumber() bool {
	return o.Number != nil && *o.Number != ""
}

func (o *Order) IsFinished() bool {
	return o.Status == StatusFinished
}

func (o *Order) Validate(ctx context.Context) error {
	if !o.Status.Valid() {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(o.Status))
	}
	if ref := o.CustomerRef(); ref != nil && !ref.Kind.Valid() {
		return apperror.NewUnresolvableReference(string(ref.Kind))
	}
	if (o.CustomerKind == nil) != (o.CustomerID == nil) {
		return apperror.NewValidation("customer kind and id must be set together").
			WithDetail("field", "customer")
	}
	if o.IsFinished() && (o.Date == nil || o.CustomerRef() == nil) {
		return apperror.NewValidation("finished order requires customer and date").
			WithDetail("field", "status")
	}
	for i, l := range o.Lines {
		if l.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines.quantity").
				WithDetail("line", i+1)
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "lines.unitPrice").
				WithDetail("line", i+1)
		}
	}
	return nil
}

// CanModify rejects edits to finished orders.
func (o *Order) CanModify() error {
	if o.IsFinished() {
		return apperror.NewBusinessRule(apperror.CodeOrderFinished, "finished order cannot be modified").
			WithDetail("order_id", o.ID.String())
	}
	return nil
}

// Finish moves a draft order to finished.
func (o *Order) Finish() error {
	if err := o.CanModify(); err != nil {
		return err
	}
	o.Status = StatusFinished
	if o.Date == nil || o.CustomerRef() == nil {
		o.Status = StatusDraft
		return apperror.NewValidation("finished order requires customer and date").
			WithDetail("field", "status")
	}
	o.Touch()
	return nil
}
