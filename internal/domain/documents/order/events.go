package order

import (
	"encoding/json"
	"fmt"

	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/customer"
)

// EventSaved is published whenever a finished order is written.
const EventSaved = "order.saved"

// SavedPayload names the summary scope affected by the order.
type SavedPayload struct {
	OrderID  id.ID        `json:"orderId"`
	Customer customer.Ref `json:"customer"`
	Year     int          `json:"year"`
	Month    int          `json:"month"`
}

func newSavedEvent(o *Order) (domain.Event, bool, error) {
	ref := o.CustomerRef()
	if ref == nil || o.Date == nil {
		return domain.Event{}, false, nil
	}
	d := o.Date.UTC()
	payload, err := json.Marshal(SavedPayload{
		OrderID:  o.ID,
		Customer: *ref,
		Year:     d.Year(),
		Month:    int(d.Month()),
	})
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("marshal %s: %w", EventSaved, err)
	}
	return domain.Event{
		AggregateType: "order",
		AggregateID:   o.ID,
		EventType:     EventSaved,
		Payload:       payload,
	}, true, nil
}

// DecodeSaved parses the payload of an EventSaved message.
func DecodeSaved(raw []byte) (SavedPayload, error) {
	var p SavedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode %s: %w", EventSaved, err)
	}
	return p, nil
}
