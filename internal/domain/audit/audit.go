// Package audit defines the audit trail contract used by domain services.
// The PostgreSQL recorder lives in infrastructure/storage/postgres.
package audit

import (
	"context"

	"salesdesk/internal/core/id"
)

type Action string

const (
	ActionCreate            Action = "create"
	ActionUpdate            Action = "update"
	ActionFinish            Action = "finish"
	ActionNumberAllocated   Action = "number_allocated"
	ActionSummaryRecomputed Action = "summary_recomputed"
)

// Recorder appends an audit entry. Called inside the transaction of the
// change being recorded when there is one.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// Nop discards entries.
type Nop struct{}

func (Nop) Record(context.Context, string, id.ID, Action, map[string]any) error { return nil }
