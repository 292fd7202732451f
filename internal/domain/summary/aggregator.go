// Package summary recomputes per-customer monthly order totals.
package summary

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain/customer"
	"salesdesk/pkg/logger"
)

// JoinedLine is one line of a finished order inside the window.
type JoinedLine struct {
	OrderID   id.ID       `db:"order_id"`
	Quantity  int64       `db:"quantity"`
	UnitPrice types.Money `db:"unit_price"`
}

type Totals struct {
	Quantity int64       `json:"totalQuantity"`
	Amount   types.Money `json:"totalAmount"`
}

// Scope identifies the summary row to recompute. Nil fields make the scope
// incomplete.
type Scope struct {
	ID       id.ID
	Customer *customer.Ref
	Year     *int
	Month    *int
}

func (s Scope) complete() bool {
	return s.Customer != nil && s.Year != nil && s.Month != nil
}

// LineReader returns the lines of the customer's finished orders dated within
// [from, to], inner-joined with their orders.
type LineReader interface {
	FinishedLines(ctx context.Context, ref customer.Ref, from, to time.Time) ([]JoinedLine, error)
}

// TotalsWriter stores totals on an existing summary, by identity.
type TotalsWriter interface {
	UpdateTotals(ctx context.Context, summaryID id.ID, totals Totals) error
}

// Window returns the first and last second of the month in UTC.
func Window(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, apperror.NewValidation("month must be between 1 and 12").
			WithDetail("field", "month").
			WithDetail("value", month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := start.AddDate(0, 1, -1)
	end := time.Date(year, time.Month(month), last.Day(), 23, 59, 59, 0, time.UTC)
	return start, end, nil
}

// Sum folds lines into totals. An empty slice gives zero totals.
func Sum(lines []JoinedLine) Totals {
	t := Totals{Amount: types.Zero()}
	for _, l := range lines {
		t.Quantity += l.Quantity
		t.Amount = t.Amount.Add(types.LineAmount(l.Quantity, l.UnitPrice))
	}
	return t
}

type Aggregator struct {
	lines  LineReader
	writer TotalsWriter
	tracer trace.Tracer
}

func NewAggregator(lines LineReader, writer TotalsWriter) *Aggregator {
	return &Aggregator{
		lines:  lines,
		writer: writer,
		tracer: otel.Tracer("salesdesk/summary"),
	}
}

// Recompute replaces the scope's totals with sums over its window. It reports
// false without touching the store when the scope is incomplete. Running it
// twice over unchanged data writes the same totals.
func (a *Aggregator) Recompute(ctx context.Context, scope Scope) (Totals, bool, error) {
	if !scope.complete() {
		return Totals{}, false, nil
	}

	ctx, span := a.tracer.Start(ctx, "summary.Recompute", trace.WithAttributes(
		attribute.String("summary.id", scope.ID.String()),
		attribute.String("customer.ref", scope.Customer.String()),
		attribute.Int("summary.year", *scope.Year),
		attribute.Int("summary.month", *scope.Month),
	))
	defer span.End()

	from, to, err := Window(*scope.Year, *scope.Month)
	if err != nil {
		return Totals{}, false, err
	}

	lines, err := a.lines.FinishedLines(ctx, *scope.Customer, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load lines")
		return Totals{}, false, fmt.Errorf("load finished lines: %w", err)
	}

	totals := Sum(lines)
	if err := a.writer.UpdateTotals(ctx, scope.ID, totals); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update totals")
		return Totals{}, false, fmt.Errorf("update summary totals: %w", err)
	}

	logger.Info(ctx, "summary recomputed",
		"summary_id", scope.ID,
		"lines", len(lines),
		"total_quantity", totals.Quantity,
		"total_amount", totals.Amount.String(),
	)
	return totals, true, nil
}
