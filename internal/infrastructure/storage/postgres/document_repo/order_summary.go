package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/customer"
	"salesdesk/internal/domain/documents/order_summary"
	"salesdesk/internal/domain/summary"
	"salesdesk/internal/infrastructure/storage/postgres"
)

const orderSummariesTable = "doc_order_summaries"

var orderSummaryCols = []string{
	"id", "version", "customer_kind", "customer_id", "year", "month",
	"total_quantity", "total_amount", "created_at", "updated_at",
}

// Totals are owned by UpdateTotals.
var orderSummaryTotalCols = []string{"total_quantity", "total_amount"}

type OrderSummaryRepo struct {
	*BaseDocumentRepo[*order_summary.OrderSummary]
}

var _ order_summary.Repository = (*OrderSummaryRepo)(nil)

func NewOrderSummaryRepo(txManager *postgres.TxManager) *OrderSummaryRepo {
	return &OrderSummaryRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager, orderSummariesTable, "order_summary", orderSummaryCols, orderSummaryTotalCols,
			func() *order_summary.OrderSummary { return &order_summary.OrderSummary{} },
		),
	}
}

func (r *OrderSummaryRepo) Update(ctx context.Context, doc *order_summary.OrderSummary) error {
	version, err := r.BaseDocumentRepo.Update(ctx, doc)
	if err != nil {
		return err
	}
	doc.SetVersion(version)
	return nil
}

func (r *OrderSummaryRepo) buildUpdateTotals(summaryID id.ID, totals summary.Totals) (string, []any, error) {
	return r.Builder().
		Update(orderSummariesTable).
		Set("total_quantity", totals.Quantity).
		Set("total_amount", totals.Amount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": summaryID}).
		ToSql()
}

// UpdateTotals overwrites the derived totals. It leaves version alone so a
// recompute never invalidates a client's pending edit.
func (r *OrderSummaryRepo) UpdateTotals(ctx context.Context, summaryID id.ID, totals summary.Totals) error {
	sql, args, err := r.buildUpdateTotals(summaryID, totals)
	if err != nil {
		return fmt.Errorf("build update totals: %w", err)
	}
	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update order summary totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("order_summary", summaryID.String())
	}
	return nil
}

func (r *OrderSummaryRepo) scopeQuery(ref *customer.Ref, year, month *int) squirrel.SelectBuilder {
	q := r.baseSelect()
	if ref != nil {
		q = q.Where(squirrel.Eq{"customer_kind": ref.Kind, "customer_id": ref.ID})
	}
	if year != nil {
		q = q.Where(squirrel.Eq{"year": *year})
	}
	if month != nil {
		q = q.Where(squirrel.Eq{"month": *month})
	}
	return q
}

func (r *OrderSummaryRepo) FindByScope(ctx context.Context, ref customer.Ref, year, month int) ([]*order_summary.OrderSummary, error) {
	return r.Select(ctx, r.scopeQuery(&ref, &year, &month).OrderBy("created_at"))
}

func (r *OrderSummaryRepo) List(ctx context.Context, filter order_summary.ListFilter) (domain.ListResult[*order_summary.OrderSummary], error) {
	q := r.scopeQuery(filter.Customer, filter.Year, filter.Month)
	return r.BaseDocumentRepo.List(ctx, q, filter.ListFilter, "year DESC, month DESC, created_at DESC")
}
