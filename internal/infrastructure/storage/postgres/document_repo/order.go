package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/customer"
	"salesdesk/internal/domain/documents/order"
	"salesdesk/internal/domain/summary"
	"salesdesk/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "doc_orders"
	orderLinesTable = "doc_order_lines"
)

var orderCols = []string{
	"id", "version", "number", "date", "customer_kind", "customer_id",
	"status", "comment", "created_at", "updated_at",
}

var orderLineCols = []string{"line_id", "document_id", "line_no", "quantity", "unit_price"}

type OrderRepo struct {
	*BaseDocumentRepo[*order.Order]
	batch *postgres.BatchInserter
}

var (
	_ order.Repository   = (*OrderRepo)(nil)
	_ summary.LineReader = (*OrderRepo)(nil)
)

func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager, ordersTable, "order", orderCols, nil,
			func() *order.Order { return &order.Order{} },
		),
		batch: postgres.NewBatchInserter(txManager),
	}
}

func (r *OrderRepo) Update(ctx context.Context, doc *order.Order) error {
	version, err := r.BaseDocumentRepo.Update(ctx, doc)
	if err != nil {
		return err
	}
	doc.SetVersion(version)
	return nil
}

func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.Order], error) {
	return r.BaseDocumentRepo.List(ctx, r.listQuery(filter), filter.ListFilter, "date DESC, number DESC")
}

func (r *OrderRepo) listQuery(filter order.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect()
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"comment": pattern},
		})
	}
	if filter.Customer != nil {
		q = q.Where(squirrel.Eq{
			"customer_kind": filter.Customer.Kind,
			"customer_id":   filter.Customer.ID,
		})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	return q
}

func (r *OrderRepo) GetLines(ctx context.Context, docID id.ID) ([]order.Line, error) {
	sql, args, err := r.Builder().
		Select("line_id", "line_no", "quantity", "unit_price").
		From(orderLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	lines := make([]order.Line, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select order lines: %w", err)
	}
	return lines, nil
}

func lineRows(docID id.ID, lines []order.Line) [][]any {
	rows := make([][]any, len(lines))
	for i, l := range lines {
		rows[i] = []any{l.LineID, docID, l.LineNo, l.Quantity, l.UnitPrice}
	}
	return rows
}

func (r *OrderRepo) buildInsertLines(docID id.ID, lines []order.Line) (string, []any, error) {
	q := r.Builder().Insert(orderLinesTable).Columns(orderLineCols...)
	for _, row := range lineRows(docID, lines) {
		q = q.Values(row...)
	}
	return q.ToSql()
}

func (r *OrderRepo) SaveLines(ctx context.Context, docID id.ID, lines []order.Line) error {
	q := r.querier(ctx)

	sql, args, err := r.Builder().
		Delete(orderLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	if len(lines) >= postgres.CopyThreshold {
		_, err := r.batch.CopyRows(ctx, orderLinesTable, orderLineCols, lineRows(docID, lines))
		return err
	}

	sql, args, err = r.buildInsertLines(docID, lines)
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}
	return nil
}

func (r *OrderRepo) buildFinishedLines(ref customer.Ref, from, to time.Time) (string, []any, error) {
	return r.Builder().
		Select("o.id AS order_id", "l.quantity", "l.unit_price").
		From(ordersTable+" o").
		InnerJoin(orderLinesTable+" l ON l.document_id = o.id").
		Where(squirrel.Eq{
			"o.status":        order.StatusFinished,
			"o.customer_kind": ref.Kind,
			"o.customer_id":   ref.ID,
		}).
		Where("o.date BETWEEN ? AND ?", from, to).
		OrderBy("o.date", "o.id", "l.line_no").
		ToSql()
}

// FinishedLines returns the lines of the customer's finished orders dated
// within [from, to].
func (r *OrderRepo) FinishedLines(ctx context.Context, ref customer.Ref, from, to time.Time) ([]summary.JoinedLine, error) {
	sql, args, err := r.buildFinishedLines(ref, from, to)
	if err != nil {
		return nil, fmt.Errorf("build finished lines query: %w", err)
	}

	var rows []summary.JoinedLine
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select finished lines: %w", err)
	}
	return rows, nil
}
