package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/customer"
	"salesdesk/internal/domain/documents/order"
	"salesdesk/internal/domain/documents/order_summary"
	"salesdesk/internal/domain/summary"
)

func TestFinishedLinesQuery(t *testing.T) {
	repo := NewOrderRepo(nil)
	ref := customer.Ref{Kind: customer.KindAccount, ID: id.New()}
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)

	sql, args, err := repo.buildFinishedLines(ref, from, to)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT o.id AS order_id, l.quantity, l.unit_price FROM doc_orders o "+
			"INNER JOIN doc_order_lines l ON l.document_id = o.id "+
			"WHERE o.customer_id = $1 AND o.customer_kind = $2 AND o.status = $3 "+
			"AND o.date BETWEEN $4 AND $5 ORDER BY o.date, o.id, l.line_no",
		sql)
	require.Len(t, args, 5)
	assert.Equal(t, ref.ID.String(), args[0])
	assert.Equal(t, customer.KindAccount, args[1])
	assert.Equal(t, order.StatusFinished, args[2])
	assert.Equal(t, from, args[3])
	assert.Equal(t, to, args[4])
}

func TestOrderListQuery(t *testing.T) {
	repo := NewOrderRepo(nil)
	status := order.StatusFinished
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	q := repo.listQuery(order.ListFilter{
		ListFilter: domain.ListFilter{Search: "Acme"},
		Status:     &status,
		DateFrom:   &from,
	})
	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM doc_orders WHERE (number ILIKE $1 OR comment ILIKE $2) AND status = $3 AND date >= $4")
	assert.Equal(t, []any{"%Acme%", "%Acme%", order.StatusFinished, from}, args)
}

func TestInsertLines(t *testing.T) {
	repo := NewOrderRepo(nil)
	doc := order.NewOrder()
	doc.AddLine(2, types.MustMoney("10"))
	doc.AddLine(3, types.MustMoney("5.5"))

	sql, args, err := repo.buildInsertLines(doc.ID, doc.Lines)
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO doc_order_lines (line_id,document_id,line_no,quantity,unit_price) "+
			"VALUES ($1,$2,$3,$4,$5),($6,$7,$8,$9,$10)",
		sql)
	assert.Len(t, args, 10)
	assert.Equal(t, int64(3), args[8])

	rows := lineRows(doc.ID, doc.Lines)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{doc.Lines[1].LineID, doc.ID, 2, int64(3), doc.Lines[1].UnitPrice}, rows[1])
}

func TestSummaryUpdateSkipsTotals(t *testing.T) {
	repo := NewOrderSummaryRepo(nil)
	doc := order_summary.NewOrderSummary()
	year, month := 2024, 2
	doc.Year, doc.Month = &year, &month
	doc.ApplyTotals(summary.Totals{Quantity: 7, Amount: types.MustMoney("70")})

	sql, args, _, err := repo.buildUpdate(doc)
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE doc_order_summaries SET customer_id = $1, customer_kind = $2, month = $3, year = $4, "+
			"version = version + 1, updated_at = NOW() WHERE id = $5 AND version = $6 RETURNING version",
		sql)
	assert.NotContains(t, sql, "total_")
	assert.Equal(t, 1, args[5])
}

func TestUpdateTotalsQuery(t *testing.T) {
	repo := NewOrderSummaryRepo(nil)
	summaryID := id.New()

	sql, args, err := repo.buildUpdateTotals(summaryID, summary.Totals{Quantity: 20, Amount: types.MustMoney("1500")})
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE doc_order_summaries SET total_quantity = $1, total_amount = $2, updated_at = NOW() WHERE id = $3",
		sql)
	assert.Equal(t, int64(20), args[0])
	assert.True(t, types.MustMoney("1500").Equal(args[1].(types.Money)))
}

func TestParseOrderBy(t *testing.T) {
	repo := NewOrderRepo(nil)

	tests := []struct {
		in   string
		want string
	}{
		{"", "date DESC"},
		{"number", "number ASC"},
		{"-date", "date DESC"},
		{"+status", "status ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.in, "date DESC")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := repo.parseOrderBy("total; DROP TABLE doc_orders", "date DESC")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
