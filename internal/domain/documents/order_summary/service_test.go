package order_summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/customer"
	"salesdesk/internal/domain/summary"
)

type memRepo struct {
	docs map[id.ID]OrderSummary
}

func newMemRepo() *memRepo { return &memRepo{docs: map[id.ID]OrderSummary{}} }

func (r *memRepo) Create(_ context.Context, d *OrderSummary) error {
	r.docs[d.ID] = *d
	return nil
}

func (r *memRepo) GetByID(_ context.Context, v id.ID) (*OrderSummary, error) {
	d, ok := r.docs[v]
	if !ok {
		return nil, apperror.NewNotFound("order_summary", v)
	}
	return &d, nil
}

func (r *memRepo) Update(_ context.Context, d *OrderSummary) error {
	stored, ok := r.docs[d.ID]
	if !ok {
		return apperror.NewNotFound("order_summary", d.ID)
	}
	d.TotalQuantity, d.TotalAmount = stored.TotalQuantity, stored.TotalAmount
	d.Version++
	r.docs[d.ID] = *d
	return nil
}

func (r *memRepo) UpdateTotals(_ context.Context, v id.ID, t summary.Totals) error {
	d, ok := r.docs[v]
	if !ok {
		return apperror.NewNotFound("order_summary", v)
	}
	d.ApplyTotals(t)
	r.docs[v] = d
	return nil
}

func (r *memRepo) List(context.Context, ListFilter) (domain.ListResult[*OrderSummary], error) {
	return domain.ListResult[*OrderSummary]{}, nil
}

func (r *memRepo) FindByScope(_ context.Context, ref customer.Ref, year, month int) ([]*OrderSummary, error) {
	var out []*OrderSummary
	for _, d := range r.docs {
		c := d.CustomerRef()
		if c != nil && *c == ref && d.Year != nil && *d.Year == year && d.Month != nil && *d.Month == month {
			cp := d
			out = append(out, &cp)
		}
	}
	return out, nil
}

type lineStub struct {
	lines []summary.JoinedLine
	err   error
	calls int
}

func (s *lineStub) FinishedLines(context.Context, customer.Ref, time.Time, time.Time) ([]summary.JoinedLine, error) {
	s.calls++
	return s.lines, s.err
}

type directTx struct{}

func (directTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func intp(v int) *int { return &v }

func newSummary(ref *customer.Ref, year, month *int) *OrderSummary {
	s := NewOrderSummary()
	s.SetCustomer(ref)
	s.Year, s.Month = year, month
	return s
}

func setup(opts Options, lines *lineStub) (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, summary.NewAggregator(lines, repo), directTx{}, nil, opts), repo
}

func acme() *customer.Ref {
	return &customer.Ref{Kind: customer.KindAccount, ID: id.New()}
}

func sampleLines() []summary.JoinedLine {
	return []summary.JoinedLine{
		{OrderID: id.New(), Quantity: 10, UnitPrice: types.MustMoney("100")},
		{OrderID: id.New(), Quantity: 10, UnitPrice: types.MustMoney("50")},
	}
}

func TestCreate_RecomputesAfterCommit(t *testing.T) {
	svc, repo := setup(Options{}, &lineStub{lines: sampleLines()})
	doc := newSummary(acme(), intp(2024), intp(3))

	require.NoError(t, svc.Create(context.Background(), doc))

	require.NotNil(t, doc.TotalQuantity)
	assert.Equal(t, int64(20), *doc.TotalQuantity)
	assert.True(t, doc.TotalAmount.Equal(types.MustMoney("1500")))

	stored := repo.docs[doc.ID]
	assert.Equal(t, int64(20), *stored.TotalQuantity)
	assert.True(t, stored.TotalAmount.Equal(types.MustMoney("1500")))
}

func TestCreate_IncompleteScopeLeavesTotalsEmpty(t *testing.T) {
	lines := &lineStub{lines: sampleLines()}
	svc, repo := setup(Options{}, lines)
	doc := newSummary(acme(), intp(2024), nil)

	require.NoError(t, svc.Create(context.Background(), doc))

	assert.Nil(t, doc.TotalQuantity)
	assert.Nil(t, repo.docs[doc.ID].TotalAmount)
	assert.Zero(t, lines.calls)
}

func TestCreate_RecomputeFailureIsSwallowed(t *testing.T) {
	svc, repo := setup(Options{}, &lineStub{err: errors.New("read timeout")})
	doc := newSummary(acme(), intp(2024), intp(3))

	require.NoError(t, svc.Create(context.Background(), doc))

	_, ok := repo.docs[doc.ID]
	assert.True(t, ok)
	assert.Nil(t, doc.TotalQuantity)
}

func TestUpdate_RecomputeIsOptIn(t *testing.T) {
	ctx := context.Background()

	for _, enabled := range []bool{false, true} {
		lines := &lineStub{}
		svc, _ := setup(Options{RecomputeOnUpdate: enabled}, lines)
		doc := newSummary(acme(), intp(2024), nil)
		require.NoError(t, svc.Create(ctx, doc))

		doc.Month = intp(2)
		require.NoError(t, svc.Update(ctx, doc))

		if enabled {
			assert.Equal(t, 1, lines.calls)
			require.NotNil(t, doc.TotalQuantity)
			assert.Equal(t, int64(0), *doc.TotalQuantity)
		} else {
			assert.Zero(t, lines.calls)
			assert.Nil(t, doc.TotalQuantity)
		}
	}
}

func TestRecompute_ExplicitPropagatesErrors(t *testing.T) {
	down := errors.New("read timeout")
	lines := &lineStub{}
	svc, _ := setup(Options{}, lines)
	doc := newSummary(acme(), intp(2024), intp(3))
	require.NoError(t, svc.Create(context.Background(), doc))

	lines.err = down
	_, err := svc.Recompute(context.Background(), doc.ID)
	assert.ErrorIs(t, err, down)

	_, err = svc.Recompute(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecomputeScope(t *testing.T) {
	ctx := context.Background()
	lines := &lineStub{}
	svc, repo := setup(Options{}, lines)
	ref := acme()

	march := newSummary(ref, intp(2024), intp(3))
	marchDup := newSummary(ref, intp(2024), intp(3))
	april := newSummary(ref, intp(2024), intp(4))
	for _, d := range []*OrderSummary{march, marchDup, april} {
		require.NoError(t, svc.Create(ctx, d))
	}

	lines.lines = sampleLines()
	n, err := svc.RecomputeScope(ctx, *ref, 2024, 3)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(20), *repo.docs[march.ID].TotalQuantity)
	assert.Equal(t, int64(20), *repo.docs[marchDup.ID].TotalQuantity)
	assert.Equal(t, int64(0), *repo.docs[april.ID].TotalQuantity)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, newSummary(nil, nil, nil).Validate(ctx))
	assert.True(t, apperror.HasCode(newSummary(acme(), intp(2024), intp(13)).Validate(ctx), apperror.CodeValidation))
	assert.True(t, apperror.HasCode(newSummary(acme(), intp(0), intp(1)).Validate(ctx), apperror.CodeValidation))
	assert.True(t, apperror.HasCode(
		newSummary(&customer.Ref{Kind: "lead", ID: id.New()}, nil, nil).Validate(ctx),
		apperror.CodeUnresolvableReference,
	))
}
