package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/catalogs/account"
	"salesdesk/internal/domain/catalogs/contact"
	"salesdesk/internal/domain/documents/order"
	"salesdesk/internal/domain/documents/order_summary"
	"salesdesk/internal/domain/summary"
	"salesdesk/internal/infrastructure/storage/postgres"
	"salesdesk/pkg/logger"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type fakeOrders struct {
	created []*order.Order
	byID    map[id.ID]*order.Order
}

func (f *fakeOrders) Create(_ context.Context, o *order.Order) error {
	if o.CustomerRef() != nil && o.Date != nil {
		o.SetNumber("Acme/2024/3/00001")
	}
	f.created = append(f.created, o)
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, docID id.ID) (*order.Order, error) {
	if o, ok := f.byID[docID]; ok {
		return o, nil
	}
	return nil, apperror.NewNotFound("order", docID.String())
}

func (f *fakeOrders) Update(context.Context, *order.Order) error { return nil }

func (f *fakeOrders) Finish(_ context.Context, docID id.ID) (*order.Order, error) {
	o, err := f.GetByID(context.Background(), docID)
	if err != nil {
		return nil, err
	}
	if err := o.Finish(); err != nil {
		return nil, err
	}
	return o, nil
}

func (f *fakeOrders) List(context.Context, order.ListFilter) (domain.ListResult[*order.Order], error) {
	return domain.ListResult[*order.Order]{Items: f.created, TotalCount: int64(len(f.created))}, nil
}

type fakeSummaries struct{}

func (fakeSummaries) Create(_ context.Context, doc *order_summary.OrderSummary) error {
	doc.ApplyTotals(summary.Totals{Quantity: 20, Amount: types.MustMoney("1500")})
	return nil
}

func (fakeSummaries) GetByID(_ context.Context, docID id.ID) (*order_summary.OrderSummary, error) {
	return nil, apperror.NewNotFound("order_summary", docID.String())
}

func (fakeSummaries) Update(context.Context, *order_summary.OrderSummary) error { return nil }

func (fakeSummaries) Recompute(_ context.Context, docID id.ID) (*order_summary.OrderSummary, error) {
	return nil, apperror.NewNotFound("order_summary", docID.String())
}

func (fakeSummaries) List(context.Context, order_summary.ListFilter) (domain.ListResult[*order_summary.OrderSummary], error) {
	return domain.ListResult[*order_summary.OrderSummary]{}, nil
}

type fakeCatalog[T interface{ Validate(context.Context) error }] struct{}

func (fakeCatalog[T]) Create(ctx context.Context, e T) error { return e.Validate(ctx) }

func (fakeCatalog[T]) GetByID(_ context.Context, v id.ID) (T, error) {
	var zero T
	return zero, apperror.NewNotFound("catalog", v.String())
}

func (fakeCatalog[T]) Update(context.Context, T) error { return nil }

func (fakeCatalog[T]) List(context.Context, domain.ListFilter) (domain.ListResult[T], error) {
	return domain.ListResult[T]{}, nil
}

type replayStore struct {
	replay   *postgres.IdempotencyReplay
	acquired []string
	finished map[string]postgres.IdempotencyStatus
}

func (s *replayStore) AcquireKey(_ context.Context, key, _, _ string) (*postgres.IdempotencyReplay, error) {
	s.acquired = append(s.acquired, key)
	return s.replay, nil
}

func (s *replayStore) Complete(_ context.Context, key string, status postgres.IdempotencyStatus, _ int, _ string, _ []byte) error {
	s.finished[key] = status
	return nil
}

func (s *replayStore) Release(_ context.Context, key string) error {
	s.finished[key] = "released"
	return nil
}

func newTestRouter(orders *fakeOrders, store *replayStore) http.Handler {
	cfg := RouterConfig{
		Logger:    logger.NewNop(),
		DB:        okPinger{},
		Orders:    orders,
		Summaries: fakeSummaries{},
		Accounts:  fakeCatalog[*account.Account]{},
		Contacts:  fakeCatalog[*contact.Contact]{},
	}
	if store != nil {
		cfg.Idempotency = store
	}
	return NewRouter(cfg)
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&fakeOrders{}, nil)

	rec, body := do(t, h, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateOrder_Numbered(t *testing.T) {
	orders := &fakeOrders{}
	h := newTestRouter(orders, nil)

	rec, body := do(t, h, http.MethodPost, "/api/v1/orders", map[string]any{
		"date":     "2024-03-15T10:00:00Z",
		"customer": map[string]any{"kind": "account", "id": id.New().String()},
		"lines":    []map[string]any{{"quantity": 2, "unitPrice": "10.50"}},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Acme/2024/3/00001", body["number"])
	assert.Equal(t, "draft", body["status"])
	assert.Equal(t, "21", body["totalAmount"])
	require.Len(t, orders.created, 1)
}

func TestCreateOrder_StagedWithoutCustomer(t *testing.T) {
	h := newTestRouter(&fakeOrders{}, nil)

	rec, body := do(t, h, http.MethodPost, "/api/v1/orders", map[string]any{"comment": "later"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, body["number"])
}

func TestCreateOrder_UnknownCustomerKind(t *testing.T) {
	h := newTestRouter(&fakeOrders{}, nil)

	rec, body := do(t, h, http.MethodPost, "/api/v1/orders", map[string]any{
		"customer": map[string]any{"kind": "supplier", "id": id.New().String()},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apperror.CodeUnresolvableReference, body["code"])
}

func TestCreateOrder_BadLine(t *testing.T) {
	h := newTestRouter(&fakeOrders{}, nil)

	rec, body := do(t, h, http.MethodPost, "/api/v1/orders", map[string]any{
		"lines": []map[string]any{{"quantity": 0, "unitPrice": "1"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeValidation, body["code"])
}

func TestGetOrder_NotFound(t *testing.T) {
	h := newTestRouter(&fakeOrders{}, nil)

	rec, body := do(t, h, http.MethodGet, "/api/v1/orders/"+id.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperror.CodeNotFound, body["code"])

	rec, _ = do(t, h, http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinishOrder_Twice(t *testing.T) {
	o := order.NewOrder()
	o.Status = order.StatusFinished
	orders := &fakeOrders{byID: map[id.ID]*order.Order{o.ID: o}}
	h := newTestRouter(orders, nil)

	_, body := do(t, h, http.MethodPost, "/api/v1/orders/"+o.ID.String()+"/finish", nil)
	assert.Equal(t, apperror.CodeOrderFinished, body["code"])
}

func TestListOrders_InvalidStatus(t *testing.T) {
	h := newTestRouter(&fakeOrders{}, nil)

	rec, _ := do(t, h, http.MethodGet, "/api/v1/orders?status=cancelled", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := do(t, h, http.MethodGet, "/api/v1/orders?dateFrom=2024-03-01&status=finished", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["totalCount"])
}

func TestCreateSummary_ReturnsTotals(t *testing.T) {
	h := newTestRouter(&fakeOrders{}, nil)

	rec, body := do(t, h, http.MethodPost, "/api/v1/order-summaries", map[string]any{
		"customer": map[string]any{"kind": "contact", "id": id.New().String()},
		"year":     2024,
		"month":    2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 20, body["totalQuantity"])
	assert.Equal(t, "1500", body["totalAmount"])
}

func TestCreateSummary_InvalidMonth(t *testing.T) {
	h := newTestRouter(&fakeOrders{}, nil)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/order-summaries", map[string]any{"month": 13})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAccount_Validation(t *testing.T) {
	h := newTestRouter(&fakeOrders{}, nil)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/accounts", map[string]any{"code": "A-1", "name": "Acme"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/contacts", map[string]any{"code": "C-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdempotency_Replay(t *testing.T) {
	orders := &fakeOrders{}
	store := &replayStore{
		replay:   &postgres.IdempotencyReplay{StatusCode: http.StatusCreated, ContentType: "application/json", Body: []byte(`{"number":"Acme/2024/3/00001"}`)},
		finished: map[string]postgres.IdempotencyStatus{},
	}
	h := newTestRouter(orders, store)

	rec, body := do(t, h, http.MethodPost, "/api/v1/orders", map[string]any{"comment": "x"}, "X-Idempotency-Key", "k1")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, "Acme/2024/3/00001", body["number"])
	assert.Empty(t, orders.created)
}

func TestIdempotency_CompletesAndReleases(t *testing.T) {
	store := &replayStore{finished: map[string]postgres.IdempotencyStatus{}}
	h := newTestRouter(&fakeOrders{}, store)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/orders", map[string]any{"comment": "x"}, "X-Idempotency-Key", "ok")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, postgres.IdempotencyStatusSuccess, store.finished["ok"])

	rec, _ = do(t, h, http.MethodPost, "/api/v1/orders", map[string]any{
		"customer": map[string]any{"kind": "supplier", "id": id.New().String()},
	}, "X-Idempotency-Key", "bad")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, postgres.IdempotencyStatus("released"), store.finished["bad"])

	do(t, h, http.MethodGet, "/api/v1/orders", nil, "X-Idempotency-Key", "get")
	assert.Equal(t, []string{"ok", "bad"}, store.acquired)
}
