package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/documents/order_summary"
	"salesdesk/internal/infrastructure/http/v1/dto"
)

// OrderSummaryService is implemented by order_summary.Service.
type OrderSummaryService interface {
	Create(ctx context.Context, doc *order_summary.OrderSummary) error
	GetByID(ctx context.Context, docID id.ID) (*order_summary.OrderSummary, error)
	Update(ctx context.Context, doc *order_summary.OrderSummary) error
	Recompute(ctx context.Context, docID id.ID) (*order_summary.OrderSummary, error)
	List(ctx context.Context, filter order_summary.ListFilter) (domain.ListResult[*order_summary.OrderSummary], error)
}

type OrderSummaryHandler struct {
	*BaseHandler
	service OrderSummaryService
}

func NewOrderSummaryHandler(base *BaseHandler, service OrderSummaryService) *OrderSummaryHandler {
	return &OrderSummaryHandler{BaseHandler: base, service: service}
}

// List handles GET /order-summaries.
func (h *OrderSummaryHandler) List(c *gin.Context) {
	filter := order_summary.ListFilter{ListFilter: h.ListFilter(c, "")}

	var ok bool
	if filter.Customer, ok = h.CustomerQuery(c); !ok {
		return
	}
	if filter.Year, ok = h.OptionalIntQuery(c, "year"); !ok {
		return
	}
	if filter.Month, ok = h.OptionalIntQuery(c, "month"); !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.OrderSummaryResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromOrderSummary(doc)
	}
	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /order-summaries/:id.
func (h *OrderSummaryHandler) Get(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrderSummary(doc))
}

// Create handles POST /order-summaries. Totals are filled in after commit;
// when that recompute fails the summary is still returned, without totals.
func (h *OrderSummaryHandler) Create(c *gin.Context) {
	var req dto.CreateOrderSummaryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromOrderSummary(doc))
}

// Update handles PUT /order-summaries/:id.
func (h *OrderSummaryHandler) Update(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderSummaryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.ApplyTo(doc); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrderSummary(doc))
}

// Recompute handles POST /order-summaries/:id/recompute.
func (h *OrderSummaryHandler) Recompute(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	doc, err := h.service.Recompute(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrderSummary(doc))
}
