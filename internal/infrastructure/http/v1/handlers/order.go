package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/documents/order"
	"salesdesk/internal/infrastructure/http/v1/dto"
)

// OrderService is implemented by order.Service.
type OrderService interface {
	Create(ctx context.Context, o *order.Order) error
	GetByID(ctx context.Context, docID id.ID) (*order.Order, error)
	Update(ctx context.Context, o *order.Order) error
	Finish(ctx context.Context, docID id.ID) (*order.Order, error)
	List(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.Order], error)
}

type OrderHandler struct {
	*BaseHandler
	service OrderService
}

func NewOrderHandler(base *BaseHandler, service OrderService) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// List handles GET /orders.
func (h *OrderHandler) List(c *gin.Context) {
	filter := order.ListFilter{ListFilter: h.ListFilter(c, "")}

	var ok bool
	if filter.Customer, ok = h.CustomerQuery(c); !ok {
		return
	}
	if filter.DateFrom, ok = h.OptionalDateQuery(c, "dateFrom"); !ok {
		return
	}
	if filter.DateTo, ok = h.OptionalDateQuery(c, "dateTo"); !ok {
		return
	}
	if s := c.Query("status"); s != "" {
		status := order.Status(s)
		if !status.Valid() {
			h.Error(c, apperror.NewValidation("invalid status").WithDetail("field", "status"))
			return
		}
		filter.Status = &status
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.OrderResponse, len(result.Items))
	for i, o := range result.Items {
		items[i] = dto.FromOrder(o)
	}
	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	o, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(o))
}

// Create handles POST /orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	o, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Create(c.Request.Context(), o); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromOrder(o))
}

// Update handles PUT /orders/:id.
func (h *OrderHandler) Update(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	o, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.ApplyTo(o); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Update(ctx, o); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(o))
}

// Finish handles POST /orders/:id/finish.
func (h *OrderHandler) Finish(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	o, err := h.service.Finish(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(o))
}
