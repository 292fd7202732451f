// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/customer"
	"salesdesk/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the context and aborts. The JSON body is written
// by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func (h *BaseHandler) ParamID(c *gin.Context) (id.ID, bool) {
	v, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.ID{}, false
	}
	return v, true
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// OptionalIntQuery returns nil when key is absent and fails on garbage.
func (h *BaseHandler) OptionalIntQuery(c *gin.Context, key string) (*int, bool) {
	val := c.Query(key)
	if val == "" {
		return nil, true
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+key).WithDetail("field", key))
		return nil, false
	}
	return &parsed, true
}

// OptionalDateQuery accepts RFC 3339 or YYYY-MM-DD.
func (h *BaseHandler) OptionalDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	val := c.Query(key)
	if val == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, val); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	h.Error(c, apperror.NewValidation("invalid "+key).WithDetail("field", key))
	return nil, false
}

// CustomerQuery reads customerKind and customerId; both or neither.
func (h *BaseHandler) CustomerQuery(c *gin.Context) (*customer.Ref, bool) {
	kind, refID := c.Query("customerKind"), c.Query("customerId")
	if kind == "" && refID == "" {
		return nil, true
	}
	ref, err := (&dto.CustomerRef{Kind: kind, ID: refID}).ToDomain()
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return ref, true
}

func (h *BaseHandler) ListFilter(c *gin.Context, defaultOrder string) domain.ListFilter {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", defaultOrder)
	return filter
}

func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}
