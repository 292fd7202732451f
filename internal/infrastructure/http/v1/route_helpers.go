package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler is the set of endpoints every catalog exposes.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
}

// DocumentRouteHandler is the CRUD part shared by documents.
type DocumentRouteHandler interface {
	CatalogRouteHandler
}

// RegisterCatalogRoutes wires standard CRUD routes for a catalog.
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
}

// RegisterDocumentRoutes wires CRUD routes plus the named actions, each
// mounted as POST /:id/{action}.
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler, actions map[string]gin.HandlerFunc) {
	RegisterCatalogRoutes(group, handler)
	for name, fn := range actions {
		group.POST("/:id/"+name, fn)
	}
}
