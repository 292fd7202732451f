// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"salesdesk/internal/domain/catalogs/account"
	"salesdesk/internal/domain/catalogs/contact"
	"salesdesk/internal/infrastructure/http/v1/dto"
	"salesdesk/internal/infrastructure/http/v1/handlers"
	"salesdesk/internal/infrastructure/http/v1/middleware"
	"salesdesk/pkg/logger"
)

type RouterConfig struct {
	Logger *logger.Logger
	DB     handlers.Pinger

	// Idempotency enables X-Idempotency-Key on mutating routes when set.
	Idempotency middleware.IdempotencyStore

	Orders    handlers.OrderService
	Summaries handlers.OrderSummaryService
	Accounts  handlers.CatalogService[*account.Account]
	Contacts  handlers.CatalogService[*contact.Contact]

	// Debug switches gin to debug mode.
	Debug bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Order matters: recovery outermost, errors rendered after logging sees them.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	health := handlers.NewHealthHandler(cfg.DB)
	healthGroup := router.Group("/health")
	{
		healthGroup.GET("/live", health.Live)
		healthGroup.GET("/ready", health.Ready)
	}

	api := router.Group("/api/v1")
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerCatalogRoutes(api, base, cfg)
	registerDocumentRoutes(api, base, cfg)

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	// --- ACCOUNTS ---
	{
		handler := handlers.NewCatalogHandler(base, handlers.CatalogHandlerConfig[*account.Account, dto.CreateAccountRequest, dto.UpdateAccountRequest]{
			Service:      cfg.Accounts,
			MapCreateDTO: dto.CreateAccountRequest.ToEntity,
			MapUpdateDTO: dto.UpdateAccountRequest.ApplyTo,
			MapToDTO:     dto.FromAccount,
		})
		RegisterCatalogRoutes(rg.Group("/accounts"), handler)
	}

	// --- CONTACTS ---
	{
		handler := handlers.NewCatalogHandler(base, handlers.CatalogHandlerConfig[*contact.Contact, dto.CreateContactRequest, dto.UpdateContactRequest]{
			Service:      cfg.Contacts,
			MapCreateDTO: dto.CreateContactRequest.ToEntity,
			MapUpdateDTO: dto.UpdateContactRequest.ApplyTo,
			MapToDTO:     dto.FromContact,
		})
		RegisterCatalogRoutes(rg.Group("/contacts"), handler)
	}
}

func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	orders := handlers.NewOrderHandler(base, cfg.Orders)
	RegisterDocumentRoutes(rg.Group("/orders"), orders, map[string]gin.HandlerFunc{
		"finish": orders.Finish,
	})

	summaries := handlers.NewOrderSummaryHandler(base, cfg.Summaries)
	RegisterDocumentRoutes(rg.Group("/order-summaries"), summaries, map[string]gin.HandlerFunc{
		"recompute": summaries.Recompute,
	})
}
