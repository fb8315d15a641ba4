// Package shopping provides the flight shopping bounded context module.
package shopping

import (
	"farebridge_backend/internal/events"
	apphttp "farebridge_backend/internal/http"
	"farebridge_backend/internal/markup"
	"farebridge_backend/internal/shopping/cache"
	"farebridge_backend/internal/shopping/handler"
	"farebridge_backend/internal/shopping/repository"
	"farebridge_backend/internal/shopping/service"
	"farebridge_backend/internal/supplier"
	"farebridge_backend/platform/config"
	"farebridge_backend/platform/logger"
	"farebridge_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the shopping bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	cache   *cache.OfferCache
}

// Config bundles the configuration slices the shopping module consumes.
type Config interface {
	config.OfferCacheConfig
	config.DistributionConfig
}

// NewModule creates and wires the shopping module.
func NewModule(
	pool *pgxpool.Pool,
	rdb *redis.Client,
	suppliers *supplier.Registry,
	selector *markup.Selector,
	bus events.Bus,
	val *validator.Validator,
	cfg Config,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	offerCache := cache.New(rdb, cfg.GetOfferCacheTTL(), cfg.GetOfferIndexTTL())
	svc := service.New(repo, offerCache, suppliers, selector, bus, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		cache:   offerCache,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "shopping"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Cache returns the offer cache, used by the index sweeper worker.
func (m *Module) Cache() *cache.OfferCache {
	return m.cache
}

// RegisterRoutes mounts shopping routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	shoppingGroup := ctx.V1.Group("/shopping")
	shoppingGroup.POST("/requests", m.handler.CreateRequest)
	shoppingGroup.POST("/:flightRequestId/process", m.handler.ProcessOffers)
	shoppingGroup.GET("/:flightRequestId/offers", m.handler.GetOffers)

	offerGroup := ctx.V1.Group("/offers")
	offerGroup.POST("/:offerId/verify", m.handler.VerifyPrice)
}

var _ apphttp.Module = (*Module)(nil)
