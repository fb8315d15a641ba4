// Package service implements the shopping core: the distribution
// orchestrator and the caller-facing facade (offer retrieval and price
// verification). It is transport-agnostic; failures surface as typed
// apperr values, never panics.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"farebridge_backend/internal/events"
	"farebridge_backend/internal/markup"
	"farebridge_backend/internal/shopping/cache"
	"farebridge_backend/internal/shopping/domain"
	"farebridge_backend/internal/shopping/repository"
	"farebridge_backend/internal/supplier"
	"farebridge_backend/platform/apperr"
	"farebridge_backend/platform/config"
	"farebridge_backend/platform/logger"
)

const (
	msgOfferSetNotFound = "offer set not found"
	msgOfferNotFound    = "offer not found"
	msgOfferExpired     = "offer expired"
	msgRepriceFailed    = "supplier reprice failed"
)

// Service is the shopping core entry point.
type Service struct {
	repo      repository.Repository
	cache     *cache.OfferCache
	suppliers *supplier.Registry
	selector  *markup.Selector
	bus       events.Bus
	log       *logger.Logger

	supplierTimeout  time.Duration
	supplierRetries  int
	shoppingDeadline time.Duration
}

// New creates the shopping service.
func New(
	repo repository.Repository,
	offerCache *cache.OfferCache,
	suppliers *supplier.Registry,
	selector *markup.Selector,
	bus events.Bus,
	cfg config.DistributionConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:             repo,
		cache:            offerCache,
		suppliers:        suppliers,
		selector:         selector,
		bus:              bus,
		log:              log,
		supplierTimeout:  cfg.GetSupplierTimeout(),
		supplierRetries:  cfg.GetSupplierRetries(),
		shoppingDeadline: cfg.GetShoppingDeadline(),
	}
}

// CreateRequest stores an immutable shopping request and returns it with its
// generated flight request id.
func (s *Service) CreateRequest(ctx context.Context, req domain.ShoppingRequest) (domain.ShoppingRequest, error) {
	req.FlightRequestID = uuid.NewString()
	req.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(ctx, req); err != nil {
		s.log.DatabaseError("create shopping request", err)
		return domain.ShoppingRequest{}, apperr.Wrap(apperr.KindInternal, "failed to store shopping request", err)
	}
	return req, nil
}

// GetOffers returns the cached offer set for the key pair. It is a pure
// cache read: suppliers are never re-queried and the entry is not mutated.
func (s *Service) GetOffers(ctx context.Context, flightRequestID, sessionID string) (*domain.OfferSet, error) {
	set, err := s.cache.Get(ctx, flightRequestID, sessionID)
	if errors.Is(err, cache.ErrMiss) {
		return nil, apperr.NotFound(msgOfferSetNotFound)
	}
	if err != nil {
		s.log.CacheError("get", err)
		return nil, apperr.Wrap(apperr.KindInternal, "offer cache read failed", err)
	}
	return set, nil
}

// VerifyPrice re-verifies one cached offer against its originating supplier
// and re-applies the currently registered markup policy, so policy changes
// between shopping and verification are honored. The result is returned to
// the caller directly; the cache is not written back.
func (s *Service) VerifyPrice(ctx context.Context, offerID, officeID string, includeFareRules bool) (*domain.SellOffer, error) {
	indexed, err := s.cache.GetByOfferID(ctx, offerID)
	if errors.Is(err, cache.ErrMiss) {
		return nil, apperr.NotFound(msgOfferNotFound)
	}
	if err != nil {
		s.log.CacheError("get_by_offer_id", err)
		return nil, apperr.Wrap(apperr.KindInternal, "offer cache read failed", err)
	}

	cached := indexed.Offer
	adapter, ok := s.suppliers.ByName(cached.SupplierID)
	if !ok {
		return nil, apperr.Internal("originating supplier no longer registered").
			WithDetails(cached.SupplierID)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.supplierTimeout)
	defer cancel()
	fresh, err := adapter.RepriceOffer(callCtx, cached.SupplierRef, officeID)
	if err != nil {
		if errors.Is(err, supplier.ErrOfferExpired) {
			return nil, apperr.Gone(msgOfferExpired)
		}
		s.log.SupplierFailure(indexed.FlightRequestID, cached.SupplierID, err.Error())
		return nil, apperr.Wrap(apperr.KindUnavailable, msgRepriceFailed, err)
	}
	fresh.SupplierID = cached.SupplierID
	if fresh.Currency == "" {
		fresh.Currency = cached.Currency
	}

	// Policy is looked up again rather than replayed from the cached record,
	// so a registration change since shopping takes effect here.
	policy, err := s.selector.Resolve(cached.SupplierID, cached.Market, fresh.Currency)
	if err != nil {
		s.log.PolicyMiss(indexed.FlightRequestID, cached.SupplierID, cached.Market, fresh.Currency)
		return nil, apperr.Wrap(apperr.KindInternal, "no applicable markup policy", err)
	}
	priced, err := policy.Apply(fresh, markup.MarketContext{
		SupplierID: cached.SupplierID,
		Market:     cached.Market,
		Currency:   fresh.Currency,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "markup application failed", err)
	}

	verified := sellOffer(fresh, priced, cached.Market, cached.OfferID)
	if !includeFareRules {
		verified.FareRulesRef = ""
	}
	return &verified, nil
}
