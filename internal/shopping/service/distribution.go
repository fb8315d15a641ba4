package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"farebridge_backend/internal/events"
	"farebridge_backend/internal/markup"
	"farebridge_backend/internal/shopping/domain"
	"farebridge_backend/internal/supplier"
	"farebridge_backend/platform/apperr"
)

const (
	msgNoSuppliers = "no suppliers applicable to request"
	msgNoOffers    = "no offers available"
)

type supplierResult struct {
	name   string
	offers []supplier.RawOffer
	err    error
}

// Distribute loads the stored shopping request and runs offer distribution
// for it. The request payload is associated out-of-band via the intake
// endpoint.
func (s *Service) Distribute(ctx context.Context, flightRequestID, sessionID string) (*domain.OfferSet, error) {
	req, err := s.repo.GetByID(ctx, flightRequestID)
	if err != nil {
		return nil, err
	}
	return s.ProcessOffers(ctx, sessionID, req)
}

// ProcessOffers fans the shopping request out to every applicable supplier
// adapter concurrently, tolerates partial failure, applies the market markup
// policy per offer, and writes the resulting offer set to the cache before
// returning. The operation fails only when zero adapters succeed; the cache
// is left untouched in that case.
func (s *Service) ProcessOffers(ctx context.Context, sessionID string, req domain.ShoppingRequest) (*domain.OfferSet, error) {
	supplierReq := req.SupplierRequest()
	adapters := s.suppliers.ForRequest(supplierReq)
	if len(adapters) == 0 {
		return nil, apperr.Unavailable(msgNoSuppliers)
	}

	results := s.fanOut(ctx, adapters, supplierReq)

	outcomes := make([]domain.SupplierOutcome, 0, len(results))
	raw := make([]supplier.RawOffer, 0)
	succeeded := 0
	for _, res := range results {
		outcome := domain.SupplierOutcome{SupplierID: res.name, OfferCount: len(res.offers)}
		switch {
		case res.err != nil:
			outcome.Failed = true
			outcome.Reason = failureReason(res.err)
			s.log.SupplierFailure(req.FlightRequestID, res.name, outcome.Reason)
		case len(res.offers) == 0:
			outcome.Failed = true
			outcome.Reason = "empty result"
			s.log.SupplierFailure(req.FlightRequestID, res.name, outcome.Reason)
		default:
			succeeded++
			raw = append(raw, res.offers...)
		}
		outcomes = append(outcomes, outcome)
	}

	if succeeded == 0 {
		return nil, apperr.Unavailable(msgNoOffers).WithDetails(outcomes)
	}

	normalized := normalizeOffers(raw, req.Currency)
	offers := s.applyMarkup(normalized, req)
	if len(offers) == 0 {
		// Every priced offer was dropped (policy misses); callers cannot
		// distinguish this from suppliers returning nothing useful.
		return nil, apperr.Unavailable(msgNoOffers).WithDetails(outcomes)
	}
	sortOffers(offers)

	set := &domain.OfferSet{
		FlightRequestID: req.FlightRequestID,
		SessionID:       sessionID,
		CreatedAt:       time.Now().UTC(),
		Offers:          offers,
		Suppliers:       outcomes,
	}

	if err := s.cache.Put(ctx, set); err != nil {
		s.log.CacheError("put", err)
		return nil, apperr.Wrap(apperr.KindInternal, "failed to store offer set", err)
	}

	s.bus.Publish(ctx, events.OfferSetProduced{
		BaseEvent:        events.NewBaseEvent(),
		FlightRequestID:  set.FlightRequestID,
		SessionID:        set.SessionID,
		OfferCount:       len(set.Offers),
		SuppliersQueried: len(adapters),
		SuppliersFailed:  len(set.FailedSuppliers()),
	})

	return set, nil
}

// fanOut queries all adapters concurrently. Each call carries its own
// timeout budget; a slow or failing adapter never blocks or cancels the
// others, so group goroutines always return nil.
func (s *Service) fanOut(ctx context.Context, adapters []supplier.Adapter, req supplier.Request) []supplierResult {
	ctx, cancel := context.WithTimeout(ctx, s.shoppingDeadline)
	defer cancel()

	var mu sync.Mutex
	results := make([]supplierResult, 0, len(adapters))

	g := new(errgroup.Group)
	for _, adapter := range adapters {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, s.supplierTimeout)
			defer cancel()

			offers, err := s.fetchWithRetry(callCtx, adapter, req)
			for i := range offers {
				// The adapter's registered name is authoritative for routing
				// verification calls back to it later.
				offers[i].SupplierID = adapter.Name()
			}
			mu.Lock()
			results = append(results, supplierResult{name: adapter.Name(), offers: offers, err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// fetchWithRetry retries an adapter on its transient errors with a doubling
// backoff. Non-temporary errors fail immediately.
func (s *Service) fetchWithRetry(ctx context.Context, adapter supplier.Adapter, req supplier.Request) ([]supplier.RawOffer, error) {
	backoff := 80 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= s.supplierRetries; attempt++ {
		offers, err := adapter.FetchOffers(ctx, req)
		if err == nil {
			return offers, nil
		}
		lastErr = err
		if !errors.Is(err, supplier.ErrTemporary) {
			return nil, err
		}
		if attempt == s.supplierRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return nil, lastErr
}

// applyMarkup resolves and applies the markup policy per offer. A policy
// lookup miss or pricing failure drops that single offer with a logged
// reason; it never fails the run.
func (s *Service) applyMarkup(raw []supplier.RawOffer, req domain.ShoppingRequest) []domain.SellOffer {
	offers := make([]domain.SellOffer, 0, len(raw))
	for _, offer := range raw {
		mc := markup.MarketContext{
			SupplierID: offer.SupplierID,
			Market:     req.Market,
			Currency:   offer.Currency,
		}
		policy, err := s.selector.Resolve(mc.SupplierID, mc.Market, mc.Currency)
		if err != nil {
			s.log.PolicyMiss(req.FlightRequestID, mc.SupplierID, mc.Market, mc.Currency)
			continue
		}
		priced, err := policy.Apply(offer, mc)
		if err != nil {
			s.log.OfferDropped(req.FlightRequestID, offer.SupplierID, offer.SupplierRef, err.Error())
			continue
		}
		offers = append(offers, sellOffer(offer, priced, req.Market, uuid.NewString()))
	}
	return offers
}

// normalizeOffers tags missing currencies with the requested one, derives
// missing durations, and de-duplicates by supplier + supplier reference,
// keeping the first occurrence.
func normalizeOffers(raw []supplier.RawOffer, requestCurrency string) []supplier.RawOffer {
	seen := make(map[string]struct{}, len(raw))
	normalized := make([]supplier.RawOffer, 0, len(raw))
	for _, offer := range raw {
		key := offer.SupplierID + "|" + offer.SupplierRef
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if offer.Currency == "" {
			offer.Currency = requestCurrency
		}
		if offer.DurationMinutes == 0 && offer.ArrivalAt.After(offer.DepartureAt) {
			offer.DurationMinutes = int(offer.ArrivalAt.Sub(offer.DepartureAt).Minutes())
		}
		normalized = append(normalized, offer)
	}
	return normalized
}

// sortOffers orders sell offers deterministically: ascending sell price,
// then duration, then supplier id. The stable sort preserves insertion order
// within a supplier's batch for full ties.
func sortOffers(offers []domain.SellOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].SellMinor != offers[j].SellMinor {
			return offers[i].SellMinor < offers[j].SellMinor
		}
		if offers[i].DurationMinutes != offers[j].DurationMinutes {
			return offers[i].DurationMinutes < offers[j].DurationMinutes
		}
		return offers[i].SupplierID < offers[j].SupplierID
	})
}

func sellOffer(offer supplier.RawOffer, priced markup.Priced, market, offerID string) domain.SellOffer {
	return domain.SellOffer{
		OfferID:         offerID,
		SupplierID:      offer.SupplierID,
		SupplierRef:     offer.SupplierRef,
		CarrierCode:     offer.CarrierCode,
		FlightNumber:    offer.FlightNumber,
		Origin:          offer.Origin,
		Destination:     offer.Destination,
		DepartureAt:     offer.DepartureAt,
		ArrivalAt:       offer.ArrivalAt,
		DurationMinutes: offer.DurationMinutes,
		Stops:           offer.Stops,
		CabinClass:      offer.CabinClass,
		NetMinor:        offer.NetMinor,
		SellMinor:       priced.SellMinor,
		MarkupMinor:     priced.MarkupMinor,
		Discounted:      priced.Discounted,
		Currency:        offer.Currency,
		PolicyID:        priced.PolicyID,
		Market:          market,
		FareRulesRef:    offer.FareRulesRef,
		ValidUntil:      offer.ValidUntil,
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, supplier.ErrTemporary):
		return "temporary failure"
	default:
		return err.Error()
	}
}
