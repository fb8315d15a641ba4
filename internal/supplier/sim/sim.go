// Package sim provides in-process supplier adapters that synthesize
// plausible offers deterministically from a seed. They stand in for live
// supplier connections in local runs and tests.
package sim

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"farebridge_backend/internal/supplier"

	"github.com/google/uuid"
)

// Persona shapes the offers a simulated supplier produces.
type Persona struct {
	Carrier      string
	NDC          bool
	Markets      []string
	BaseFare     int64 // minor units before route variance
	FareSpread   int64
	OfferCount   int
	MinLatency   time.Duration
	MaxLatency   time.Duration
	FailureRate  float64 // 0..1 chance of a temporary error per call
	RepriceDrift int64   // max absolute net-price change on reprice, minor units
}

// Known personas mirroring the supplier categories the engine distributes to.
var (
	NDCAggregator = Persona{
		Carrier: "BA", NDC: true,
		BaseFare: 42_000_00, FareSpread: 18_000_00, OfferCount: 4,
		MinLatency: 40 * time.Millisecond, MaxLatency: 160 * time.Millisecond,
		RepriceDrift: 1_500_00,
	}
	RegionalWholesaler = Persona{
		Carrier: "ET",
		BaseFare: 36_000_00, FareSpread: 9_000_00, OfferCount: 3,
		MinLatency: 80 * time.Millisecond, MaxLatency: 300 * time.Millisecond,
		RepriceDrift: 800_00,
	}
	LowCostConnector = Persona{
		Carrier: "FR",
		BaseFare: 21_000_00, FareSpread: 6_000_00, OfferCount: 5,
		MinLatency: 30 * time.Millisecond, MaxLatency: 120 * time.Millisecond,
		RepriceDrift: 2_000_00,
	}
)

// DefaultPersonaNames lists the personas registered when no explicit
// supplier list is configured.
func DefaultPersonaNames() []string {
	return []string{"ndc-aggregator", "regional-wholesaler", "lowcost-connector"}
}

// PersonaByName resolves a persona from its configuration name.
func PersonaByName(name string) (Persona, bool) {
	switch name {
	case "ndc-aggregator":
		return NDCAggregator, true
	case "regional-wholesaler":
		return RegionalWholesaler, true
	case "lowcost-connector":
		return LowCostConnector, true
	default:
		return Persona{}, false
	}
}

// Adapter is a deterministic simulated supplier backend.
type Adapter struct {
	name    string
	persona Persona
	seed    int64

	mu     sync.Mutex
	issued map[string]supplier.RawOffer
}

// New creates a simulated adapter. The same (name, seed, request) triple
// always yields the same offers.
func New(name string, persona Persona, seed int64) *Adapter {
	return &Adapter{
		name:    name,
		persona: persona,
		seed:    seed,
		issued:  make(map[string]supplier.RawOffer),
	}
}

func (a *Adapter) Name() string { return a.name }

func (a *Adapter) Capabilities() supplier.Capabilities {
	return supplier.Capabilities{NDC: a.persona.NDC, Markets: a.persona.Markets}
}

// FetchOffers synthesizes offers for the request after a persona-shaped
// latency. Failure injection uses the derived rng so runs stay reproducible.
func (a *Adapter) FetchOffers(ctx context.Context, req supplier.Request) ([]supplier.RawOffer, error) {
	rng := a.rng(req.Origin + req.Destination + req.DepartureDate.Format("2006-01-02"))

	if err := a.sleep(ctx, rng); err != nil {
		return nil, err
	}
	if a.persona.FailureRate > 0 && rng.Float64() < a.persona.FailureRate {
		return nil, supplier.ErrTemporary
	}

	offers := make([]supplier.RawOffer, 0, a.persona.OfferCount)
	for i := 0; i < a.persona.OfferCount; i++ {
		departAt := req.DepartureDate.Add(time.Duration(6+3*i) * time.Hour)
		duration := 360 + rng.Intn(240)
		stops := 0
		if duration > 480 {
			stops = 1
		}

		offer := supplier.RawOffer{
			SupplierID:      a.name,
			SupplierRef:     fmt.Sprintf("%s-%s", a.name, uuid.NewString()),
			CarrierCode:     a.persona.Carrier,
			FlightNumber:    fmt.Sprintf("%s%03d", a.persona.Carrier, 100+rng.Intn(800)),
			Origin:          req.Origin,
			Destination:     req.Destination,
			DepartureAt:     departAt,
			ArrivalAt:       departAt.Add(time.Duration(duration) * time.Minute),
			DurationMinutes: duration,
			Stops:           stops,
			CabinClass:      req.CabinClass,
			NetMinor:        a.persona.BaseFare + rng.Int63n(a.persona.FareSpread+1),
			Currency:        req.Currency,
			FareRulesRef:    fmt.Sprintf("%s-rules-%d", a.name, i),
			ValidUntil:      time.Now().Add(30 * time.Minute),
		}
		offers = append(offers, offer)
	}

	a.mu.Lock()
	for _, o := range offers {
		a.issued[o.SupplierRef] = o
	}
	a.mu.Unlock()

	return offers, nil
}

// RepriceOffer returns the issued offer with a bounded net-price drift, as a
// live supplier would after availability changed. Unknown or invalidated
// references report expiry.
func (a *Adapter) RepriceOffer(ctx context.Context, ref, _ string) (supplier.RawOffer, error) {
	rng := a.rng(ref)
	if err := a.sleep(ctx, rng); err != nil {
		return supplier.RawOffer{}, err
	}

	a.mu.Lock()
	offer, ok := a.issued[ref]
	a.mu.Unlock()
	if !ok {
		return supplier.RawOffer{}, supplier.ErrOfferExpired
	}
	if time.Now().After(offer.ValidUntil) {
		return supplier.RawOffer{}, supplier.ErrOfferExpired
	}

	if a.persona.RepriceDrift > 0 {
		offer.NetMinor += rng.Int63n(2*a.persona.RepriceDrift+1) - a.persona.RepriceDrift
		if offer.NetMinor < 0 {
			offer.NetMinor = 0
		}
	}
	return offer, nil
}

// Invalidate drops an issued reference so the next reprice reports expiry.
// Test hook.
func (a *Adapter) Invalidate(ref string) {
	a.mu.Lock()
	delete(a.issued, ref)
	a.mu.Unlock()
}

func (a *Adapter) rng(key string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(a.name))
	_, _ = h.Write([]byte(key))
	return rand.New(rand.NewSource(a.seed ^ int64(h.Sum64())))
}

func (a *Adapter) sleep(ctx context.Context, rng *rand.Rand) error {
	if a.persona.MaxLatency <= 0 {
		return nil
	}
	spread := a.persona.MaxLatency - a.persona.MinLatency
	delay := a.persona.MinLatency
	if spread > 0 {
		delay += time.Duration(rng.Int63n(int64(spread)))
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// Compile-time check that Adapter implements supplier.Adapter.
var _ supplier.Adapter = (*Adapter)(nil)
