package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"farebridge_backend/internal/supplier"
)

// fastPersona skips simulated latency so tests stay quick.
var fastPersona = Persona{
	Carrier:      "BA",
	NDC:          true,
	BaseFare:     40_000,
	FareSpread:   10_000,
	OfferCount:   3,
	RepriceDrift: 1_500,
}

func testRequest() supplier.Request {
	return supplier.Request{
		Origin:        "LOS",
		Destination:   "LHR",
		DepartureDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Adults:        1,
		CabinClass:    "economy",
		Currency:      "NGN",
		Market:        "NG",
	}
}

func TestFetchOffersPricingIsDeterministicPerSeed(t *testing.T) {
	a := New("ndc-aggregator", fastPersona, 42)
	b := New("ndc-aggregator", fastPersona, 42)
	ctx := context.Background()

	offersA, err := a.FetchOffers(ctx, testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	offersB, err := b.FetchOffers(ctx, testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(offersA) != len(offersB) || len(offersA) != fastPersona.OfferCount {
		t.Fatalf("expected %d offers from both runs, got %d and %d",
			fastPersona.OfferCount, len(offersA), len(offersB))
	}
	for i := range offersA {
		if offersA[i].NetMinor != offersB[i].NetMinor {
			t.Fatalf("offer %d: expected identical net prices, got %d and %d",
				i, offersA[i].NetMinor, offersB[i].NetMinor)
		}
		if offersA[i].DurationMinutes != offersB[i].DurationMinutes {
			t.Fatalf("offer %d: expected identical durations", i)
		}
	}
}

func TestFetchOffersDifferentSeedsDiverge(t *testing.T) {
	a := New("ndc-aggregator", fastPersona, 1)
	b := New("ndc-aggregator", fastPersona, 2)
	ctx := context.Background()

	offersA, err := a.FetchOffers(ctx, testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	offersB, err := b.FetchOffers(ctx, testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	same := true
	for i := range offersA {
		if offersA[i].NetMinor != offersB[i].NetMinor {
			same = false
		}
	}
	if same {
		t.Fatalf("expected different seeds to produce different fares")
	}
}

func TestRepriceReturnsIssuedOfferWithBoundedDrift(t *testing.T) {
	a := New("ndc-aggregator", fastPersona, 42)
	ctx := context.Background()

	offers, err := a.FetchOffers(ctx, testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	original := offers[0]
	fresh, err := a.RepriceOffer(ctx, original.SupplierRef, "office-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	drift := fresh.NetMinor - original.NetMinor
	if drift < -fastPersona.RepriceDrift || drift > fastPersona.RepriceDrift {
		t.Fatalf("expected drift within ±%d, got %d", fastPersona.RepriceDrift, drift)
	}
	if fresh.SupplierRef != original.SupplierRef {
		t.Fatalf("expected same supplier reference")
	}
}

func TestRepriceUnknownReferenceReportsExpired(t *testing.T) {
	a := New("ndc-aggregator", fastPersona, 42)

	_, err := a.RepriceOffer(context.Background(), "never-issued", "office-1")
	if !errors.Is(err, supplier.ErrOfferExpired) {
		t.Fatalf("expected ErrOfferExpired, got %v", err)
	}
}

func TestRepriceInvalidatedReferenceReportsExpired(t *testing.T) {
	a := New("ndc-aggregator", fastPersona, 42)
	ctx := context.Background()

	offers, err := a.FetchOffers(ctx, testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := offers[0].SupplierRef
	a.Invalidate(ref)

	_, err = a.RepriceOffer(ctx, ref, "office-1")
	if !errors.Is(err, supplier.ErrOfferExpired) {
		t.Fatalf("expected ErrOfferExpired after invalidation, got %v", err)
	}
}

func TestPersonaByNameCoversDefaults(t *testing.T) {
	for _, name := range DefaultPersonaNames() {
		if _, ok := PersonaByName(name); !ok {
			t.Fatalf("expected persona for default name %q", name)
		}
	}
	if _, ok := PersonaByName("unknown-supplier"); ok {
		t.Fatalf("expected unknown persona name to miss")
	}
}
