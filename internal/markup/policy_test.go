package markup

import (
	"errors"
	"testing"

	"farebridge_backend/internal/supplier"
)

func rawOffer(netMinor int64) supplier.RawOffer {
	return supplier.RawOffer{
		SupplierID: "ndc-aggregator",
		NetMinor:   netMinor,
		Currency:   "NGN",
	}
}

func TestFlatPolicyAddsFixedFee(t *testing.T) {
	p := FlatPolicy{PolicyID: "flat", AmountMinor: 1500}

	priced, err := p.Apply(rawOffer(10_000), MarketContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if priced.SellMinor != 11_500 {
		t.Fatalf("expected sell=11500, got %d", priced.SellMinor)
	}
	if priced.MarkupMinor != 1500 {
		t.Fatalf("expected markup=1500, got %d", priced.MarkupMinor)
	}
	if priced.Discounted {
		t.Fatalf("expected Discounted=false")
	}
	if priced.PolicyID != "flat" {
		t.Fatalf("expected policyId=%q, got %q", "flat", priced.PolicyID)
	}
}

func TestPercentPolicyRoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		name    string
		net     int64
		rateBps int64
		markup  int64
	}{
		{"exact", 10_000, 450, 450},
		{"fraction below half rounds down", 10_001, 50, 50}, // 50.005 -> 50
		{"half rounds away", 11_100, 450, 500},              // 499.5 -> 500
		{"negative half rounds away", 11_100, -450, -500},
		{"small fare", 1, 450, 0},
	}

	for _, tc := range cases {
		p := PercentPolicy{PolicyID: "pct", RateBps: tc.rateBps, AllowDiscount: true}
		priced, err := p.Apply(rawOffer(tc.net), MarketContext{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if priced.MarkupMinor != tc.markup {
			t.Fatalf("%s: expected markup=%d, got %d", tc.name, tc.markup, priced.MarkupMinor)
		}
		if priced.SellMinor != tc.net+tc.markup {
			t.Fatalf("%s: expected sell=%d, got %d", tc.name, tc.net+tc.markup, priced.SellMinor)
		}
	}
}

func TestPercentPolicyRejectsUndeclaredDiscount(t *testing.T) {
	p := PercentPolicy{PolicyID: "neg", RateBps: -200}

	_, err := p.Apply(rawOffer(10_000), MarketContext{})
	if !errors.Is(err, ErrNegativeSell) {
		t.Fatalf("expected ErrNegativeSell, got %v", err)
	}
}

func TestPercentPolicyFlagsDeclaredDiscount(t *testing.T) {
	p := PercentPolicy{PolicyID: "promo", RateBps: -200, AllowDiscount: true}

	priced, err := p.Apply(rawOffer(10_000), MarketContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !priced.Discounted {
		t.Fatalf("expected Discounted=true")
	}
	if priced.SellMinor != 9_800 {
		t.Fatalf("expected sell=9800, got %d", priced.SellMinor)
	}
}

func TestTieredPolicySelectsFirstCoveringBand(t *testing.T) {
	p := TieredPolicy{
		PolicyID: "tiered",
		Bands: []Band{
			{UpToMinor: 20_000, FlatMinor: 750},
			{UpToMinor: 0, RateBps: 300},
		},
	}

	low, err := p.Apply(rawOffer(20_000), MarketContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low.MarkupMinor != 750 {
		t.Fatalf("expected boundary fare in first band with markup=750, got %d", low.MarkupMinor)
	}

	high, err := p.Apply(rawOffer(100_000), MarketContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high.MarkupMinor != 3_000 {
		t.Fatalf("expected tail band markup=3000, got %d", high.MarkupMinor)
	}
}

func TestCompositePolicySumsPartsUnderOwnContract(t *testing.T) {
	p := CompositePolicy{
		PolicyID: "combo",
		Parts: []Policy{
			FlatPolicy{PolicyID: "combo#0", AmountMinor: 1_200, AllowDiscount: true},
			PercentPolicy{PolicyID: "combo#1", RateBps: 150, AllowDiscount: true},
		},
	}

	priced, err := p.Apply(rawOffer(100_000), MarketContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if priced.MarkupMinor != 2_700 {
		t.Fatalf("expected markup=2700, got %d", priced.MarkupMinor)
	}
	if priced.PolicyID != "combo" {
		t.Fatalf("expected combined result under composite id, got %q", priced.PolicyID)
	}
}

func TestCompositePolicyDiscountingPartOffsetByAnother(t *testing.T) {
	p := CompositePolicy{
		PolicyID: "offset",
		Parts: []Policy{
			FlatPolicy{PolicyID: "offset#0", AmountMinor: 1_000, AllowDiscount: true},
			PercentPolicy{PolicyID: "offset#1", RateBps: -50, AllowDiscount: true},
		},
	}

	priced, err := p.Apply(rawOffer(10_000), MarketContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if priced.MarkupMinor != 950 {
		t.Fatalf("expected markup=950, got %d", priced.MarkupMinor)
	}
	if priced.Discounted {
		t.Fatalf("expected positive combined markup not flagged as discount")
	}
}

func TestCompositePolicyNegativeTotalRequiresDiscountFlag(t *testing.T) {
	parts := []Policy{
		FlatPolicy{PolicyID: "p0", AmountMinor: 100, AllowDiscount: true},
		PercentPolicy{PolicyID: "p1", RateBps: -500, AllowDiscount: true},
	}

	strict := CompositePolicy{PolicyID: "strict", Parts: parts}
	if _, err := strict.Apply(rawOffer(10_000), MarketContext{}); !errors.Is(err, ErrNegativeSell) {
		t.Fatalf("expected ErrNegativeSell for undeclared net discount, got %v", err)
	}

	declared := CompositePolicy{PolicyID: "declared", Parts: parts, AllowDiscount: true}
	priced, err := declared.Apply(rawOffer(10_000), MarketContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !priced.Discounted {
		t.Fatalf("expected Discounted=true")
	}
}

func TestPolicyApplicationIsDeterministic(t *testing.T) {
	p := TieredPolicy{
		PolicyID: "det",
		Bands: []Band{
			{UpToMinor: 50_000, FlatMinor: 400, RateBps: 125},
			{UpToMinor: 0, RateBps: 275},
		},
	}
	offer := rawOffer(43_217)

	first, err := p.Apply(offer, MarketContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, err := p.Apply(offer, MarketContext{})
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
		if again != first {
			t.Fatalf("run %d: expected identical result %+v, got %+v", i, first, again)
		}
	}
}
