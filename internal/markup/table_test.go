package markup

import (
	"strings"
	"testing"

	"farebridge_backend/internal/supplier"
)

const sampleTable = `
policies:
  - id: ng-ndc-ngn
    type: percent
    rate_bps: 450
  - id: ng-market-default
    type: tiered
    bands:
      - up_to_minor: 20000
        flat_minor: 750
      - up_to_minor: 0
        rate_bps: 300
  - id: promo
    type: percent
    rate_bps: -200
    discount: true
  - id: global-default
    type: flat
    amount_minor: 2500
rules:
  - provider: ndc-aggregator
    market: NG
    currency: NGN
    policy: ng-ndc-ngn
  - market: NG
    policy: ng-market-default
  - policy: global-default
`

func TestParseTableBuildsWorkingSelector(t *testing.T) {
	s, err := ParseTable([]byte(sampleTable))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	offer := supplier.RawOffer{NetMinor: 10_000}

	policy, err := s.Resolve("ndc-aggregator", "NG", "NGN")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	priced, err := policy.Apply(offer, MarketContext{})
	if err != nil {
		t.Fatalf("unexpected apply error: %v", err)
	}
	if priced.PolicyID != "ng-ndc-ngn" || priced.MarkupMinor != 450 {
		t.Fatalf("expected ng-ndc-ngn markup=450, got %q markup=%d", priced.PolicyID, priced.MarkupMinor)
	}

	policy, err = s.Resolve("regional-wholesaler", "NG", "NGN")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if policy.ID() != "ng-market-default" {
		t.Fatalf("expected market fallback, got %q", policy.ID())
	}

	policy, err = s.Resolve("regional-wholesaler", "GB", "GBP")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if policy.ID() != "global-default" {
		t.Fatalf("expected global default, got %q", policy.ID())
	}
}

func TestParseTableRejectsDuplicatePolicyID(t *testing.T) {
	data := `
policies:
  - id: dup
    type: flat
    amount_minor: 100
  - id: dup
    type: flat
    amount_minor: 200
rules:
  - policy: dup
`
	_, err := ParseTable([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "duplicate policy id") {
		t.Fatalf("expected duplicate policy id error, got %v", err)
	}
}

func TestParseTableRejectsUnknownPolicyReference(t *testing.T) {
	data := `
policies:
  - id: known
    type: flat
    amount_minor: 100
rules:
  - policy: missing
`
	_, err := ParseTable([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "unknown policy") {
		t.Fatalf("expected unknown policy error, got %v", err)
	}
}

func TestParseTableRejectsBoundedFinalBand(t *testing.T) {
	data := `
policies:
  - id: bad-tiers
    type: tiered
    bands:
      - up_to_minor: 1000
        flat_minor: 50
rules:
  - policy: bad-tiers
`
	_, err := ParseTable([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "unbounded band") {
		t.Fatalf("expected unbounded band error, got %v", err)
	}
}

func TestParseTableRejectsUnknownPolicyType(t *testing.T) {
	data := `
policies:
  - id: weird
    type: exponential
rules:
  - policy: weird
`
	_, err := ParseTable([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "unknown type") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestParseTableCompositePartsMayDiscountInternally(t *testing.T) {
	data := `
policies:
  - id: bundle
    type: composite
    parts:
      - type: flat
        amount_minor: 1000
      - type: percent
        rate_bps: -50
rules:
  - policy: bundle
`
	s, err := ParseTable([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	policy, err := s.Resolve("any", "ZZ", "ZZZ")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	priced, err := policy.Apply(supplier.RawOffer{NetMinor: 10_000}, MarketContext{})
	if err != nil {
		t.Fatalf("unexpected apply error: %v", err)
	}
	if priced.MarkupMinor != 950 {
		t.Fatalf("expected markup=950, got %d", priced.MarkupMinor)
	}
}
