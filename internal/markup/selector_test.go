package markup

import (
	"errors"
	"testing"
)

func flat(id string) Policy {
	return FlatPolicy{PolicyID: id, AmountMinor: 100}
}

func resolveID(t *testing.T, s *Selector, provider, market, currency string) string {
	t.Helper()
	policy, err := s.Resolve(provider, market, currency)
	if err != nil {
		t.Fatalf("resolve %s/%s/%s: unexpected error: %v", provider, market, currency, err)
	}
	return policy.ID()
}

func TestSelectorPrecedenceFallThrough(t *testing.T) {
	s := NewSelector()
	s.Register(Rule{Provider: "ndc-aggregator", Market: "NG", Currency: "NGN", Policy: flat("exact")})
	s.Register(Rule{Provider: "ndc-aggregator", Market: "NG", Policy: flat("provider-market")})
	s.Register(Rule{Market: "NG", Currency: "NGN", Policy: flat("market-currency")})
	s.Register(Rule{Market: "NG", Policy: flat("market")})
	s.Register(Rule{Policy: flat("global")})

	if got := resolveID(t, s, "ndc-aggregator", "NG", "NGN"); got != "exact" {
		t.Fatalf("expected exact match, got %q", got)
	}

	// Peeling registrations away one at a time exposes each fallback tier.
	s.Unregister("ndc-aggregator", "NG", "NGN")
	if got := resolveID(t, s, "ndc-aggregator", "NG", "NGN"); got != "provider-market" {
		t.Fatalf("expected provider-market fallback, got %q", got)
	}

	s.Unregister("ndc-aggregator", "NG", Wildcard)
	if got := resolveID(t, s, "ndc-aggregator", "NG", "NGN"); got != "market-currency" {
		t.Fatalf("expected market-currency fallback, got %q", got)
	}

	s.Unregister(Wildcard, "NG", "NGN")
	if got := resolveID(t, s, "ndc-aggregator", "NG", "NGN"); got != "market" {
		t.Fatalf("expected market fallback, got %q", got)
	}

	s.Unregister(Wildcard, "NG", Wildcard)
	if got := resolveID(t, s, "ndc-aggregator", "NG", "NGN"); got != "global" {
		t.Fatalf("expected global default, got %q", got)
	}
}

func TestSelectorNoMatchWithoutGlobalDefault(t *testing.T) {
	s := NewSelector()
	s.Register(Rule{Market: "NG", Policy: flat("market")})

	_, err := s.Resolve("ndc-aggregator", "GB", "GBP")
	if !errors.Is(err, ErrNoApplicablePolicy) {
		t.Fatalf("expected ErrNoApplicablePolicy, got %v", err)
	}
}

func TestSelectorLaterRegistrationReplacesEarlier(t *testing.T) {
	s := NewSelector()
	s.Register(Rule{Market: "NG", Policy: flat("old")})
	s.Register(Rule{Market: "NG", Policy: flat("new")})

	if got := resolveID(t, s, "any", "NG", "NGN"); got != "new" {
		t.Fatalf("expected replacement registration, got %q", got)
	}
}

func TestSelectorSharedPolicyInstanceAcrossRules(t *testing.T) {
	s := NewSelector()
	shared := flat("shared")
	s.Register(Rule{Market: "NG", Policy: shared})
	s.Register(Rule{Market: "KE", Policy: shared})

	if got := resolveID(t, s, "a", "NG", "NGN"); got != "shared" {
		t.Fatalf("expected shared policy for NG, got %q", got)
	}
	if got := resolveID(t, s, "b", "KE", "KES"); got != "shared" {
		t.Fatalf("expected shared policy for KE, got %q", got)
	}
}
