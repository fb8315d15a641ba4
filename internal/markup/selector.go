package markup

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoApplicablePolicy reports that no registration, including the global
// default, matched the lookup tuple.
var ErrNoApplicablePolicy = errors.New("no applicable markup policy")

// Wildcard matches any value in a registration dimension.
const Wildcard = "*"

// Rule binds a (provider, market, currency) match pattern to a policy.
// Empty pattern fields are treated as wildcards. Several rules may route to
// the same policy instance.
type Rule struct {
	Provider string
	Market   string
	Currency string
	Policy   Policy
}

// Selector resolves the applicable markup policy for a lookup tuple.
// Registration is read-mostly; lookups are concurrent.
type Selector struct {
	mu    sync.RWMutex
	rules map[string]Policy
}

// NewSelector creates an empty selector.
func NewSelector() *Selector {
	return &Selector{rules: make(map[string]Policy)}
}

// Register adds a rule. A later registration for the same pattern replaces
// the earlier one.
func (s *Selector) Register(r Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[patternKey(r.Provider, r.Market, r.Currency)] = r.Policy
}

// Unregister removes the rule for the exact pattern, if present.
func (s *Selector) Unregister(provider, market, currency string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, patternKey(provider, market, currency))
}

// Resolve chooses the applicable policy, most specific registration first:
// exact (provider, market, currency), then (provider, market), then
// (market, currency), then market-only, then the global default.
func (s *Selector) Resolve(provider, market, currency string) (Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := [5]string{
		patternKey(provider, market, currency),
		patternKey(provider, market, Wildcard),
		patternKey(Wildcard, market, currency),
		patternKey(Wildcard, market, Wildcard),
		patternKey(Wildcard, Wildcard, Wildcard),
	}
	for _, key := range candidates {
		if policy, ok := s.rules[key]; ok {
			return policy, nil
		}
	}
	return nil, fmt.Errorf("provider=%s market=%s currency=%s: %w",
		provider, market, currency, ErrNoApplicablePolicy)
}

func patternKey(provider, market, currency string) string {
	return normalize(provider) + "|" + normalize(market) + "|" + normalize(currency)
}

func normalize(field string) string {
	if field == "" {
		return Wildcard
	}
	return field
}
