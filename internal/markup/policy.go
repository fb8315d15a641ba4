// Package markup implements the price-markup policy set and the selector
// that routes a (provider, market, currency) tuple to the applicable policy.
// Policies convert supplier net prices into sell prices; they are pure and
// deterministic so shopping and later price verification agree.
package markup

import (
	"errors"
	"fmt"

	"farebridge_backend/internal/supplier"
)

// ErrNegativeSell reports a policy that computed sell < net without being
// registered as a discounting policy. The offer carrying it is dropped, never
// silently priced.
var ErrNegativeSell = errors.New("markup would price below net without discount flag")

// MarketContext is the lookup and pricing context derived from a shopping
// request and the offer being priced.
type MarketContext struct {
	SupplierID string
	Market     string
	Currency   string
}

// Priced is the outcome of applying a policy to one raw offer.
type Priced struct {
	PolicyID    string
	SellMinor   int64
	MarkupMinor int64
	Discounted  bool
}

// Policy prices one raw offer for a market context. Implementations must be
// deterministic and side-effect free.
type Policy interface {
	ID() string
	Apply(offer supplier.RawOffer, mc MarketContext) (Priced, error)
}

// finish validates the computed markup against the discount contract and
// assembles the Priced result.
func finish(policyID string, net, markup int64, allowDiscount bool) (Priced, error) {
	if markup < 0 && !allowDiscount {
		return Priced{}, fmt.Errorf("policy %s: %w", policyID, ErrNegativeSell)
	}
	return Priced{
		PolicyID:    policyID,
		SellMinor:   net + markup,
		MarkupMinor: markup,
		Discounted:  markup < 0,
	}, nil
}

// roundBps computes amount*bps/10000 rounded half away from zero.
func roundBps(amount, bps int64) int64 {
	product := amount * bps
	if product >= 0 {
		return (product + 5000) / 10000
	}
	return (product - 5000) / 10000
}

// FlatPolicy adds a fixed fee in minor units.
type FlatPolicy struct {
	PolicyID      string
	AmountMinor   int64
	AllowDiscount bool
}

func (p FlatPolicy) ID() string { return p.PolicyID }

func (p FlatPolicy) Apply(offer supplier.RawOffer, _ MarketContext) (Priced, error) {
	return finish(p.PolicyID, offer.NetMinor, p.AmountMinor, p.AllowDiscount)
}

// PercentPolicy adds a percentage of the net price, expressed in basis points.
type PercentPolicy struct {
	PolicyID      string
	RateBps       int64
	AllowDiscount bool
}

func (p PercentPolicy) ID() string { return p.PolicyID }

func (p PercentPolicy) Apply(offer supplier.RawOffer, _ MarketContext) (Priced, error) {
	return finish(p.PolicyID, offer.NetMinor, roundBps(offer.NetMinor, p.RateBps), p.AllowDiscount)
}

// Band is one tier of a TieredPolicy: offers with net price up to UpToMinor
// (inclusive) get FlatMinor plus RateBps of net. UpToMinor of zero means no
// upper bound.
type Band struct {
	UpToMinor int64
	FlatMinor int64
	RateBps   int64
}

// TieredPolicy applies the first band whose range covers the net price.
// Bands must be ordered by ascending UpToMinor with an unbounded final band.
type TieredPolicy struct {
	PolicyID      string
	Bands         []Band
	AllowDiscount bool
}

func (p TieredPolicy) ID() string { return p.PolicyID }

func (p TieredPolicy) Apply(offer supplier.RawOffer, _ MarketContext) (Priced, error) {
	for _, band := range p.Bands {
		if band.UpToMinor != 0 && offer.NetMinor > band.UpToMinor {
			continue
		}
		markup := band.FlatMinor + roundBps(offer.NetMinor, band.RateBps)
		return finish(p.PolicyID, offer.NetMinor, markup, p.AllowDiscount)
	}
	return Priced{}, fmt.Errorf("policy %s: no band covers net price %d", p.PolicyID, offer.NetMinor)
}

// CompositePolicy sums the markups of its parts under its own policy id.
// Parts are built with the discount check relaxed; only the combined markup
// is held to the composite's discount contract, so one discounting part may
// be offset by another.
type CompositePolicy struct {
	PolicyID      string
	Parts         []Policy
	AllowDiscount bool
}

func (p CompositePolicy) ID() string { return p.PolicyID }

func (p CompositePolicy) Apply(offer supplier.RawOffer, mc MarketContext) (Priced, error) {
	var total int64
	for _, part := range p.Parts {
		priced, err := part.Apply(offer, mc)
		if err != nil {
			return Priced{}, err
		}
		total += priced.MarkupMinor
	}
	return finish(p.PolicyID, offer.NetMinor, total, p.AllowDiscount)
}
