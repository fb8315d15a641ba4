// Package supplier defines the capability contract the distribution core
// consumes to talk to heterogeneous flight-supplier backends (GDS/NDC
// aggregators, low-cost connectors, regional wholesalers). Adapter-internal
// wire protocols live behind this contract.
package supplier

import (
	"context"
	"errors"
	"time"
)

// ErrTemporary marks a transient adapter failure worth retrying.
var ErrTemporary = errors.New("temporary supplier error")

// ErrOfferExpired is returned by RepriceOffer when the supplier reports the
// offer reference is no longer valid.
var ErrOfferExpired = errors.New("offer reference no longer valid")

// Request carries the itinerary a supplier is shopped for.
type Request struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	Adults        int
	Children      int
	Infants       int
	CabinClass    string
	Currency      string
	Market        string
	NDCOnly       bool
}

// RawOffer is a supplier's unprocessed offer. It is immutable once produced:
// the distribution core reads it, never mutates it.
type RawOffer struct {
	SupplierID      string
	SupplierRef     string
	CarrierCode     string
	FlightNumber    string
	Origin          string
	Destination     string
	DepartureAt     time.Time
	ArrivalAt       time.Time
	DurationMinutes int
	Stops           int
	CabinClass      string
	NetMinor        int64
	Currency        string
	FareRulesRef    string
	ValidUntil      time.Time
}

// Capabilities describes which requests an adapter can serve.
type Capabilities struct {
	// NDC reports airline-direct (NDC) distribution support. NDC-only
	// shopping requests are routed exclusively to NDC-capable adapters.
	NDC bool
	// Markets lists supported point-of-sale markets. Empty means all.
	Markets []string
}

// SupportsMarket reports whether the adapter serves the given market.
func (c Capabilities) SupportsMarket(market string) bool {
	if len(c.Markets) == 0 {
		return true
	}
	for _, m := range c.Markets {
		if m == market {
			return true
		}
	}
	return false
}

// Adapter is the uniform capability interface over one supplier backend.
type Adapter interface {
	// Name returns the stable supplier identifier.
	Name() string
	// Capabilities returns the adapter's routing flags.
	Capabilities() Capabilities
	// FetchOffers shops the supplier for the given request.
	FetchOffers(ctx context.Context, req Request) ([]RawOffer, error)
	// RepriceOffer re-verifies a previously returned offer reference,
	// returning a fresh RawOffer. officeID selects the supplier-side
	// office/account context where the backend requires one.
	RepriceOffer(ctx context.Context, ref, officeID string) (RawOffer, error)
}
