// Package domain holds the shopping bounded context's core value types.
package domain

import (
	"time"

	"farebridge_backend/internal/supplier"
)

// ShoppingRequest is an immutable shopping invocation. It is persisted
// out-of-band by the intake endpoint and loaded by the distribution run.
type ShoppingRequest struct {
	FlightRequestID string
	Origin          string
	Destination     string
	DepartureDate   time.Time
	ReturnDate      *time.Time
	Adults          int
	Children        int
	Infants         int
	CabinClass      string
	Currency        string
	Market          string
	NDCOnly         bool
	CreatedAt       time.Time
}

// SupplierRequest maps the shopping request onto the adapter contract.
func (r ShoppingRequest) SupplierRequest() supplier.Request {
	return supplier.Request{
		Origin:        r.Origin,
		Destination:   r.Destination,
		DepartureDate: r.DepartureDate,
		ReturnDate:    r.ReturnDate,
		Adults:        r.Adults,
		Children:      r.Children,
		Infants:       r.Infants,
		CabinClass:    r.CabinClass,
		Currency:      r.Currency,
		Market:        r.Market,
		NDCOnly:       r.NDCOnly,
	}
}

// SellOffer is a raw supplier offer after markup. This is what is cached and
// returned to callers. MarkupMinor is negative only for explicitly flagged
// discount policies; PolicyID records the rule-set that priced it so a later
// verification can be audited against the same policy.
type SellOffer struct {
	OfferID         string    `json:"offerId"`
	SupplierID      string    `json:"supplierId"`
	SupplierRef     string    `json:"supplierRef"`
	CarrierCode     string    `json:"carrierCode"`
	FlightNumber    string    `json:"flightNumber"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	DepartureAt     time.Time `json:"departureAt"`
	ArrivalAt       time.Time `json:"arrivalAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Stops           int       `json:"stops"`
	CabinClass      string    `json:"cabinClass"`
	NetMinor        int64     `json:"netMinor"`
	SellMinor       int64     `json:"sellMinor"`
	MarkupMinor     int64     `json:"markupMinor"`
	Discounted      bool      `json:"discounted,omitempty"`
	Currency        string    `json:"currency"`
	PolicyID        string    `json:"policyId"`
	Market          string    `json:"market"`
	FareRulesRef    string    `json:"fareRulesRef,omitempty"`
	ValidUntil      time.Time `json:"validUntil"`
}

// SupplierOutcome summarizes one adapter's part in a distribution run.
type SupplierOutcome struct {
	SupplierID string `json:"supplierId"`
	OfferCount int    `json:"offerCount"`
	Failed     bool   `json:"failed"`
	Reason     string `json:"reason,omitempty"`
}

// OfferSet is the processed result of one distribution run: the unit of
// cache storage. Write-once; a repeat run for the same identity replaces the
// whole entry.
type OfferSet struct {
	FlightRequestID string            `json:"flightRequestId"`
	SessionID       string            `json:"sessionId"`
	CreatedAt       time.Time         `json:"createdAt"`
	Offers          []SellOffer       `json:"offers"`
	Suppliers       []SupplierOutcome `json:"suppliers"`
}

// FailedSuppliers returns the ids of suppliers that contributed no offers.
func (s OfferSet) FailedSuppliers() []string {
	failed := make([]string, 0)
	for _, outcome := range s.Suppliers {
		if outcome.Failed {
			failed = append(failed, outcome.SupplierID)
		}
	}
	return failed
}
