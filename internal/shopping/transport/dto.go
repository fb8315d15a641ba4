// Package transport defines the shopping module's request/response shapes.
package transport

import (
	"fmt"
	"strings"
	"time"

	"farebridge_backend/internal/shopping/domain"
)

const dateLayout = "2006-01-02"

// CreateShoppingRequest is the intake payload storing a shopping request
// out-of-band, ahead of the distribution run.
type CreateShoppingRequest struct {
	Origin        string  `json:"origin" validate:"required,iata"`
	Destination   string  `json:"destination" validate:"required,iata,nefield=Origin"`
	DepartureDate string  `json:"departureDate" validate:"required"`
	ReturnDate    *string `json:"returnDate,omitempty"`
	Adults        int     `json:"adults" validate:"required,min=1,max=9"`
	Children      int     `json:"children" validate:"omitempty,min=0,max=9"`
	Infants       int     `json:"infants" validate:"omitempty,min=0,max=9"`
	CabinClass    string  `json:"cabinClass" validate:"omitempty,oneof=economy premium_economy business first"`
	Currency      string  `json:"currency" validate:"required,currency_code"`
	Market        string  `json:"market" validate:"required,len=2"`
	NDCOnly       bool    `json:"ndcOnly"`
}

// ToDomain converts the payload into the immutable domain request.
func (r CreateShoppingRequest) ToDomain() (domain.ShoppingRequest, error) {
	departure, err := time.Parse(dateLayout, r.DepartureDate)
	if err != nil {
		return domain.ShoppingRequest{}, fmt.Errorf("invalid departureDate: %w", err)
	}

	var returnDate *time.Time
	if r.ReturnDate != nil && *r.ReturnDate != "" {
		parsed, err := time.Parse(dateLayout, *r.ReturnDate)
		if err != nil {
			return domain.ShoppingRequest{}, fmt.Errorf("invalid returnDate: %w", err)
		}
		if parsed.Before(departure) {
			return domain.ShoppingRequest{}, fmt.Errorf("returnDate precedes departureDate")
		}
		returnDate = &parsed
	}

	cabin := r.CabinClass
	if cabin == "" {
		cabin = "economy"
	}

	return domain.ShoppingRequest{
		Origin:        strings.ToUpper(r.Origin),
		Destination:   strings.ToUpper(r.Destination),
		DepartureDate: departure,
		ReturnDate:    returnDate,
		Adults:        r.Adults,
		Children:      r.Children,
		Infants:       r.Infants,
		CabinClass:    cabin,
		Currency:      strings.ToUpper(r.Currency),
		Market:        strings.ToUpper(r.Market),
		NDCOnly:       r.NDCOnly,
	}, nil
}

// CreateShoppingResponse returns the generated flight request id.
type CreateShoppingResponse struct {
	FlightRequestID string    `json:"flightRequestId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ProcessOffersRequest triggers distribution for a stored shopping request.
type ProcessOffersRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// GetOffersQuery carries the session correlating a fetch to its run.
type GetOffersQuery struct {
	SessionID string `form:"sessionId" validate:"required"`
}

// VerifyPriceRequest re-verifies one offer ahead of booking.
type VerifyPriceRequest struct {
	OfficeID         string `json:"officeId" validate:"required"`
	ClientReference  string `json:"clientReference" validate:"omitempty,max=64"`
	IncludeFareRules bool   `json:"includeFareRules"`
}

// VerifyPriceResponse wraps the freshly verified offer.
type VerifyPriceResponse struct {
	Offer           *domain.SellOffer `json:"offer"`
	ClientReference string            `json:"clientReference,omitempty"`
	VerifiedAt      time.Time         `json:"verifiedAt"`
}
