package transport

import (
	"strings"
	"testing"

	"farebridge_backend/platform/validator"
)

func validCreateRequest() CreateShoppingRequest {
	return CreateShoppingRequest{
		Origin:        "LOS",
		Destination:   "LHR",
		DepartureDate: "2026-10-01",
		Adults:        1,
		Currency:      "NGN",
		Market:        "NG",
	}
}

func TestCreateShoppingRequestToDomain(t *testing.T) {
	req := validCreateRequest()
	req.Origin = "los"
	req.Market = "ng"

	dom, err := req.ToDomain()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dom.Origin != "LOS" || dom.Market != "NG" {
		t.Fatalf("expected uppercased fields, got %q/%q", dom.Origin, dom.Market)
	}
	if dom.CabinClass != "economy" {
		t.Fatalf("expected cabin default economy, got %q", dom.CabinClass)
	}
	if dom.ReturnDate != nil {
		t.Fatalf("expected one-way request without return date")
	}
}

func TestToDomainRejectsReturnBeforeDeparture(t *testing.T) {
	req := validCreateRequest()
	ret := "2026-09-30"
	req.ReturnDate = &ret

	_, err := req.ToDomain()
	if err == nil || !strings.Contains(err.Error(), "precedes") {
		t.Fatalf("expected return-before-departure error, got %v", err)
	}
}

func TestToDomainRejectsMalformedDates(t *testing.T) {
	req := validCreateRequest()
	req.DepartureDate = "01/10/2026"

	if _, err := req.ToDomain(); err == nil {
		t.Fatalf("expected error for malformed departure date")
	}
}

func TestValidationCatchesBadItineraries(t *testing.T) {
	val := validator.New()

	cases := []struct {
		name   string
		mutate func(*CreateShoppingRequest)
	}{
		{"missing origin", func(r *CreateShoppingRequest) { r.Origin = "" }},
		{"bad iata code", func(r *CreateShoppingRequest) { r.Origin = "LOSX" }},
		{"same origin and destination", func(r *CreateShoppingRequest) { r.Destination = r.Origin }},
		{"zero adults", func(r *CreateShoppingRequest) { r.Adults = 0 }},
		{"too many adults", func(r *CreateShoppingRequest) { r.Adults = 10 }},
		{"bad currency", func(r *CreateShoppingRequest) { r.Currency = "NAIRA" }},
		{"bad market", func(r *CreateShoppingRequest) { r.Market = "NGA" }},
		{"bad cabin", func(r *CreateShoppingRequest) { r.CabinClass = "steerage" }},
	}

	for _, tc := range cases {
		req := validCreateRequest()
		req.Origin = strings.ToUpper(req.Origin)
		tc.mutate(&req)
		if err := val.Struct(req); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}

	good := validCreateRequest()
	if err := val.Struct(good); err != nil {
		t.Fatalf("expected valid request to pass, got %v", err)
	}
}
