package supplier

import (
	"context"

	"golang.org/x/time/rate"
)

type rateLimitedAdapter struct {
	adapter Adapter
	limiter *rate.Limiter
}

// NewRateLimitedAdapter wraps an adapter with a token-bucket limiter so a
// burst of shopping traffic cannot exceed the supplier's call quota. Both
// FetchOffers and RepriceOffer consume from the same bucket.
func NewRateLimitedAdapter(a Adapter, limit rate.Limit, burst int) Adapter {
	return &rateLimitedAdapter{
		adapter: a,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (r *rateLimitedAdapter) Name() string {
	return r.adapter.Name()
}

func (r *rateLimitedAdapter) Capabilities() Capabilities {
	return r.adapter.Capabilities()
}

func (r *rateLimitedAdapter) FetchOffers(ctx context.Context, req Request) ([]RawOffer, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.adapter.FetchOffers(ctx, req)
}

func (r *rateLimitedAdapter) RepriceOffer(ctx context.Context, ref, officeID string) (RawOffer, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return RawOffer{}, err
	}
	return r.adapter.RepriceOffer(ctx, ref, officeID)
}
