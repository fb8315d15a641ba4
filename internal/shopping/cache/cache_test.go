package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"farebridge_backend/internal/shopping/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, entryTTL, indexTTL time.Duration) (*OfferCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, entryTTL, indexTTL), mr
}

func offerSet(flightRequestID, sessionID string, offerIDs ...string) *domain.OfferSet {
	offers := make([]domain.SellOffer, 0, len(offerIDs))
	for _, id := range offerIDs {
		offers = append(offers, domain.SellOffer{
			OfferID:    id,
			SupplierID: "ndc-aggregator",
			NetMinor:   10_000,
			SellMinor:  10_450,
			Currency:   "NGN",
		})
	}
	return &domain.OfferSet{
		FlightRequestID: flightRequestID,
		SessionID:       sessionID,
		CreatedAt:       time.Now().UTC(),
		Offers:          offers,
	}
}

func TestPutAndGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, 20*time.Minute, 45*time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, offerSet("req-1", "sess-1", "offer-a", "offer-b")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	set, err := c.Get(ctx, "req-1", "sess-1")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if len(set.Offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(set.Offers))
	}
	if set.Offers[0].OfferID != "offer-a" {
		t.Fatalf("expected offer order preserved, got %q first", set.Offers[0].OfferID)
	}
}

func TestGetMissForUnknownKeyPair(t *testing.T) {
	c, _ := newTestCache(t, 20*time.Minute, 45*time.Minute)

	if _, err := c.Get(context.Background(), "req-x", "sess-x"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c, mr := newTestCache(t, time.Minute, 2*time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, offerSet("req-1", "sess-1", "offer-a")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	mr.FastForward(61 * time.Second)

	if _, err := c.Get(ctx, "req-1", "sess-1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after entry TTL, got %v", err)
	}
}

func TestPutOverwritesEntireSet(t *testing.T) {
	c, _ := newTestCache(t, 20*time.Minute, 45*time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, offerSet("req-1", "sess-1", "old-a", "old-b")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	if err := c.Put(ctx, offerSet("req-1", "sess-1", "new-a")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	set, err := c.Get(ctx, "req-1", "sess-1")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if len(set.Offers) != 1 || set.Offers[0].OfferID != "new-a" {
		t.Fatalf("expected only the replacement offers, got %+v", set.Offers)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	c, _ := newTestCache(t, 20*time.Minute, 45*time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, offerSet("req-1", "sess-1", "offer-a")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	if err := c.Put(ctx, offerSet("req-1", "sess-2", "offer-b")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	set, err := c.Get(ctx, "req-1", "sess-1")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if set.Offers[0].OfferID != "offer-a" {
		t.Fatalf("expected sess-1 to keep its own offers, got %q", set.Offers[0].OfferID)
	}
}

func TestGetByOfferIDAttachesLiveSet(t *testing.T) {
	c, _ := newTestCache(t, 20*time.Minute, 45*time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, offerSet("req-1", "sess-1", "offer-a")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	indexed, err := c.GetByOfferID(ctx, "offer-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if indexed.FlightRequestID != "req-1" || indexed.SessionID != "sess-1" {
		t.Fatalf("expected index to point at req-1/sess-1, got %s/%s", indexed.FlightRequestID, indexed.SessionID)
	}
	if indexed.Set == nil {
		t.Fatalf("expected owning set attached while entry is live")
	}
	if indexed.Offer.SellMinor != 10_450 {
		t.Fatalf("expected cached sell price 10450, got %d", indexed.Offer.SellMinor)
	}
}

func TestGetByOfferIDSurvivesEntryExpiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute, 10*time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, offerSet("req-1", "sess-1", "offer-a")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	// Past the entry TTL but inside the index TTL.
	mr.FastForward(5 * time.Minute)

	indexed, err := c.GetByOfferID(ctx, "offer-a")
	if err != nil {
		t.Fatalf("expected index record to outlive entry, got %v", err)
	}
	if indexed.Set != nil {
		t.Fatalf("expected no owning set after entry expiry")
	}

	mr.FastForward(6 * time.Minute)

	if _, err := c.GetByOfferID(ctx, "offer-a"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after index TTL, got %v", err)
	}
}

func TestGetByOfferIDMissForUnknownOffer(t *testing.T) {
	c, _ := newTestCache(t, 20*time.Minute, 45*time.Minute)

	if _, err := c.GetByOfferID(context.Background(), "nope"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

func TestSweepRemovesIndexesOrphanedByOverwrite(t *testing.T) {
	c, _ := newTestCache(t, 20*time.Minute, 45*time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, offerSet("req-1", "sess-1", "old-a", "old-b")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	if err := c.Put(ctx, offerSet("req-1", "sess-1", "new-a")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	removed, err := c.SweepOrphanedIndexes(ctx)
	if err != nil {
		t.Fatalf("unexpected sweep error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 orphaned records removed, got %d", removed)
	}

	if _, err := c.GetByOfferID(ctx, "old-a"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected orphaned index gone, got %v", err)
	}
	if _, err := c.GetByOfferID(ctx, "new-a"); err != nil {
		t.Fatalf("expected live index untouched, got %v", err)
	}
}

func TestSweepLeavesExpiredEntryIndexesForTheirTTL(t *testing.T) {
	c, mr := newTestCache(t, time.Minute, 10*time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, offerSet("req-1", "sess-1", "offer-a")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	removed, err := c.SweepOrphanedIndexes(ctx)
	if err != nil {
		t.Fatalf("unexpected sweep error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected expired-entry index left alone, removed %d", removed)
	}
	if _, err := c.GetByOfferID(ctx, "offer-a"); err != nil {
		t.Fatalf("expected index still resolvable, got %v", err)
	}
}
