// Package cache implements the offer cache: processed offer sets keyed by
// (flightRequestId, sessionId) with a bounded lifetime, plus an offer-id
// secondary index for point verification lookups.
//
// Entries are stored as single JSON values, so overwrite and read are atomic
// from the reader's perspective: a concurrent reader observes either the old
// or the new offer set in full, never an interleaving. The offer-id index
// carries its own (longer) TTL so verification can still classify an offer
// whose owning entry already expired.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"farebridge_backend/internal/shopping/domain"

	"github.com/redis/go-redis/v9"
)

// ErrMiss reports an absent or expired cache entry.
var ErrMiss = errors.New("offer cache miss")

const (
	setKeyPrefix   = "shopping:set:"
	offerKeyPrefix = "shopping:offer:"
)

// IndexedOffer is the result of an offer-id lookup. Set is nil when the
// owning entry has already expired while the index record is still alive.
type IndexedOffer struct {
	FlightRequestID string           `json:"flightRequestId"`
	SessionID       string           `json:"sessionId"`
	Offer           domain.SellOffer `json:"offer"`
	Set             *domain.OfferSet `json:"-"`
}

// OfferCache is the Redis-backed offer store.
type OfferCache struct {
	rdb      *redis.Client
	entryTTL time.Duration
	indexTTL time.Duration
}

// New creates an offer cache. indexTTL must be at least entryTTL so index
// records outlive their entries.
func New(rdb *redis.Client, entryTTL, indexTTL time.Duration) *OfferCache {
	return &OfferCache{rdb: rdb, entryTTL: entryTTL, indexTTL: indexTTL}
}

// Put stores an offer set, replacing any prior entry for the same key pair,
// and (re)writes the offer-id index records in the same pipeline.
func (c *OfferCache) Put(ctx context.Context, set *domain.OfferSet) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal offer set: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, setKey(set.FlightRequestID, set.SessionID), payload, c.entryTTL)
	for _, offer := range set.Offers {
		record, err := json.Marshal(IndexedOffer{
			FlightRequestID: set.FlightRequestID,
			SessionID:       set.SessionID,
			Offer:           offer,
		})
		if err != nil {
			return fmt.Errorf("marshal offer index record: %w", err)
		}
		pipe.Set(ctx, offerKey(offer.OfferID), record, c.indexTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("offer cache put: %w", err)
	}
	return nil
}

// Get returns the offer set for the key pair, or ErrMiss if none exists.
func (c *OfferCache) Get(ctx context.Context, flightRequestID, sessionID string) (*domain.OfferSet, error) {
	payload, err := c.rdb.Get(ctx, setKey(flightRequestID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("offer cache get: %w", err)
	}

	var set domain.OfferSet
	if err := json.Unmarshal(payload, &set); err != nil {
		return nil, fmt.Errorf("unmarshal offer set: %w", err)
	}
	return &set, nil
}

// GetByOfferID resolves an offer id through the secondary index. The owning
// offer set is attached when it is still cached.
func (c *OfferCache) GetByOfferID(ctx context.Context, offerID string) (*IndexedOffer, error) {
	payload, err := c.rdb.Get(ctx, offerKey(offerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("offer index get: %w", err)
	}

	var indexed IndexedOffer
	if err := json.Unmarshal(payload, &indexed); err != nil {
		return nil, fmt.Errorf("unmarshal offer index record: %w", err)
	}

	set, err := c.Get(ctx, indexed.FlightRequestID, indexed.SessionID)
	if err != nil && !errors.Is(err, ErrMiss) {
		return nil, err
	}
	indexed.Set = set
	return &indexed, nil
}

// SweepOrphanedIndexes deletes index records whose owning entry still exists
// but no longer contains the indexed offer (the entry was overwritten by a
// repeat shopping run). Records whose entry expired are left for their own
// TTL so verification can still resolve them.
func (c *OfferCache) SweepOrphanedIndexes(ctx context.Context) (int, error) {
	var removed int
	iter := c.rdb.Scan(ctx, 0, offerKeyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		payload, err := c.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("offer index sweep: %w", err)
		}

		var indexed IndexedOffer
		if err := json.Unmarshal(payload, &indexed); err != nil {
			// Unreadable record: reclaim it.
			if err := c.rdb.Del(ctx, key).Err(); err == nil {
				removed++
			}
			continue
		}

		set, err := c.Get(ctx, indexed.FlightRequestID, indexed.SessionID)
		if errors.Is(err, ErrMiss) {
			continue
		}
		if err != nil {
			return removed, err
		}
		if !containsOffer(set, indexed.Offer.OfferID) {
			if err := c.rdb.Del(ctx, key).Err(); err != nil {
				return removed, fmt.Errorf("offer index sweep: %w", err)
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("offer index sweep: %w", err)
	}
	return removed, nil
}

func containsOffer(set *domain.OfferSet, offerID string) bool {
	for _, offer := range set.Offers {
		if offer.OfferID == offerID {
			return true
		}
	}
	return false
}

func setKey(flightRequestID, sessionID string) string {
	return setKeyPrefix + flightRequestID + ":" + sessionID
}

func offerKey(offerID string) string {
	return offerKeyPrefix + offerID
}
