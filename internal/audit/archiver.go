// Package audit archives produced offer sets to object storage so that
// pricing decisions can be traced after the cache entries expire.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"farebridge_backend/internal/events"
	"farebridge_backend/internal/shopping/domain"
	"farebridge_backend/platform/logger"
)

// SetReader fetches a live offer set from the session cache.
type SetReader interface {
	GetOffers(ctx context.Context, flightRequestID, sessionID string) (*domain.OfferSet, error)
}

// Archiver subscribes to offer set production events and writes a JSON
// snapshot of each set to the snapshot store.
type Archiver struct {
	store SnapshotStore
	sets  SetReader
	log   *logger.Logger
}

// NewArchiver creates the archiver.
func NewArchiver(store SnapshotStore, sets SetReader, log *logger.Logger) *Archiver {
	return &Archiver{store: store, sets: sets, log: log}
}

// Subscribe registers the archiver on the event bus.
func (a *Archiver) Subscribe(bus events.Bus) {
	bus.Subscribe(events.OfferSetProduced{}.EventName(), events.HandlerFunc(a.handleOfferSetProduced))
}

func (a *Archiver) handleOfferSetProduced(ctx context.Context, event events.Event) error {
	produced, ok := event.(events.OfferSetProduced)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	set, err := a.sets.GetOffers(ctx, produced.FlightRequestID, produced.SessionID)
	if err != nil {
		// The set may already be overwritten or expired; archiving is
		// best effort and must not fail the pipeline.
		a.log.Warn("audit snapshot skipped", "flightRequestId", produced.FlightRequestID, "error", err)
		return nil
	}

	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal offer set: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json",
		produced.OccurredAt().UTC().Format("2006/01/02"),
		produced.FlightRequestID,
		produced.SessionID,
	)
	if err := a.store.PutSnapshot(ctx, key, payload); err != nil {
		a.log.Error("audit snapshot failed", "key", key, "error", err)
		return err
	}

	a.log.Info("offer set archived", "key", key, "offers", produced.OfferCount)
	return nil
}
