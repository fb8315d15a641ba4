package events

// OfferSetProduced is published after the orchestrator writes a processed
// offer set to the cache. Subscribers must tolerate at-most-once delivery.
type OfferSetProduced struct {
	BaseEvent
	FlightRequestID  string
	SessionID        string
	OfferCount       int
	SuppliersQueried int
	SuppliersFailed  int
}

// EventName returns the unique identifier for this event type.
func (OfferSetProduced) EventName() string {
	return "shopping.offerset.produced"
}
