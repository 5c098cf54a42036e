package bus

import "time"

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Well-known event kinds. Subscribers filter by namespace prefix, so
// "listing." matches every listing event.
const (
	KindListingRefreshed = "listing.refreshed"
	KindListingOpened    = "listing.opened"

	KindVoiceStateChanged = "voice.state_changed"
	KindVoiceResults      = "voice.results"
	KindVoiceError        = "voice.error"

	KindViewQueued = "view.queued"
	KindViewSent   = "view.sent"
	KindViewFailed = "view.failed"
)
