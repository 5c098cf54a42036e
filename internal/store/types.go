package store

// Favorite is a listing the user starred, with enough denormalized data
// to render the dashboard without hitting the service.
type Favorite struct {
	ListingID string
	Title     string
	Price     float64
	Category  string
	AddedAt   int64
}

// RecentSearch is one past search query, typed or spoken.
type RecentSearch struct {
	ID         int64
	Query      string
	Source     string
	SearchedAt int64
}

// Recent search sources.
const (
	SearchSourceText  = "text"
	SearchSourceVoice = "voice"
)

// ViewEvent is one queued view-count increment waiting to be delivered.
type ViewEvent struct {
	ID           int64
	EventID      string
	ListingID    string
	Status       string
	Attempts     int
	ErrorMessage string
}

// View event statuses.
const (
	ViewQueued  = "queued"
	ViewSending = "sending"
	ViewSent    = "sent"
	ViewFailed  = "failed"
)
