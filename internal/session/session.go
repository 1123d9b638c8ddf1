// Package session holds per-conversation accumulating state: message log,
// seen buying signals, viewed properties, and captured contact fields.
package session

import "time"

// Lead qualification statuses.
const (
	StatusNew       = "new"
	StatusQualified = "qualified"
	StatusHot       = "hot"
	StatusConverted = "converted"
)

// Message is one conversation turn entry.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the accumulated state for one conversation. BuyingSignals and
// PropertiesViewed are de-duplicated sets that only ever grow for the
// lifetime of the session; LeadInfo merges with later extractions
// overwriting same-named keys.
type Session struct {
	ID               string            `json:"session_id"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Messages         []Message         `json:"messages"`
	PropertiesViewed []string          `json:"properties_viewed"`
	BuyingSignals    []string          `json:"buying_signals"`
	LeadInfo         map[string]string `json:"lead_info"`
	LeadStatus       string            `json:"lead_status"`
}

// Store is the session store contract consumed by the chat pipeline.
// Sessions are created lazily on first reference and removed only by the
// expiry sweep. Mutations touch one session at a time; whole-turn
// read-modify-write across calls is not serialized (accepted limitation,
// concurrent turns on one session id may race).
type Store interface {
	// GetOrCreate returns a snapshot of the session, creating it if absent.
	// Reading without mutation is idempotent.
	GetOrCreate(id string) Session

	// AppendMessage adds a message to the session history.
	AppendMessage(id, role, content string)

	// AddSignal records a buying signal. Adding an already-present signal
	// is a no-op; the set never shrinks.
	AddSignal(id, signal string)

	// AddPropertyViewed records a viewed property id, de-duplicated.
	AddPropertyViewed(id, propertyID string)

	// MergeLeadInfo merges contact fields; new values overwrite old ones
	// with the same key.
	MergeLeadInfo(id string, info map[string]string)

	// SetLeadStatus updates the qualification status.
	SetLeadStatus(id, status string)

	// History returns a snapshot of the session's message log.
	History(id string) []Message

	// SweepExpired deletes sessions idle longer than the TTL and returns
	// how many were removed.
	SweepExpired() int
}
