package session

import (
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory behind one mutex. Sessions
// survive until they go idle past the TTL and a sweep removes them; process
// restart loses everything.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an empty store. A non-positive ttl falls back to
// 24 hours.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// get returns the live session, creating it if absent. Caller holds the lock.
func (s *MemoryStore) get(id string) *Session {
	sess, ok := s.sessions[id]
	if !ok {
		now := s.now()
		sess = &Session{
			ID:         id,
			CreatedAt:  now,
			UpdatedAt:  now,
			LeadInfo:   make(map[string]string),
			LeadStatus: StatusNew,
		}
		s.sessions[id] = sess
	}
	return sess
}

func (s *MemoryStore) GetOrCreate(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.get(id))
}

func (s *MemoryStore) AppendMessage(id, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(id)
	now := s.now()
	sess.Messages = append(sess.Messages, Message{Role: role, Content: content, Timestamp: now})
	sess.UpdatedAt = now
}

func (s *MemoryStore) AddSignal(id, signal string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(id)
	sess.BuyingSignals = appendUnique(sess.BuyingSignals, signal)
	sess.UpdatedAt = s.now()
}

func (s *MemoryStore) AddPropertyViewed(id, propertyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(id)
	sess.PropertiesViewed = appendUnique(sess.PropertiesViewed, propertyID)
	sess.UpdatedAt = s.now()
}

func (s *MemoryStore) MergeLeadInfo(id string, info map[string]string) {
	if len(info) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(id)
	for k, v := range info {
		sess.LeadInfo[k] = v
	}
	sess.UpdatedAt = s.now()
}

func (s *MemoryStore) SetLeadStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(id)
	sess.LeadStatus = status
	sess.UpdatedAt = s.now()
}

func (s *MemoryStore) History(id string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(id)
	out := make([]Message, len(sess.Messages))
	copy(out, sess.Messages)
	return out
}

func (s *MemoryStore) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func appendUnique(set []string, v string) []string {
	for _, existing := range set {
		if existing == v {
			return set
		}
	}
	return append(set, v)
}

// snapshot deep-copies the mutable parts so callers never alias live state.
func snapshot(sess *Session) Session {
	out := *sess
	out.Messages = make([]Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	out.PropertiesViewed = append([]string(nil), sess.PropertiesViewed...)
	out.BuyingSignals = append([]string(nil), sess.BuyingSignals...)
	out.LeadInfo = make(map[string]string, len(sess.LeadInfo))
	for k, v := range sess.LeadInfo {
		out.LeadInfo[k] = v
	}
	return out
}
