package deposit

import (
	"sync"
	"time"
)

// entry is what the store knows about a conversation. Its fields are only
// read and written under the store mutex; the Conversation itself belongs to
// the serialized event stream of its user.
type entry struct {
	conv   *Conversation
	runID  string
	chatID int64
	state  State
	seen   time.Time
}

// expired identifies a conversation dropped by cleanExpired.
type expired struct {
	UserID int64
	ChatID int64
	RunID  string
	State  State
}

// store keeps at most one Conversation per user.
type store struct {
	ttl  time.Duration
	list map[int64]*entry
	mtx  sync.RWMutex
}

func newStore(ttl time.Duration) *store {
	return &store{
		ttl:  ttl,
		list: make(map[int64]*entry),
	}
}

// replace inserts conv for its user and returns the conversation it
// superseded, if any.
func (s *store) replace(conv *Conversation, now time.Time) *Conversation {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	var previous *Conversation
	if current, exists := s.list[conv.UserID]; exists {
		previous = current.conv
	}
	s.list[conv.UserID] = &entry{
		conv:   conv,
		runID:  conv.RunID,
		chatID: conv.ChatID,
		state:  conv.State,
		seen:   now,
	}
	return previous
}

func (s *store) get(userID int64) *Conversation {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if current, exists := s.list[userID]; exists {
		return current.conv
	}
	return nil
}

// state returns the last state recorded for userID.
func (s *store) state(userID int64) (State, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	current, exists := s.list[userID]
	if !exists {
		return "", false
	}
	return current.state, true
}

// touch records the state of conv and marks it active at now. It does nothing
// when conv is no longer the stored run of its user.
func (s *store) touch(conv *Conversation, now time.Time) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	current, exists := s.list[conv.UserID]
	if !exists || current.runID != conv.RunID {
		return false
	}
	current.state = conv.State
	current.seen = now
	return true
}

// evict removes the conversation of userID only if it is still run runID.
func (s *store) evict(userID int64, runID string) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	current, exists := s.list[userID]
	if !exists || current.runID != runID {
		return false
	}
	delete(s.list, userID)
	return true
}

// cleanExpired drops conversations not touched for longer than the ttl.
func (s *store) cleanExpired(now time.Time) []expired {
	if s.ttl <= 0 {
		return nil
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	dropped := []expired{}
	for id, current := range s.list {
		if current.seen.Add(s.ttl).Before(now) {
			dropped = append(dropped, expired{
				UserID: id,
				ChatID: current.chatID,
				RunID:  current.runID,
				State:  current.state,
			})
			delete(s.list, id)
		}
	}
	return dropped
}

func (s *store) len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.list)
}
