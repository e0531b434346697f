package deposit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreReplaceAndEvict(t *testing.T) {
	s := newStore(time.Minute)
	first := &Conversation{RunID: "run-1", UserID: 7}
	second := &Conversation{RunID: "run-2", UserID: 7}

	now := time.Now()
	assert.Nil(t, s.replace(first, now))
	assert.Same(t, first, s.replace(second, now))
	assert.Same(t, second, s.get(7))

	// evicting a superseded run leaves the active one alone
	assert.False(t, s.evict(7, "run-1"))
	assert.Same(t, second, s.get(7))

	assert.True(t, s.evict(7, "run-2"))
	assert.Nil(t, s.get(7))
	assert.False(t, s.evict(7, "run-2"))
}

func TestStoreCleanExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newStore(time.Minute)
	s.replace(&Conversation{RunID: "old", UserID: 1, ChatID: 10, State: StateAwaitingAmount}, now.Add(-2*time.Minute))
	s.replace(&Conversation{RunID: "fresh", UserID: 2, ChatID: 20}, now.Add(-30*time.Second))

	assert.Equal(t, []expired{{UserID: 1, ChatID: 10, RunID: "old", State: StateAwaitingAmount}}, s.cleanExpired(now))
	assert.Nil(t, s.get(1))
	assert.NotNil(t, s.get(2))
	assert.Equal(t, 1, s.len())
}

func TestStoreWithoutTTLKeepsEverything(t *testing.T) {
	s := newStore(0)
	s.replace(&Conversation{RunID: "old", UserID: 1}, time.Now())
	assert.Nil(t, s.cleanExpired(time.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, s.len())
}

func TestStoreTouch(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newStore(time.Minute)
	conv := &Conversation{RunID: "run-1", UserID: 7}
	s.replace(conv, now.Add(-2*time.Minute))

	conv.State = StateAwaitingAmount
	assert.True(t, s.touch(conv, now))
	state, ok := s.state(7)
	assert.True(t, ok)
	assert.Equal(t, StateAwaitingAmount, state)
	assert.Empty(t, s.cleanExpired(now))

	// a superseded run cannot refresh the active one
	stale := &Conversation{RunID: "run-0", UserID: 7}
	assert.False(t, s.touch(stale, now.Add(time.Hour)))
	assert.Len(t, s.cleanExpired(now.Add(2*time.Minute)), 1)
	_, ok = s.state(7)
	assert.False(t, ok)
}
