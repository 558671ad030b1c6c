package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypingExcludesViewer(t *testing.T) {
	c := NewCoordinator(TypingTTL)

	c.SetTyping("conv-1", "alice", true)
	c.SetTyping("conv-1", "bob", true)

	assert.Equal(t, []string{"bob"}, c.Typing("conv-1", "alice"))
	assert.Equal(t, []string{"alice"}, c.Typing("conv-1", "bob"))
	assert.Equal(t, []string{"alice", "bob"}, c.Typing("conv-1", "carol"))
}

func TestTypingClearedExplicitly(t *testing.T) {
	c := NewCoordinator(TypingTTL)

	c.SetTyping("conv-1", "alice", true)
	c.SetTyping("conv-1", "alice", false)

	assert.Empty(t, c.Typing("conv-1", "bob"))
}

func TestTypingExpiresAfterTTL(t *testing.T) {
	c := NewCoordinator(TypingTTL)
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.SetTyping("conv-1", "alice", true)
	assert.Equal(t, []string{"alice"}, c.Typing("conv-1", "bob"))

	// 2s of silence clears the indicator even before the sweeper runs
	current = current.Add(TypingTTL + time.Millisecond)
	assert.Empty(t, c.Typing("conv-1", "bob"))
}

func TestTypingRefreshExtendsTTL(t *testing.T) {
	c := NewCoordinator(TypingTTL)
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.SetTyping("conv-1", "alice", true)
	current = current.Add(time.Second)
	c.SetTyping("conv-1", "alice", true) // keystroke refresh

	current = current.Add(1500 * time.Millisecond)
	assert.Equal(t, []string{"alice"}, c.Typing("conv-1", "bob"))
}

func TestSweepRemovesStaleEntries(t *testing.T) {
	c := NewCoordinator(TypingTTL)
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	var notified []string
	c.OnChange(func(convID string) { notified = append(notified, convID) })

	c.SetTyping("conv-1", "alice", true)
	notified = nil

	current = current.Add(TypingTTL + time.Millisecond)
	c.sweep()

	assert.Equal(t, []string{"conv-1"}, notified)
	assert.Empty(t, c.Typing("conv-1", "bob"))
}

func TestClearUserDropsAllConversations(t *testing.T) {
	c := NewCoordinator(TypingTTL)

	c.SetTyping("conv-1", "alice", true)
	c.SetTyping("conv-2", "alice", true)
	c.SetTyping("conv-2", "bob", true)

	c.ClearUser("alice")

	assert.Empty(t, c.Typing("conv-1", "x"))
	assert.Equal(t, []string{"bob"}, c.Typing("conv-2", "x"))
}

func TestSetTypingNotifiesOnChangeOnly(t *testing.T) {
	c := NewCoordinator(TypingTTL)

	var count int
	c.OnChange(func(string) { count++ })

	c.SetTyping("conv-1", "alice", true)
	assert.Equal(t, 1, count)

	// Keystroke refresh of an already-typing user is not a change
	c.SetTyping("conv-1", "alice", true)
	assert.Equal(t, 1, count)

	c.SetTyping("conv-1", "alice", false)
	assert.Equal(t, 2, count)

	// Clearing an absent user is a no-op
	c.SetTyping("conv-1", "alice", false)
	assert.Equal(t, 2, count)
}
