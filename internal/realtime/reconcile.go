package realtime

import (
	"sync"

	"github.com/flocknet/flock-backend/internal/domain"
)

// This file is the convergence layer's merge logic. Every function is
// pure over its inputs and is called identically whether an event came
// from an optimistic local mutation or a pushed change-stream event:
// dedup happens on natural keys, so the second arrival of the same
// mutation is a no-op rather than a duplicate.

// MergeMessage inserts a message into a thread list unless its id is
// already present, keeping (created_at, id) order. Out-of-order pushes
// land in the right position instead of being appended.
func MergeMessage(list []domain.MessageView, incoming domain.MessageView) []domain.MessageView {
	for _, m := range list {
		if m.ID == incoming.ID {
			return list
		}
	}

	out := make([]domain.MessageView, 0, len(list)+1)
	inserted := false
	for _, m := range list {
		if !inserted && messageAfter(m, incoming) {
			out = append(out, incoming)
			inserted = true
		}
		out = append(out, m)
	}
	if !inserted {
		out = append(out, incoming)
	}
	return out
}

// messageAfter reports whether a sorts after b
func messageAfter(a, b domain.MessageView) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// RemoveMessage drops a soft-deleted message from the thread list.
// Reply previews referencing it keep their data; only the standalone
// entry disappears.
func RemoveMessage(list []domain.MessageView, messageID string) []domain.MessageView {
	out := make([]domain.MessageView, 0, len(list))
	for _, m := range list {
		if m.ID != messageID {
			out = append(out, m)
		}
	}
	return out
}

// ApplyReaction adds one (user, emoji) tuple to a message's reaction
// groups. Re-applying the same tuple (optimistic echo meeting its own
// push event) changes nothing.
func ApplyReaction(groups []domain.ReactionGroup, emoji, userID, viewerID string) []domain.ReactionGroup {
	out := CloneGroups(groups)
	for i := range out {
		if out[i].Emoji != emoji {
			continue
		}
		for _, id := range out[i].UserIDs {
			if id == userID {
				return out // already present, no-op
			}
		}
		out[i].UserIDs = append(out[i].UserIDs, userID)
		out[i].Count = len(out[i].UserIDs)
		if userID == viewerID {
			out[i].Reacted = true
		}
		return out
	}
	return append(out, domain.ReactionGroup{
		Emoji:   emoji,
		Count:   1,
		UserIDs: []string{userID},
		Reacted: userID == viewerID,
	})
}

// RemoveReaction drops one (user, emoji) tuple. Groups collapse to
// absent at zero count; removing a tuple that is not there is a no-op.
func RemoveReaction(groups []domain.ReactionGroup, emoji, userID, viewerID string) []domain.ReactionGroup {
	out := make([]domain.ReactionGroup, 0, len(groups))
	for _, g := range groups {
		if g.Emoji != emoji {
			out = append(out, cloneGroup(g))
			continue
		}
		kept := make([]string, 0, len(g.UserIDs))
		for _, id := range g.UserIDs {
			if id != userID {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			continue
		}
		ng := domain.ReactionGroup{Emoji: g.Emoji, Count: len(kept), UserIDs: kept}
		for _, id := range kept {
			if id == viewerID {
				ng.Reacted = true
			}
		}
		out = append(out, ng)
	}
	return out
}

// CloneGroups deep-copies reaction groups. Optimistic callers keep the
// clone as a rollback snapshot before applying a local mutation.
func CloneGroups(groups []domain.ReactionGroup) []domain.ReactionGroup {
	if groups == nil {
		return nil
	}
	out := make([]domain.ReactionGroup, len(groups))
	for i, g := range groups {
		out[i] = cloneGroup(g)
	}
	return out
}

func cloneGroup(g domain.ReactionGroup) domain.ReactionGroup {
	ng := g
	ng.UserIDs = append([]string(nil), g.UserIDs...)
	return ng
}

// MergeNotification inserts a pushed notification unless already seen,
// keeping the list reverse-chronological. A delayed push for an older
// notification lands in position instead of at the head.
func MergeNotification(list []domain.NotificationItem, incoming domain.NotificationItem) []domain.NotificationItem {
	for _, n := range list {
		if n.ID == incoming.ID {
			return list
		}
	}

	out := make([]domain.NotificationItem, 0, len(list)+1)
	inserted := false
	for _, n := range list {
		if !inserted && notificationBefore(n, incoming) {
			out = append(out, incoming)
			inserted = true
		}
		out = append(out, n)
	}
	if !inserted {
		out = append(out, incoming)
	}
	return out
}

// notificationBefore reports whether a sorts before b in
// reverse-chronological order
func notificationBefore(a, b domain.NotificationItem) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// Counter is a badge counter that stays monotonic with respect to
// locally-known state: a decrement pushed before its matching insert
// was applied clamps at zero instead of going negative.
type Counter struct {
	mu    sync.Mutex
	value int64
}

// NewCounter creates a counter seeded with an authoritative value
func NewCounter(initial int64) *Counter {
	if initial < 0 {
		initial = 0
	}
	return &Counter{value: initial}
}

// Inc adds one and returns the new value
func (c *Counter) Inc() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value++
	return c.value
}

// Dec subtracts one, clamping at zero, and returns the new value
func (c *Counter) Dec() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value > 0 {
		c.value--
	}
	return c.value
}

// Set replaces the value with an authoritative refresh
func (c *Counter) Set(v int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v < 0 {
		v = 0
	}
	c.value = v
	return c.value
}

// Value returns the current value
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
