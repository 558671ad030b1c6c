package realtime

import (
	"testing"
	"time"

	"github.com/flocknet/flock-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func msg(id string, at time.Time) domain.MessageView {
	return domain.MessageView{ID: id, CreatedAt: at}
}

func TestMergeMessageDedupesOnID(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	list := []domain.MessageView{msg("a", base)}

	// Optimistic insert already applied; the pushed event for the
	// same message must not duplicate it.
	got := MergeMessage(list, msg("a", base))
	assert.Len(t, got, 1)
}

func TestMergeMessageKeepsOrder(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	list := []domain.MessageView{
		msg("a", base),
		msg("c", base.Add(2*time.Second)),
	}

	// Out-of-order push lands in position, not at the end
	got := MergeMessage(list, msg("b", base.Add(time.Second)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestMergeMessageTieBrokenByID(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	list := []domain.MessageView{msg("b", base)}

	got := MergeMessage(list, msg("a", base))
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestRemoveMessage(t *testing.T) {
	base := time.Now()
	list := []domain.MessageView{msg("a", base), msg("b", base)}

	got := RemoveMessage(list, "a")
	assert.Equal(t, []string{"b"}, ids(got))

	// Removing an unknown id is a no-op
	got = RemoveMessage(got, "zzz")
	assert.Equal(t, []string{"b"}, ids(got))
}

func ids(list []domain.MessageView) []string {
	out := make([]string, len(list))
	for i, m := range list {
		out[i] = m.ID
	}
	return out
}

func TestApplyReactionIdempotent(t *testing.T) {
	groups := ApplyReaction(nil, "👍", "u1", "u1")
	assert.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Count)
	assert.True(t, groups[0].Reacted)

	// Push event for the same optimistic tuple arrives: no double count
	groups = ApplyReaction(groups, "👍", "u1", "u1")
	assert.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Count)
}

func TestApplyReactionSecondEmojiIndependent(t *testing.T) {
	groups := ApplyReaction(nil, "👍", "u1", "u1")
	groups = ApplyReaction(groups, "❤️", "u1", "u1")

	assert.Len(t, groups, 2)
	assert.Equal(t, "👍", groups[0].Emoji)
	assert.Equal(t, "❤️", groups[1].Emoji)
}

func TestRemoveReactionCollapsesEmptyGroup(t *testing.T) {
	groups := ApplyReaction(nil, "👍", "u1", "u2")
	groups = RemoveReaction(groups, "👍", "u1", "u2")
	assert.Empty(t, groups)

	// Removing again is a no-op
	groups = RemoveReaction(groups, "👍", "u1", "u2")
	assert.Empty(t, groups)
}

func TestRemoveReactionKeepsOthers(t *testing.T) {
	groups := ApplyReaction(nil, "👍", "u1", "u1")
	groups = ApplyReaction(groups, "👍", "u2", "u1")

	groups = RemoveReaction(groups, "👍", "u2", "u1")
	assert.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Count)
	assert.Equal(t, []string{"u1"}, groups[0].UserIDs)
	assert.True(t, groups[0].Reacted)
}

func TestToggleParity(t *testing.T) {
	// N toggle calls: odd leaves the tuple present, even absent
	var groups []domain.ReactionGroup
	for i := 1; i <= 5; i++ {
		if len(groups) == 0 {
			groups = ApplyReaction(groups, "👍", "u1", "u1")
		} else {
			groups = RemoveReaction(groups, "👍", "u1", "u1")
		}
		if i%2 == 1 {
			assert.Len(t, groups, 1, "after %d toggles", i)
			assert.Equal(t, 1, groups[0].Count)
		} else {
			assert.Empty(t, groups, "after %d toggles", i)
		}
	}
}

func TestCloneGroupsIsolatesRollbackSnapshot(t *testing.T) {
	groups := ApplyReaction(nil, "👍", "u1", "u1")
	snapshot := CloneGroups(groups)

	mutated := ApplyReaction(groups, "👍", "u2", "u1")
	assert.Equal(t, 2, mutated[0].Count)

	// Snapshot unchanged: rollback restores exact pre-mutation state
	assert.Equal(t, 1, snapshot[0].Count)
	assert.Equal(t, []string{"u1"}, snapshot[0].UserIDs)
}

func TestMergeNotificationDedupes(t *testing.T) {
	n1 := domain.NotificationItem{ID: "n1", Type: domain.NotificationLike}
	n2 := domain.NotificationItem{ID: "n2", Type: domain.NotificationFollow}

	list := MergeNotification(nil, n1)
	list = MergeNotification(list, n2)
	assert.Equal(t, "n2", list[0].ID) // newest first

	list = MergeNotification(list, n1)
	assert.Len(t, list, 2)
}

func TestMergeNotificationOutOfOrder(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n1 := domain.NotificationItem{ID: "n1", CreatedAt: base}
	n2 := domain.NotificationItem{ID: "n2", CreatedAt: base.Add(time.Second)}
	n3 := domain.NotificationItem{ID: "n3", CreatedAt: base.Add(2 * time.Second)}

	// The newest and oldest arrive first; the delayed middle push must
	// land in position, keeping newest-first order.
	list := MergeNotification(nil, n3)
	list = MergeNotification(list, n1)
	list = MergeNotification(list, n2)

	got := make([]string, len(list))
	for i, n := range list {
		got[i] = n.ID
	}
	assert.Equal(t, []string{"n3", "n2", "n1"}, got)
}

func TestCounterNeverNegative(t *testing.T) {
	c := NewCounter(0)

	// "read" push arriving before its "insert" must not go below zero
	assert.Equal(t, int64(0), c.Dec())
	assert.Equal(t, int64(1), c.Inc())
	assert.Equal(t, int64(0), c.Dec())
	assert.Equal(t, int64(0), c.Dec())
}

func TestCounterSetClampsAndRefreshes(t *testing.T) {
	c := NewCounter(5)
	assert.Equal(t, int64(3), c.Set(3))
	assert.Equal(t, int64(0), c.Set(-2))
	assert.Equal(t, int64(0), c.Value())
}
