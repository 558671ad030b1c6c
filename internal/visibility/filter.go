// Package visibility implements the block/mute content filter. The
// predicate is pure and stateless; every listing surface (home feed,
// search, profile tabs, hashtag feed, conversation list) applies the
// same Sets for a viewer, loaded once per session and refreshed when
// the viewer's block or mute set changes.
package visibility

// Sets holds the author ids hidden from one viewer
type Sets struct {
	Blocked map[string]struct{}
	Muted   map[string]struct{}
}

// NewSets builds Sets from raw id slices
func NewSets(blocked, muted []string) Sets {
	s := Sets{
		Blocked: make(map[string]struct{}, len(blocked)),
		Muted:   make(map[string]struct{}, len(muted)),
	}
	for _, id := range blocked {
		s.Blocked[id] = struct{}{}
	}
	for _, id := range muted {
		s.Muted[id] = struct{}{}
	}
	return s
}

// Visible reports whether content by authorID may be shown.
// False iff the author is blocked or muted by the viewer.
func (s Sets) Visible(authorID string) bool {
	if _, ok := s.Blocked[authorID]; ok {
		return false
	}
	if _, ok := s.Muted[authorID]; ok {
		return false
	}
	return true
}

// Authored is anything with an author, filterable by Sets
type Authored interface {
	GetAuthorID() string
}

// Filter returns the items whose authors are visible to the viewer
func Filter[T Authored](items []T, sets Sets) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if sets.Visible(item.GetAuthorID()) {
			out = append(out, item)
		}
	}
	return out
}
