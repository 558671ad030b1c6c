// Package textparse extracts mention and hashtag tokens from post and
// message text. Both extractors are pure: callers re-run them on every
// edit and fully replace the derived associations.
package textparse

import (
	"regexp"
	"strings"
)

// MaxPostLength is the content length cap applied to posts and messages
const MaxPostLength = 280

// MaxHashtagLength is the longest accepted tag (without the # symbol)
const MaxHashtagLength = 100

var (
	// @ followed by word characters; usernames are matched case-sensitively
	mentionRe = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

	// # followed by word characters, not preceded by a word character
	// (avoids matching mid-word fragments like "a#b")
	hashtagRe = regexp.MustCompile(`(^|[^A-Za-z0-9_])#([A-Za-z0-9_]+)`)
)

// Mentions returns the deduplicated @usernames referenced in text, in
// first-occurrence order. Matching against existing accounts happens at
// the caller; unknown names are dropped there, not here.
func Mentions(text string) []string {
	matches := mentionRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var names []string
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Hashtags returns the deduplicated tags in text, lowercased, in
// first-occurrence order. Tags longer than MaxHashtagLength are dropped.
func Hashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var tags []string
	for _, m := range matches {
		tag := strings.ToLower(m[2])
		if len(tag) == 0 || len(tag) > MaxHashtagLength {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
