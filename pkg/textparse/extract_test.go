package textparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashtags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "dedupes and lowercases",
			text: "check #NextJS and @alice out #nextjs",
			want: []string{"nextjs"},
		},
		{
			name: "multiple tags keep first-occurrence order",
			text: "#golang is great #backend #Golang",
			want: []string{"golang", "backend"},
		},
		{
			name: "mid-word hash is not a tag",
			text: "foo#bar",
			want: nil,
		},
		{
			name: "tag at start of text",
			text: "#first then text",
			want: []string{"first"},
		},
		{
			name: "punctuation before hash is fine",
			text: "wow!#cool",
			want: []string{"cool"},
		},
		{
			name: "overlong tag dropped",
			text: "#" + strings.Repeat("a", 101) + " #ok",
			want: []string{"ok"},
		},
		{
			name: "no tags",
			text: "plain text only",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Hashtags(tt.text))
		})
	}
}

func TestMentions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single mention",
			text: "check #NextJS and @alice out #nextjs",
			want: []string{"alice"},
		},
		{
			name: "dedupes but keeps case",
			text: "@Bob hi @alice hi again @Bob",
			want: []string{"Bob", "alice"},
		},
		{
			name: "underscores and digits",
			text: "ping @user_42",
			want: []string{"user_42"},
		},
		{
			name: "no mentions",
			text: "nothing here",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Mentions(tt.text))
		})
	}
}
