package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTagIndex() *TagIndex {
	tags := []*Tag{
		{ID: "tag-a", Name: "writing"},
		{ID: "tag-b", Name: "art"},
		{ID: "tag-c", Name: "code"},
	}
	links := []*PromptTagLink{
		{PromptID: "prompt-1", TagID: "tag-a"},
		{PromptID: "prompt-1", TagID: "tag-b"},
		{PromptID: "prompt-2", TagID: "tag-b"},
		{PromptID: "prompt-3", TagID: "tag-a"},
		{PromptID: "prompt-3", TagID: "tag-b"},
		{PromptID: "prompt-3", TagID: "tag-c"},
	}
	return NewTagIndex(tags, links)
}

func TestParseTagMode(t *testing.T) {
	tests := []struct {
		input string
		want  TagMode
	}{
		{"or", TagModeOR},
		{"and", TagModeAND},
		{"AND", TagModeAND},
		{"", TagModeOR},
		{"bogus", TagModeOR},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTagMode(tt.input), "input %q", tt.input)
	}
}

func TestTagIndexNames(t *testing.T) {
	idx := testTagIndex()

	assert.Equal(t, []string{"art", "writing"}, idx.TagNames("prompt-1"))
	assert.Equal(t, []string{"art"}, idx.TagNames("prompt-2"))
	assert.Nil(t, idx.TagNames("prompt-untagged"))
}

func TestTagIndexNamesSkipsDeletedTags(t *testing.T) {
	tags := []*Tag{{ID: "tag-a", Name: "writing"}}
	links := []*PromptTagLink{
		{PromptID: "prompt-1", TagID: "tag-a"},
		{PromptID: "prompt-1", TagID: "tag-gone"},
	}
	idx := NewTagIndex(tags, links)

	assert.Equal(t, []string{"writing"}, idx.TagNames("prompt-1"))
	assert.Equal(t, []string{"tag-a", "tag-gone"}, idx.TagIDs("prompt-1"))
}

func TestTagIndexMatches(t *testing.T) {
	idx := testTagIndex()

	tests := []struct {
		name     string
		promptID string
		selected []string
		mode     TagMode
		want     bool
	}{
		{"empty selection matches all", "prompt-2", nil, TagModeOR, true},
		{"empty selection matches untagged", "prompt-untagged", nil, TagModeAND, true},
		{"or single hit", "prompt-2", []string{"tag-b"}, TagModeOR, true},
		{"or single miss", "prompt-2", []string{"tag-c"}, TagModeOR, false},
		{"or any of several", "prompt-2", []string{"tag-a", "tag-b"}, TagModeOR, true},
		{"and full superset", "prompt-3", []string{"tag-a", "tag-c"}, TagModeAND, true},
		{"and partial", "prompt-1", []string{"tag-a", "tag-c"}, TagModeAND, false},
		{"and exact", "prompt-1", []string{"tag-a", "tag-b"}, TagModeAND, true},
		{"untagged prompt with selection", "prompt-untagged", []string{"tag-a"}, TagModeOR, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.Matches(tt.promptID, tt.selected, tt.mode))
		})
	}
}
