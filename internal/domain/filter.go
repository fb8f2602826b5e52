package domain

import (
	"sort"
	"strings"
)

// TagMode selects how a multi-tag filter combines.
type TagMode string

const (
	// TagModeOR matches prompts whose tag set intersects the selection.
	TagModeOR TagMode = "or"
	// TagModeAND matches prompts whose tag set is a superset of the selection.
	TagModeAND TagMode = "and"
)

// ParseTagMode normalizes a tag mode string, defaulting to OR.
func ParseTagMode(s string) TagMode {
	if strings.EqualFold(s, string(TagModeAND)) {
		return TagModeAND
	}
	return TagModeOR
}

// TagIndex maps prompts to their tags, built from the owner's tag set and
// prompt-tag links. It backs both the display annotation (tag names per
// prompt) and the AND/OR filter predicate.
type TagIndex struct {
	tagsByPrompt map[string]map[string]struct{}
	nameByID     map[string]string
}

// NewTagIndex builds a TagIndex from tags and links. Links referencing
// unknown tags still count for filtering but produce no display name.
func NewTagIndex(tags []*Tag, links []*PromptTagLink) *TagIndex {
	idx := &TagIndex{
		tagsByPrompt: make(map[string]map[string]struct{}, len(links)),
		nameByID:     make(map[string]string, len(tags)),
	}
	for _, t := range tags {
		idx.nameByID[t.ID] = t.Name
	}
	for _, l := range links {
		set, ok := idx.tagsByPrompt[l.PromptID]
		if !ok {
			set = make(map[string]struct{})
			idx.tagsByPrompt[l.PromptID] = set
		}
		set[l.TagID] = struct{}{}
	}
	return idx
}

// TagIDs returns the tag ids linked to a prompt, sorted for stable output.
func (idx *TagIndex) TagIDs(promptID string) []string {
	set := idx.tagsByPrompt[promptID]
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for tagID := range set {
		ids = append(ids, tagID)
	}
	sort.Strings(ids)
	return ids
}

// TagNames returns the display names of a prompt's tags, sorted by name.
// Tags that no longer exist are skipped.
func (idx *TagIndex) TagNames(promptID string) []string {
	set := idx.tagsByPrompt[promptID]
	if len(set) == 0 {
		return nil
	}
	names := make([]string, 0, len(set))
	for tagID := range set {
		if name, ok := idx.nameByID[tagID]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Matches evaluates the tag filter for a prompt.
// An empty selection means "no filter" and matches every prompt.
// With TagModeOR the prompt matches iff its tag set intersects the
// selection; with TagModeAND iff its tag set contains every selected tag.
func (idx *TagIndex) Matches(promptID string, selected []string, mode TagMode) bool {
	if len(selected) == 0 {
		return true
	}
	set := idx.tagsByPrompt[promptID]
	switch mode {
	case TagModeAND:
		for _, tagID := range selected {
			if _, ok := set[tagID]; !ok {
				return false
			}
		}
		return true
	default:
		for _, tagID := range selected {
			if _, ok := set[tagID]; ok {
				return true
			}
		}
		return false
	}
}
