package sqlite

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/promptvault/promptvault-server/internal/domain"
	"github.com/promptvault/promptvault-server/internal/store"
)

// makeTestTag creates a domain.Tag with sensible defaults for testing.
func makeTestTag(id, ownerID, name string) *domain.Tag {
	now := time.Now()
	return &domain.Tag{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGetTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")

	tag := makeTestTag("tag-1", "user-1", "worldbuilding")

	if err := s.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	got, err := s.GetTag(ctx, "user-1", "tag-1")
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}

	if got.ID != tag.ID {
		t.Errorf("ID: got %q, want %q", got.ID, tag.ID)
	}
	if got.Name != tag.Name {
		t.Errorf("Name: got %q, want %q", got.Name, tag.Name)
	}
	if got.CreatedAt.Unix() != tag.CreatedAt.Unix() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, tag.CreatedAt)
	}
}

func TestGetTagByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")

	tag := makeTestTag("tag-n1", "user-1", "dialogue")
	if err := s.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	got, err := s.GetTagByName(ctx, "user-1", "dialogue")
	if err != nil {
		t.Fatalf("GetTagByName: %v", err)
	}
	if got.ID != "tag-n1" {
		t.Errorf("ID: got %q, want %q", got.ID, "tag-n1")
	}

	// Names are case-sensitive.
	if _, err := s.GetTagByName(ctx, "user-1", "Dialogue"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for different case, got %v", err)
	}
}

func TestGetTag_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")

	_, err := s.GetTag(ctx, "user-1", "nonexistent")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *store.Error, got %T: %v", err, err)
	}
	if storeErr.Code != store.ErrNotFound.Code {
		t.Errorf("expected status %d, got %d", store.ErrNotFound.Code, storeErr.Code)
	}
}

func TestCreateTag_DuplicateNameSameOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")
	insertTestUser(t, s, "user-2")

	t1 := makeTestTag("tag-dup-1", "user-1", "poetry")
	if err := s.CreateTag(ctx, t1); err != nil {
		t.Fatalf("CreateTag t1: %v", err)
	}

	// Same owner, same name fails.
	t2 := makeTestTag("tag-dup-2", "user-1", "poetry")
	err := s.CreateTag(ctx, t2)
	if err == nil {
		t.Fatal("expected error for duplicate name, got nil")
	}
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	// A different owner may reuse the name.
	t3 := makeTestTag("tag-dup-3", "user-2", "poetry")
	if err := s.CreateTag(ctx, t3); err != nil {
		t.Errorf("CreateTag for other owner: %v", err)
	}
}

func TestUpdateTag_Rename(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")

	tag := makeTestTag("tag-r1", "user-1", "old-name")
	if err := s.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	other := makeTestTag("tag-r2", "user-1", "taken")
	if err := s.CreateTag(ctx, other); err != nil {
		t.Fatalf("CreateTag other: %v", err)
	}

	tag.Name = "new-name"
	tag.Touch()
	if err := s.UpdateTag(ctx, tag); err != nil {
		t.Fatalf("UpdateTag: %v", err)
	}

	got, err := s.GetTag(ctx, "user-1", "tag-r1")
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if got.Name != "new-name" {
		t.Errorf("Name: got %q, want %q", got.Name, "new-name")
	}

	// Renaming onto an existing name collides.
	tag.Name = "taken"
	if err := s.UpdateTag(ctx, tag); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestListTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")
	insertTestUser(t, s, "user-2")

	names := []struct {
		id   string
		name string
	}{
		{"tag-l1", "zeugma"},
		{"tag-l2", "anaphora"},
		{"tag-l3", "metaphor"},
	}
	for _, td := range names {
		if err := s.CreateTag(ctx, makeTestTag(td.id, "user-1", td.name)); err != nil {
			t.Fatalf("CreateTag(%s): %v", td.id, err)
		}
	}
	// Another owner's tag must not leak into the list.
	if err := s.CreateTag(ctx, makeTestTag("tag-l4", "user-2", "foreign")); err != nil {
		t.Fatalf("CreateTag foreign: %v", err)
	}

	got, err := s.ListTags(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(got))
	}

	// Verify sorted by name ASC.
	if got[0].Name != "anaphora" {
		t.Errorf("item 0: got name %q, want %q", got[0].Name, "anaphora")
	}
	if got[1].Name != "metaphor" {
		t.Errorf("item 1: got name %q, want %q", got[1].Name, "metaphor")
	}
	if got[2].Name != "zeugma" {
		t.Errorf("item 2: got name %q, want %q", got[2].Name, "zeugma")
	}
}

func TestSetAndGetPromptTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")

	p := makeTestPrompt("prompt-t1", "user-1", "tagged prompt")
	if err := s.CreatePrompt(ctx, p); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	t1 := makeTestTag("tag-pt1", "user-1", "space")
	t2 := makeTestTag("tag-pt2", "user-1", "survival")
	if err := s.CreateTag(ctx, t1); err != nil {
		t.Fatalf("CreateTag t1: %v", err)
	}
	if err := s.CreateTag(ctx, t2); err != nil {
		t.Fatalf("CreateTag t2: %v", err)
	}

	if err := s.SetPromptTags(ctx, "user-1", "prompt-t1", []string{"tag-pt1", "tag-pt2"}); err != nil {
		t.Fatalf("SetPromptTags: %v", err)
	}

	got, err := s.GetPromptTagIDs(ctx, "prompt-t1")
	if err != nil {
		t.Fatalf("GetPromptTagIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tag IDs, got %d", len(got))
	}
	sort.Strings(got)
	if got[0] != "tag-pt1" || got[1] != "tag-pt2" {
		t.Errorf("tags: got %v", got)
	}

	// Replace with a single tag to verify old links are removed.
	if err := s.SetPromptTags(ctx, "user-1", "prompt-t1", []string{"tag-pt2"}); err != nil {
		t.Fatalf("SetPromptTags (replace): %v", err)
	}

	got, err = s.GetPromptTagIDs(ctx, "prompt-t1")
	if err != nil {
		t.Fatalf("GetPromptTagIDs after replace: %v", err)
	}
	if len(got) != 1 || got[0] != "tag-pt2" {
		t.Errorf("tags after replace: got %v, want [tag-pt2]", got)
	}
}

func TestDeleteTag_RemovesLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")

	p := makeTestPrompt("prompt-dt", "user-1", "x")
	if err := s.CreatePrompt(ctx, p); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	tag := makeTestTag("tag-dt", "user-1", "doomed")
	if err := s.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := s.SetPromptTags(ctx, "user-1", "prompt-dt", []string{"tag-dt"}); err != nil {
		t.Fatalf("SetPromptTags: %v", err)
	}

	if err := s.DeleteTag(ctx, "user-1", "tag-dt"); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}

	got, err := s.GetPromptTagIDs(ctx, "prompt-dt")
	if err != nil {
		t.Fatalf("GetPromptTagIDs: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected 0 links after tag delete, got %d", len(got))
	}

	// The prompt survives.
	if _, err := s.GetPrompt(ctx, "user-1", "prompt-dt"); err != nil {
		t.Errorf("prompt should survive tag delete: %v", err)
	}
}

func TestGetPromptIDsForTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")

	// prompt-1: a, b;  prompt-2: b;  prompt-3: a, b, c
	for _, id := range []string{"prompt-1", "prompt-2", "prompt-3"} {
		if err := s.CreatePrompt(ctx, makeTestPrompt(id, "user-1", "x")); err != nil {
			t.Fatalf("CreatePrompt %s: %v", id, err)
		}
	}
	for _, id := range []string{"tag-a", "tag-b", "tag-c"} {
		if err := s.CreateTag(ctx, makeTestTag(id, "user-1", id)); err != nil {
			t.Fatalf("CreateTag %s: %v", id, err)
		}
	}
	links := map[string][]string{
		"prompt-1": {"tag-a", "tag-b"},
		"prompt-2": {"tag-b"},
		"prompt-3": {"tag-a", "tag-b", "tag-c"},
	}
	for promptID, tagIDs := range links {
		if err := s.SetPromptTags(ctx, "user-1", promptID, tagIDs); err != nil {
			t.Fatalf("SetPromptTags %s: %v", promptID, err)
		}
	}

	// OR: any prompt linked to tag-a or tag-c.
	got, err := s.GetPromptIDsForTags(ctx, "user-1", []string{"tag-a", "tag-c"}, domain.TagModeOR)
	if err != nil {
		t.Fatalf("GetPromptIDsForTags OR: %v", err)
	}
	sort.Strings(got)
	if len(got) != 2 || got[0] != "prompt-1" || got[1] != "prompt-3" {
		t.Errorf("OR: got %v, want [prompt-1 prompt-3]", got)
	}

	// AND: prompts linked to both tag-a and tag-c.
	got, err = s.GetPromptIDsForTags(ctx, "user-1", []string{"tag-a", "tag-c"}, domain.TagModeAND)
	if err != nil {
		t.Fatalf("GetPromptIDsForTags AND: %v", err)
	}
	if len(got) != 1 || got[0] != "prompt-3" {
		t.Errorf("AND: got %v, want [prompt-3]", got)
	}

	// No matches yields an empty, non-nil set.
	got, err = s.GetPromptIDsForTags(ctx, "user-1", []string{"tag-c"}, domain.TagModeAND)
	if err != nil {
		t.Fatalf("GetPromptIDsForTags single: %v", err)
	}
	if len(got) != 1 || got[0] != "prompt-3" {
		t.Errorf("single AND: got %v, want [prompt-3]", got)
	}
}
