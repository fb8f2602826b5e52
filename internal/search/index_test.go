package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/promptvault/promptvault-server/internal/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(Options{DataPath: t.TempDir(), Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func makePrompt(id, ownerID, content string) *domain.Prompt {
	now := time.Now()
	return &domain.Prompt{
		ID: id, OwnerID: ownerID, Content: content,
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestIndexAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	prompts := []*domain.Prompt{
		makePrompt("prompt-1", "user-1", "Write a short story about a lighthouse keeper"),
		makePrompt("prompt-2", "user-1", "Generate a recipe for sourdough bread"),
		makePrompt("prompt-3", "user-1", "Describe a lighthouse at midnight in winter"),
	}
	if err := idx.IndexPrompts(prompts); err != nil {
		t.Fatalf("IndexPrompts: %v", err)
	}

	result, err := idx.Search(ctx, "user-1", "lighthouse", 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("Total: got %d, want 2", result.Total)
	}
	ids := map[string]bool{}
	for _, h := range result.Hits {
		ids[h.PromptID] = true
	}
	if !ids["prompt-1"] || !ids["prompt-3"] {
		t.Errorf("hits: got %v", ids)
	}
}

func TestSearch_OwnerScoped(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.IndexPrompt(makePrompt("prompt-a", "user-1", "dragons and castles")); err != nil {
		t.Fatalf("IndexPrompt a: %v", err)
	}
	if err := idx.IndexPrompt(makePrompt("prompt-b", "user-2", "dragons and dungeons")); err != nil {
		t.Fatalf("IndexPrompt b: %v", err)
	}

	result, err := idx.Search(ctx, "user-1", "dragons", 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("Total: got %d, want 1", result.Total)
	}
	if result.Hits[0].PromptID != "prompt-a" {
		t.Errorf("hit: got %s, want prompt-a", result.Hits[0].PromptID)
	}
}

func TestDeletePrompt(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.IndexPrompt(makePrompt("prompt-x", "user-1", "ephemeral content")); err != nil {
		t.Fatalf("IndexPrompt: %v", err)
	}
	if err := idx.DeletePrompt("prompt-x"); err != nil {
		t.Fatalf("DeletePrompt: %v", err)
	}

	result, err := idx.Search(ctx, "user-1", "ephemeral", 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("Total after delete: got %d, want 0", result.Total)
	}
}

func TestReindexUpdatesContent(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	p := makePrompt("prompt-u", "user-1", "original wording")
	if err := idx.IndexPrompt(p); err != nil {
		t.Fatalf("IndexPrompt: %v", err)
	}

	p.Content = "revised phrasing"
	if err := idx.IndexPrompt(p); err != nil {
		t.Fatalf("IndexPrompt update: %v", err)
	}

	result, err := idx.Search(ctx, "user-1", "original", 10, 0)
	if err != nil {
		t.Fatalf("Search old: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("old wording still matches: %d hits", result.Total)
	}

	result, err = idx.Search(ctx, "user-1", "revised", 10, 0)
	if err != nil {
		t.Fatalf("Search new: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("new wording: got %d hits, want 1", result.Total)
	}
}

func TestReopenExistingIndex(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	idx, err := New(Options{DataPath: dir, Logger: logger})
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	if err := idx.IndexPrompt(makePrompt("prompt-p", "user-1", "persistent entry")); err != nil {
		t.Fatalf("IndexPrompt: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	idx2, err := New(Options{DataPath: dir, Logger: logger})
	if err != nil {
		t.Fatalf("reopen index: %v", err)
	}
	defer idx2.Close()

	n, err := idx2.DocumentCount()
	if err != nil {
		t.Fatalf("DocumentCount: %v", err)
	}
	if n != 1 {
		t.Errorf("count after reopen: got %d, want 1", n)
	}
}
