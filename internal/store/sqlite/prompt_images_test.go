package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/promptvault/promptvault-server/internal/domain"
	"github.com/promptvault/promptvault-server/internal/store"
)

func makeTestImage(id, promptID, ownerID, path string, at time.Time) *domain.PromptImage {
	return &domain.PromptImage{
		ID:          id,
		PromptID:    promptID,
		OwnerID:     ownerID,
		StoragePath: path,
		BlurHash:    "LEHV6nWB2yk8pyo0adR*.7kCMdnj",
		Width:       512,
		Height:      384,
		CreatedAt:   at,
	}
}

func TestCreateAndListPromptImages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")

	p := makeTestPrompt("prompt-img", "user-1", "illustrated")
	if err := s.CreatePrompt(ctx, p); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	base := time.Now().Add(-time.Minute)
	first := makeTestImage("img-1", "prompt-img", "user-1", "user-1/1-a.jpg", base)
	second := makeTestImage("img-2", "prompt-img", "user-1", "user-1/2-b.jpg", base.Add(time.Second))

	if err := s.CreatePromptImage(ctx, second); err != nil {
		t.Fatalf("CreatePromptImage second: %v", err)
	}
	if err := s.CreatePromptImage(ctx, first); err != nil {
		t.Fatalf("CreatePromptImage first: %v", err)
	}

	got, err := s.ListPromptImages(ctx, "prompt-img")
	if err != nil {
		t.Fatalf("ListPromptImages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 images, got %d", len(got))
	}

	// Upload order, oldest first.
	if got[0].ID != "img-1" || got[1].ID != "img-2" {
		t.Errorf("order: got %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].BlurHash != first.BlurHash {
		t.Errorf("BlurHash: got %q, want %q", got[0].BlurHash, first.BlurHash)
	}
	if got[0].Width != 512 || got[0].Height != 384 {
		t.Errorf("dimensions: got %dx%d", got[0].Width, got[0].Height)
	}
}

func TestGetPromptImage_OwnerScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")
	insertTestUser(t, s, "user-2")

	p := makeTestPrompt("prompt-img2", "user-1", "x")
	if err := s.CreatePrompt(ctx, p); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	img := makeTestImage("img-own", "prompt-img2", "user-1", "user-1/3-c.jpg", time.Now())
	if err := s.CreatePromptImage(ctx, img); err != nil {
		t.Fatalf("CreatePromptImage: %v", err)
	}

	if _, err := s.GetPromptImage(ctx, "user-1", "img-own"); err != nil {
		t.Fatalf("GetPromptImage own: %v", err)
	}
	if _, err := s.GetPromptImage(ctx, "user-2", "img-own"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if err := s.DeletePromptImage(ctx, "user-2", "img-own"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("delete by foreign owner: expected ErrNotFound, got %v", err)
	}
}

func TestDeletePromptImage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")

	p := makeTestPrompt("prompt-img3", "user-1", "x")
	if err := s.CreatePrompt(ctx, p); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	img := makeTestImage("img-gone", "prompt-img3", "user-1", "user-1/4-d.jpg", time.Now())
	if err := s.CreatePromptImage(ctx, img); err != nil {
		t.Fatalf("CreatePromptImage: %v", err)
	}

	if err := s.DeletePromptImage(ctx, "user-1", "img-gone"); err != nil {
		t.Fatalf("DeletePromptImage: %v", err)
	}
	if _, err := s.GetPromptImage(ctx, "user-1", "img-gone"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListAllImages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")
	insertTestUser(t, s, "user-2")

	p1 := makeTestPrompt("prompt-a", "user-1", "x")
	p2 := makeTestPrompt("prompt-b", "user-2", "y")
	if err := s.CreatePrompt(ctx, p1); err != nil {
		t.Fatalf("CreatePrompt p1: %v", err)
	}
	if err := s.CreatePrompt(ctx, p2); err != nil {
		t.Fatalf("CreatePrompt p2: %v", err)
	}

	now := time.Now()
	if err := s.CreatePromptImage(ctx, makeTestImage("img-a", "prompt-a", "user-1", "user-1/a.jpg", now)); err != nil {
		t.Fatalf("CreatePromptImage a: %v", err)
	}
	if err := s.CreatePromptImage(ctx, makeTestImage("img-b", "prompt-b", "user-2", "user-2/b.jpg", now)); err != nil {
		t.Fatalf("CreatePromptImage b: %v", err)
	}

	got, err := s.ListAllImages(ctx)
	if err != nil {
		t.Fatalf("ListAllImages: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 images across owners, got %d", len(got))
	}
}
