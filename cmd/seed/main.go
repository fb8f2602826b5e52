// Package main provides a tool to seed the database with demo prompts.
//
// It creates a demo user (unless one already exists), a handful of
// tags, and a batch of tagged prompts so the feed, filters, and search
// have something to show.
//
// Usage:
//
//	DATA_PATH=~/promptvault go run ./cmd/seed
//	DATA_PATH=~/promptvault go run ./cmd/seed --count 50
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/promptvault/promptvault-server/internal/auth"
	"github.com/promptvault/promptvault-server/internal/domain"
	"github.com/promptvault/promptvault-server/internal/id"
	"github.com/promptvault/promptvault-server/internal/store"
	"github.com/promptvault/promptvault-server/internal/store/sqlite"
)

var (
	count = flag.Int("count", 30, "Number of prompts to create")
	email = flag.String("email", "demo@promptvault.local", "Seed user email")
)

var subjects = []string{
	"a ruined lighthouse on a basalt cliff",
	"a night market under paper lanterns",
	"an overgrown subway entrance",
	"a glass greenhouse in winter",
	"a desert caravan at blue hour",
	"a tidal pool full of bioluminescence",
	"an abandoned observatory dome",
	"a floating village on stilts",
}

var styles = []string{
	"soft volumetric light, muted palette",
	"heavy film grain, expired stock",
	"isometric, clean vector shapes",
	"ink wash with a single red accent",
	"long exposure, motion blur on water",
	"harsh noon shadows, high contrast",
}

var tagNames = []string{"landscape", "urban", "night", "experiment", "favorite"}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/promptvault")
	}

	dbPath := filepath.Join(dataPath, "promptvault.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	user, err := ensureUser(ctx, s, *email)
	if err != nil {
		log.Fatalf("Failed to create seed user: %v", err)
	}
	fmt.Printf("Seeding as user: %s (%s)\n", user.Email, user.ID)

	tagIDs, err := ensureTags(ctx, s, user.ID)
	if err != nil {
		log.Fatalf("Failed to create tags: %v", err)
	}
	fmt.Printf("Tags ready: %d\n", len(tagIDs))

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	created := 0
	for i := 0; i < *count; i++ {
		content := fmt.Sprintf("%s, %s",
			subjects[rng.Intn(len(subjects))],
			styles[rng.Intn(len(styles))])

		promptID, err := id.Generate("prompt")
		if err != nil {
			log.Fatalf("Failed to generate ID: %v", err)
		}

		// Spread creation times over the past month so sorting is visible.
		createdAt := time.Now().UTC().Add(-time.Duration(rng.Intn(30*24)) * time.Hour)

		p := &domain.Prompt{
			ID:        promptID,
			OwnerID:   user.ID,
			Content:   content,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
		if err := s.CreatePrompt(ctx, p); err != nil {
			log.Printf("Failed to create prompt: %v", err)
			continue
		}

		// Zero to three random tags per prompt.
		var picks []string
		for _, tagID := range tagIDs {
			if rng.Intn(len(tagIDs)) == 0 {
				picks = append(picks, tagID)
			}
		}
		if len(picks) > 0 {
			if err := s.SetPromptTags(ctx, user.ID, p.ID, picks); err != nil {
				log.Printf("Failed to tag prompt: %v", err)
			}
		}

		created++
	}

	fmt.Printf("Done: %d prompts created\n", created)
	fmt.Println("Restart the server (or wait for reindex) to pick them up in search.")
}

func ensureUser(ctx context.Context, s *sqlite.Store, email string) (*domain.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword("DemoPassword123!")
	if err != nil {
		return nil, err
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user = &domain.User{
		ID:           userID,
		Email:        email,
		DisplayName:  "Demo User",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	fmt.Println("Created demo user with password: DemoPassword123!")
	return user, nil
}

func ensureTags(ctx context.Context, s *sqlite.Store, ownerID string) ([]string, error) {
	existing, err := s.ListTags(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	have := make(map[string]string, len(existing))
	for _, t := range existing {
		have[t.Name] = t.ID
	}

	var ids []string
	for _, name := range tagNames {
		if tagID, ok := have[name]; ok {
			ids = append(ids, tagID)
			continue
		}

		tagID, err := id.Generate("tag")
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		t := &domain.Tag{
			ID:        tagID,
			OwnerID:   ownerID,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.CreateTag(ctx, t); err != nil {
			return nil, err
		}
		ids = append(ids, tagID)
	}

	return ids, nil
}
