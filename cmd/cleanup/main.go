// Package main provides a maintenance tool that reconciles the object
// store against the database.
//
// Image objects can be orphaned when a prompt delete removes its rows
// but an object removal fails partway. This walks the object store,
// deletes any object no image row references, and sweeps expired
// sessions while it is at it.
//
// Usage:
//
//	DATA_PATH=~/promptvault go run ./cmd/cleanup
//	DATA_PATH=~/promptvault go run ./cmd/cleanup --dry-run
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/promptvault/promptvault-server/internal/auth"
	"github.com/promptvault/promptvault-server/internal/storage"
	"github.com/promptvault/promptvault-server/internal/store/sqlite"
)

var dryRun = flag.Bool("dry-run", false, "Report orphans without deleting anything")

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/promptvault")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := sqlite.Open(filepath.Join(dataPath, "promptvault.db"), logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	keyBytes, err := auth.LoadOrGenerateKey(dataPath)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}

	signer, err := storage.NewSigner(keyBytes)
	if err != nil {
		log.Fatalf("Failed to create signer: %v", err)
	}

	objects, err := storage.NewDiskStore(filepath.Join(dataPath, "objects"), "/api/v1/objects", signer)
	if err != nil {
		log.Fatalf("Failed to open object store: %v", err)
	}

	ctx := context.Background()

	images, err := s.ListAllImages(ctx)
	if err != nil {
		log.Fatalf("Failed to list image rows: %v", err)
	}

	referenced := make(map[string]bool, len(images))
	for _, img := range images {
		referenced[img.StoragePath] = true
	}

	keys, err := objects.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list objects: %v", err)
	}

	fmt.Printf("Object store: %d objects, %d referenced by image rows\n", len(keys), len(referenced))

	orphans := 0
	for _, key := range keys {
		if referenced[key] {
			continue
		}
		orphans++

		if *dryRun {
			fmt.Printf("orphan: %s\n", key)
			continue
		}

		if err := objects.Remove(ctx, key); err != nil {
			log.Printf("Failed to remove %s: %v", key, err)
			continue
		}
		fmt.Printf("removed: %s\n", key)
	}

	if *dryRun {
		fmt.Printf("Dry run: %d orphaned objects found\n", orphans)
	} else {
		fmt.Printf("Removed %d orphaned objects\n", orphans)
	}

	count, err := s.DeleteExpiredSessions(ctx)
	if err != nil {
		log.Fatalf("Failed to sweep sessions: %v", err)
	}
	fmt.Printf("Deleted %d expired sessions\n", count)
}
