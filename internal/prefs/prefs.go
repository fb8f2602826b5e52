// Package prefs stores per-user display preferences in a small Badger
// database, separate from the relational prompt data.
package prefs

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const prefsPrefix = "prefs:"

// Preferences holds the display settings the client persists between
// visits. Sort settings feed the feed's default ordering.
type Preferences struct {
	UserID    string `json:"user_id"`
	Theme     string `json:"theme"`
	ViewMode  string `json:"view_mode"`
	Density   string `json:"density"`
	SortField string `json:"sort_field"`
	SortDir   string `json:"sort_dir"`
}

// Defaults returns the preferences a user starts with.
func Defaults(userID string) *Preferences {
	return &Preferences{
		UserID:    userID,
		Theme:     "system",
		ViewMode:  "grid",
		Density:   "comfortable",
		SortField: "created_at",
		SortDir:   "desc",
	}
}

// Store wraps a Badger database holding preference records.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open creates a preference store at the given path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves a user's preferences, falling back to defaults when the
// user has never saved any.
func (s *Store) Get(ctx context.Context, userID string) (*Preferences, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := prefsPrefix + userID
	var p Preferences

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return badger.ErrKeyNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Defaults(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Put creates or replaces a user's preferences.
func (s *Store) Put(ctx context.Context, p *Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	key := prefsPrefix + p.UserID
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Delete removes a user's preferences, reverting them to defaults.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := prefsPrefix + userID
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}
