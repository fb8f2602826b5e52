// Package storage stores uploaded image objects on disk and issues
// short-lived signed URLs for retrieving them.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ObjectStore is the interface the rest of the server uses to persist
// and retrieve uploaded objects.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	SignedURL(key string, ttl time.Duration) (string, error)
	List(ctx context.Context) ([]string, error)
}

// DiskStore keeps objects under a base directory and signs retrieval
// URLs with grant tokens. Thread-safe for concurrent operations.
type DiskStore struct {
	basePath string
	baseURL  string
	signer   *Signer
	mu       sync.RWMutex
}

// NewDiskStore creates an object store rooted at basePath. Signed URLs
// are built against baseURL (e.g. "/api/v1/objects").
func NewDiskStore(basePath, baseURL string, signer *Signer) (*DiskStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %w", err)
	}

	return &DiskStore{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		signer:   signer,
	}, nil
}

// resolve maps an object key onto the filesystem, rejecting keys that
// would escape the base directory.
func (s *DiskStore) resolve(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key cannot be empty")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.basePath, clean), nil
}

// Upload writes object data, creating parent directories as needed.
func (s *DiskStore) Upload(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("object data cannot be empty")
	}

	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

// Open returns a reader over a stored object.
func (s *DiskStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object not found for %s: %w", key, err)
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return f, nil
}

// Remove deletes a stored object. Removing a missing object is not an
// error.
func (s *DiskStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// SignedURL builds a retrieval URL carrying a grant token that expires
// after ttl.
func (s *DiskStore) SignedURL(key string, ttl time.Duration) (string, error) {
	grant, err := s.signer.Sign(key, ttl)
	if err != nil {
		return "", fmt.Errorf("sign object url: %w", err)
	}
	return fmt.Sprintf("%s/%s?grant=%s", s.baseURL, key, url.QueryEscape(grant)), nil
}

// List walks the store and returns every object key. Used by the
// cleanup tool to find orphaned objects.
func (s *DiskStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	err := filepath.WalkDir(s.basePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	return keys, nil
}
