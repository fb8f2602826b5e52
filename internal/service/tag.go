package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/promptvault/promptvault-server/internal/domain"
	domainerrors "github.com/promptvault/promptvault-server/internal/errors"
	"github.com/promptvault/promptvault-server/internal/id"
	"github.com/promptvault/promptvault-server/internal/store"
	"github.com/promptvault/promptvault-server/internal/throttle"
)

// maxTagNameLen bounds tag names. Names are trimmed but otherwise kept
// verbatim; comparison is case-sensitive.
const maxTagNameLen = 50

// TagService manages a user's tag vocabulary.
type TagService struct {
	store   store.Store
	limiter *throttle.Limiter
	cache   *ViewCache
	logger  *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, limiter *throttle.Limiter, cache *ViewCache, logger *slog.Logger) *TagService {
	return &TagService{
		store:   store,
		limiter: limiter,
		cache:   cache,
		logger:  logger,
	}
}

// ListTags returns all of the caller's tags, sorted by name.
func (s *TagService) ListTags(ctx context.Context, sess *Session) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx, sess.UserID)
}

// CreateTag creates a new tag. Names are unique per owner.
func (s *TagService) CreateTag(ctx context.Context, sess *Session, name string) (*domain.Tag, error) {
	if !s.limiter.Allow(throttleKey(sess.UserID, actionTag)) {
		return nil, domainerrors.ErrCooldown
	}

	name, err := normalizeTagName(name)
	if err != nil {
		return nil, err
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	now := time.Now().UTC()
	tag := &domain.Tag{
		ID:        tagID,
		OwnerID:   sess.UserID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateTag(ctx, tag); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists(fmt.Sprintf("tag %q already exists", name))
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.cache.InvalidateOwner(sess.UserID)
	s.logger.Info("tag created", "tag_id", tagID, "name", name, "user_id", sess.UserID)

	return tag, nil
}

// RenameTag changes a tag's name. Prompts keep the tag through the
// rename since links reference the tag ID.
func (s *TagService) RenameTag(ctx context.Context, sess *Session, tagID, newName string) (*domain.Tag, error) {
	if !s.limiter.Allow(throttleKey(sess.UserID, actionTag)) {
		return nil, domainerrors.ErrCooldown
	}

	newName, err := normalizeTagName(newName)
	if err != nil {
		return nil, err
	}

	tag, err := s.store.GetTag(ctx, sess.UserID, tagID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, err
	}

	tag.Name = newName
	tag.Touch()

	if err := s.store.UpdateTag(ctx, tag); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists(fmt.Sprintf("tag %q already exists", newName))
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}

	s.cache.InvalidateOwner(sess.UserID)
	s.logger.Info("tag renamed", "tag_id", tagID, "name", newName, "user_id", sess.UserID)

	return tag, nil
}

// DeleteTag removes a tag and its links. Tagged prompts survive,
// untagged.
func (s *TagService) DeleteTag(ctx context.Context, sess *Session, tagID string) error {
	if !s.limiter.Allow(throttleKey(sess.UserID, actionTag)) {
		return domainerrors.ErrCooldown
	}

	if err := s.store.DeleteTag(ctx, sess.UserID, tagID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("tag not found")
		}
		return fmt.Errorf("delete tag: %w", err)
	}

	s.cache.InvalidateOwner(sess.UserID)
	s.logger.Info("tag deleted", "tag_id", tagID, "user_id", sess.UserID)
	return nil
}

// normalizeTagName trims whitespace and enforces length limits.
func normalizeTagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domainerrors.Validation("tag name is required")
	}
	if len(name) > maxTagNameLen {
		return "", domainerrors.Validationf("tag name exceeds %d characters", maxTagNameLen)
	}
	return name, nil
}
