// Package store defines the persistence interface for the PromptVault server.
package store

import (
	"context"

	"github.com/promptvault/promptvault-server/internal/domain"
)

// Store defines the interface for all persistence operations.
// Every prompt, tag, and image row is scoped to its owning user; methods
// that take an ownerID only ever see that owner's rows.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Prompts
	CreatePrompt(ctx context.Context, p *domain.Prompt) error
	GetPrompt(ctx context.Context, ownerID, id string) (*domain.Prompt, error)
	UpdatePrompt(ctx context.Context, p *domain.Prompt) error
	DeletePrompt(ctx context.Context, ownerID, id string) error
	ListPrompts(ctx context.Context, ownerID string, q FeedQuery) ([]*domain.Prompt, error)
	CountPrompts(ctx context.Context, ownerID string) (int, error)
	ListAllPrompts(ctx context.Context) ([]*domain.Prompt, error)

	// Tags
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTag(ctx context.Context, ownerID, id string) (*domain.Tag, error)
	GetTagByName(ctx context.Context, ownerID, name string) (*domain.Tag, error)
	UpdateTag(ctx context.Context, t *domain.Tag) error
	DeleteTag(ctx context.Context, ownerID, id string) error
	ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error)

	// Prompt-tag links
	SetPromptTags(ctx context.Context, ownerID, promptID string, tagIDs []string) error
	GetPromptTagIDs(ctx context.Context, promptID string) ([]string, error)
	ListTagLinks(ctx context.Context, ownerID string) ([]*domain.PromptTagLink, error)
	GetPromptIDsForTags(ctx context.Context, ownerID string, tagIDs []string, mode domain.TagMode) ([]string, error)

	// Prompt images
	CreatePromptImage(ctx context.Context, img *domain.PromptImage) error
	GetPromptImage(ctx context.Context, ownerID, id string) (*domain.PromptImage, error)
	ListPromptImages(ctx context.Context, promptID string) ([]*domain.PromptImage, error)
	DeletePromptImage(ctx context.Context, ownerID, id string) error
	ListAllImages(ctx context.Context) ([]*domain.PromptImage, error)
}
