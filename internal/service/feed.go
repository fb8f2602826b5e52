package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/promptvault/promptvault-server/internal/domain"
	"github.com/promptvault/promptvault-server/internal/prefs"
	"github.com/promptvault/promptvault-server/internal/storage"
	"github.com/promptvault/promptvault-server/internal/store"
)

// FeedService serves paginated, tag-filtered pages of a user's prompts.
// Pages are cached per owner; every mutation elsewhere invalidates the
// owner's entries.
type FeedService struct {
	store    store.Store
	prefs    *prefs.Store
	resolver *storage.Resolver
	cache    *ViewCache
	logger   *slog.Logger
}

// NewFeedService creates a new feed service.
func NewFeedService(
	store store.Store,
	prefsStore *prefs.Store,
	resolver *storage.Resolver,
	cache *ViewCache,
	logger *slog.Logger,
) *FeedService {
	return &FeedService{
		store:    store,
		prefs:    prefsStore,
		resolver: resolver,
		cache:    cache,
		logger:   logger,
	}
}

// FeedRequest describes one page of the feed. Page is 1-based; zero
// falls back to the first page. Zero-valued sort fields fall back to
// the caller's saved preferences.
type FeedRequest struct {
	Page      int
	SortField string
	SortDir   string
	TagIDs    []string
	TagMode   string // "or" (default) or "and"
}

// FeedItem is one prompt as the feed presents it: content, tag names
// for chip rendering, and a resolved primary image URL.
type FeedItem struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	BlurHash  string    `json:"blur_hash,omitempty"`
	TagIDs    []string  `json:"tag_ids"`
	TagNames  []string  `json:"tag_names"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FeedPage is one page of feed items plus paging metadata.
type FeedPage struct {
	Items   []FeedItem `json:"items"`
	Page    int        `json:"page"`
	HasMore bool       `json:"has_more"`
	Total   int        `json:"total"`
}

// GetFeed returns one page of the caller's prompts. Sort falls back to
// saved preferences, tag filtering resolves before pagination, and a
// full page implies more may follow.
func (s *FeedService) GetFeed(ctx context.Context, sess *Session, req FeedRequest) (*FeedPage, error) {
	if err := s.applySortDefaults(ctx, sess, &req); err != nil {
		return nil, err
	}

	mode := domain.ParseTagMode(req.TagMode)

	// The request page is 1-based; the store offsets from zero.
	if req.Page < 1 {
		req.Page = 1
	}

	key := feedCacheKey(req, mode)
	if cached, ok := s.cache.Get(sess.UserID, key); ok {
		if page, ok := cached.(*FeedPage); ok {
			return page, nil
		}
	}

	q := store.FeedQuery{
		SortField: req.SortField,
		SortDir:   req.SortDir,
		Page:      req.Page - 1,
		PageSize:  store.DefaultPageSize,
	}
	q.Normalize()

	// Resolve the tag filter to a prompt ID set before paginating, so
	// page boundaries stay stable under the filter.
	filtered := len(req.TagIDs) > 0
	if filtered {
		ids, err := s.store.GetPromptIDsForTags(ctx, sess.UserID, req.TagIDs, mode)
		if err != nil {
			return nil, fmt.Errorf("resolve tag filter: %w", err)
		}
		q.IDs = ids
	}

	prompts, err := s.store.ListPrompts(ctx, sess.UserID, q)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	var total int
	if filtered {
		total = len(q.IDs)
	} else {
		total, err = s.store.CountPrompts(ctx, sess.UserID)
		if err != nil {
			return nil, fmt.Errorf("count prompts: %w", err)
		}
	}

	index, err := s.buildTagIndex(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	items := make([]FeedItem, 0, len(prompts))
	for _, p := range prompts {
		items = append(items, FeedItem{
			ID:        p.ID,
			Content:   p.Content,
			ImageURL:  s.resolver.Resolve(p.ImagePath),
			BlurHash:  s.primaryBlurHash(ctx, p),
			TagIDs:    index.TagIDs(p.ID),
			TagNames:  index.TagNames(p.ID),
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}

	page := &FeedPage{
		Items:   items,
		Page:    req.Page,
		HasMore: len(items) == q.PageSize,
		Total:   total,
	}

	s.cache.Put(sess.UserID, key, page)
	return page, nil
}

// applySortDefaults fills unset sort fields from saved preferences.
func (s *FeedService) applySortDefaults(ctx context.Context, sess *Session, req *FeedRequest) error {
	if req.SortField != "" && req.SortDir != "" {
		return nil
	}

	p, err := s.prefs.Get(ctx, sess.UserID)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	if req.SortField == "" {
		req.SortField = p.SortField
	}
	if req.SortDir == "" {
		req.SortDir = p.SortDir
	}
	return nil
}

// buildTagIndex loads the caller's tags and links into a lookup for
// annotating feed items.
func (s *FeedService) buildTagIndex(ctx context.Context, ownerID string) (*domain.TagIndex, error) {
	tags, err := s.store.ListTags(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	links, err := s.store.ListTagLinks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tag links: %w", err)
	}
	return domain.NewTagIndex(tags, links), nil
}

// primaryBlurHash finds the blur hash for the prompt's primary image,
// when one exists.
func (s *FeedService) primaryBlurHash(ctx context.Context, p *domain.Prompt) string {
	if p.ImagePath == "" {
		return ""
	}
	imgs, err := s.store.ListPromptImages(ctx, p.ID)
	if err != nil {
		return ""
	}
	for _, img := range imgs {
		if img.StoragePath == p.ImagePath {
			return img.BlurHash
		}
	}
	return ""
}

// feedCacheKey builds a deterministic cache key from the resolved page
// parameters. Tag IDs are sorted so selection order doesn't fragment
// the cache.
func feedCacheKey(req FeedRequest, mode domain.TagMode) string {
	tagIDs := append([]string(nil), req.TagIDs...)
	sort.Strings(tagIDs)
	return fmt.Sprintf("feed:%d:%s:%s:%s:%s",
		req.Page, req.SortField, req.SortDir, mode, strings.Join(tagIDs, ","))
}
