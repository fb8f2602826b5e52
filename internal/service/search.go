package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/promptvault/promptvault-server/internal/domain"
	domainerrors "github.com/promptvault/promptvault-server/internal/errors"
	"github.com/promptvault/promptvault-server/internal/search"
	"github.com/promptvault/promptvault-server/internal/store"
)

// SearchService runs full-text queries over a user's prompts and
// hydrates the hits from the store.
type SearchService struct {
	store  store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store store.Store, index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// SearchHit is one search match with its prompt loaded.
type SearchHit struct {
	Prompt    *domain.Prompt    `json:"prompt"`
	Score     float64           `json:"score"`
	Fragments map[string]string `json:"fragments,omitempty"`
}

// SearchResults is one page of search matches.
type SearchResults struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// Search runs a full-text query scoped to the caller's prompts.
func (s *SearchService) Search(ctx context.Context, sess *Session, query string, limit, offset int) (*SearchResults, error) {
	if query == "" {
		return nil, domainerrors.Validation("search query is required")
	}

	result, err := s.index.Search(ctx, sess.UserID, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := &SearchResults{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   make([]SearchHit, 0, len(result.Hits)),
	}

	for _, hit := range result.Hits {
		prompt, err := s.store.GetPrompt(ctx, sess.UserID, hit.PromptID)
		if err != nil {
			// Index entry outlived its row; skip and let the next
			// reindex clean it up.
			s.logger.Warn("search hit has no prompt row", "prompt_id", hit.PromptID, "error", err)
			continue
		}
		results.Hits = append(results.Hits, SearchHit{
			Prompt:    prompt,
			Score:     hit.Score,
			Fragments: hit.Fragments,
		})
	}

	return results, nil
}

// ReindexAll rebuilds the search index from the store. Called at
// startup when the index was recreated, and available as a manual
// recovery step.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	prompts, err := s.store.ListAllPrompts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list prompts for reindex: %w", err)
	}

	if err := s.index.IndexPrompts(prompts); err != nil {
		return 0, fmt.Errorf("reindex prompts: %w", err)
	}

	s.logger.Info("search index rebuilt", "prompts", len(prompts))
	return len(prompts), nil
}
