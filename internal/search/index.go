// Package search maintains a Bleve full-text index over prompt content.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/promptvault/promptvault-server/internal/domain"
)

// mappingVersion is incremented whenever the index mapping changes.
// This triggers an automatic rebuild on startup when the version doesn't match.
const mappingVersion = "1"

// Document is what gets indexed per prompt.
type Document struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// Index wraps a Bleve index with prompt-specific operations.
//
// Thread safety: all public methods are safe for concurrent use. The
// mutex protects against index corruption during rebuild operations.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations
}

// buildIndexMapping creates the Bleve mapping for prompt documents:
// full-text content with English stemming, exact-match owner scoping,
// and a numeric timestamp for recency sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = en.AnalyzerName
	contentFieldMapping.Store = true
	contentFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	ownerFieldMapping := bleve.NewTextFieldMapping()
	ownerFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("owner_id", ownerFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// New creates or opens the prompt search index. A corrupted or
// outdated index is removed and recreated; callers reindex from the
// store afterwards.
func New(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexPath := filepath.Join(opts.DataPath, "search.bleve")
	versionPath := filepath.Join(opts.DataPath, "search.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil {
			logger.Info("search index has no version file, will rebuild with current mapping",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		} else if string(existingVersion) != mappingVersion {
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &Index{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexPrompt adds or updates a prompt in the index.
func (s *Index) IndexPrompt(p *domain.Prompt) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := map[string]any{
		"id":         p.ID,
		"owner_id":   p.OwnerID,
		"content":    p.Content,
		"created_at": p.CreatedAt.UnixMilli(),
	}
	return s.index.Index(p.ID, doc)
}

// IndexPrompts indexes multiple prompts in a batch. Used when
// rebuilding the index from the store on startup.
func (s *Index) IndexPrompts(prompts []*domain.Prompt) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, p := range prompts {
		doc := map[string]any{
			"id":         p.ID,
			"owner_id":   p.OwnerID,
			"content":    p.Content,
			"created_at": p.CreatedAt.UnixMilli(),
		}
		if err := batch.Index(p.ID, doc); err != nil {
			return fmt.Errorf("batch index %s: %w", p.ID, err)
		}
	}
	return s.index.Batch(batch)
}

// DeletePrompt removes a prompt from the index.
func (s *Index) DeletePrompt(promptID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(promptID)
}

// DocumentCount returns the total number of indexed prompts.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Hit is a single search match.
type Hit struct {
	PromptID  string            `json:"prompt_id"`
	Score     float64           `json:"score"`
	Fragments map[string]string `json:"fragments,omitempty"`
}

// Result holds one page of search matches.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Search runs a full-text query over one owner's prompts. The owner
// term is a hard filter; results never cross user boundaries.
func (s *Index) Search(ctx context.Context, ownerID, queryString string, limit, offset int) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	ownerQuery := bleve.NewTermQuery(ownerID)
	ownerQuery.SetField("owner_id")

	contentQuery := bleve.NewMatchQuery(queryString)
	contentQuery.SetField("content")

	searchQuery := bleve.NewConjunctionQuery(ownerQuery, contentQuery)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, offset, false)
	searchRequest.Highlight = bleve.NewHighlight()
	searchRequest.Highlight.AddField("content")

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  queryString,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			PromptID: hit.ID,
			Score:    hit.Score,
		}
		if len(hit.Fragments) > 0 {
			h.Fragments = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Fragments[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}
