package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptvault/promptvault-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchPrompts",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search prompts",
		Description: "Full-text search over the caller's prompt content",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)
}

// SearchInput carries the search query parameters.
type SearchInput struct {
	Query  string `query:"q" doc:"Search query"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" doc:"Maximum hits to return, default 20"`
	Offset int    `query:"offset" minimum:"0" doc:"Hits to skip"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body service.SearchResults
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	results, err := s.services.Search.Search(ctx, sess, input.Query, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *results}, nil
}
