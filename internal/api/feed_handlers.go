package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptvault/promptvault-server/internal/service"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Get feed",
		Description: "Returns one page of the caller's prompts, optionally filtered by tags",
		Tags:        []string{"Feed"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFeed)
}

// FeedInput carries the feed query parameters.
type FeedInput struct {
	Page    int    `query:"page" minimum:"1" doc:"Page number, 1-based"`
	Sort    string `query:"sort" enum:"created_at,updated_at" doc:"Sort field; defaults to saved preference"`
	Dir     string `query:"dir" enum:"asc,desc" doc:"Sort direction; defaults to saved preference"`
	Tags    string `query:"tags" doc:"Comma-separated tag IDs to filter by"`
	TagMode string `query:"tag_mode" enum:"or,and" doc:"Tag match mode; or matches any, and matches all"`
}

// FeedOutput wraps a feed page for Huma.
type FeedOutput struct {
	Body service.FeedPage
}

func (s *Server) handleGetFeed(ctx context.Context, input *FeedInput) (*FeedOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Feed.GetFeed(ctx, sess, service.FeedRequest{
		Page:      input.Page,
		SortField: input.Sort,
		SortDir:   input.Dir,
		TagIDs:    splitTagIDs(input.Tags),
		TagMode:   input.TagMode,
	})
	if err != nil {
		return nil, err
	}

	return &FeedOutput{Body: *page}, nil
}

func splitTagIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
