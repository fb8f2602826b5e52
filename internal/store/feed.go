package store

// Feed page size. Every page the feed serves holds at most this many rows.
const DefaultPageSize = 24

// Sort fields accepted by FeedQuery.
const (
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
)

// Sort directions accepted by FeedQuery.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// FeedQuery describes one page of the prompt feed.
// IDs, when non-nil, restricts the page to the given prompt IDs; the
// tag filter resolves its matching set first and passes it down here.
type FeedQuery struct {
	SortField string   // created_at or updated_at
	SortDir   string   // asc or desc
	IDs       []string // Optional prompt ID filter (nil = no filter)
	Page      int      // Zero-based page index
	PageSize  int
}

// Normalize clamps the query to valid values. Unknown sort fields fall
// back to created_at descending, matching the feed's default ordering.
func (q *FeedQuery) Normalize() {
	if q.SortField != SortByCreatedAt && q.SortField != SortByUpdatedAt {
		q.SortField = SortByCreatedAt
	}
	if q.SortDir != SortAsc && q.SortDir != SortDesc {
		q.SortDir = SortDesc
	}
	if q.Page < 0 {
		q.Page = 0
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = DefaultPageSize
	}
}

// PaginatedResult contains one page of items and paging metadata.
type PaginatedResult[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total,omitempty"`
}
