package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptvault/promptvault-server/internal/service"
)

func TestGetFeed_Empty(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/feed", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.FeedPage]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	assert.Empty(t, envelope.Data.Items)
	assert.False(t, envelope.Data.HasMore)
	assert.Zero(t, envelope.Data.Total)
}

func TestGetFeed_NewestFirst(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "reader@example.com")

	ts.createTestPrompt(t, token, "older prompt")
	ts.createTestPrompt(t, token, "newer prompt")

	resp := ts.api.Get("/api/v1/feed", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.FeedPage]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Items, 2)
	assert.Equal(t, "newer prompt", envelope.Data.Items[0].Content)
	assert.Equal(t, "older prompt", envelope.Data.Items[1].Content)
}

func TestGetFeed_Pagination(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "reader@example.com")

	for i := 0; i < 25; i++ {
		ts.createTestPrompt(t, token, fmt.Sprintf("prompt %02d", i))
	}

	resp := ts.api.Get("/api/v1/feed?page=1", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var first testEnvelope[service.FeedPage]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &first))

	assert.Len(t, first.Data.Items, 24)
	assert.True(t, first.Data.HasMore)
	assert.Equal(t, 25, first.Data.Total)

	resp = ts.api.Get("/api/v1/feed?page=2", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var second testEnvelope[service.FeedPage]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &second))

	require.Len(t, second.Data.Items, 1)
	// Newest-first: the oldest row lands on the last page.
	assert.Equal(t, "prompt 00", second.Data.Items[0].Content)
}

func TestGetFeed_TagFilter(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "reader@example.com")

	cities := ts.createTestTag(t, token, "cities")
	night := ts.createTestTag(t, token, "night")

	ts.createTestPrompt(t, token, "city at noon", cities)
	ts.createTestPrompt(t, token, "city at night", cities, night)
	ts.createTestPrompt(t, token, "dark forest", night)
	ts.createTestPrompt(t, token, "untagged")

	// OR: any listed tag matches.
	url := "/api/v1/feed?tags=" + cities + "," + night
	resp := ts.api.Get(url, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var orPage testEnvelope[service.FeedPage]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &orPage))
	assert.Len(t, orPage.Data.Items, 3)

	// AND: every listed tag must match.
	resp = ts.api.Get(url+"&tag_mode=and", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var andPage testEnvelope[service.FeedPage]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &andPage))
	require.Len(t, andPage.Data.Items, 1)
	assert.Equal(t, "city at night", andPage.Data.Items[0].Content)
}

func TestGetFeed_TagNames(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "reader@example.com")

	tagID := ts.createTestTag(t, token, "labelled")
	ts.createTestPrompt(t, token, "has a chip", tagID)

	resp := ts.api.Get("/api/v1/feed", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.FeedPage]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Items, 1)
	assert.Equal(t, []string{"labelled"}, envelope.Data.Items[0].TagNames)
}

func TestGetFeed_SortOverride(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "reader@example.com")

	ts.createTestPrompt(t, token, "first created")
	ts.createTestPrompt(t, token, "second created")

	resp := ts.api.Get("/api/v1/feed?sort=created_at&dir=asc", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.FeedPage]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Items, 2)
	assert.Equal(t, "first created", envelope.Data.Items[0].Content)
}

func TestGetFeed_OwnerScoped(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "reader@example.com")
	other := ts.registerTestUser(t, "other@example.com")

	ts.createTestPrompt(t, token, "mine")

	resp := ts.api.Get("/api/v1/feed", "Authorization: Bearer "+other)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.FeedPage]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data.Items)
}

func TestGetFeed_MutationInvalidatesCache(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "reader@example.com")

	ts.createTestPrompt(t, token, "cached row")

	resp := ts.api.Get("/api/v1/feed", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	ts.createTestPrompt(t, token, "fresh row")

	resp = ts.api.Get("/api/v1/feed", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.FeedPage]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Items, 2)
	assert.True(t, strings.HasPrefix(envelope.Data.Items[0].Content, "fresh"))
}
