package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptvault/promptvault-server/internal/prefs"
)

func TestGetPreferences_Defaults(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "prefs@example.com")

	resp := ts.api.Get("/api/v1/preferences", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[prefs.Preferences]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.Equal(t, "system", envelope.Data.Theme)
	assert.Equal(t, "grid", envelope.Data.ViewMode)
	assert.Equal(t, "created_at", envelope.Data.SortField)
	assert.Equal(t, "desc", envelope.Data.SortDir)
}

func TestUpdatePreferences_RoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "prefs@example.com")

	resp := ts.api.Put("/api/v1/preferences",
		"Authorization: Bearer "+token,
		map[string]any{
			"theme":      "dark",
			"view_mode":  "list",
			"density":    "compact",
			"sort_field": "updated_at",
			"sort_dir":   "asc",
		})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/preferences", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[prefs.Preferences]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, "dark", envelope.Data.Theme)
	assert.Equal(t, "list", envelope.Data.ViewMode)
	assert.Equal(t, "compact", envelope.Data.Density)
	assert.Equal(t, "updated_at", envelope.Data.SortField)
	assert.Equal(t, "asc", envelope.Data.SortDir)
}

func TestUpdatePreferences_InvalidTheme(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "prefs@example.com")

	resp := ts.api.Put("/api/v1/preferences",
		"Authorization: Bearer "+token,
		map[string]any{
			"theme":      "sepia",
			"view_mode":  "grid",
			"density":    "comfortable",
			"sort_field": "created_at",
			"sort_dir":   "desc",
		})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestResetPreferences(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "prefs@example.com")

	resp := ts.api.Put("/api/v1/preferences",
		"Authorization: Bearer "+token,
		map[string]any{
			"theme":      "dark",
			"view_mode":  "list",
			"density":    "compact",
			"sort_field": "updated_at",
			"sort_dir":   "asc",
		})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/preferences", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[prefs.Preferences]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "system", envelope.Data.Theme)
	assert.Equal(t, "grid", envelope.Data.ViewMode)
}
