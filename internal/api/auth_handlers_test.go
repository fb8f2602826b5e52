package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptvault/promptvault-server/internal/ratelimit"
)

func TestRegister_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "vault@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Vault Keeper",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.NotEmpty(t, envelope.Data.SessionID)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Positive(t, envelope.Data.ExpiresIn)
	assert.Equal(t, "vault@example.com", envelope.Data.User.Email)
	assert.Equal(t, "Vault Keeper", envelope.Data.User.DisplayName)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerTestUser(t, "taken@example.com")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "taken@example.com",
		"password": "AnotherPassword123!",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[struct{}]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "ALREADY_EXISTS", envelope.Error.Code)
}

func TestRegister_ShortPassword(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "short@example.com",
		"password": "short",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerTestUser(t, "login@example.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "login@example.com",
		"password": "SecurePassword123!",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, "login@example.com", envelope.Data.User.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerTestUser(t, "login@example.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "login@example.com",
		"password": "WrongPassword123!",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var envelope testEnvelope[struct{}]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "SecurePassword123!",
	})

	// Same response as a wrong password so enumeration fails.
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "refresh@example.com",
		"password": "SecurePassword123!",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var registered testEnvelope[AuthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &registered)
	require.NoError(t, err)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	var refreshed testEnvelope[AuthResponse]
	err = json.Unmarshal(resp.Body.Bytes(), &refreshed)
	require.NoError(t, err)

	assert.NotEmpty(t, refreshed.Data.AccessToken)
	assert.NotEqual(t, registered.Data.RefreshToken, refreshed.Data.RefreshToken)
	assert.Equal(t, registered.Data.SessionID, refreshed.Data.SessionID)

	// The old refresh token is dead after rotation.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout_KillsSession(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "logout@example.com",
		"password": "SecurePassword123!",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var registered testEnvelope[AuthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &registered)
	require.NoError(t, err)

	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{
		"session_id": registered.Data.SessionID,
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuth_RateLimited(t *testing.T) {
	ts := setupTestServer(t)

	// Tight limiter: two attempts, then a long wait for the next token.
	ts.Server.authRateLimiter = ratelimit.New(0.001, 2)

	var last int
	for i := 0; i < 5; i++ {
		resp := ts.api.Post("/api/v1/auth/login",
			"X-Real-IP: 10.0.0.9",
			map[string]any{
				"email":    "nobody@example.com",
				"password": "SecurePassword123!",
			})
		last = resp.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}
