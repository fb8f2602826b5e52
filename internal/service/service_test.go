package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promptvault/promptvault-server/internal/auth"
	"github.com/promptvault/promptvault-server/internal/domain"
	"github.com/promptvault/promptvault-server/internal/id"
	"github.com/promptvault/promptvault-server/internal/prefs"
	"github.com/promptvault/promptvault-server/internal/search"
	"github.com/promptvault/promptvault-server/internal/storage"
	"github.com/promptvault/promptvault-server/internal/store/sqlite"
	"github.com/promptvault/promptvault-server/internal/throttle"
)

// fixture wires every service against real backing stores in a temp
// directory. The limiter cooldown is long so tests control throttling
// explicitly via settle.
type fixture struct {
	store       *sqlite.Store
	prefs       *prefs.Store
	index       *search.Index
	objects     *storage.DiskStore
	cache       *ViewCache
	limiter     *throttle.Limiter
	tokens      *auth.TokenService
	sessions    *SessionService
	auth        *AuthService
	prompts     *PromptService
	tags        *TagService
	feed        *FeedService
	search      *SearchService
	preferences *PreferencesService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	p, err := prefs.Open(filepath.Join(dir, "prefs"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	idx, err := search.New(search.Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	keyBytes, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)

	signer, err := storage.NewSigner(keyBytes)
	require.NoError(t, err)

	objects, err := storage.NewDiskStore(filepath.Join(dir, "objects"), "/api/v1/objects", signer)
	require.NoError(t, err)

	resolver := storage.NewResolver(objects, logger)

	tokens, err := auth.NewTokenService(hex.EncodeToString(keyBytes), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	cache := NewViewCache()
	limiter := throttle.New(time.Minute)

	sessions := NewSessionService(s, tokens, logger)

	f := &fixture{
		store:       s,
		prefs:       p,
		index:       idx,
		objects:     objects,
		cache:       cache,
		limiter:     limiter,
		tokens:      tokens,
		sessions:    sessions,
		auth:        NewAuthService(s, tokens, sessions, logger),
		prompts:     NewPromptService(s, idx, objects, resolver, limiter, cache, logger),
		tags:        NewTagService(s, limiter, cache, logger),
		feed:        NewFeedService(s, p, resolver, cache, logger),
		search:      NewSearchService(s, idx, logger),
		preferences: NewPreferencesService(p, logger),
	}
	return f
}

// settle clears the caller's cooldowns so sequential mutations in a
// test don't trip the limiter.
func (f *fixture) settle(userID string) {
	f.limiter.Reset(throttleKey(userID, actionPrompt))
	f.limiter.Reset(throttleKey(userID, actionTag))
	f.limiter.Reset(throttleKey(userID, actionImage))
}

// newTestSession creates a user directly in the store and returns its
// caller session.
func newTestSession(t *testing.T, f *fixture, email string) *Session {
	t.Helper()

	userID, err := id.Generate("user")
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &domain.User{
		ID:           userID,
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.store.CreateUser(context.Background(), user))

	return &Session{UserID: userID, Email: email}
}

// createTestPrompt creates a prompt for the session, clearing the
// cooldown afterwards.
func createTestPrompt(t *testing.T, f *fixture, sess *Session, content string, tagIDs ...string) *PromptDetail {
	t.Helper()

	detail, err := f.prompts.CreatePrompt(context.Background(), sess, CreatePromptRequest{
		Content: content,
		TagIDs:  tagIDs,
	})
	require.NoError(t, err)
	f.settle(sess.UserID)
	return detail
}

// createTestTag creates a tag for the session, clearing the cooldown
// afterwards.
func createTestTag(t *testing.T, f *fixture, sess *Session, name string) *domain.Tag {
	t.Helper()

	tag, err := f.tags.CreateTag(context.Background(), sess, name)
	require.NoError(t, err)
	f.settle(sess.UserID)
	return tag
}

// pngBytes encodes a gradient PNG of the given size.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
