package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/promptvault/promptvault-server/internal/prefs"
)

// PreferencesService manages per-user display preferences.
type PreferencesService struct {
	prefs  *prefs.Store
	logger *slog.Logger
}

// NewPreferencesService creates a new preferences service.
func NewPreferencesService(prefsStore *prefs.Store, logger *slog.Logger) *PreferencesService {
	return &PreferencesService{
		prefs:  prefsStore,
		logger: logger,
	}
}

// UpdatePreferencesRequest contains replacement preference values.
// Every field is required; partial updates send the current value back.
type UpdatePreferencesRequest struct {
	Theme     string `json:"theme" validate:"required,oneof=system light dark"`
	ViewMode  string `json:"view_mode" validate:"required,oneof=grid list"`
	Density   string `json:"density" validate:"required,oneof=comfortable compact"`
	SortField string `json:"sort_field" validate:"required,oneof=created_at updated_at"`
	SortDir   string `json:"sort_dir" validate:"required,oneof=asc desc"`
}

// Get returns the caller's preferences, defaults included.
func (s *PreferencesService) Get(ctx context.Context, sess *Session) (*prefs.Preferences, error) {
	return s.prefs.Get(ctx, sess.UserID)
}

// Update replaces the caller's preferences.
func (s *PreferencesService) Update(ctx context.Context, sess *Session, req UpdatePreferencesRequest) (*prefs.Preferences, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	p := &prefs.Preferences{
		UserID:    sess.UserID,
		Theme:     req.Theme,
		ViewMode:  req.ViewMode,
		Density:   req.Density,
		SortField: req.SortField,
		SortDir:   req.SortDir,
	}

	if err := s.prefs.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}

	s.logger.Info("preferences updated", "user_id", sess.UserID)
	return p, nil
}

// Reset restores the caller's preferences to defaults.
func (s *PreferencesService) Reset(ctx context.Context, sess *Session) (*prefs.Preferences, error) {
	if err := s.prefs.Delete(ctx, sess.UserID); err != nil {
		return nil, fmt.Errorf("reset preferences: %w", err)
	}
	return prefs.Defaults(sess.UserID), nil
}
