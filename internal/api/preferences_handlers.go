package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptvault/promptvault-server/internal/prefs"
	"github.com/promptvault/promptvault-server/internal/service"
)

func (s *Server) registerPreferencesRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/preferences",
		Summary:     "Get preferences",
		Description: "Returns the caller's view and sort preferences",
		Tags:        []string{"Preferences"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePreferences",
		Method:      http.MethodPut,
		Path:        "/api/v1/preferences",
		Summary:     "Update preferences",
		Description: "Replaces the caller's preferences wholesale",
		Tags:        []string{"Preferences"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetPreferences",
		Method:      http.MethodDelete,
		Path:        "/api/v1/preferences",
		Summary:     "Reset preferences",
		Description: "Restores the caller's preferences to defaults",
		Tags:        []string{"Preferences"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleResetPreferences)
}

// PreferencesBody is the request body for preference updates.
type PreferencesBody struct {
	Theme     string `json:"theme" doc:"UI theme: system, light, or dark"`
	ViewMode  string `json:"view_mode" doc:"Feed layout: grid or list"`
	Density   string `json:"density" doc:"Row density: comfortable or compact"`
	SortField string `json:"sort_field" doc:"Default sort field: created_at or updated_at"`
	SortDir   string `json:"sort_dir" doc:"Default sort direction: asc or desc"`
}

// UpdatePreferencesInput wraps the update request for Huma.
type UpdatePreferencesInput struct {
	Body PreferencesBody
}

// PreferencesOutput wraps preferences for Huma.
type PreferencesOutput struct {
	Body prefs.Preferences
}

func (s *Server) handleGetPreferences(ctx context.Context, _ *struct{}) (*PreferencesOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.services.Preferences.Get(ctx, sess)
	if err != nil {
		return nil, err
	}

	return &PreferencesOutput{Body: *p}, nil
}

func (s *Server) handleUpdatePreferences(ctx context.Context, input *UpdatePreferencesInput) (*PreferencesOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.services.Preferences.Update(ctx, sess, service.UpdatePreferencesRequest{
		Theme:     input.Body.Theme,
		ViewMode:  input.Body.ViewMode,
		Density:   input.Body.Density,
		SortField: input.Body.SortField,
		SortDir:   input.Body.SortDir,
	})
	if err != nil {
		return nil, err
	}

	return &PreferencesOutput{Body: *p}, nil
}

func (s *Server) handleResetPreferences(ctx context.Context, _ *struct{}) (*PreferencesOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.services.Preferences.Reset(ctx, sess)
	if err != nil {
		return nil, err
	}

	return &PreferencesOutput{Body: *p}, nil
}
