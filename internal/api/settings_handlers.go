package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/paneapp/pane-server/internal/browse"
	"github.com/paneapp/pane-server/internal/settings"
)

func (s *Server) registerSettingsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFolderSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings",
		Summary:     "Get folder settings",
		Description: "Returns the saved view preferences for the open directory",
		Tags:        []string{"Settings"},
	}, s.handleGetSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateFolderSettings",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings",
		Summary:     "Update folder settings",
		Description: "Persists view preferences for the open directory and applies them live",
		Tags:        []string{"Settings"},
	}, s.handleUpdateSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "backupSettings",
		Method:      http.MethodPost,
		Path:        "/api/v1/settings/backup",
		Summary:     "Back up settings",
		Description: "Writes a snapshot of the settings database to the backup directory",
		Tags:        []string{"Settings"},
	}, s.handleBackupSettings)
}

// === DTOs ===

// SettingsOutput wraps folder settings for Huma.
type SettingsOutput struct {
	Body settings.FolderSettings
}

// UpdateSettingsInput carries new view preferences. The path is implied
// by the open directory.
type UpdateSettingsInput struct {
	Body struct {
		SortBy       string          `json:"sortBy" validate:"required,oneof=name size kind modified" doc:"Sort column"`
		SortOrder    string          `json:"sortOrder" validate:"required,oneof=asc desc" doc:"Sort direction"`
		ShowHidden   bool            `json:"showHidden" doc:"Show dotfiles"`
		ShowInGroups bool            `json:"showInGroups" doc:"Group rows in the view"`
		DetailsView  bool            `json:"detailsView" doc:"Multi-column details view"`
		Columns      []browse.Column `json:"columns,omitempty" doc:"Column set and visibility"`
	}
}

// BackupOutput wraps a completed backup for Huma.
type BackupOutput struct {
	Body settings.BackupResult
}

// === Handlers ===

func (s *Server) handleGetSettings(_ context.Context, _ *struct{}) (*SettingsOutput, error) {
	fs, err := s.browser.Settings()
	if err != nil {
		return nil, err
	}
	return &SettingsOutput{Body: *fs}, nil
}

func (s *Server) handleUpdateSettings(_ context.Context, input *UpdateSettingsInput) (*SettingsOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}

	fs := settings.Defaults(s.browser.Path())
	fs.SortBy = input.Body.SortBy
	fs.SortOrder = input.Body.SortOrder
	fs.ShowHidden = input.Body.ShowHidden
	fs.ShowInGroups = input.Body.ShowInGroups
	fs.DetailsView = input.Body.DetailsView
	if len(input.Body.Columns) > 0 {
		fs.Columns = input.Body.Columns
	}

	if err := s.browser.UpdateSettings(fs); err != nil {
		return nil, err
	}

	saved, err := s.browser.Settings()
	if err != nil {
		return nil, err
	}
	return &SettingsOutput{Body: *saved}, nil
}

func (s *Server) handleBackupSettings(_ context.Context, _ *struct{}) (*BackupOutput, error) {
	result, err := s.browser.BackupSettings()
	if err != nil {
		return nil, err
	}
	return &BackupOutput{Body: *result}, nil
}
