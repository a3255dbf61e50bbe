package providers

import (
	"log/slog"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/paneapp/pane-server/internal/config"
	"github.com/paneapp/pane-server/internal/search"
	"github.com/paneapp/pane-server/internal/settings"
)

// SettingsStoreHandle wraps settings.Store with Shutdownable.
type SettingsStoreHandle struct {
	Store *settings.Store
}

// Shutdown implements do.Shutdownable.
func (h *SettingsStoreHandle) Shutdown() error {
	return h.Store.Close()
}

// ProvideSettingsStore provides the persistent folder-settings store.
func ProvideSettingsStore(i do.Injector) (*SettingsStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	store, err := settings.New(filepath.Join(cfg.Settings.DataPath, "settings"), log)
	if err != nil {
		return nil, err
	}

	return &SettingsStoreHandle{Store: store}, nil
}

// SearchIndexHandle wraps search.ListingIndex with Shutdownable.
type SearchIndexHandle struct {
	Index *search.ListingIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Index.Close()
}

// ProvideSearchIndex provides the in-memory listing search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*slog.Logger](i)

	index, err := search.NewListingIndex(log)
	if err != nil {
		return nil, err
	}

	return &SearchIndexHandle{Index: index}, nil
}
