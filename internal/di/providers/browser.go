package providers

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/paneapp/pane-server/internal/config"
	"github.com/paneapp/pane-server/internal/service"
	"github.com/paneapp/pane-server/internal/view"
)

// BrowserHandle wraps service.BrowserService with Shutdownable and owns
// the lifecycle context of its column refresher.
type BrowserHandle struct {
	Browser *service.BrowserService
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *BrowserHandle) Shutdown() error {
	h.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Browser.Shutdown(ctx)
}

// ProvideBrowserService provides the browsing session, with the configured
// root directory already open and watched.
func ProvideBrowserService(i do.Injector) (*BrowserHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	settingsHandle := do.MustInvoke[*SettingsStoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	projector := do.MustInvoke[*view.Projector](i)

	browser := service.NewBrowserService(service.Config{
		CoalesceDelay:    cfg.Browse.CoalesceDelay,
		RenamePairWindow: cfg.Browse.RenamePairWindow,
		IgnoreHidden:     cfg.Browse.IgnoreHidden,
		InsertSorted:     cfg.Browse.InsertSorted,
		BackupDir:        filepath.Join(cfg.Settings.DataPath, "backups"),
	}, settingsHandle.Store, projector, indexHandle.Index, log)

	ctx, cancel := context.WithCancel(context.Background())
	if err := browser.Start(ctx, cfg.Browse.RootPath); err != nil {
		cancel()
		return nil, err
	}

	log.Info("Browsing session opened",
		"session_id", browser.SessionID(),
		"root", cfg.Browse.RootPath,
	)

	return &BrowserHandle{Browser: browser, cancel: cancel}, nil
}
