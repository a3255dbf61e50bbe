// Package di provides dependency injection configuration for the Pane server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/paneapp/pane-server/internal/config"
	"github.com/paneapp/pane-server/internal/di/providers"
	"github.com/paneapp/pane-server/internal/logger"
	"github.com/paneapp/pane-server/internal/view"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideSettingsStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// View streaming layer
	do.Provide(injector, providers.ProvideViewManager)
	do.Provide(injector, providers.ProvideViewProjector)
	do.Provide(injector, providers.ProvideViewHandler)

	// Browsing session
	do.Provide(injector, providers.ProvideBrowserService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*slog.Logger](injector)

	_ = do.MustInvoke[*providers.SettingsStoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	_ = do.MustInvoke[*providers.ViewManagerHandle](injector)
	_ = do.MustInvoke[*view.Projector](injector)
	_ = do.MustInvoke[*view.Handler](injector)

	_ = do.MustInvoke[*providers.BrowserHandle](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	_ = do.MustInvoke[*providers.MDNSServiceHandle](injector)

	return nil
}
