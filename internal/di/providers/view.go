package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/paneapp/pane-server/internal/view"
)

// ViewManagerHandle wraps view.Manager with Shutdownable and owns the
// lifecycle context its heartbeat loop runs under.
type ViewManagerHandle struct {
	Manager *view.Manager
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ViewManagerHandle) Shutdown() error {
	h.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideViewManager provides the SSE event manager, started in the
// background.
func ProvideViewManager(i do.Injector) (*ViewManagerHandle, error) {
	log := do.MustInvoke[*slog.Logger](i)

	manager := view.NewManager(log)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	return &ViewManagerHandle{Manager: manager, cancel: cancel}, nil
}

// ProvideViewProjector provides the projector that turns view-update
// instructions into stream events.
func ProvideViewProjector(i do.Injector) (*view.Projector, error) {
	handle := do.MustInvoke[*ViewManagerHandle](i)
	return view.NewProjector(handle.Manager), nil
}

// ProvideViewHandler provides the SSE HTTP handler.
func ProvideViewHandler(i do.Injector) (*view.Handler, error) {
	handle := do.MustInvoke[*ViewManagerHandle](i)
	log := do.MustInvoke[*slog.Logger](i)
	return view.NewHandler(handle.Manager, log), nil
}
