package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/promptvault/promptvault-server/internal/api"
	"github.com/promptvault/promptvault-server/internal/config"
	"github.com/promptvault/promptvault-server/internal/logger"
	"github.com/promptvault/promptvault-server/internal/service"
	"github.com/promptvault/promptvault-server/internal/storage"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	objects := do.MustInvoke[*ObjectStoreHandle](i)
	signer := do.MustInvoke[*storage.Signer](i)

	services := &api.Services{
		Auth:        do.MustInvoke[*service.AuthService](i),
		Sessions:    do.MustInvoke[*service.SessionService](i),
		Prompts:     do.MustInvoke[*service.PromptService](i),
		Tags:        do.MustInvoke[*service.TagService](i),
		Feed:        do.MustInvoke[*service.FeedService](i),
		Search:      do.MustInvoke[*service.SearchService](i),
		Preferences: do.MustInvoke[*service.PreferencesService](i),
	}

	handler := api.NewServer(cfg, services, objects.DiskStore, signer, log.Logger)
	srv := handler.HTTPServer(cfg)

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
