package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/libresine/libresine-server/internal/api"
	"github.com/libresine/libresine-server/internal/catalog"
	"github.com/libresine/libresine-server/internal/config"
	"github.com/libresine/libresine-server/internal/events"
	"github.com/libresine/libresine-server/internal/importer"
	"github.com/libresine/libresine-server/internal/logger"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	eventsHandle := do.MustInvoke[*EventManagerHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	remoteHandle := do.MustInvoke[*RemoteClientHandle](i)
	aggregator := do.MustInvoke[*catalog.Aggregator](i)
	importManager := do.MustInvoke[*importer.Manager](i)

	sseHandler := events.NewHandler(eventsHandle.Manager, log.Logger)

	handler := api.NewServer(api.Options{
		Store:      storeHandle.Store,
		Catalog:    aggregator,
		Remote:     remoteHandle.Client,
		Importer:   importManager,
		Search:     searchHandle.MovieIndex,
		SSEHandler: sseHandler,
		Config:     cfg,
		Logger:     log.Logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
