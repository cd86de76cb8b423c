package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/libresine/libresine-server/internal/config"
	"github.com/libresine/libresine-server/internal/importer"
	"github.com/libresine/libresine-server/internal/inbox"
	"github.com/libresine/libresine-server/internal/logger"
)

// ProvideImportManager provides the import session manager.
func ProvideImportManager(i do.Injector) (*importer.Manager, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return importer.NewManager(storeHandle.Store, log.Logger), nil
}

// InboxWatcherHandle wraps the inbox watcher with its context for
// lifecycle management. Watcher is nil when no inbox is configured.
type InboxWatcherHandle struct {
	*inbox.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *InboxWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideInboxWatcher provides the import inbox directory watcher.
func ProvideInboxWatcher(i do.Injector) (*InboxWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	manager := do.MustInvoke[*importer.Manager](i)

	if cfg.Import.InboxPath == "" {
		log.Info("Import inbox disabled by configuration")
		return &InboxWatcherHandle{}, nil
	}

	watcher, err := inbox.New(cfg.Import.InboxPath, manager, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := watcher.Start(ctx); err != nil {
			log.Error("Inbox watcher stopped", "error", err)
		}
	}()

	log.Info("Import inbox watching", "path", cfg.Import.InboxPath)

	return &InboxWatcherHandle{Watcher: watcher, cancel: cancel}, nil
}
