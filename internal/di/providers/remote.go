package providers

import (
	"github.com/samber/do/v2"

	"github.com/libresine/libresine-server/internal/catalog"
	"github.com/libresine/libresine-server/internal/config"
	"github.com/libresine/libresine-server/internal/logger"
	"github.com/libresine/libresine-server/internal/remote"
)

// RemoteClientHandle wraps the remote movie service client with shutdown
// capability.
type RemoteClientHandle struct {
	*remote.Client
}

// Shutdown implements do.Shutdownable.
func (h *RemoteClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideRemoteClient provides the client for the upstream movie service.
func ProvideRemoteClient(i do.Injector) (*RemoteClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := remote.New(remote.Options{
		BaseURL:           cfg.Remote.BaseURL,
		Timeout:           cfg.Remote.Timeout,
		RequestsPerSecond: cfg.Remote.RequestsPerSecond,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Remote movie service configured", "base_url", cfg.Remote.BaseURL)

	return &RemoteClientHandle{Client: client}, nil
}

// ProvideCatalog provides the aggregator that merges the local store and
// the remote service into one catalog.
func ProvideCatalog(i do.Injector) (*catalog.Aggregator, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	remoteHandle := do.MustInvoke[*RemoteClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.New(storeHandle.Store, remoteHandle.Client, log.Logger), nil
}
