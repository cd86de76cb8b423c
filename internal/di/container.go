// Package di provides dependency injection configuration for the LibreSine server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/libresine/libresine-server/internal/catalog"
	"github.com/libresine/libresine-server/internal/config"
	"github.com/libresine/libresine-server/internal/di/providers"
	"github.com/libresine/libresine-server/internal/importer"
	"github.com/libresine/libresine-server/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Events and storage
	do.Provide(injector, providers.ProvideEventManager)
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Remote service and aggregation
	do.Provide(injector, providers.ProvideRemoteClient)
	do.Provide(injector, providers.ProvideCatalog)

	// Import pipeline
	do.Provide(injector, providers.ProvideImportManager)
	do.Provide(injector, providers.ProvideInboxWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of the whole graph.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.EventManagerHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.RemoteClientHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*catalog.Aggregator](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*importer.Manager](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.InboxWatcherHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	// Rebuild the search index if it is empty but the store is not.
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
