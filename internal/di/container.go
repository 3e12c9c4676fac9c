// Package di provides dependency injection configuration for the Bookhaven server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven-server/internal/auth"
	"github.com/bookhaven/bookhaven-server/internal/cache"
	"github.com/bookhaven/bookhaven-server/internal/config"
	"github.com/bookhaven/bookhaven-server/internal/di/providers"
	"github.com/bookhaven/bookhaven-server/internal/lock"
	"github.com/bookhaven/bookhaven-server/internal/logger"
	"github.com/bookhaven/bookhaven-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKeys)
	do.Provide(injector, providers.ProvideMetrics)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideKV)
	do.Provide(injector, providers.ProvideCache)
	do.Provide(injector, providers.ProvideLocker)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideAuthorService)
	do.Provide(injector, providers.ProvideUserService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization of the full dependency graph.
func Bootstrap(injector *do.RootScope) error {
	invocations := []func() error{
		func() error { _, err := do.Invoke[*config.Config](injector); return err },
		func() error { _, err := do.Invoke[*logger.Logger](injector); return err },
		func() error { _, err := do.Invoke[*providers.AuthKeys](injector); return err },
		func() error { _, err := do.Invoke[*providers.Metrics](injector); return err },
		func() error { _, err := do.Invoke[*providers.StoreHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.KVHandle](injector); return err },
		func() error { _, err := do.Invoke[*cache.Cache](injector); return err },
		func() error { _, err := do.Invoke[*lock.Locker](injector); return err },
		func() error { _, err := do.Invoke[*auth.TokenService](injector); return err },
		func() error { _, err := do.Invoke[*service.AuthService](injector); return err },
		func() error { _, err := do.Invoke[*service.BookService](injector); return err },
		func() error { _, err := do.Invoke[*service.AuthorService](injector); return err },
		func() error { _, err := do.Invoke[*service.UserService](injector); return err },
		func() error { _, err := do.Invoke[*providers.HTTPServerHandle](injector); return err },
	}

	for _, invoke := range invocations {
		if err := invoke(); err != nil {
			return err
		}
	}

	return nil
}
