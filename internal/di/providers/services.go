package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven-server/internal/auth"
	"github.com/bookhaven/bookhaven-server/internal/cache"
	"github.com/bookhaven/bookhaven-server/internal/config"
	"github.com/bookhaven/bookhaven-server/internal/lock"
	"github.com/bookhaven/bookhaven-server/internal/logger"
	"github.com/bookhaven/bookhaven-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideBookService provides the book catalog and availability service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	c := do.MustInvoke[*cache.Cache](i)
	locker := do.MustInvoke[*lock.Locker](i)
	m := do.MustInvoke[*Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(
		storeHandle.Store,
		c,
		locker,
		m.Collector,
		cfg.Catalog.LockTTL,
		log.Logger,
	), nil
}

// ProvideAuthorService provides the author catalog service.
func ProvideAuthorService(i do.Injector) (*service.AuthorService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	c := do.MustInvoke[*cache.Cache](i)
	m := do.MustInvoke[*Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthorService(storeHandle.Store, c, m.Collector, log.Logger), nil
}

// ProvideUserService provides the user account service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	c := do.MustInvoke[*cache.Cache](i)
	m := do.MustInvoke[*Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, c, m.Collector, log.Logger), nil
}
