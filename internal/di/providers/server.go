package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven-server/internal/api"
	"github.com/bookhaven/bookhaven-server/internal/config"
	"github.com/bookhaven/bookhaven-server/internal/logger"
	"github.com/bookhaven/bookhaven-server/internal/service"
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

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	kvHandle := do.MustInvoke[*KVHandle](i)
	m := do.MustInvoke[*Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:   do.MustInvoke[*service.AuthService](i),
		Book:   do.MustInvoke[*service.BookService](i),
		Author: do.MustInvoke[*service.AuthorService](i),
		User:   do.MustInvoke[*service.UserService](i),
	}

	handler := api.NewServer(storeHandle.Store, kvHandle.Store, services, m.Handler(), log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
