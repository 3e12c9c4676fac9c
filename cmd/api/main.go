// Package main provides the entry point for the Bookhaven server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven-server/internal/di"
	"github.com/bookhaven/bookhaven-server/internal/di/providers"
	"github.com/bookhaven/bookhaven-server/internal/logger"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The DI container shuts services down in reverse dependency order.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// The stores use wrapper types, so close them explicitly.
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close catalog database", "error", err)
		}
	}

	if kvHandle, err := do.Invoke[*providers.KVHandle](injector); err == nil {
		if err := kvHandle.Shutdown(); err != nil {
			log.Error("Failed to close KV store", "error", err)
		}
	}

	log.Info("Goodbye")
}
