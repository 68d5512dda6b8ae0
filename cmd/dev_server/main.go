package main

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ridloal/storefront-sync/internal/platform/config"
	"github.com/ridloal/storefront-sync/internal/platform/fileserver"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
)

func main() {
	config.LoadDotEnv()
	cfg := config.LoadDevServerConfig()

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		logger.Error("Dev server: cannot resolve root "+cfg.Root, err, nil)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, cfg.Port),
		Handler: fileserver.New(root),
	}

	go func() {
		logger.Info("Server running at http://%s/ serving %s", server.Addr, root)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Dev server failed to start or crashed", err, nil)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Dev server shutdown failed", err, nil)
	}
}
