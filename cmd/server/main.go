package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mleng/courtmate/internal/auth"
	"github.com/mleng/courtmate/internal/config"
	"github.com/mleng/courtmate/internal/identity"
	"github.com/mleng/courtmate/internal/service"
	"github.com/mleng/courtmate/internal/storage/sqlite"
	"github.com/mleng/courtmate/internal/transport/httpapi"
	"github.com/mleng/courtmate/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel, cfg.LogJSON)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open store", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	directory := identity.NewStoreDirectory(store)
	clock := service.SystemClock()

	activities := service.NewActivityService(store, directory, clock)
	expenses := service.NewExpenseService(store, store, directory, clock)

	passwords := auth.NewPasswordAuthenticator(store)
	tokens := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenTTL)

	api := httpapi.NewServer(activities, expenses, store, passwords, tokens)

	// h2c lets gRPC-style and plain HTTP/2 clients talk without TLS; a proxy
	// terminates TLS in front of this process.
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: h2c.NewHandler(api.Router(), &http2.Server{}),
	}

	go func() {
		slog.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
