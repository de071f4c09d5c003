package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/devserver"
	"github.com/fjod/go_cart/storefront/internal/devserver/mongostore"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

func main() {
	var configFile string
	cmd := &cobra.Command{
		Use:          "storefront-api",
		Short:        "Development server for the storefront REST API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(configFile)
			if err != nil {
				return err
			}
			if err := v.BindPFlag("server.addr", cmd.Flags().Lookup("addr")); err != nil {
				return err
			}
			if err := v.BindPFlag("server.mongo_uri", cmd.Flags().Lookup("mongo-uri")); err != nil {
				return err
			}
			cfg, err := config.LoadServer(v)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().String("mongo-uri", "", "mongodb uri; empty keeps data in memory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Server) error {
	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg, lg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer closeStore()

	if cfg.Seed {
		inserted, err := devserver.Seed(ctx, store)
		if err != nil {
			return fmt.Errorf("failed to seed catalogue: %w", err)
		}
		lg.Info("catalogue ready", zap.Bool("seeded", inserted))
	}

	router := devserver.NewRouter(store, devserver.Config{
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		RequestTimeout: cfg.RequestTimeout,
	}, lg)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		lg.Info("storefront api starting", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	lg.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	lg.Info("server exited")
	return nil
}

// openStore picks MongoDB when a URI is configured and the in-memory store
// otherwise.
func openStore(ctx context.Context, cfg *config.Server, lg *zap.Logger) (devserver.Store, func(), error) {
	if cfg.MongoURI == "" {
		lg.Info("using in-memory store")
		return devserver.NewMemoryStore(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := mongostore.Open(connectCtx, mongostore.Options{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
	})
	if err != nil {
		return nil, nil, err
	}

	lg.Info("using mongodb store", zap.String("database", cfg.MongoDatabase))
	closeFn := func() {
		if err := store.Close(context.Background()); err != nil {
			lg.Warn("failed to disconnect from mongodb", zap.Error(err))
		}
	}
	return store, closeFn, nil
}
