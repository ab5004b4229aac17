package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/derekprior/doubles/internal/api"
	"github.com/derekprior/doubles/internal/config"
	"github.com/derekprior/doubles/internal/generator"
	"github.com/derekprior/doubles/internal/worker"
)

func runServe(ctx context.Context, logger *slog.Logger, configPath, addr string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	sup := worker.NewSupervisor(
		worker.FromStrategy(cfg.Generator.Strategy, generator.OptionsFromConfig(cfg.Generator)),
		cfg.Workers,
		logger,
	)
	if err := sup.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sup.Terminate(); err != nil {
			logger.Error("stopping workers", slog.String("error", err.Error()))
		}
	}()
	if err := sup.Ready(ctx); err != nil {
		return fmt.Errorf("starting workers: %w", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Dispatcher: sup,
	})
	server := api.NewServer(router, api.DefaultServerConfig(addr), logger)

	logger.Info("serving schedule API",
		slog.String("addr", server.Addr()),
		slog.Int("workers", sup.Size()),
		slog.String("strategy", cfg.Generator.Strategy),
	)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	}
}
