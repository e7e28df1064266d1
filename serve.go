package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"cardialink-engine/internal/config"
	"cardialink-engine/internal/handler"
	"cardialink-engine/internal/logging"
	"cardialink-engine/internal/session"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the questionnaire pages and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return serve(cfg, logger)
		},
	}
}

func serve(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, modelEnabled, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	h := handler.New(eng, store, handler.Options{
		Cookie:       cfg.Session.Cookie,
		TTL:          cfg.Session.TTL,
		ModelEnabled: modelEnabled,
	}, logger)

	server := &fasthttp.Server{
		Handler:      h.Handle,
		Name:         "cardialink-engine",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("CardiaLink engine starting", zap.String("port", cfg.Port))
		errCh <- server.ListenAndServe(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return server.Shutdown()
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, error) {
	if cfg.Session.Backend != config.BackendRedis {
		store := session.NewMemoryStore(cfg.Session.TTL, logger)
		go store.RunJanitor(ctx, time.Minute)
		logger.Info("session store ready", zap.String("backend", config.BackendMemory))
		return store, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := session.NewRedisStore(client, cfg.Session.TTL)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		return nil, errors.Wrapf(err, "connect session store at %s", cfg.Redis.Addr)
	}
	logger.Info("session store ready", zap.String("backend", config.BackendRedis), zap.String("addr", cfg.Redis.Addr))
	return store, nil
}
