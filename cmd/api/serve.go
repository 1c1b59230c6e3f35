package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/semantic-guard/internal/application"
	appai "github.com/bryanwahyu/semantic-guard/internal/application/ai"
	appanalyses "github.com/bryanwahyu/semantic-guard/internal/application/analyses"
	"github.com/bryanwahyu/semantic-guard/internal/config"
	domai "github.com/bryanwahyu/semantic-guard/internal/domain/ai"
	"github.com/bryanwahyu/semantic-guard/internal/infra/ai/openai"
	"github.com/bryanwahyu/semantic-guard/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/semantic-guard/internal/infra/storage"
	"github.com/bryanwahyu/semantic-guard/internal/logging"
	"github.com/bryanwahyu/semantic-guard/internal/middleware"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			// path config.yaml
			if configPath == "" {
				configPath = "config.yaml"
				if v := os.Getenv("CONFIG_PATH"); v != "" {
					configPath = v
				}
			}
			return serve(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default $CONFIG_PATH or ./config.yaml)")
	return cmd
}

func serve(configPath string) error {
	// load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()

	// init repo
	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("%s storage init error: %w", cfg.Storage.Driver, err)
	}
	defer closeRepo()

	checkers := map[string]middleware.HealthChecker{
		cfg.Storage.Driver: middleware.PingChecker{Pinger: repo},
	}

	// init service
	svc := &appanalyses.Service{
		Repo:   repo,
		Clock:  application.SystemClock{},
		Logger: logger.Named("analyses"),
	}

	// init minio (optional)
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init error: %w", err)
		}
		svc.Archive = store
		checkers["minio"] = middleware.PingChecker{Pinger: store}
	}

	// init ai (optional)
	var aiClient domai.Client
	if cfg.OpenAI.APIKey != "" {
		aiClient = openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}
	aiSvc := appai.NewService(aiClient, svc, application.SystemClock{})

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, aiSvc, httpserver.Options{
		APIKeys:           cfg.Auth.APIKeys,
		RateLimitCapacity: cfg.RateLimit.Capacity,
		RateLimitRefill:   cfg.RateLimit.RefillRate,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		Backend:           cfg.Storage.Driver,
		Checkers:          checkers,
		Logger:            logger.Named("http"),
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.Bool("auth", len(cfg.Auth.APIKeys) > 0),
			zap.Bool("archive", svc.Archive != nil),
			zap.Bool("ai", aiSvc.Enabled()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-stop:
	}
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	return nil
}
