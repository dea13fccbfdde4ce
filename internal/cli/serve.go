package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"project-management-api/internal/auth"
	"project-management-api/internal/config"
	"project-management-api/internal/database"
	"project-management-api/internal/routes"
	"project-management-api/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	shutdownTimeout  = 30 * time.Second
	janitorInterval  = 10 * time.Minute
	redisDialTimeout = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

// useRevocationStore installs the Redis store when REDIS_ADDR is set and
// the in-memory store with its janitor otherwise. The returned func
// releases the store.
func useRevocationStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (func(), error) {
	if cfg.RedisAddr == "" {
		mem := auth.NewMemoryRevocationStore()
		auth.SetRevocationStore(mem)
		go mem.RunJanitor(ctx, janitorInterval)
		logger.Info("token revocation kept in memory")
		return func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: redisDialTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	auth.SetRevocationStore(auth.NewRedisRevocationStore(rdb, ""))
	logger.Info("token revocation stored in redis", zap.String("addr", cfg.RedisAddr))
	return func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("closing redis client", zap.Error(err))
		}
	}, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	auth.Configure(cfg)

	closeStore, err := useRevocationStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	shutdownTracing, err := telemetry.NewProvider(ctx, cfg, os.Stdout)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	if err := database.InitDB(cfg); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer database.Close() //nolint:errcheck

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(routes.SetupRoutes(cfg, logger), "project-management-api"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout + 5*time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
