package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	authservice "github.com/MrEthical07/authservice"
	"github.com/MrEthical07/authservice/domain"
	"github.com/MrEthical07/authservice/httpapi"
	"github.com/MrEthical07/authservice/internal/logging"
	otelexport "github.com/MrEthical07/authservice/metrics/export/otel"
	promexport "github.com/MrEthical07/authservice/metrics/export/prometheus"
	"github.com/MrEthical07/authservice/password"
	"github.com/MrEthical07/authservice/store/memory"
	"github.com/MrEthical07/authservice/store/postgres"
	redisstore "github.com/MrEthical07/authservice/store/redis"
	"github.com/MrEthical07/authservice/store/sqlite"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Build the configured stores and serve the HTTP API until SIGINT or
SIGTERM, then drain in-flight requests.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}

			logger := logging.Setup("authservice", version, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel), cmd.ErrOrStderr())
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, logger)
		},
	}
}

// closers runs cleanups in reverse order of registration.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func runServe(ctx context.Context, cfg Config, logger *slog.Logger) error {
	var cleanup closers
	defer cleanup.run()

	engine, err := buildEngine(ctx, cfg, logger, &cleanup)
	if err != nil {
		return err
	}
	cleanup.add(engine.Close)

	otelMetrics, err := otelexport.NewExporter(otel.GetMeterProvider().Meter("github.com/MrEthical07/authservice"), engine)
	if err != nil {
		return oops.Code("METRICS_SETUP_FAILED").Wrap(err)
	}
	cleanup.add(func() { _ = otelMetrics.Close() })

	handler := httpapi.NewHandler(engine, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
		Metrics:        promexport.NewExporter(engine).Handler(),
	})
	srv := httpapi.NewServer(cfg.Address, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "address", cfg.Address, "user_store", cfg.UserStore, "session_store", cfg.SessionStore)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return oops.Code("SERVER_FAILED").Wrap(err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SERVER_SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

// buildEngine opens the configured backends and assembles the engine.
// Every opened resource is registered on cleanup.
func buildEngine(ctx context.Context, cfg Config, logger *slog.Logger, cleanup *closers) (*authservice.Engine, error) {
	engineCfg := cfg.engineConfig()

	argon, err := password.NewArgon2(password.Config{
		Memory:      engineCfg.Password.Memory,
		Time:        engineCfg.Password.Time,
		Parallelism: engineCfg.Password.Parallelism,
		SaltLength:  engineCfg.Password.SaltLength,
		KeyLength:   engineCfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	pool, err := password.NewPool(argon, cfg.HashWorkers)
	if err != nil {
		return nil, err
	}
	cleanup.add(pool.Close)

	users, err := openUserStore(ctx, cfg, pool, cleanup)
	if err != nil {
		return nil, err
	}

	builder := authservice.New().
		WithConfig(engineCfg).
		WithLogger(logger).
		WithUserStore(users).
		WithAuditSink(authservice.NewSlogSink(logger.With("component", "audit")))

	if cfg.SessionStore == storeRedis {
		client, err := redisstore.Connect(ctx, cfg.RedisAddr, cfg.ConnectAttempts)
		if err != nil {
			return nil, err
		}
		cleanup.add(func() { _ = client.Close() })
		builder = builder.WithRedis(client)
	}

	return builder.Build()
}

func openUserStore(ctx context.Context, cfg Config, hasher domain.PasswordHasher, cleanup *closers) (domain.UserStore, error) {
	switch cfg.UserStore {
	case storePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.ConnectAttempts)
		if err != nil {
			return nil, err
		}
		cleanup.add(pool.Close)
		return postgres.NewUserStore(pool, hasher)
	case storeSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, hasher)
		if err != nil {
			return nil, err
		}
		cleanup.add(func() { _ = store.Close() })
		return store, nil
	default:
		return memory.NewUserStore(hasher)
	}
}
