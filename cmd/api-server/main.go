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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/HouseOfSounds/VitaeEMR/internal/api"
	"github.com/HouseOfSounds/VitaeEMR/internal/config"
	"github.com/HouseOfSounds/VitaeEMR/internal/db"
	"github.com/HouseOfSounds/VitaeEMR/internal/logging"
	"github.com/HouseOfSounds/VitaeEMR/internal/records"
	redisclient "github.com/HouseOfSounds/VitaeEMR/internal/redis"
	"github.com/HouseOfSounds/VitaeEMR/internal/session"
)

var version = "dev"

func main() {
	if err := newRootCmd(runServer).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the CLI. A bare invocation serves without migrating.
func newRootCmd(serve func(migrate bool) error) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "api-server",
		Short:        "EMR records API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(false)
		},
	}

	rootCmd.AddCommand(serveCmd(serve))
	rootCmd.AddCommand(migrateCmd())
	return rootCmd
}

func serveCmd(serve func(migrate bool) error) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.StorageDriver != config.DriverPostgres {
				return errors.New("migrate requires STORAGE_DRIVER=postgres")
			}
			logger := logging.New(cfg.Env, cfg.LogLevel)

			pool, err := db.ConnectPostgres(cmd.Context(), db.PoolOptionsFrom(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			return applyMigrations(cmd.Context(), pool, logger)
		},
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	applied, err := db.Migrate(ctx, pool)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(applied) == 0 {
		logger.Info().Msg("schema up to date")
	}
	for _, name := range applied {
		logger.Info().Str("migration", name).Msg("migration applied")
	}
	return nil
}

func runServer(migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireIdentity(); err != nil {
		return err
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)
	logger.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("storage", cfg.StorageDriver).
		Str("sessions", cfg.SessionStore).
		Str("clinic_tz", cfg.Location.String()).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	routerCfg := api.RouterConfig{
		Verifier: session.NewVerifier(cfg.IdentitySecret, cfg.IdentityIssuer),
		Cookies: api.CookieSettings{
			Name:   cfg.SessionCookie,
			TTL:    cfg.SessionTTL,
			Secure: !cfg.IsDev(),
		},
		Logger:  logger,
		Env:     cfg.Env,
		Version: version,
	}

	var repos records.Repositories
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := db.ConnectPostgres(rootCtx, db.PoolOptionsFrom(cfg))
		if err != nil {
			return fmt.Errorf("postgres connection: %w", err)
		}
		defer pool.Close()
		logger.Info().Int32("max_conns", cfg.PostgresMaxConns).Msg("connected to Postgres")

		if migrate {
			if err := applyMigrations(rootCtx, pool, logger); err != nil {
				return err
			}
		}

		repos = records.NewPgRepositories(pool)
		routerCfg.Postgres = pool.Ping
	default:
		logger.Warn().Msg("using in-memory storage, records are lost on restart")
		repos = records.NewMemoryRepositories()
	}

	if cfg.UsesRedis() {
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg)
		if err != nil {
			return fmt.Errorf("redis connection: %w", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error().Err(err).Msg("error closing redis")
			}
		}()
		logger.Info().Msg("connected to Redis")

		routerCfg.Sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		routerCfg.Redis = redisPinger(rdb)
	} else {
		routerCfg.Sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	routerCfg.Service = records.NewService(repos, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(routerCfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logger.Info().Msg("api-server stopped")
	return nil
}

func redisPinger(rdb *redis.Client) api.Pinger {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
