package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wetreat/intake/internal/config"
	"github.com/wetreat/intake/internal/domain/intake"
	"github.com/wetreat/intake/internal/platform/auth"
	"github.com/wetreat/intake/internal/platform/codec"
	"github.com/wetreat/intake/internal/platform/db"
	"github.com/wetreat/intake/internal/platform/middleware"
	"github.com/wetreat/intake/internal/platform/report"
	"github.com/wetreat/intake/migrations"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "intake-server",
		Short: "Patient intake API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run Postgres migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetInt("to")

			migrator, closeFn, err := openMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			var count int
			if target > 0 {
				count, err = migrator.UpTo(cmd.Context(), target)
			} else {
				count, err = migrator.Up(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().Int("to", 0, "Stop after this version (0 applies everything)")
	cmd.AddCommand(upCmd)

	// migrate status
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closeFn, err := openMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

// openMigrator connects to Postgres for the migrate subcommands.
func openMigrator(ctx context.Context) (*db.Migrator, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBDriver != config.DriverPostgres {
		return nil, nil, fmt.Errorf("migrations apply to postgres only; DB_DRIVER is %q (SQLite tables are created on serve)", cfg.DBDriver)
	}

	pool, err := db.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, migrationSource(cfg)), pool.Close, nil
}

func poolConfig(cfg *config.Config) db.PoolConfig {
	return db.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
	}
}

// migrationSource prefers MIGRATIONS_DIR over the embedded set.
func migrationSource(cfg *config.Config) fs.FS {
	if cfg.MigrationsDir != "" {
		return os.DirFS(cfg.MigrationsDir)
	}
	return migrations.FS
}

// openStore opens the configured record store. The returned func releases
// the underlying connections.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (intake.RecordStore, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, poolConfig(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrateOnStart(ctx, pool, cfg, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return intake.NewRecordRepoPG(pool), pool.Close, nil

	case config.DriverSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		store, err := intake.NewRecordRepoSQLite(gdb, cfg.SQLitePath)
		if err != nil {
			db.CloseSQLite(gdb)
			return nil, nil, err
		}
		return store, func() { db.CloseSQLite(gdb) }, nil
	}
	return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

func migrateOnStart(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, logger zerolog.Logger) error {
	count, err := db.NewMigrator(pool, migrationSource(cfg)).Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if count > 0 {
		logger.Info().Int("count", count).Msg("applied migrations")
	}
	return nil
}

// newServer builds the HTTP server around store. It performs no I/O beyond
// loading the report logo.
func newServer(cfg *config.Config, store intake.RecordStore, logger zerolog.Logger) (*echo.Echo, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	renderer := report.NewRenderer(report.Options{
		Title:    cfg.ReportTitle,
		LogoPath: cfg.LogoPath,
		Compress: true,
	}, logger.With().Str("component", "report").Logger())
	svc := intake.NewService(store, renderer, loc)
	handler := intake.NewHandler(svc, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = codec.JSONSerializer{}

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader, auth.AdminHeader},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	api := e.Group("/api",
		middleware.SecurityHeaders(!cfg.IsDev()),
		middleware.BodyLimit(cfg.BodyLimit),
		middleware.RateLimit(rateLimitCfg),
		middleware.RequestTimeout(requestTimeout),
	)
	api.GET("/health", db.HealthHandler(store, store.Location()))
	handler.RegisterRoutes(api, auth.NewGate(cfg.AdminPassword))

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:  cfg.StaticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Request().URL.Path, "/api/")
			},
		}))
	} else {
		logger.Warn().Str("dir", cfg.StaticDir).Msg("frontend directory not found; static hosting disabled")
	}

	return e, nil
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	// Database
	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open record store")
		return err
	}
	defer closeStore()
	logger.Info().Str("driver", cfg.DBDriver).Str("db", store.Location()).Msg("connected to database")

	e, err := newServer(cfg, store, logger)
	if err != nil {
		return err
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
