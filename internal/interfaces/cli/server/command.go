package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/examforge/examforge/internal/infrastructure/catalog"
	"github.com/examforge/examforge/internal/infrastructure/migration"
	httpRouter "github.com/examforge/examforge/internal/interfaces/http"
	"github.com/examforge/examforge/internal/interfaces/cli/clienv"
	"github.com/examforge/examforge/internal/shared/constants"
	"github.com/examforge/examforge/internal/shared/logger"
)

var (
	env                string
	configPath         string
	autoMigrate        bool
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the ExamForge billing API together with the expiry and cleanup sweeps.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	rt, err := clienv.Init(cmd.Context(), clienv.Options{
		Environment: env,
		ConfigPath:  configPath,
		WithRedis:   true,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.Config
	log := rt.Log

	log.Infow("starting server",
		"environment", env,
		"auto_migrate", autoMigrate,
		"redis", rt.Redis != nil)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := handleMigrations(rt, env); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	container, err := httpRouter.NewContainer(rt.DB, rt.Redis, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	if cfg.Billing.CatalogPath != "" {
		if err := importCatalog(cmd.Context(), container, cfg.Billing.CatalogPath, log); err != nil {
			return err
		}
	}

	container.SetupRoutes()
	if err := container.StartBackground(); err != nil {
		return fmt.Errorf("failed to start background services: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serveErr:
		log.Errorw("server failed", "error", err)
		container.Shutdown(context.Background())
		return err
	}

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	container.Shutdown(ctx)

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(rt *clienv.Env, environment string) error {
	if skipMigrationCheck {
		rt.Log.Infow("skipping migration check")
		return nil
	}

	if autoMigrate {
		if environment == constants.EnvProduction {
			rt.Log.Warnw("auto-migration is enabled in production environment - this is not recommended!")
		}
		rt.Log.Infow("running auto-migration", "environment", environment)
		if err := migration.NewManager(environment).Migrate(rt.DB); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		rt.Log.Infow("auto-migration completed successfully")
		return nil
	}

	strategy := migration.NewGooseStrategy(rt.Log)
	version, err := strategy.GetVersion(rt.DB)
	if err != nil {
		rt.Log.Warnw("failed to check migration status", "error", err)
		return nil
	}

	embedded, err := migration.EmbeddedVersions()
	if err == nil && len(embedded) > 0 && version < embedded[len(embedded)-1] {
		rt.Log.Warnw("database schema is behind the embedded migrations",
			"current", version,
			"latest", embedded[len(embedded)-1])
	} else {
		rt.Log.Infow("current migration version", "version", version)
	}
	return nil
}

func importCatalog(ctx context.Context, container *httpRouter.Container, path string, log logger.Interface) error {
	entries, err := catalog.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load plan catalog: %w", err)
	}
	result, err := container.ImportPlans(ctx, entries)
	if err != nil {
		return fmt.Errorf("failed to import plan catalog: %w", err)
	}
	log.Infow("plan catalog imported",
		"path", path,
		"created", result.Created,
		"updated", result.Updated,
		"unchanged", result.Unchanged)
	return nil
}
