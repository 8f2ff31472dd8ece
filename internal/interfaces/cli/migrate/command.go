package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/examforge/examforge/internal/infrastructure/migration"
	"github.com/examforge/examforge/internal/interfaces/cli/clienv"
	"github.com/examforge/examforge/internal/shared/constants"
	"github.com/examforge/examforge/internal/shared/logger"
)

const defaultScriptsDir = "./internal/infrastructure/migration/scripts"

var (
	env        string
	configPath string
	name       string
	dir        string
	steps      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and status of the database.`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create a new timestamped SQL migration file with the specified name.`,
		RunE:  runCreate,
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.Flags().StringVarP(&dir, "dir", "d", defaultScriptsDir, "Directory to write the migration into")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runUp(cmd *cobra.Command, args []string) error {
	rt, err := clienv.Init(cmd.Context(), clienv.Options{Environment: env, ConfigPath: configPath})
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Log.Infow("running up migrations", "environment", env)

	if err := migration.NewGooseStrategy(rt.Log).Migrate(rt.DB); err != nil {
		rt.Log.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	rt.Log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	rt, err := clienv.Init(cmd.Context(), clienv.Options{Environment: env, ConfigPath: configPath})
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Log.Infow("running down migrations", "environment", env, "steps", steps)

	if err := migration.NewGooseStrategy(rt.Log).MigrateDown(rt.DB, steps); err != nil {
		rt.Log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	rt.Log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := clienv.Init(cmd.Context(), clienv.Options{Environment: env, ConfigPath: configPath})
	if err != nil {
		return err
	}
	defer rt.Close()

	strategy := migration.NewGooseStrategy(rt.Log)
	version, err := strategy.GetVersion(rt.DB)
	if err != nil {
		rt.Log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	rt.Log.Infow("current migration version", "version", version)

	return strategy.Status(rt.DB)
}

func runCreate(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger()
	if err := migration.NewGooseStrategy(log).Create(dir, name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created migration %q in %s\n", name, dir)
	return nil
}
