// Package sweep runs the billing sweeps once from the command line, for
// cron-less deployments and incident recovery.
package sweep

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	httpRouter "github.com/examforge/examforge/internal/interfaces/http"
	"github.com/examforge/examforge/internal/interfaces/cli/clienv"
	"github.com/examforge/examforge/internal/shared/constants"
)

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a billing sweep once",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "expiry",
			Short: "Expire subscriptions whose paid period has ended",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSweep(cmd, "expiry", (*httpRouter.Container).RunExpirySweep)
			},
		},
		&cobra.Command{
			Use:   "cleanup",
			Short: "Reset checkouts that were never paid",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSweep(cmd, "cleanup", (*httpRouter.Container).RunAbandonedCleanup)
			},
		},
	)

	return cmd
}

func runSweep(cmd *cobra.Command, name string, sweep func(*httpRouter.Container, context.Context) (int, error)) error {
	rt, err := clienv.Init(cmd.Context(), clienv.Options{Environment: env, ConfigPath: configPath})
	if err != nil {
		return err
	}
	defer rt.Close()

	container, err := httpRouter.NewContainer(rt.DB, nil, rt.Config, rt.Log)
	if err != nil {
		return err
	}
	container.StartNotifications()
	defer container.Shutdown(context.Background())

	n, err := sweep(container, cmd.Context())
	if err != nil {
		rt.Log.Errorw("sweep failed", "sweep", name, "error", err)
		return fmt.Errorf("%s sweep failed: %w", name, err)
	}

	rt.Log.Infow("sweep completed", "sweep", name, "processed", n)
	fmt.Fprintf(cmd.OutOrStdout(), "%s sweep processed %d record(s)\n", name, n)
	return nil
}
