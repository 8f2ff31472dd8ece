package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/examforge/examforge/internal/interfaces/cli/migrate"
	"github.com/examforge/examforge/internal/interfaces/cli/plans"
	"github.com/examforge/examforge/internal/interfaces/cli/server"
	"github.com/examforge/examforge/internal/interfaces/cli/sweep"
	"github.com/examforge/examforge/internal/interfaces/cli/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "examforge",
		Short:        "ExamForge billing core",
		Long:         `ExamForge billing core: subscription checkout, gateway webhooks, expiry sweeps and plan administration.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		sweep.NewCommand(),
		plans.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
