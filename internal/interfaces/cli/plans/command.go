package plans

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/examforge/examforge/internal/infrastructure/catalog"
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
		Use:   "plans",
		Short: "Plan catalog tools",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create or update plans from a YAML catalog",
		Long:  `Upsert every plan in the catalog by title. Plans missing from the file are left untouched.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	})

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	entries, err := catalog.LoadFile(args[0])
	if err != nil {
		return err
	}

	rt, err := clienv.Init(cmd.Context(), clienv.Options{Environment: env, ConfigPath: configPath})
	if err != nil {
		return err
	}
	defer rt.Close()

	container, err := httpRouter.NewContainer(rt.DB, nil, rt.Config, rt.Log)
	if err != nil {
		return err
	}

	result, err := container.ImportPlans(cmd.Context(), entries)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created %d, updated %d, unchanged %d\n", result.Created, result.Updated, result.Unchanged)
	for _, title := range result.Titles {
		fmt.Fprintf(out, "  %s\n", title)
	}
	return nil
}
