// Package token issues access tokens for local development and support work.
package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/examforge/examforge/internal/infrastructure/auth"
	"github.com/examforge/examforge/internal/interfaces/cli/clienv"
	"github.com/examforge/examforge/internal/shared/authorization"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/constants"
)

var (
	env        string
	configPath string
	userID     uint
	email      string
	role       string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Access token tools",
	}

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed access token",
		Long:  `Sign an access token with the configured JWT secret. The token is printed on stdout.`,
		RunE:  runIssue,
	}
	issue.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	issue.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	issue.Flags().UintVar(&userID, "user", 0, "User ID (required)")
	issue.Flags().StringVar(&email, "email", "", "Email claim")
	issue.Flags().StringVar(&role, "role", authorization.RoleUser.String(), "Role: user, manager or admin")
	_ = issue.MarkFlagRequired("user")

	cmd.AddCommand(issue)
	return cmd
}

func runIssue(cmd *cobra.Command, args []string) error {
	parsed := authorization.UserRole(role)
	if !parsed.IsValid() {
		return fmt.Errorf("unknown role %q", role)
	}
	if userID == 0 {
		return fmt.Errorf("--user must be positive")
	}

	rt, err := clienv.Init(cmd.Context(), clienv.Options{
		Environment:  env,
		ConfigPath:   configPath,
		SkipDatabase: true,
	})
	if err != nil {
		return err
	}

	jwtSvc := auth.NewJWTService(rt.Config.Auth.JWT.Secret, rt.Config.Auth.JWT.AccessExpMinutes, biztime.SystemClock{})
	signed, expiresAt, err := jwtSvc.Generate(userID, email, parsed)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	rt.Log.Infow("issued access token", "user_id", userID, "role", parsed, "expires_at", expiresAt)
	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}
