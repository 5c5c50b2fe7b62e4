// Package command contains the CLI command constructors.
package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/geocoder89/courseapi/internal/config"
	"github.com/geocoder89/courseapi/internal/observability"
)

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:          "courseapi [command] [flags]",
		Short:        "The users and courses REST API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			if err := config.LoadDotEnv(files...); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}

			cfg := config.Load()
			logger := observability.NewLogger(cfg.Env)
			logger.DebugContext(cmd.Context(), "configuration loaded",
				slog.String("env", cfg.Env),
				slog.String("store", cfg.Store),
				slog.Int("port", cfg.Port),
			)
			slog.SetDefault(logger)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", "", "path to a .env file (default .env when present)")

	cmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		userCommand(),
	)

	return cmd
}
