package command

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geocoder89/courseapi/internal/config"
	"github.com/geocoder89/courseapi/internal/db"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply the embedded database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return errors.New("migrate requires STORE=postgres")
			}

			pool, err := db.NewPool(cmd.Context(), cfg.DBURL)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			if err := db.Migrate(cmd.Context(), pool); err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "migrations applied")
			return nil
		},
	}
}
