package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pgxadapter "github.com/lborres/reisetagebuch/adapters/pgx"
	"github.com/lborres/reisetagebuch/pkg/config"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema migrations",
		Long:  "Applies the embedded goose migrations. MongoDB needs no schema and is rejected.",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := c.cfg.Backend()
			if err != nil {
				return err
			}
			if backend != config.BackendPostgres {
				return fmt.Errorf("migrate needs a postgres DOCUMENT_STORE_URI, backend is %s", backend)
			}

			if err := pgxadapter.MigrateDSN(cmd.Context(), c.cfg.DocumentStoreURI); err != nil {
				return err
			}
			c.logger.Info("migrations applied")
			return nil
		},
	}
}
