package main

import (
	"strings"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hrportal/internal/platform/config"
	"hrportal/internal/platform/db"
)

func newMigrateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(cfg.DatabaseURL) == "" {
				return pkgerrors.New("DATABASE_URL or --database-url is required")
			}
			pool, err := db.Connect(cmd.Context(), *cfg)
			if err != nil {
				return pkgerrors.WithMessage(err, "could not connect to database")
			}
			defer pool.Close()

			if err := db.Migrate(cmd.Context(), pool); err != nil {
				return pkgerrors.WithMessage(err, "could not migrate database")
			}
			log.Info("migrations applied")
			return nil
		},
	}
	bindPostgresFlags(cmd.Flags(), cfg)
	return cmd
}
