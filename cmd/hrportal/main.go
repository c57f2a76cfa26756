package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hrportal/internal/platform/config"
	"hrportal/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("could not load configuration")
	}

	if err := newRootCommand(&cfg).Execute(); err != nil {
		log.WithError(err).Fatal("could not execute root command")
	}
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "hrportal",
		Short: "HR record management, analytics and report export",
		Long: `hrportal serves the employee and personnel record APIs backed by
Postgres and MongoDB, computes the HR analytics dashboard and exports it
as a PDF report.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Setup(cfg.LogLevel, cfg.LogFormat)
		},
	}
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (trace,debug,info,warn,error)")
	root.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text,json)")

	root.AddCommand(newServeCommand(cfg))
	root.AddCommand(newMigrateCommand(cfg))
	root.AddCommand(newSeedPersonnelCommand(cfg))
	return root
}
