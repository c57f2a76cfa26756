package main

import (
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hrportal/internal/domain/personnel"
	"hrportal/internal/platform/config"
	"hrportal/internal/platform/docstore"
)

func newSeedPersonnelCommand(cfg *config.Config) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-personnel",
		Short: "Replace the personnel collection with documents from a JSON file",
		Long: `Load a JSON array of personnel documents and replace the contents of the
personnel collection with it. Existing documents are dropped first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(cfg.MongoURI) == "" {
				return pkgerrors.New("MONGO_URI or --mongo-uri is required")
			}
			f, err := os.Open(file)
			if err != nil {
				return pkgerrors.WithMessage(err, "could not open seed file")
			}
			defer f.Close()

			docs, err := personnel.DecodeSeed(f)
			if err != nil {
				return pkgerrors.WithMessagef(err, "invalid seed file %s", file)
			}

			store, err := docstore.Connect(cmd.Context(), cfg.MongoURI, cfg.MongoDatabase)
			if err != nil {
				return pkgerrors.WithMessage(err, "could not connect to document store")
			}
			defer func() {
				if err := store.Close(cmd.Context()); err != nil {
					log.WithError(err).Warn("document store close failed")
				}
			}()

			inserted, err := personnel.NewStore(store).ReplaceAll(cmd.Context(), docs)
			if err != nil {
				return pkgerrors.WithMessage(err, "could not replace personnel collection")
			}
			if err := store.EnsureIndexes(cmd.Context()); err != nil {
				log.WithError(err).Warn("ensure document indexes failed")
			}
			log.WithField("documents", inserted).Info("personnel collection replaced")
			return nil
		},
	}
	bindMongoFlags(cmd.Flags(), cfg)
	cmd.Flags().StringVar(&file, "file", "personnel.json", "JSON file holding an array of personnel documents")
	return cmd
}
