package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hrportal/internal/app/server"
	"hrportal/internal/platform/config"
)

func newServeCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := server.New(ctx, *cfg)
			if err != nil {
				return pkgerrors.WithMessage(err, "could not start hrportal")
			}
			defer app.Close()

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           app.Router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.WithField("addr", cfg.Addr).Info("hrportal listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return pkgerrors.WithMessage(err, "http server failed")
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Info("shutting down http server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	bindServeFlags(cmd.Flags(), cfg)
	return cmd
}
