package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/stake-plus/contest-radar/src/gallery"
	"github.com/stake-plus/contest-radar/src/webserver"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the gallery API and refresh it periodically",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		gal := gallery.New(gallery.Config{
			Source:   e.pipeline,
			Chain:    e.cfg.Chain.Name,
			Contract: e.cfg.Contract,
			Logger:   logger,
		})
		go gal.Run(ctx, e.cfg.RefreshInterval)
		if e.memory != nil {
			go e.memory.PurgeEvery(ctx, e.cfg.CacheTTL)
		}

		srv := &http.Server{
			Addr: ":" + e.cfg.Port,
			Handler: webserver.New(webserver.Config{
				Gallery:        gal,
				Metadata:       e.pipeline,
				Chain:          e.cfg.Chain,
				VotingSiteURL:  e.cfg.VotingSiteURL,
				JWTSecret:      e.cfg.JWTSecret,
				AllowedOrigins: e.cfg.AllowedOrigins,
				Logger:         logger,
				BaseContext:    ctx,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	},
}
