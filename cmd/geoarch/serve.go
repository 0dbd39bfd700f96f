package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/geoarch"
	"github.com/aretw0/geoarch/internal/metrics"
	"github.com/aretw0/geoarch/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the map over HTTP",
	Long: `Serve exposes the map to a front-end: draw, delete, clear, export,
status and Prometheus metrics on /metrics. External changes to the store
are picked up while serving.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}

		rec := metrics.New()
		svc := openService(geoarch.WithRecorder(rec))
		rec.TrackShapes(svc.Len)

		if events, err := svc.Watch(ctx); err == nil {
			go func() {
				for e := range events {
					slog.Info("store changed externally", "event", e.String(), "shapes", svc.Len())
				}
			}()
		} else {
			slog.Debug("store is not watchable", "error", err)
		}

		srv := server.New(svc,
			server.WithRecorder(rec),
			server.WithLogger(slog.Default()),
			server.WithVersion(geoarch.Version),
			server.WithRequestLog(),
		)

		slog.Info("serving", "addr", addr, "dir", dir())
		err := srv.Listen(ctx, addr)
		if cerr := svc.Close(); cerr != nil {
			slog.Error("closing store failed", "error", cerr)
		}
		if err != nil {
			fatal("Server stopped", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from geoarch.yaml or GEOARCH_ADDR, else :3000)")
}
