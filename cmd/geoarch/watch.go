package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	lcadapter "github.com/aretw0/geoarch/pkg/adapters/lifecycle"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print changes made to the map by other processes",
	Long: `Watch follows the store of the map. Every change made by someone else
(another geoarch process, a text editor, a git checkout) reloads the
collection and is printed, until interrupted.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc := openService()
		defer svc.Close()
		events, err := svc.Watch(ctx)
		if err != nil {
			fatal("Failed to watch map", err)
		}

		src := lcadapter.NewSource(events)
		if err := src.Start(ctx); err != nil {
			fatal("Failed to start watcher", err)
		}

		slog.Info("watching for changes", "dir", dir(), "shapes", svc.Len())
		for e := range src.Events() {
			fmt.Printf("%s (%d shapes)\n", e, svc.Len())
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
