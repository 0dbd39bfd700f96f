package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/geoarch"
)

var historyLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the map and its store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo, err := geoarch.Init(dir(), options(geoarch.WithMustExist(true))...)
		if err != nil {
			fatal("Failed to open map", err)
		}
		svc := openService(geoarch.WithRepository(repo))
		defer svc.Close()

		out := map[string]any{
			"version": geoarch.Version,
			"service": svc.State(),
		}
		if comp, ok := repo.(introspection.Component); ok {
			out["adapter"] = comp.ComponentType()
		}
		if history, err := geoarch.History(context.Background(), repo, historyLimit); err == nil {
			out["history"] = history
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			fatal("Error encoding JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVar(&historyLimit, "history", 5, "Number of versions to show for Git-backed maps")
}
