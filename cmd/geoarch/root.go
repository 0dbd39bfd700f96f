package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/geoarch"
)

var (
	verbose bool
	dataDir string
	adapter string
	nover   bool

	// cfg is loaded once in PersistentPreRun.
	cfg geoarch.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "geoarch",
	Short: "A geographic shape editor core with spatial conflict resolution",
	Long: `geoarch keeps a collection of shapes drawn on a map.
New shapes inside existing ones are rejected, overlapping ones are trimmed,
and every change is persisted to a local store (optionally versioned by Git).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		wd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}
		cfg, err = geoarch.LoadConfig(wd)
		if err != nil {
			fatal("Invalid configuration", err)
		}

		if verbose {
			cfg.Log.Level = "debug"
		}
		slog.SetDefault(cfg.Log.NewLogger(os.Stderr))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// dir returns the data dir: --dir wins over GEOARCH_DIR and the project root.
func dir() string {
	if dataDir != "" {
		return dataDir
	}
	return cfg.Dir
}

// options assembles the factory options from the config and the global flags.
func options(extra ...geoarch.Option) []geoarch.Option {
	opts := cfg.Options()
	opts = append(opts, geoarch.WithLogger(slog.Default()))
	if adapter != "" {
		opts = append(opts, geoarch.WithAdapter(adapter))
	}
	if nover {
		opts = append(opts, geoarch.WithVersioning(false))
	}
	return append(opts, extra...)
}

// openService opens an existing map.
func openService(extra ...geoarch.Option) *geoarch.Service {
	svc, err := geoarch.New(dir(), options(append([]geoarch.Option{geoarch.WithMustExist(true)}, extra...)...)...)
	if err != nil {
		fatal("Failed to open map", err)
	}
	return svc
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "dir", "C", "", "Data directory (default: project root or GEOARCH_DIR)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Storage adapter: fs or sqlite (default from geoarch.yaml)")
	rootCmd.PersistentFlags().BoolVar(&nover, "no-versioning", false, "Do not commit saves to Git")
}
