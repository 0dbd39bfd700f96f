package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/geoarch"
	"github.com/aretw0/geoarch/internal/platform"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a map in the data directory",
	Long: `Initialize creates the data directory, the .geoarch marker and, unless
--no-versioning is set, a Git repository. A default geoarch.yaml with the
shape limits is written if none exists.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		target := dir()

		if _, err := geoarch.Init(target, options(geoarch.WithAutoInit(true))...); err != nil {
			fatal("Failed to initialize map", err)
		}

		// Under go run the map lives in the dev sandbox; keep the config next to it.
		written, err := platform.WriteConfig(geoarch.ResolveDataPath(target, geoarch.IsDevRun()), platform.DefaultConfig())
		if err != nil {
			fatal("Failed to write "+platform.ConfigFileName, err)
		}
		if written {
			fmt.Println("Wrote", platform.ConfigFileName)
		}
		fmt.Println("Initialized empty geoarch map in", target)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
