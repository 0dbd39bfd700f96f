package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/geoarch"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of geoarch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("geoarch version %s\n", geoarch.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
