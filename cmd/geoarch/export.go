package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/geoarch/pkg/notify"
	"github.com/aretw0/geoarch/pkg/server"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the map as a GeoJSON FeatureCollection",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		data, err := svc.ExportJSON()
		if err != nil {
			fatal("Failed to export", err)
		}

		if exportOut == "-" {
			os.Stdout.Write(data)
			fmt.Println()
			return
		}
		if err := os.WriteFile(exportOut, data, 0644); err != nil {
			fatal("Failed to write "+exportOut, err)
		}
		fmt.Fprintf(os.Stderr, "%s (%s)\n", notify.Exported().Message, exportOut)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", server.ExportFileName, "Output file, - for stdout")
}
