package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/geoarch/pkg/geometry"
)

var areaCmd = &cobra.Command{
	Use:   "area",
	Short: "Show the geodesic area of every shape",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		var total float64
		for _, s := range svc.List() {
			total += geometry.GeodesicArea(s.Geometry)
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Type, geometry.FormatArea(s.Geometry))
		}
		fmt.Fprintf(w, "TOTAL\t\t%.2f km²\n", total/1e6)
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(areaCmd)
}
