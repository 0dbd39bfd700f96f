package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/aretw0/geoarch/pkg/core"
	"github.com/aretw0/geoarch/pkg/notify"
)

var importCmd = &cobra.Command{
	Use:   "import [glob]",
	Short: "Propose every feature of the matching GeoJSON files",
	Long: `Import expands the glob (** is supported), reads each file as a
FeatureCollection or a single Feature, and proposes every feature in order.
Features go through the same limits and conflict checks as drawn shapes.`,
	Example: `  geoarch import 'surveys/**/*.geojson'`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		files, err := doublestar.FilepathGlob(args[0])
		if err != nil {
			fatal("Invalid pattern", err)
		}
		if len(files) == 0 {
			fatal("Nothing to import", fmt.Errorf("no files match %s", args[0]))
		}
		sort.Strings(files)

		svc := openService()
		defer svc.Close()
		ctx := context.Background()

		var accepted, rejected int
		for _, file := range files {
			features, err := readFeatures(file)
			if err != nil {
				fatal("Failed to read "+file, err)
			}
			for i, f := range features {
				res := svc.Propose(ctx, core.ProposalFromFeature(f))
				if res.Accepted() {
					accepted++
				} else {
					rejected++
				}
				fmt.Printf("%s#%d: %s\n", file, i, notify.FromResult(res).Message)
			}
		}
		fmt.Printf("%d accepted, %d rejected\n", accepted, rejected)
	},
}

// readFeatures reads a FeatureCollection or a single Feature.
func readFeatures(path string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		return fc.Features, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		return []*geojson.Feature{f}, nil
	}
	return nil, fmt.Errorf("unsupported GeoJSON type %q", probe.Type)
}

func init() {
	rootCmd.AddCommand(importCmd)
}
