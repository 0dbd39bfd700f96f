package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/aretw0/geoarch/pkg/notify"
	"github.com/aretw0/geoarch/pkg/server"
)

var (
	drawTool     string
	drawGeometry string
	drawFile     string
	drawCenter   string
	drawRadius   float64
	drawProps    map[string]string
)

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Propose a new shape",
	Long: `Draw offers one shape to the map. The geometry comes from --geometry
(inline GeoJSON), --file (a GeoJSON geometry or feature) or, for circles,
--center lng,lat with --radius in meters.`,
	Example: `  geoarch draw --tool rectangle --geometry '{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}'
  geoarch draw --tool circle --center 13.40,52.52 --radius 250 --prop label=park`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		req, err := buildDrawRequest(cmd)
		if err != nil {
			fatal("Invalid shape", err)
		}
		p, err := req.Proposal()
		if err != nil {
			fatal("Invalid shape", err)
		}

		svc := openService()
		defer svc.Close()
		res := svc.Propose(context.Background(), p)
		n := notify.FromResult(res)
		if !res.Accepted() {
			fmt.Fprintln(os.Stderr, n.Message)
			os.Exit(1)
		}
		fmt.Printf("%s (%s)\n", n.Message, res.Shape.ID)
	},
}

func buildDrawRequest(cmd *cobra.Command) (server.DrawRequest, error) {
	req := server.DrawRequest{Tool: drawTool}
	if len(drawProps) > 0 {
		req.Properties = make(map[string]any, len(drawProps))
		for k, v := range drawProps {
			req.Properties[k] = v
		}
	}
	if cmd.Flags().Changed("radius") {
		req.Radius = &drawRadius
	}

	switch {
	case drawCenter != "":
		c, err := parsePoint(drawCenter)
		if err != nil {
			return req, err
		}
		req.Center = &c
	case drawGeometry != "":
		g, err := geojson.UnmarshalGeometry([]byte(drawGeometry))
		if err != nil {
			return req, fmt.Errorf("parse --geometry: %w", err)
		}
		req.Geometry = g
	case drawFile != "":
		g, props, err := readGeometryFile(drawFile)
		if err != nil {
			return req, err
		}
		req.Geometry = g
		for k, v := range props {
			if req.Properties == nil {
				req.Properties = make(map[string]any)
			}
			if _, set := req.Properties[k]; !set {
				req.Properties[k] = v
			}
		}
	}
	return req, nil
}

// parsePoint reads "lng,lat".
func parsePoint(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("center must be lng,lat, got %q", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("center longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("center latitude: %w", err)
	}
	return orb.Point{lng, lat}, nil
}

// readGeometryFile accepts a bare GeoJSON geometry or a single Feature.
func readGeometryFile(path string) (*geojson.Geometry, geojson.Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if probe.Type == "Feature" {
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return geojson.NewGeometry(f.Geometry), f.Properties, nil
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return g, nil, nil
}

func init() {
	rootCmd.AddCommand(drawCmd)
	drawCmd.Flags().StringVarP(&drawTool, "tool", "t", "", "Drawing tool: polygon, rectangle, circle or polyline")
	drawCmd.Flags().StringVar(&drawGeometry, "geometry", "", "GeoJSON geometry")
	drawCmd.Flags().StringVarP(&drawFile, "file", "f", "", "File with a GeoJSON geometry or feature")
	drawCmd.Flags().StringVar(&drawCenter, "center", "", "Circle center as lng,lat")
	drawCmd.Flags().Float64Var(&drawRadius, "radius", 0, "Circle radius in meters")
	drawCmd.Flags().StringToStringVar(&drawProps, "prop", nil, "Extra property key=value (repeatable)")
	drawCmd.MarkFlagsMutuallyExclusive("geometry", "file", "center")
	_ = drawCmd.MarkFlagRequired("tool")
}
