package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/paulmach/orb"

	"github.com/aretw0/geoarch"
)

// bench measures proposal throughput: every accepted shape rewrites the slot,
// so the cost grows with the collection and with the adapter.
func main() {
	count := flag.Int("count", 200, "Number of shapes to propose")
	adapter := flag.String("adapter", "fs", "Storage adapter: fs or sqlite")
	versioning := flag.Bool("git", false, "Commit every save to Git")
	keep := flag.Bool("keep", false, "Keep the benchmark map after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "geoarch_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	service, err := geoarch.New(benchDir,
		geoarch.WithLogger(logger),
		geoarch.WithAutoInit(true),
		geoarch.WithAdapter(*adapter),
		geoarch.WithVersioning(*versioning),
		geoarch.WithLimits(geoarch.Limits{}),
	)
	if err != nil {
		panic(err)
	}

	ctx := context.TODO()

	// Run 1: disjoint squares, only the containment and trim passes.
	fmt.Printf("Proposing %d disjoint shapes (%s, git=%v)...\n", *count, *adapter, *versioning)
	start := time.Now()
	for i := 0; i < *count; i++ {
		x := float64(i%100) * 2
		y := float64(i/100) * 2
		service.Propose(ctx, geoarch.Proposal{Tool: "polygon", Geometry: square(x, y, 1)})
	}
	disjoint := time.Since(start)

	// Run 2: every shape overlaps its neighbour and gets trimmed.
	fmt.Printf("Proposing %d overlapping shapes...\n", *count)
	start = time.Now()
	trimmed := 0
	for i := 0; i < *count; i++ {
		x := float64(i%100) * 1.5
		y := float64(i/100)*3 + 1000
		res := service.Propose(ctx, geoarch.Proposal{Tool: "rectangle", Geometry: square(x, y, 2)})
		if res.Trimmed() {
			trimmed++
		}
	}
	overlapping := time.Since(start)

	// Run 3: reopen, the cost of loading the slot.
	start = time.Now()
	reopened, err := geoarch.New(benchDir, geoarch.WithAdapter(*adapter), geoarch.WithVersioning(*versioning))
	if err != nil {
		panic(err)
	}
	load := time.Since(start)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d shapes per run):\n", *count)
	fmt.Printf("  Disjoint:    %v (%v/shape)\n", disjoint, disjoint/time.Duration(*count))
	fmt.Printf("  Overlapping: %v (%v/shape, %d trimmed)\n", overlapping, overlapping/time.Duration(*count), trimmed)
	fmt.Printf("  Load:        %v (%d shapes)\n", load, reopened.Len())
	fmt.Printf("--------------------------------------------------\n")
}

func square(x0, y0, size float64) orb.Polygon {
	return orb.Polygon{{{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size}, {x0, y0}}}
}
