package platform

import (
	"context"

	"github.com/aretw0/geoarch/pkg/core"
	"github.com/aretw0/geoarch/pkg/geometry"
)

// New wires a ready to use collection service.
//
//	svc, err := geoarch.New("./my-map", geoarch.WithAutoInit(true))
//
// The URI argument is the data directory; see Init.
func New(uri string, opts ...Option) (*core.Service, error) {
	// 1. Initialize environment (Path, Git, Directories)
	repo, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)

	svcOpts := []core.ServiceOption{core.WithLogger(o.logger)}
	if o.limits != nil {
		svcOpts = append(svcOpts, core.WithLimits(o.limits))
	}
	if o.recorder != nil {
		svcOpts = append(svcOpts, core.WithRecorder(o.recorder))
	}
	if size, ok := o.config["event_buffer"].(int); ok {
		svcOpts = append(svcOpts, core.WithEventBuffer(size))
	}

	// 2. Initialize Domain Service
	resolver := core.NewResolver(geometry.Ops{}, o.logger)
	return core.NewService(context.Background(), repo, resolver, svcOpts...), nil
}
