// Package metrics exposes Prometheus counters for the shape collection.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/geoarch/pkg/core"
)

// Recorder implements core.Recorder on a dedicated registry.
type Recorder struct {
	registry *prometheus.Registry

	ProposalsTotal       *prometheus.CounterVec
	StorageFailuresTotal *prometheus.CounterVec
	RequestDurationMs    *prometheus.HistogramVec
}

// New creates a Recorder and registers its collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ProposalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geoarch_proposals_total",
			Help: "Shape proposals by shape type and outcome",
		}, []string{"type", "status"}),
		StorageFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geoarch_storage_failures_total",
			Help: "Failed store operations by operation",
		}, []string{"op"}),
		RequestDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geoarch_request_duration_ms",
			Help:    "HTTP request duration in milliseconds",
			Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
		}, []string{"method", "route"}),
	}
	r.registry.MustRegister(r.ProposalsTotal, r.StorageFailuresTotal, r.RequestDurationMs)
	return r
}

// TrackShapes exports the current collection size as a gauge.
func (r *Recorder) TrackShapes(count func() int) {
	r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "geoarch_shapes",
		Help: "Shapes currently in the collection",
	}, func() float64 { return float64(count()) }))
}

// RecordProposal implements core.Recorder.
func (r *Recorder) RecordProposal(t core.ShapeType, status core.Status) {
	r.ProposalsTotal.WithLabelValues(typeLabel(t), status.String()).Inc()
}

// typeLabel folds tool names outside the known shape types into "other",
// keeping the label set bounded.
func typeLabel(t core.ShapeType) string {
	switch t {
	case core.ShapePolygon, core.ShapeRectangle, core.ShapeCircle, core.ShapeLineString:
		return string(t)
	default:
		return "other"
	}
}

// RecordStorageFailure implements core.Recorder.
func (r *Recorder) RecordStorageFailure(op string) {
	r.StorageFailuresTotal.WithLabelValues(op).Inc()
}

// ObserveRequest records the duration of one HTTP request.
func (r *Recorder) ObserveRequest(method, route string, ms float64) {
	r.RequestDurationMs.WithLabelValues(method, route).Observe(ms)
}

// Handler serves the registry in the Prometheus text format, to be mounted on /metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

var _ core.Recorder = (*Recorder)(nil)
