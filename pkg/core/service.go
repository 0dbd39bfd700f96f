package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Service owns the ordered collection of accepted shapes.
// It is the only component holding mutable shapes; everything it hands out is a copy.
type Service struct {
	mu       sync.RWMutex
	shapes   []Shape
	repo     Repository
	resolver *Resolver
	limits   Limits
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	recorder Recorder

	eventBufferSize int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLimits sets the per type admission limits.
func WithLimits(l Limits) ServiceOption {
	return func(s *Service) {
		s.limits = maps.Clone(l)
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for createdAt.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides how shape ids are minted.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		s.newID = fn
	}
}

// WithRecorder registers a Recorder for proposal and storage counters.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithEventBuffer sets the buffer size of the channel returned by Watch.
func WithEventBuffer(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}

// NewService creates a new Service and loads the persisted collection once.
// A failed or corrupt load is logged and leaves the collection empty; it never fails construction.
func NewService(ctx context.Context, repo Repository, resolver *Resolver, opts ...ServiceOption) *Service {
	s := &Service{
		repo:            repo,
		resolver:        resolver,
		limits:          DefaultLimits(),
		logger:          slog.New(slog.DiscardHandler),
		now:             time.Now,
		newID:           uuid.NewString,
		eventBufferSize: 100,
	}
	for _, opt := range opts {
		opt(s)
	}

	shapes, err := s.load(ctx)
	if err != nil {
		s.logger.Error("storage load failed, starting empty", "error", err)
		s.recordStorageFailure("load")
	}
	s.shapes = shapes
	return s
}

// Propose runs admission control and spatial conflict resolution for one
// freshly drawn shape. It always returns a Result and never panics on bad geometry.
func (s *Service) Propose(ctx context.Context, p Proposal) Result {
	t := NormalizeTool(p.Tool)

	if KindOf(p.Geometry) == KindUnsupported {
		s.logger.Warn("proposal rejected", "type", t, "reason", "unsupported geometry")
		return s.finish(Result{Status: StatusInvalid, Type: t})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.limits.Allows(t, s.countLocked(t)) {
		s.logger.Info("proposal rejected", "type", t, "reason", "limit reached", "limit", s.limits[t])
		return s.finish(Result{Status: StatusLimitReached, Type: t})
	}

	res := s.resolve(p.Geometry)
	switch res.Verdict {
	case VerdictContained:
		s.logger.Info("proposal rejected", "type", t, "reason", "contained")
		return s.finish(Result{Status: StatusContained, Type: t})
	case VerdictFullyOverlapped:
		s.logger.Info("proposal rejected", "type", t, "reason", "fully overlapped")
		return s.finish(Result{Status: StatusFullyOverlapped, Type: t})
	case VerdictAccepted:
	}

	shape := Shape{
		ID:        s.newID(),
		Type:      t,
		Geometry:  orb.Clone(res.Geometry),
		CreatedAt: s.now().UnixMilli(),
	}
	shape.Radius, shape.Properties = splitProperties(t, p.Properties)

	s.shapes = append(s.shapes, shape)
	s.persistLocked(ctx)

	s.logger.Info("shape accepted", "id", shape.ID, "type", t, "trimmed_by", len(res.TrimmedBy))
	return s.finish(Result{Status: StatusAccepted, Type: t, Shape: shape.Clone(), TrimmedBy: res.TrimmedBy})
}

// resolve shields the collection from a panicking primitive; a candidate
// that could not be validated is refused.
func (s *Service) resolve(candidate orb.Geometry) (res Resolution) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("spatial resolution panicked", "panic", r)
			res = Resolution{Verdict: VerdictFullyOverlapped}
		}
	}()
	return s.resolver.Resolve(candidate, s.shapes)
}

func (s *Service) finish(r Result) Result {
	if s.recorder != nil {
		s.recorder.RecordProposal(r.Type, r.Status)
	}
	return r
}

// splitProperties separates the reserved radius from the extra properties.
// Reserved keys never leak into the extras.
func splitProperties(t ShapeType, props map[string]any) (*float64, map[string]any) {
	var radius *float64
	extra := make(map[string]any, len(props))
	for k, v := range props {
		switch k {
		case PropRadius:
			if n, ok := number(v); ok && t == ShapeCircle {
				radius = &n
			}
		case PropShapeType, PropCreatedAt:
		default:
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		extra = nil
	}
	return radius, extra
}

// Delete removes the shape with the given id. Deleting an absent id is a no-op
// and reports false.
func (s *Service) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, shape := range s.shapes {
		if shape.ID != id {
			continue
		}
		next := make([]Shape, 0, len(s.shapes)-1)
		next = append(next, s.shapes[:i]...)
		next = append(next, s.shapes[i+1:]...)
		s.shapes = next
		s.persistLocked(ctx)
		s.logger.Info("shape deleted", "id", id)
		return true
	}
	s.logger.Debug("delete of unknown shape ignored", "id", id)
	return false
}

// Clear empties the collection and returns how many shapes were removed.
// Asking the user for confirmation is the caller's job.
func (s *Service) Clear(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.shapes)
	s.shapes = nil
	s.persistLocked(ctx)
	s.logger.Info("collection cleared", "removed", n)
	return n
}

// Export returns the collection as a FeatureCollection document. It does not mutate state.
func (s *Service) Export() *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewFeatureCollection(s.shapes)
}

// ExportJSON renders Export as indented JSON, ready to be saved as geo-data.json.
func (s *Service) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s.Export(), "", "  ")
}

// List returns copies of all shapes in insertion order.
func (s *Service) List() []Shape {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Shape, len(s.shapes))
	for i, shape := range s.shapes {
		out[i] = shape.Clone()
	}
	return out
}

// Get returns a copy of the shape with the given id.
func (s *Service) Get(id string) (Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, shape := range s.shapes {
		if shape.ID == id {
			return shape.Clone(), true
		}
	}
	return Shape{}, false
}

// Len returns the number of shapes in the collection.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shapes)
}

// Count returns the number of shapes of type t.
func (s *Service) Count(t ShapeType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked(t)
}

// Limits returns a copy of the configured admission limits.
func (s *Service) Limits() Limits {
	return maps.Clone(s.limits)
}

func (s *Service) countLocked(t ShapeType) int {
	n := 0
	for _, shape := range s.shapes {
		if shape.Type == t {
			n++
		}
	}
	return n
}

// Reload replaces the in-memory collection with what the store holds.
// On failure the current collection is kept. The store is read under the
// write lock so a concurrent mutation cannot be overwritten by a stale snapshot.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shapes, err := s.load(ctx)
	if err != nil {
		s.recordStorageFailure("load")
		return err
	}
	s.shapes = shapes
	s.logger.Debug("collection reloaded", "shapes", len(shapes))
	return nil
}

// Watch observes changes made to the store by someone else. Each change
// reloads the collection before it is forwarded.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	in, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, s.eventBufferSize)
	go func() {
		defer close(out)
		for e := range in {
			if err := s.Reload(ctx); err != nil {
				s.logger.Error("reload after external change failed", "error", err)
				continue
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close releases the store if it holds an open handle.
func (s *Service) Close() error {
	if c, ok := s.repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// load reads the store and drops shapes whose id was already seen.
func (s *Service) load(ctx context.Context) ([]Shape, error) {
	if s.repo == nil {
		return nil, nil
	}
	shapes, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(shapes))
	out := make([]Shape, 0, len(shapes))
	for _, shape := range shapes {
		if seen[shape.ID] {
			s.logger.Warn("duplicate shape id dropped on load", "id", shape.ID)
			continue
		}
		seen[shape.ID] = true
		out = append(out, shape)
	}
	return out, nil
}

// persistLocked writes the whole collection. Failures are logged and never
// roll back the in-memory state. The write is synchronous and runs under the
// service lock, so a held store lock delays the mutation by at most the
// store's lock timeout.
func (s *Service) persistLocked(ctx context.Context) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, s.shapes); err != nil {
		s.logger.Error("storage save failed", "error", err)
		s.recordStorageFailure("save")
	}
}

func (s *Service) recordStorageFailure(op string) {
	if s.recorder != nil {
		s.recorder.RecordStorageFailure(op)
	}
}
