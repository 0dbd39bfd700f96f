package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Shapes          int            `json:"shapes"`
	ByType          map[string]int `json:"by_type"`
	Limits          map[string]int `json:"limits"`
	EventBufferSize int            `json:"event_buffer_size"`
	RepositoryType  string         `json:"repository_type"`
	Repository      any            `json:"repository,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repoType := "none"
	var repoState any
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
		if intro, ok := s.repo.(introspection.Introspectable); ok {
			repoState = intro.State()
		}
	}

	byType := make(map[string]int)
	for _, shape := range s.shapes {
		byType[string(shape.Type)]++
	}
	limits := make(map[string]int, len(s.limits))
	for t, n := range s.limits {
		limits[string(t)] = n
	}

	return ServiceState{
		Shapes:          len(s.shapes),
		ByType:          byType,
		Limits:          limits,
		EventBufferSize: s.eventBufferSize,
		RepositoryType:  repoType,
		Repository:      repoState,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
