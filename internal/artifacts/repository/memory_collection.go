package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
)

type memorySession struct {
	order []string
	items map[string]domain.Artifact
}

// MemoryCollection keeps collections in process memory.
type MemoryCollection struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
}

func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{sessions: make(map[string]*memorySession)}
}

func (m *MemoryCollection) Put(_ context.Context, session string, a *domain.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[session]
	if !ok {
		s = &memorySession{items: make(map[string]domain.Artifact)}
		m.sessions[session] = s
	}
	if _, exists := s.items[a.ID]; exists {
		return domain.ErrArtifactExists
	}
	s.items[a.ID] = a.Clone()
	s.order = append(s.order, a.ID)
	return nil
}

func (m *MemoryCollection) Get(_ context.Context, session, id string) (*domain.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[session]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	a, ok := s.items[id]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	out := a.Clone()
	return &out, nil
}

func (m *MemoryCollection) List(_ context.Context, session string) ([]domain.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[session]
	if !ok {
		return []domain.Artifact{}, nil
	}
	out := make([]domain.Artifact, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out, nil
}

func (m *MemoryCollection) MergeMetadata(_ context.Context, session, id string, metadata map[string]interface{}) (*domain.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[session]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	a, ok := s.items[id]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	a = a.Clone()
	if a.Metadata == nil {
		a.Metadata = make(map[string]interface{}, len(metadata))
	}
	for k, v := range metadata {
		a.Metadata[k] = v
	}
	s.items[id] = a
	out := a.Clone()
	return &out, nil
}

func (m *MemoryCollection) Sessions(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.sessions))
	for k := range m.sessions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
