package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// memoryRepository is a Repository kept in a map.
type memoryRepository struct {
	mu    sync.Mutex
	snaps map[string]*Snapshot
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{snaps: make(map[string]*Snapshot)}
}

func (r *memoryRepository) Save(_ context.Context, s *Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	if prev, ok := r.snaps[s.Name]; ok {
		s.CreatedAt = prev.CreatedAt
	}
	cp := *s
	r.snaps[s.Name] = &cp
	return nil
}

func (r *memoryRepository) Load(_ context.Context, name string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.snaps[name]
	if !ok {
		return nil, &ModelNotFoundError{Name: name}
	}
	cp := *s
	return &cp, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Summary
	for _, s := range r.snaps {
		out = append(out, Summary{Name: s.Name, Format: s.Format, FeatureCount: len(s.Features), UpdatedAt: s.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snaps[name]; !ok {
		return &ModelNotFoundError{Name: name}
	}
	delete(r.snaps, name)
	return nil
}

func (r *memoryRepository) FindByFeatureName(_ context.Context, feature string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := []string{}
	for _, s := range r.snaps {
		for _, f := range s.Features {
			if f == feature {
				names = append(names, s.Name)
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// mockRepository is a testify mock of Repository.
type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Save(ctx context.Context, s *Snapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockRepository) Load(ctx context.Context, name string) (*Snapshot, error) {
	args := m.Called(ctx, name)
	s, _ := args.Get(0).(*Snapshot)
	return s, args.Error(1)
}

func (m *mockRepository) List(ctx context.Context) ([]Summary, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]Summary)
	return out, args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *mockRepository) FindByFeatureName(ctx context.Context, feature string) ([]string, error) {
	args := m.Called(ctx, feature)
	out, _ := args.Get(0).([]string)
	return out, args.Error(1)
}

var (
	_ Repository = (*memoryRepository)(nil)
	_ Repository = (*mockRepository)(nil)
)
