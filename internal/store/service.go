package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/zjrosen/featmodel/internal/codec"
	"github.com/zjrosen/featmodel/internal/featuremodel"
	"github.com/zjrosen/featmodel/internal/log"
)

// Service saves and loads feature models through a Repository.
type Service struct {
	repo   Repository
	format codec.Format
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithFormat sets the format new snapshots are encoded in. Defaults to YAML,
// the only lossless format.
func WithFormat(f codec.Format) ServiceOption {
	return func(s *Service) {
		s.format = f
	}
}

// NewService creates a service backed by repo.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, format: codec.YAML{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save encodes m and stores it under name, replacing any previous version.
func (s *Service) Save(ctx context.Context, name string, m featuremodel.Reader) error {
	var buf bytes.Buffer
	if err := s.format.Encode(&buf, m); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	features := m.Features()
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name()
	}
	snap := &Snapshot{Name: name, Format: s.format.Name(), Data: buf.Bytes(), Features: names}
	if err := s.repo.Save(ctx, snap); err != nil {
		return err
	}
	log.Info(log.CatStore, "saved model", "name", name, "format", snap.Format, "features", len(names))
	return nil
}

// Load decodes the model stored under name into a new model built with opts.
func (s *Service) Load(ctx context.Context, name string, opts ...featuremodel.Option) (*featuremodel.Model, error) {
	snap, err := s.repo.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	f, err := codec.Lookup(snap.Format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	m, err := f.Decode(bytes.NewReader(snap.Data), opts...)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	log.Debug(log.CatStore, "loaded model", "name", name, "features", m.NumberOfFeatures())
	return m, nil
}

// List returns summaries of all stored models.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	return s.repo.List(ctx)
}

// Delete removes the model stored under name.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}
	log.Info(log.CatStore, "deleted model", "name", name)
	return nil
}

// FindByFeatureName returns the names of stored models with a feature
// called feature.
func (s *Service) FindByFeatureName(ctx context.Context, feature string) ([]string, error) {
	return s.repo.FindByFeatureName(ctx, feature)
}
