// Package store persists feature models as named snapshots.
//
// A Repository stores encoded models together with the names of their
// features, so models can be found by the features they contain without
// decoding them. Service sits on top and converts between snapshots and
// featuremodel.Model values.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Store errors.
var (
	ErrModelNotFound   = errors.New("model not found")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// ModelNotFoundError is returned when no model is stored under Name.
type ModelNotFoundError struct {
	Name string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %q not found", e.Name)
}

// Is makes errors.Is(err, ErrModelNotFound) hold.
func (e *ModelNotFoundError) Is(target error) bool {
	return target == ErrModelNotFound
}

// Snapshot is one stored model. Data must not be modified after a snapshot
// is handed to or returned by a Repository.
type Snapshot struct {
	Name      string
	Format    string
	Data      []byte
	Features  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields a repository requires.
func (s *Snapshot) Validate() error {
	switch {
	case s == nil:
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	case s.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidSnapshot)
	case s.Format == "":
		return fmt.Errorf("%w: empty format", ErrInvalidSnapshot)
	}
	return nil
}

// Summary describes a stored model without its data.
type Summary struct {
	Name         string
	Format       string
	FeatureCount int
	UpdatedAt    time.Time
}

// Repository stores snapshots by name.
type Repository interface {
	// Save inserts or replaces the snapshot named s.Name. It fills in
	// CreatedAt and UpdatedAt.
	Save(ctx context.Context, s *Snapshot) error
	// Load returns the snapshot named name or a ModelNotFoundError.
	Load(ctx context.Context, name string) (*Snapshot, error)
	// List returns summaries of all models ordered by name.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes the snapshot named name or returns a ModelNotFoundError.
	Delete(ctx context.Context, name string) error
	// FindByFeatureName returns the names of models containing a feature
	// called feature, ordered by name.
	FindByFeatureName(ctx context.Context, feature string) ([]string, error)
}
