package sqlite

import (
	"time"

	"github.com/zjrosen/featmodel/internal/store"
)

// ModelRow represents a row of the models table.
// Times are stored as Unix timestamps.
type ModelRow struct {
	ID        int64
	Name      string
	Format    string
	Data      []byte
	CreatedAt int64
	UpdatedAt int64
}

// toModelRow converts a snapshot to a row stamped with now.
func toModelRow(s *store.Snapshot, now time.Time) *ModelRow {
	return &ModelRow{
		Name:      s.Name,
		Format:    s.Format,
		Data:      s.Data,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}
}

// toSnapshot converts the row and its feature names to a snapshot.
func (r *ModelRow) toSnapshot(features []string) *store.Snapshot {
	return &store.Snapshot{
		Name:      r.Name,
		Format:    r.Format,
		Data:      r.Data,
		Features:  features,
		CreatedAt: time.Unix(r.CreatedAt, 0),
		UpdatedAt: time.Unix(r.UpdatedAt, 0),
	}
}
