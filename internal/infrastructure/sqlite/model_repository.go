package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/featmodel/internal/store"
	"github.com/zjrosen/featmodel/internal/tracing"
)

// modelColumns is the list of columns selected for model queries.
const modelColumns = `id, name, format, data, created_at, updated_at`

// modelRepository implements store.Repository using SQLite.
type modelRepository struct {
	db     *sql.DB
	tracer trace.Tracer
	now    func() time.Time
}

func newModelRepository(db *sql.DB) *modelRepository {
	return &modelRepository{
		db:     db,
		tracer: tracing.Tracer("featmodel/store/sqlite"),
		now:    time.Now,
	}
}

var _ store.Repository = (*modelRepository)(nil)

// scanModel scans a row into a ModelRow.
func scanModel(scanner interface{ Scan(...any) error }) (*ModelRow, error) {
	var row ModelRow
	err := scanner.Scan(&row.ID, &row.Name, &row.Format, &row.Data, &row.CreatedAt, &row.UpdatedAt)
	return &row, err
}

func (r *modelRepository) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, tracing.SpanPrefixRepo+op, trace.WithAttributes(attrs...))
}

// Save inserts the snapshot or replaces the stored one of the same name,
// keeping its creation time, and rewrites its feature index.
func (r *modelRepository) Save(ctx context.Context, s *store.Snapshot) (err error) {
	if err := s.Validate(); err != nil {
		return err
	}
	ctx, span := r.start(ctx, "save",
		attribute.String(tracing.AttrModelName, s.Name),
		attribute.String(tracing.AttrModelFormat, s.Format),
		attribute.Int(tracing.AttrFeatureCount, len(s.Features)))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := toModelRow(s, r.now())
	_, err = tx.ExecContext(ctx,
		`INSERT INTO models (name, format, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET format = excluded.format, data = excluded.data, updated_at = excluded.updated_at`,
		row.Name, row.Format, row.Data, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert model: %w", err)
	}

	stored, err := scanModel(tx.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE name = ?`, row.Name))
	if err != nil {
		return fmt.Errorf("failed to read back model: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM model_features WHERE model_id = ?`, stored.ID); err != nil {
		return fmt.Errorf("failed to clear feature index: %w", err)
	}
	for i, name := range s.Features {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO model_features (model_id, position, name) VALUES (?, ?, ?)`,
			stored.ID, i, name,
		); err != nil {
			return fmt.Errorf("failed to index feature: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit model: %w", err)
	}

	s.CreatedAt = time.Unix(stored.CreatedAt, 0)
	s.UpdatedAt = time.Unix(stored.UpdatedAt, 0)
	return nil
}

// Load returns the snapshot stored under name.
func (r *modelRepository) Load(ctx context.Context, name string) (_ *store.Snapshot, err error) {
	ctx, span := r.start(ctx, "load", attribute.String(tracing.AttrModelName, name))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	row, err := scanModel(r.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.ModelNotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find model: %w", err)
	}

	features, err := r.features(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return row.toSnapshot(features), nil
}

func (r *modelRepository) features(ctx context.Context, modelID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM model_features WHERE model_id = ? ORDER BY position`, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer func() { _ = rows.Close() }()

	features := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, name)
	}
	return features, rows.Err()
}

// List returns one summary per stored model ordered by name.
func (r *modelRepository) List(ctx context.Context) (_ []store.Summary, err error) {
	ctx, span := r.start(ctx, "list")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	rows, err := r.db.QueryContext(ctx,
		`SELECT m.name, m.format, m.updated_at, COUNT(f.name)
		 FROM models m LEFT JOIN model_features f ON f.model_id = m.id
		 GROUP BY m.id ORDER BY m.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []store.Summary
	for rows.Next() {
		var (
			s         store.Summary
			updatedAt int64
		)
		if err := rows.Scan(&s.Name, &s.Format, &updatedAt, &s.FeatureCount); err != nil {
			return nil, fmt.Errorf("failed to scan model summary: %w", err)
		}
		s.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(out)))
	return out, nil
}

// Delete removes the model stored under name. Its feature index is removed
// by the foreign key cascade.
func (r *modelRepository) Delete(ctx context.Context, name string) (err error) {
	ctx, span := r.start(ctx, "delete", attribute.String(tracing.AttrModelName, name))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	result, err := r.db.ExecContext(ctx, `DELETE FROM models WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &store.ModelNotFoundError{Name: name}
	}
	return nil
}

// FindByFeatureName returns the names of models indexing a feature called
// feature.
func (r *modelRepository) FindByFeatureName(ctx context.Context, feature string) (_ []string, err error) {
	ctx, span := r.start(ctx, "find_by_feature", attribute.String(tracing.AttrFeatureName, feature))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT m.name FROM models m
		 JOIN model_features f ON f.model_id = m.id
		 WHERE f.name = ? ORDER BY m.name`, feature)
	if err != nil {
		return nil, fmt.Errorf("failed to find models by feature: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan model name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(names)))
	return names, nil
}
