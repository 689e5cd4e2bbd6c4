package tracing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func decodeLines(t *testing.T, data []byte) []SpanLine {
	t.Helper()
	var out []SpanLine
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var line SpanLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line), sc.Text())
		out = append(out, line)
	}
	require.NoError(t, sc.Err())
	return out
}

// recordSpans runs fn against a real tracer and returns the ended spans.
func recordSpans(fn func(ctx context.Context, tp *sdktrace.TracerProvider)) []sdktrace.ReadOnlySpan {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	fn(context.Background(), tp)
	return recorder.Ended()
}

func TestWriterExporter_SpanLines(t *testing.T) {
	spans := recordSpans(func(ctx context.Context, tp *sdktrace.TracerProvider) {
		tracer := tp.Tracer("test")
		ctx, save := tracer.Start(ctx, SpanPrefixStore+"save")
		save.SetAttributes(attribute.String(AttrModelName, "car"), attribute.Int(AttrFeatureCount, 8))

		_, upsert := tracer.Start(ctx, SpanPrefixRepo+"save")
		RecordError(upsert, errors.New("database is locked"))
		upsert.End()
		save.End()
	})

	var buf bytes.Buffer
	exp := NewWriterExporter(&buf)
	require.NoError(t, exp.ExportSpans(context.Background(), spans))

	lines := decodeLines(t, buf.Bytes())
	require.Len(t, lines, 2)

	repo, store := lines[0], lines[1]
	require.Equal(t, "repo.save", repo.Name)
	require.Equal(t, store.Span, repo.Parent)
	require.Equal(t, store.Trace, repo.Trace)
	require.Equal(t, "database is locked", repo.Error)
	require.Equal(t, []string{"exception"}, repo.Events)

	require.Equal(t, "store.save", store.Name)
	require.Empty(t, store.Parent)
	require.Empty(t, store.Error)
	require.Equal(t, "car", store.Attrs[AttrModelName])
	require.EqualValues(t, 8, store.Attrs[AttrFeatureCount])
	_, err := time.ParseDuration(store.Duration)
	require.NoError(t, err)
}

func TestWriterExporter_ErrorWithoutDescription(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	span := tracetest.SpanStub{
		Name:      "repo.delete",
		StartTime: start,
		EndTime:   start.Add(1500 * time.Microsecond),
		Status:    sdktrace.Status{Code: codes.Error},
	}.Snapshot()

	var buf bytes.Buffer
	require.NoError(t, NewWriterExporter(&buf).ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{span}))

	lines := decodeLines(t, buf.Bytes())
	require.Len(t, lines, 1)
	require.Equal(t, "error", lines[0].Error)
	require.Equal(t, "1.5ms", lines[0].Duration)
	require.True(t, start.Equal(lines[0].Start))
	require.Nil(t, lines[0].Attrs)
}

func TestFileExporter_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "traces.jsonl")
	for _, name := range []string{"repo.load", "repo.list"} {
		spans := recordSpans(func(ctx context.Context, tp *sdktrace.TracerProvider) {
			_, s := tp.Tracer("test").Start(ctx, name)
			s.End()
		})
		exp, err := NewFileExporter(path)
		require.NoError(t, err)
		require.NoError(t, exp.ExportSpans(context.Background(), spans))
		require.NoError(t, exp.Shutdown(context.Background()))
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := decodeLines(t, data)
	require.Len(t, lines, 2)
	require.Equal(t, "repo.load", lines[0].Name)
	require.Equal(t, "repo.list", lines[1].Name)
}

func TestFileExporter_Shutdown(t *testing.T) {
	exp, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	require.NoError(t, err)

	require.NoError(t, exp.Shutdown(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()))

	err = exp.ExportSpans(context.Background(), nil)
	require.ErrorIs(t, err, ErrExporterClosed)
}
