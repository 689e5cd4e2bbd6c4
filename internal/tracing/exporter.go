package tracing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ErrExporterClosed is returned by ExportSpans after Shutdown.
var ErrExporterClosed = errors.New("trace exporter closed")

var _ sdktrace.SpanExporter = (*FileExporter)(nil)

// FileExporter appends one SpanLine per finished span to a JSON lines stream.
type FileExporter struct {
	mu  sync.Mutex
	enc *json.Encoder
	out io.Writer
}

// NewFileExporter appends to path, creating it and its directory.
func NewFileExporter(path string) (*FileExporter, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 -- path comes from config
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return NewWriterExporter(f), nil
}

// NewWriterExporter writes span lines to w. Shutdown closes w when it is an
// io.Closer.
func NewWriterExporter(w io.Writer) *FileExporter {
	return &FileExporter{enc: json.NewEncoder(w), out: w}
}

// SpanLine is the JSON form of one span. Duration uses time.Duration text,
// e.g. "1.25ms".
type SpanLine struct {
	Start    time.Time      `json:"start"`
	Name     string         `json:"name"`
	Duration string         `json:"duration"`
	Trace    string         `json:"trace"`
	Span     string         `json:"span"`
	Parent   string         `json:"parent,omitempty"`
	Error    string         `json:"error,omitempty"`
	Attrs    map[string]any `json:"attrs,omitempty"`
	Events   []string       `json:"events,omitempty"`
}

// ExportSpans encodes spans in the order the SDK hands them over.
func (e *FileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return ErrExporterClosed
	}
	for _, s := range spans {
		if err := e.enc.Encode(lineOf(s)); err != nil {
			return fmt.Errorf("write span %s: %w", s.Name(), err)
		}
	}
	return nil
}

// Shutdown closes the underlying writer. Later calls are no-ops.
func (e *FileExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.out
	e.out, e.enc = nil, nil
	if c, ok := out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func lineOf(s sdktrace.ReadOnlySpan) SpanLine {
	line := SpanLine{
		Start:    s.StartTime().UTC(),
		Name:     s.Name(),
		Duration: s.EndTime().Sub(s.StartTime()).String(),
		Trace:    s.SpanContext().TraceID().String(),
		Span:     s.SpanContext().SpanID().String(),
	}
	if p := s.Parent(); p.IsValid() {
		line.Parent = p.SpanID().String()
	}
	if st := s.Status(); st.Code == codes.Error {
		line.Error = st.Description
		if line.Error == "" {
			line.Error = "error"
		}
	}
	if kvs := s.Attributes(); len(kvs) > 0 {
		line.Attrs = make(map[string]any, len(kvs))
		for _, kv := range kvs {
			line.Attrs[string(kv.Key)] = kv.Value.AsInterface()
		}
	}
	for _, ev := range s.Events() {
		line.Events = append(line.Events, ev.Name)
	}
	return line
}
