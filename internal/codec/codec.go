// Package codec translates feature models to and from external file formats.
//
// Formats only use the exported featuremodel API: encoders read through
// featuremodel.Reader and decoders build a fresh Model through its mutators,
// so every decoded model satisfies the same invariants as a hand-built one.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/zjrosen/featmodel/internal/featuremodel"
	"github.com/zjrosen/featmodel/internal/log"
)

// Codec errors.
var (
	ErrUnknownFormat = errors.New("unknown format")
	ErrUnsupported   = errors.New("model not expressible in format")
	ErrMalformed     = errors.New("malformed input")
)

// Format encodes and decodes one file format.
type Format interface {
	// Name is the identifier used on the command line, e.g. "yaml".
	Name() string
	// Extensions lists file extensions, with leading dot, mapped to this format.
	Extensions() []string
	Encode(w io.Writer, m featuremodel.Reader) error
	Decode(r io.Reader, opts ...featuremodel.Option) (*featuremodel.Model, error)
}

var (
	mu      sync.RWMutex
	formats = map[string]Format{}
)

func init() {
	Register(YAML{})
	Register(DIMACS{})
	Register(FeatureIDE{})
}

// Register makes f available to Lookup and ForPath, replacing any format of
// the same name.
func Register(f Format) {
	mu.Lock()
	defer mu.Unlock()
	formats[f.Name()] = f
}

// Lookup returns the format registered under name.
func Lookup(name string) (Format, error) {
	mu.RLock()
	defer mu.RUnlock()
	if f, ok := formats[strings.ToLower(name)]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownFormat, name, strings.Join(namesLocked(), ", "))
}

// ForPath picks a format by the extension of path.
func ForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mu.RLock()
	defer mu.RUnlock()
	for _, name := range namesLocked() {
		if slices.Contains(formats[name].Extensions(), ext) {
			return formats[name], nil
		}
	}
	return nil, fmt.Errorf("%w: no format for extension %q", ErrUnknownFormat, ext)
}

// Names lists the registered format names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ReadFile decodes the model at path. An empty format name selects the format
// by file extension.
func ReadFile(path, format string, opts ...featuremodel.Option) (*featuremodel.Model, error) {
	f, err := resolve(path, format)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path) //nolint:gosec // G304: path is a user supplied model file
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	m, err := f.Decode(file, opts...)
	if err != nil {
		log.ErrorErr(log.CatCodec, "decode failed", err, "path", path, "format", f.Name())
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	log.Debug(log.CatCodec, "decoded model", "path", path, "format", f.Name(),
		"features", m.NumberOfFeatures(), "constraints", m.NumberOfConstraints())
	return m, nil
}

// WriteFile encodes m to path. The file is only written when encoding succeeds.
func WriteFile(path, format string, m featuremodel.Reader) error {
	f, err := resolve(path, format)
	if err != nil {
		return err
	}
	return Write(path, f, m)
}

// Write encodes m to path with f, for formats carrying options such as
// DIMACS{Tree: true}.
func Write(path string, f Format, m featuremodel.Reader) error {
	var buf bytes.Buffer
	if err := f.Encode(&buf, m); err != nil {
		log.ErrorErr(log.CatCodec, "encode failed", err, "path", path, "format", f.Name())
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // G306: model files are not secret
		return err
	}
	log.Debug(log.CatCodec, "encoded model", "path", path, "format", f.Name(), "bytes", buf.Len())
	return nil
}

// EncodeToString is a convenience wrapper around Format.Encode.
func EncodeToString(f Format, m featuremodel.Reader) (string, error) {
	var b strings.Builder
	if err := f.Encode(&b, m); err != nil {
		return "", err
	}
	return b.String(), nil
}

// DecodeString is a convenience wrapper around Format.Decode.
func DecodeString(f Format, s string, opts ...featuremodel.Option) (*featuremodel.Model, error) {
	return f.Decode(strings.NewReader(s), opts...)
}

func resolve(path, format string) (Format, error) {
	if format != "" {
		return Lookup(format)
	}
	return ForPath(path)
}

// featureResolver resolves formula variables against m the way constraint
// resolution does: by name first, then by identifier.
func featureResolver(m featuremodel.Reader) func(string) (*featuremodel.Feature, bool) {
	features := m.Features()
	byName := make(map[string]*featuremodel.Feature, len(features))
	byID := make(map[string]*featuremodel.Feature, len(features))
	for _, f := range features {
		if _, ok := byName[f.Name()]; !ok {
			byName[f.Name()] = f
		}
		byID[f.ID().String()] = f
	}
	return func(ref string) (*featuremodel.Feature, bool) {
		if f, ok := byName[ref]; ok {
			return f, true
		}
		f, ok := byID[ref]
		return f, ok
	}
}
