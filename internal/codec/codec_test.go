package codec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/featmodel/internal/featuremodel"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"yaml", "YAML", "dimacs", "featureide"} {
		f, err := Lookup(name)
		require.NoError(t, err, name)
		require.NotNil(t, f)
	}

	_, err := Lookup("sxfm")
	require.ErrorIs(t, err, ErrUnknownFormat)
	require.Contains(t, err.Error(), "dimacs, featureide, yaml")
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"model.yaml", "yaml"},
		{"dir/model.YML", "yaml"},
		{"model.dimacs", "dimacs"},
		{"model.cnf", "dimacs"},
		{"model.xml", "featureide"},
	}
	for _, tt := range tests {
		f, err := ForPath(tt.path)
		require.NoError(t, err, tt.path)
		require.Equal(t, tt.want, f.Name(), tt.path)
	}

	_, err := ForPath("model.json")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestNames(t *testing.T) {
	require.Equal(t, []string{"dimacs", "featureide", "yaml"}, Names())
}

func TestReadWriteFile(t *testing.T) {
	m := carModel(t)
	dir := t.TempDir()

	for _, name := range []string{"car.yaml", "car.xml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, "", m))

		got, err := ReadFile(path, "")
		require.NoError(t, err)
		t.Cleanup(got.Close)
		require.Equal(t, describeWithoutName(m), describeWithoutName(got), name)
	}
}

func TestWriteFile_FailedEncodeLeavesNoFile(t *testing.T) {
	m := carModel(t)
	_, err := m.AddFeature("Loose")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "car.xml")
	err = WriteFile(path, "", m)
	require.ErrorIs(t, err, ErrUnsupported)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestReadFile_ExplicitFormatOverridesExtension(t *testing.T) {
	m := carModel(t)
	path := filepath.Join(t.TempDir(), "car.txt")
	require.NoError(t, WriteFile(path, "yaml", m))

	_, err := ReadFile(path, "")
	require.ErrorIs(t, err, ErrUnknownFormat)

	got, err := ReadFile(path, "yaml")
	require.NoError(t, err)
	t.Cleanup(got.Close)
	require.Equal(t, describe(m), describe(got))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// describeWithoutName drops the model name line, which FeatureIDE files do
// not carry.
func describeWithoutName(m featuremodel.Reader) string {
	_, rest, _ := strings.Cut(describe(m), "\n")
	return rest
}

func TestWrite_FormatOptions(t *testing.T) {
	m := carModel(t)
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.dimacs")
	tree := filepath.Join(dir, "tree.dimacs")

	require.NoError(t, Write(plain, DIMACS{}, m))
	require.NoError(t, Write(tree, DIMACS{Tree: true}, m))

	plainData, err := os.ReadFile(plain)
	require.NoError(t, err)
	treeData, err := os.ReadFile(tree)
	require.NoError(t, err)
	require.Contains(t, string(plainData), "p cnf 8 1\n")
	require.Contains(t, string(treeData), "p cnf 8 14\n")
}
