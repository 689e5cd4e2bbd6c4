package featuremodel

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T, opts ...Option) (*Model, Node) {
	t.Helper()
	m := New(opts...)
	t.Cleanup(m.Close)
	f, err := m.AddFeature("Root")
	require.NoError(t, err)
	root, err := m.AddTreeRoot(f)
	require.NoError(t, err)
	return m, root
}

func addChild(t *testing.T, parent Node, name string) Node {
	t.Helper()
	f, err := parent.model.AddFeature(name)
	require.NoError(t, err)
	n, err := parent.AddChild(f)
	require.NoError(t, err)
	return n
}

func feature(t *testing.T, m *Model, name string) *Feature {
	t.Helper()
	f, err := m.AddFeature(name)
	require.NoError(t, err)
	return f
}

func names(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.String()
	}
	return out
}

// snapshot renders the whole forest including ranges, groups and group
// indices so tests can assert that a failed mutation changed nothing.
func snapshot(m *Model) string {
	var b strings.Builder
	var visit func(n Node, depth int)
	visit = func(n Node, depth int) {
		fmt.Fprintf(&b, "%s%s g=%d r=%s groups=%v\n",
			strings.Repeat("  ", depth), n, n.GroupIndex(), n.FeatureRange(), n.Groups())
		for _, c := range n.Children() {
			visit(c, depth+1)
		}
	}
	for _, r := range m.Roots() {
		visit(r, 0)
	}
	return b.String()
}
