// Package testutil provides fixtures for building feature models in tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/featmodel/internal/featuremodel"
)

// Builder accumulates features, tree positions and constraints and creates
// them in order.
type Builder struct {
	t           *testing.T
	opts        []featuremodel.Option
	name        string
	steps       []func(*featuremodel.Model, map[string]featuremodel.Node)
	constraints []string
}

// NewBuilder creates a builder for a model constructed with opts.
func NewBuilder(t *testing.T, opts ...featuremodel.Option) *Builder {
	t.Helper()
	return &Builder{t: t, opts: opts}
}

// WithName sets the model name.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithRoot adds a feature as a new tree root.
func (b *Builder) WithRoot(name string, opts ...NodeOption) *Builder {
	data := nodeData{name: name}
	for _, opt := range opts {
		opt(&data)
	}
	b.steps = append(b.steps, func(m *featuremodel.Model, nodes map[string]featuremodel.Node) {
		f := b.feature(m, data)
		n, err := m.AddTreeRoot(f)
		require.NoError(b.t, err)
		b.configure(n, data)
		nodes[name] = n
	})
	return b
}

// WithChild adds a feature below the node of the feature named parent.
func (b *Builder) WithChild(parent, name string, opts ...NodeOption) *Builder {
	data := nodeData{name: name}
	for _, opt := range opts {
		opt(&data)
	}
	b.steps = append(b.steps, func(m *featuremodel.Model, nodes map[string]featuremodel.Node) {
		p, ok := nodes[parent]
		require.True(b.t, ok, "parent %q not built yet", parent)
		f := b.feature(m, data)
		n, err := p.AttachBelow(f, p.NumberOfChildren(), data.group)
		require.NoError(b.t, err)
		b.configure(n, data)
		nodes[name] = n
	})
	return b
}

// WithFeature adds a feature without a tree position.
func (b *Builder) WithFeature(name string, opts ...NodeOption) *Builder {
	data := nodeData{name: name}
	for _, opt := range opts {
		opt(&data)
	}
	b.steps = append(b.steps, func(m *featuremodel.Model, _ map[string]featuremodel.Node) {
		b.feature(m, data)
	})
	return b
}

// WithConstraint adds a constraint parsed from expr.
func (b *Builder) WithConstraint(expr string) *Builder {
	b.constraints = append(b.constraints, expr)
	return b
}

// Build creates the model. It is closed when the test ends.
func (b *Builder) Build() *featuremodel.Model {
	b.t.Helper()
	m := featuremodel.New(b.opts...)
	b.t.Cleanup(m.Close)
	if b.name != "" {
		require.NoError(b.t, m.SetName(b.name))
	}
	nodes := make(map[string]featuremodel.Node)
	for _, step := range b.steps {
		step(m, nodes)
	}
	for _, expr := range b.constraints {
		_, err := m.AddConstraintExpr(expr)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, m.Validate())
	return m
}

func (b *Builder) feature(m *featuremodel.Model, data nodeData) *featuremodel.Feature {
	f, err := m.AddFeature(data.name)
	require.NoError(b.t, err)
	f.SetDescription(data.description)
	f.SetAbstract(data.abstract)
	f.SetHidden(data.hidden)
	return f
}

func (b *Builder) configure(n featuremodel.Node, data nodeData) {
	if data.featureRng != nil {
		require.NoError(b.t, n.SetFeatureRange(data.featureRng.Lower, data.featureRng.Upper))
	}
	if data.groups != nil {
		require.NoError(b.t, n.SetGroups(data.groups))
	}
}
