package codec

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/featmodel/internal/featuremodel"
)

// carModel builds:
//
//	Car (abstract, mandatory)
//	  Body (mandatory)
//	  Engine [alt]: Petrol, Electric
//	  Extras [or]: Radio, Navi
//
// with the constraint "Navi implies Electric".
func carModel(t *testing.T) *featuremodel.Model {
	t.Helper()
	m := featuremodel.New()
	t.Cleanup(m.Close)
	require.NoError(t, m.SetName("car"))

	add := func(parent featuremodel.Node, name string) featuremodel.Node {
		f, err := m.AddFeature(name)
		require.NoError(t, err)
		n, err := parent.AddChild(f)
		require.NoError(t, err)
		return n
	}

	car, err := m.AddFeature("Car")
	require.NoError(t, err)
	car.SetAbstract(true)
	root, err := m.AddTreeRoot(car)
	require.NoError(t, err)
	require.NoError(t, root.SetMandatory())

	body := add(root, "Body")
	require.NoError(t, body.SetMandatory())
	body.Feature().SetDescription("the chassis")

	engine := add(root, "Engine")
	require.NoError(t, engine.SetMandatory())
	require.NoError(t, engine.SetGroups([]featuremodel.Group{featuremodel.AlternativeGroup()}))
	add(engine, "Petrol")
	add(engine, "Electric")

	extras := add(root, "Extras")
	require.NoError(t, extras.SetGroups([]featuremodel.Group{featuremodel.OrGroup()}))
	add(extras, "Radio")
	navi := add(extras, "Navi")
	navi.Feature().SetHidden(true)

	c, err := m.AddConstraintExpr("Navi implies Electric")
	require.NoError(t, err)
	c.SetDescription("navigation needs the big battery")
	return m
}

// describe renders everything a codec is expected to preserve, without
// identifiers, so models built by different registries compare equal.
func describe(m featuremodel.Reader) string {
	var b strings.Builder
	fmt.Fprintf(&b, "model %s\n", m.Name())
	for _, f := range m.Features() {
		fmt.Fprintf(&b, "feature %s abstract=%t hidden=%t desc=%q\n", f.Name(), f.Abstract(), f.Hidden(), f.Description())
	}
	var visit func(n featuremodel.Node, depth int)
	visit = func(n featuremodel.Node, depth int) {
		fmt.Fprintf(&b, "%s%s g=%d r=%s groups=%v\n",
			strings.Repeat("  ", depth), n.Feature().Name(), n.GroupIndex(), n.FeatureRange(), n.Groups())
		for _, c := range n.Children() {
			visit(c, depth+1)
		}
	}
	for _, r := range m.Roots() {
		visit(r, 0)
	}
	for _, c := range m.Constraints() {
		fmt.Fprintf(&b, "constraint %s desc=%q\n", c.Formula(), c.Description())
	}
	return b.String()
}
