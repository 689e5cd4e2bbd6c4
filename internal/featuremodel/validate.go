package featuremodel

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate re-checks every structural invariant of the model and returns all
// violations joined, or nil. Mutations keep these invariants on their own;
// Validate exists for codecs and for tests.
func (m *Model) Validate() error {
	var errs []error
	violation := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariantViolation}, args...)...))
	}

	for _, f := range m.features {
		if f.model != m || m.byID[f.id] != f {
			violation("feature %q is not indexed by its identifier %s", f.Name(), f.id)
		}
		if f.node != noNode {
			if rec := m.tree.get(f.node); rec == nil || rec.feature != f {
				violation("feature %q points at node %d which does not point back", f.Name(), f.node)
			}
		}
	}
	if len(m.byID) != len(m.features) {
		violation("identifier index holds %d features, model holds %d", len(m.byID), len(m.features))
	}

	visited := make(map[nodeID]bool)
	for _, root := range m.tree.roots {
		rec := m.tree.get(root)
		if rec == nil {
			violation("root %d is a freed node", root)
			continue
		}
		if rec.parent != noNode {
			violation("root %q has a parent", rec.feature.Name())
		}
		m.validateSubtree(root, visited, violation)
	}
	for id, rec := range m.tree.nodes {
		if rec != nil && !visited[nodeID(id)] {
			violation("node %q is not reachable from any root", rec.feature.Name())
		}
	}

	for _, c := range m.constraints {
		if c.model != m || m.constraintByID[c.id] != c {
			violation("constraint %s is not indexed by its identifier", c.id)
		}
		contained, err := m.resolve(c.formula)
		if err != nil {
			violation("constraint %s: %v", c.id, err)
			continue
		}
		if !sameFeatures(contained, c.contained) {
			violation("constraint %s caches %s, formula references %s", c.id, featureList(c.contained), featureList(contained))
		}
		for _, f := range c.contained {
			if !m.HasFeature(f) {
				violation("constraint %s references removed feature %q", c.id, f.Name())
			}
		}
	}

	return errors.Join(errs...)
}

func (m *Model) validateSubtree(id nodeID, visited map[nodeID]bool, violation func(string, ...any)) {
	rec := m.tree.nodes[id]
	if visited[id] {
		violation("node %q is reachable twice", rec.feature.Name())
		return
	}
	visited[id] = true

	if !m.HasFeature(rec.feature) {
		violation("node %q holds a feature outside the model", rec.feature.Name())
	} else if rec.feature.node != id {
		violation("node %q is not the tree position of its feature", rec.feature.Name())
	}
	if err := rec.featureRange.Validate(); err != nil {
		violation("node %q: %v", rec.feature.Name(), err)
	}
	for i, g := range rec.groups {
		if err := g.Validate(); err != nil {
			violation("node %q group %d: %v", rec.feature.Name(), i, err)
		}
	}
	for _, c := range rec.children {
		child := m.tree.get(c)
		if child == nil {
			violation("node %q has freed child %d", rec.feature.Name(), c)
			continue
		}
		if child.parent != id {
			violation("child %q of %q points at another parent", child.feature.Name(), rec.feature.Name())
		}
		if child.groupIndex < 0 || child.groupIndex >= len(rec.groups) {
			violation("child %q uses group %d of %q, which has %d groups",
				child.feature.Name(), child.groupIndex, rec.feature.Name(), len(rec.groups))
		}
		m.validateSubtree(c, visited, violation)
	}
}

func sameFeatures(a, b []*Feature) bool {
	if len(a) != len(b) {
		return false
	}
	for _, f := range a {
		if !slices.Contains(b, f) {
			return false
		}
	}
	return true
}

// featureList renders features as [name#id ...] so duplicate names stay
// distinguishable.
func featureList(fs []*Feature) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.Name() + "#" + f.id.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
