package featuremodel

import (
	"fmt"

	"github.com/zjrosen/featmodel/internal/attribute"
	"github.com/zjrosen/featmodel/internal/formula"
	"github.com/zjrosen/featmodel/internal/identifier"
)

// Feature is a named configuration option. It is owned by a Model and has at
// most one tree position.
type Feature struct {
	model *Model
	id    identifier.Identifier
	attrs *attribute.Store
	node  nodeID
}

// ID returns the feature's identifier.
func (f *Feature) ID() identifier.Identifier {
	return f.id
}

// Name returns the feature's name.
func (f *Feature) Name() string {
	name, _ := attribute.Get(f.attrs, NameAttribute)
	return name
}

// SetName renames the feature. Constraints that mention the old name are
// rewritten to the new one so they keep referring to this feature. The rename
// fails with ErrNameRebinds, and changes nothing, when afterwards any
// constraint would resolve to a different feature than it does now.
func (f *Feature) SetName(name string) error {
	m := f.model
	if m == nil {
		return fmt.Errorf("%w: feature %s is not part of a model", ErrInvalidArgument, f.id)
	}
	if name == "" {
		return ErrEmptyName
	}
	old := f.Name()
	if old == name {
		return nil
	}
	if err := m.checkName(name, f); err != nil {
		return err
	}

	type rewrite struct {
		c       *Constraint
		formula formula.Formula
	}
	var rewritten []rewrite
	// References by name only mean f when no earlier feature shares its name.
	first, _ := m.FeatureByName(old)
	mustSet(f.attrs, NameAttribute, name)
	renames := map[string]string{old: name}
	for _, c := range m.constraints {
		if first == f && c.Contains(f) {
			rewritten = append(rewritten, rewrite{c: c, formula: c.formula})
			c.formula = formula.Rename(c.formula, renames)
		}
	}
	if c := m.rebound(); c != nil {
		mustSet(f.attrs, NameAttribute, old)
		for _, r := range rewritten {
			r.c.formula = r.formula
		}
		return fmt.Errorf("%w: renaming %q to %q changes what constraint %s refers to", ErrNameRebinds, old, name, c.id)
	}

	for _, r := range rewritten {
		m.publish(ChangeConstraintUpdated, r.c.id)
	}
	m.publish(ChangeFeatureUpdated, f.id)
	return nil
}

// Description returns the feature's description, empty if unset.
func (f *Feature) Description() string {
	return attribute.ValueOf(f.attrs, DescriptionAttribute)
}

// SetDescription sets the feature's description. An empty string clears it.
func (f *Feature) SetDescription(description string) {
	if description == "" {
		attribute.Remove(f.attrs, DescriptionAttribute)
	} else {
		mustSet(f.attrs, DescriptionAttribute, description)
	}
	f.changed()
}

// Abstract reports whether the feature is abstract.
func (f *Feature) Abstract() bool {
	return attribute.ValueOf(f.attrs, AbstractAttribute)
}

// SetAbstract marks the feature abstract or concrete.
func (f *Feature) SetAbstract(abstract bool) {
	mustSet(f.attrs, AbstractAttribute, abstract)
	f.changed()
}

// Hidden reports whether the feature is hidden.
func (f *Feature) Hidden() bool {
	return attribute.ValueOf(f.attrs, HiddenAttribute)
}

// SetHidden marks the feature hidden or visible.
func (f *Feature) SetHidden(hidden bool) {
	mustSet(f.attrs, HiddenAttribute, hidden)
	f.changed()
}

// Attributes returns the feature's attribute store. Writes to the name
// attribute through the store bypass the name policy and constraint rewriting;
// use SetName instead.
func (f *Feature) Attributes() *attribute.Store {
	return f.attrs
}

// Tree returns the feature's tree position, if any.
func (f *Feature) Tree() (Node, bool) {
	if f.model == nil || f.node == noNode {
		return Node{}, false
	}
	return Node{model: f.model, id: f.node}, true
}

// Model returns the owning model, nil once the feature has been removed.
func (f *Feature) Model() *Model {
	return f.model
}

// String returns the feature's name.
func (f *Feature) String() string {
	return f.Name()
}

func (f *Feature) changed() {
	if f.model != nil {
		f.model.publish(ChangeFeatureUpdated, f.id)
	}
}
