package featuremodel

import (
	"slices"

	"github.com/zjrosen/featmodel/internal/attribute"
	"github.com/zjrosen/featmodel/internal/formula"
	"github.com/zjrosen/featmodel/internal/identifier"
)

// Constraint is a propositional formula over feature names. It caches the
// features its variables resolve to.
type Constraint struct {
	model     *Model
	id        identifier.Identifier
	formula   formula.Formula
	contained []*Feature
	attrs     *attribute.Store
}

// ID returns the constraint's identifier.
func (c *Constraint) ID() identifier.Identifier {
	return c.id
}

// Formula returns the current formula.
func (c *Constraint) Formula() formula.Formula {
	return c.formula
}

// ContainedFeatures returns the features referenced by the formula, in order
// of first occurrence.
func (c *Constraint) ContainedFeatures() []*Feature {
	return slices.Clone(c.contained)
}

// Contains reports whether the formula references f.
func (c *Constraint) Contains(f *Feature) bool {
	return slices.Contains(c.contained, f)
}

// SetFormula replaces the formula. Every variable must resolve to a feature of
// the model; otherwise an *UnknownReferenceError is returned and the constraint
// is left unchanged.
func (c *Constraint) SetFormula(f formula.Formula) error {
	if c.model == nil {
		return ErrConstraintRemoved
	}
	contained, err := c.model.resolve(f)
	if err != nil {
		return err
	}
	c.formula = f
	c.contained = contained
	c.model.publish(ChangeConstraintUpdated, c.id)
	return nil
}

// Remove detaches the constraint from its model. It reports false when the
// constraint was already removed.
func (c *Constraint) Remove() bool {
	if c.model == nil {
		return false
	}
	return c.model.RemoveConstraint(c)
}

// IsRemoved reports whether the constraint no longer belongs to a model.
func (c *Constraint) IsRemoved() bool {
	return c.model == nil
}

// Model returns the owning model, nil once removed.
func (c *Constraint) Model() *Model {
	return c.model
}

// Tags returns the constraint's tags, sorted.
func (c *Constraint) Tags() []string {
	return attribute.ValueOf(c.attrs, TagsAttribute)
}

// SetTags replaces the constraint's tags.
func (c *Constraint) SetTags(tags ...string) {
	if len(tags) == 0 {
		attribute.Remove(c.attrs, TagsAttribute)
	} else {
		mustSet(c.attrs, TagsAttribute, tags)
	}
	c.changed()
}

// Description returns the constraint's description, empty if unset.
func (c *Constraint) Description() string {
	return attribute.ValueOf(c.attrs, DescriptionAttribute)
}

// SetDescription sets the description. An empty string clears it.
func (c *Constraint) SetDescription(description string) {
	if description == "" {
		attribute.Remove(c.attrs, DescriptionAttribute)
	} else {
		mustSet(c.attrs, DescriptionAttribute, description)
	}
	c.changed()
}

// Attributes returns the constraint's attribute store.
func (c *Constraint) Attributes() *attribute.Store {
	return c.attrs
}

// String renders the formula.
func (c *Constraint) String() string {
	if c.formula == nil {
		return ""
	}
	return c.formula.String()
}

func (c *Constraint) changed() {
	if c.model != nil {
		c.model.publish(ChangeConstraintUpdated, c.id)
	}
}
