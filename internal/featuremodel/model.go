package featuremodel

import (
	"context"
	"fmt"
	"slices"

	"github.com/zjrosen/featmodel/internal/attribute"
	"github.com/zjrosen/featmodel/internal/formula"
	"github.com/zjrosen/featmodel/internal/identifier"
	"github.com/zjrosen/featmodel/internal/pubsub"
)

// Model is the feature model aggregate. It owns the features, the tree roots
// and the constraints.
type Model struct {
	id    identifier.Identifier
	attrs *attribute.Store
	opts  options

	features       []*Feature
	byID           map[identifier.Identifier]*Feature
	tree           forest
	constraints    []*Constraint
	constraintByID map[identifier.Identifier]*Constraint

	broker *pubsub.Broker[Change]
}

// New creates an empty model.
func New(opts ...Option) *Model {
	o := options{
		registry:     identifier.NewCounterRegistry(),
		rootDeletion: func(Node) bool { return false },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Model{
		id:             o.registry.Next(),
		attrs:          attribute.NewStore(),
		opts:           o,
		byID:           make(map[identifier.Identifier]*Feature),
		constraintByID: make(map[identifier.Identifier]*Constraint),
		broker:         pubsub.NewBroker[Change](),
	}
}

// ID returns the model's identifier.
func (m *Model) ID() identifier.Identifier {
	return m.id
}

// Registry returns the identifier strategy of the model.
func (m *Model) Registry() identifier.Registry {
	return m.opts.registry
}

// NamePolicy returns the configured feature name policy.
func (m *Model) NamePolicy() NamePolicy {
	return m.opts.namePolicy
}

// Name returns the model name, "@<id>" when none was set.
func (m *Model) Name() string {
	if name, ok := attribute.Get(m.attrs, NameAttribute); ok {
		return name
	}
	return "@" + m.id.String()
}

// SetName sets the model name.
func (m *Model) SetName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	mustSet(m.attrs, NameAttribute, name)
	m.publish(ChangeModelRenamed, m.id)
	return nil
}

// Description returns the model description, empty if unset.
func (m *Model) Description() string {
	return attribute.ValueOf(m.attrs, DescriptionAttribute)
}

// SetDescription sets the model description. An empty string clears it.
func (m *Model) SetDescription(description string) {
	if description == "" {
		attribute.Remove(m.attrs, DescriptionAttribute)
	} else {
		mustSet(m.attrs, DescriptionAttribute, description)
	}
	m.publish(ChangeModelRenamed, m.id)
}

// Attributes returns the model's attribute store.
func (m *Model) Attributes() *attribute.Store {
	return m.attrs
}

// AddFeature creates an unbound feature with a fresh identifier.
func (m *Model) AddFeature(name string) (*Feature, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := m.checkName(name, nil); err != nil {
		return nil, err
	}
	// A new feature is last in name order, so it only captures references
	// that no existing feature name matches: identifier references.
	if _, taken := m.FeatureByName(name); !taken {
		for _, c := range m.constraints {
			if slices.Contains(c.formula.Variables(), name) {
				return nil, fmt.Errorf("%w: %q is referenced as an identifier by constraint %s", ErrNameRebinds, name, c.id)
			}
		}
	}
	f := &Feature{
		model: m,
		id:    m.opts.registry.Next(),
		attrs: attribute.NewStore(),
		node:  noNode,
	}
	mustSet(f.attrs, NameAttribute, name)
	m.features = append(m.features, f)
	m.byID[f.id] = f
	m.publish(ChangeFeatureAdded, f.id)
	return f, nil
}

// RemoveFeature removes f from the model. A bound feature is first detached
// from the tree with its children promoted. It reports false without error
// when f is not a member.
//
// Removal fails with ErrFeatureInUse while constraints reference f, unless the
// model cascades constraint removal, and with ErrRootDeletionForbidden when f
// sits on a root with children and the root deletion policy refuses.
func (m *Model) RemoveFeature(f *Feature) (bool, error) {
	if f == nil {
		return false, fmt.Errorf("%w: nil feature", ErrInvalidArgument)
	}
	if !m.HasFeature(f) {
		return false, nil
	}
	users := m.ConstraintsOf(f)
	if len(users) > 0 && !m.opts.cascade {
		ids := make([]string, len(users))
		for i, c := range users {
			ids[i] = c.id.String()
		}
		return false, fmt.Errorf("%w: %q is used by constraints %v", ErrFeatureInUse, f.Name(), ids)
	}
	node, bound := f.Tree()
	if bound && node.IsRoot() && node.NumberOfChildren() > 0 && !m.opts.rootDeletion(node) {
		return false, fmt.Errorf("%w: %q is a root with %d children", ErrRootDeletionForbidden, f.Name(), node.NumberOfChildren())
	}

	for _, c := range users {
		m.RemoveConstraint(c)
	}
	if bound {
		if err := node.Detach(); err != nil {
			return false, err
		}
	}
	m.features = slices.DeleteFunc(m.features, func(x *Feature) bool { return x == f })
	delete(m.byID, f.id)
	f.model = nil
	m.publish(ChangeFeatureRemoved, f.id)
	return true, nil
}

// Feature looks a feature up by identifier.
func (m *Model) Feature(id identifier.Identifier) (*Feature, bool) {
	f, ok := m.byID[id]
	return f, ok
}

// FeatureByName returns the first feature, in insertion order, named name.
func (m *Model) FeatureByName(name string) (*Feature, bool) {
	for _, f := range m.features {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// Lookup resolves ref as a feature name first and as an identifier second.
// AddFeature and Feature.SetName refuse names that would change how an
// existing constraint's references resolve.
func (m *Model) Lookup(ref string) (*Feature, bool) {
	if f, ok := m.FeatureByName(ref); ok {
		return f, true
	}
	id, err := m.opts.registry.Parse(ref)
	if err != nil {
		return nil, false
	}
	return m.Feature(id)
}

// Features returns all features in insertion order.
func (m *Model) Features() []*Feature {
	return slices.Clone(m.features)
}

// HasFeature reports whether f belongs to this model.
func (m *Model) HasFeature(f *Feature) bool {
	return f != nil && f.model == m && m.byID[f.id] == f
}

// NumberOfFeatures returns the number of features, bound or not.
func (m *Model) NumberOfFeatures() int {
	return len(m.features)
}

// AddTreeRoot makes f the root of a new tree, appended after existing roots.
func (m *Model) AddTreeRoot(f *Feature) (Node, error) {
	if err := m.checkUnbound(f); err != nil {
		return Node{}, err
	}
	id := m.tree.alloc(f)
	m.tree.link(id, noNode, len(m.tree.roots), 0)
	m.publish(ChangeTreeUpdated, f.id)
	return Node{model: m, id: id}, nil
}

// Roots returns the tree roots in order.
func (m *Model) Roots() []Node {
	out := make([]Node, len(m.tree.roots))
	for i, id := range m.tree.roots {
		out[i] = Node{model: m, id: id}
	}
	return out
}

// AddConstraint binds a formula to the model. Every variable must resolve to a
// feature; see Constraint.SetFormula.
func (m *Model) AddConstraint(f formula.Formula) (*Constraint, error) {
	contained, err := m.resolve(f)
	if err != nil {
		return nil, err
	}
	c := &Constraint{
		model:     m,
		id:        m.opts.registry.Next(),
		formula:   f,
		contained: contained,
		attrs:     attribute.NewStore(),
	}
	m.constraints = append(m.constraints, c)
	m.constraintByID[c.id] = c
	m.publish(ChangeConstraintAdded, c.id)
	return c, nil
}

// AddConstraintExpr parses expr and adds it as a constraint.
func (m *Model) AddConstraintExpr(expr string) (*Constraint, error) {
	f, err := formula.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return m.AddConstraint(f)
}

// RemoveConstraint removes c from the model. It reports false when c is not a
// member, including when it was already removed.
func (m *Model) RemoveConstraint(c *Constraint) bool {
	if c == nil || c.model != m {
		return false
	}
	m.constraints = slices.DeleteFunc(m.constraints, func(x *Constraint) bool { return x == c })
	delete(m.constraintByID, c.id)
	c.model = nil
	m.publish(ChangeConstraintRemoved, c.id)
	return true
}

// Constraint looks a constraint up by identifier.
func (m *Model) Constraint(id identifier.Identifier) (*Constraint, bool) {
	c, ok := m.constraintByID[id]
	return c, ok
}

// Constraints returns the constraints in insertion order.
func (m *Model) Constraints() []*Constraint {
	return slices.Clone(m.constraints)
}

// ConstraintsOf returns the constraints whose formula references f.
func (m *Model) ConstraintsOf(f *Feature) []*Constraint {
	var out []*Constraint
	for _, c := range m.constraints {
		if c.Contains(f) {
			out = append(out, c)
		}
	}
	return out
}

// NumberOfConstraints returns the number of constraints.
func (m *Model) NumberOfConstraints() int {
	return len(m.constraints)
}

// Subscribe streams a Change for every successful mutation until ctx is done.
func (m *Model) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return m.broker.Subscribe(ctx)
}

// Close releases the model's subscribers. The model stays usable.
func (m *Model) Close() {
	m.broker.Close()
}

// resolve maps every variable of f to a feature. All unresolved names are
// reported together.
func (m *Model) resolve(f formula.Formula) ([]*Feature, error) {
	if f == nil {
		return nil, ErrNilFormula
	}
	var (
		contained []*Feature
		unknown   []string
	)
	for _, name := range f.Variables() {
		feature, ok := m.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if !slices.Contains(contained, feature) {
			contained = append(contained, feature)
		}
	}
	if len(unknown) > 0 {
		return nil, &UnknownReferenceError{Names: unknown}
	}
	return contained, nil
}

// rebound returns the first constraint whose formula no longer resolves to
// the features it caches, or nil.
func (m *Model) rebound() *Constraint {
	for _, c := range m.constraints {
		contained, err := m.resolve(c.formula)
		if err != nil || !sameFeatures(contained, c.contained) {
			return c
		}
	}
	return nil
}

func (m *Model) checkName(name string, self *Feature) error {
	if m.opts.namePolicy != NamesUnique {
		return nil
	}
	for _, f := range m.features {
		if f != self && f.Name() == name {
			return fmt.Errorf("%w: %q is already used by feature %s", ErrDuplicateName, name, f.id)
		}
	}
	return nil
}

func (m *Model) checkUnbound(f *Feature) error {
	if f == nil {
		return fmt.Errorf("%w: nil feature", ErrInvalidArgument)
	}
	if !m.HasFeature(f) {
		return fmt.Errorf("%w: feature %q", ErrForeignEntity, f.Name())
	}
	if f.node != noNode {
		return fmt.Errorf("%w: %q", ErrFeatureAlreadyBound, f.Name())
	}
	return nil
}
