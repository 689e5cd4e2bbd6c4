package featuremodel

import "github.com/zjrosen/featmodel/internal/identifier"

// NamePolicy controls whether feature names must be unique within a model.
type NamePolicy int

const (
	// NamesPermissive allows duplicate names; name lookups return the first
	// match in insertion order.
	NamesPermissive NamePolicy = iota
	// NamesUnique rejects a name already used by another feature.
	NamesUnique
)

// String returns the configuration spelling of the policy.
func (p NamePolicy) String() string {
	if p == NamesUnique {
		return "unique"
	}
	return "permissive"
}

// RootDeletionPolicy decides whether the feature of a root node with children
// may be removed from the model. Its children then become roots.
type RootDeletionPolicy func(root Node) bool

type options struct {
	registry     identifier.Registry
	namePolicy   NamePolicy
	rootDeletion RootDeletionPolicy
	cascade      bool
}

// Option configures a Model.
type Option func(*options)

// WithRegistry sets the identifier strategy. Defaults to a counter registry.
func WithRegistry(r identifier.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithNamePolicy sets the feature name policy. Defaults to NamesPermissive.
func WithNamePolicy(p NamePolicy) Option {
	return func(o *options) {
		o.namePolicy = p
	}
}

// WithRootDeletion allows or forbids removing a root feature that still has
// children. Forbidden by default.
func WithRootDeletion(allow bool) Option {
	return func(o *options) {
		o.rootDeletion = func(Node) bool { return allow }
	}
}

// WithRootDeletionPolicy installs a hook that decides root deletion per node.
func WithRootDeletionPolicy(p RootDeletionPolicy) Option {
	return func(o *options) {
		o.rootDeletion = p
	}
}

// WithCascadeConstraints makes RemoveFeature also remove every constraint that
// references the feature instead of failing with ErrFeatureInUse.
func WithCascadeConstraints(cascade bool) Option {
	return func(o *options) {
		o.cascade = cascade
	}
}
