package featuremodel

import (
	"github.com/zjrosen/featmodel/internal/attribute"
	"github.com/zjrosen/featmodel/internal/identifier"
)

// Reader is the read-only view of a model that encoders and renderers consume.
type Reader interface {
	ID() identifier.Identifier
	Name() string
	Description() string
	Attributes() *attribute.Store
	Features() []*Feature
	Roots() []Node
	Constraints() []*Constraint
}

// Writer is the construction surface that decoders drive.
type Writer interface {
	SetName(name string) error
	SetDescription(description string)
	AddFeature(name string) (*Feature, error)
	AddTreeRoot(f *Feature) (Node, error)
	AddConstraintExpr(expr string) (*Constraint, error)
}

// NodeView is the read-only view of a tree position.
type NodeView interface {
	Feature() *Feature
	Parent() (Node, bool)
	Children() []Node
	Groups() []Group
	Group() Group
	GroupIndex() int
	FeatureRange() Range
	IsMandatory() bool
}

var (
	_ Reader   = (*Model)(nil)
	_ Writer   = (*Model)(nil)
	_ NodeView = Node{}
)
