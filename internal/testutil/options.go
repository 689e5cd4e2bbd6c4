package testutil

import "github.com/zjrosen/featmodel/internal/featuremodel"

// nodeData holds everything configured for one feature.
type nodeData struct {
	name        string
	description string
	abstract    bool
	hidden      bool
	featureRng  *featuremodel.Range
	groups      []featuremodel.Group
	group       int
}

// NodeOption configures a feature during builder setup.
type NodeOption func(*nodeData)

// Mandatory sets the feature range to [1..1].
func Mandatory() NodeOption {
	return FeatureRange(1, 1)
}

// FeatureRange sets an explicit feature range.
func FeatureRange(lower, upper int) NodeOption {
	return func(n *nodeData) {
		n.featureRng = &featuremodel.Range{Lower: lower, Upper: upper}
	}
}

// Abstract marks the feature abstract.
func Abstract() NodeOption {
	return func(n *nodeData) {
		n.abstract = true
	}
}

// Hidden marks the feature hidden.
func Hidden() NodeOption {
	return func(n *nodeData) {
		n.hidden = true
	}
}

// Description sets the feature description.
func Description(d string) NodeOption {
	return func(n *nodeData) {
		n.description = d
	}
}

// Groups replaces the node's groups.
func Groups(groups ...featuremodel.Group) NodeOption {
	return func(n *nodeData) {
		n.groups = groups
	}
}

// Alternative gives the node a single alternative group.
func Alternative() NodeOption {
	return Groups(featuremodel.AlternativeGroup())
}

// Or gives the node a single or-group.
func Or() NodeOption {
	return Groups(featuremodel.OrGroup())
}

// InGroup places the node in the given group of its parent.
func InGroup(index int) NodeOption {
	return func(n *nodeData) {
		n.group = index
	}
}
