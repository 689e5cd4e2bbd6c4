package featuremodel

import "fmt"

// Node is a handle to one position in a model's feature tree. Handles are
// comparable: two handles are equal when they denote the same position.
//
// Read accessors on a stale handle (one whose node has been detached) return
// zero values; mutators fail with ErrNodeNotFound.
type Node struct {
	model *Model
	id    nodeID
}

func (n Node) rec() *nodeRecord {
	if n.model == nil {
		return nil
	}
	return n.model.tree.get(n.id)
}

// Valid reports whether the handle still denotes a node in the tree.
func (n Node) Valid() bool {
	return n.rec() != nil
}

func (n Node) handle(id nodeID) Node {
	return Node{model: n.model, id: id}
}

func (n Node) handles(ids []nodeID) []Node {
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = n.handle(id)
	}
	return out
}

// Feature returns the feature at this position.
func (n Node) Feature() *Feature {
	if rec := n.rec(); rec != nil {
		return rec.feature
	}
	return nil
}

// Parent returns the parent node. Roots have none.
func (n Node) Parent() (Node, bool) {
	rec := n.rec()
	if rec == nil || rec.parent == noNode {
		return Node{}, false
	}
	return n.handle(rec.parent), true
}

// Children returns the ordered children.
func (n Node) Children() []Node {
	rec := n.rec()
	if rec == nil {
		return nil
	}
	return n.handles(rec.children)
}

// NumberOfChildren returns the number of direct children.
func (n Node) NumberOfChildren() int {
	if rec := n.rec(); rec != nil {
		return len(rec.children)
	}
	return 0
}

// Groups returns a copy of the groups defined over this node's children.
func (n Node) Groups() []Group {
	rec := n.rec()
	if rec == nil {
		return nil
	}
	return append([]Group(nil), rec.groups...)
}

// GroupIndex returns the index of the parent group this node belongs to.
// It is always 0 for roots.
func (n Node) GroupIndex() int {
	if rec := n.rec(); rec != nil {
		return rec.groupIndex
	}
	return 0
}

// Group returns the parent's group this node belongs to. A root is reported
// as an optional [0..1] group of its own.
func (n Node) Group() Group {
	rec := n.rec()
	if rec == nil || rec.parent == noNode {
		return Group{Range{Lower: 0, Upper: 1}}
	}
	return n.model.tree.nodes[rec.parent].groups[rec.groupIndex]
}

// GroupFeatures returns the nodes sharing this node's parent group, this node
// included, in child order.
func (n Node) GroupFeatures() []Node {
	rec := n.rec()
	if rec == nil {
		return nil
	}
	if rec.parent == noNode {
		return []Node{n}
	}
	var out []Node
	for _, c := range n.model.tree.nodes[rec.parent].children {
		if n.model.tree.nodes[c].groupIndex == rec.groupIndex {
			out = append(out, n.handle(c))
		}
	}
	return out
}

// FeatureRange returns the selection range of this node's feature.
func (n Node) FeatureRange() Range {
	if rec := n.rec(); rec != nil {
		return rec.featureRange
	}
	return Range{}
}

// IsMandatory reports whether the feature must be selected with its parent.
func (n Node) IsMandatory() bool {
	return n.FeatureRange().Lower > 0
}

// IsOptional is the negation of IsMandatory.
func (n Node) IsOptional() bool {
	return n.Valid() && !n.IsMandatory()
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool {
	rec := n.rec()
	return rec != nil && rec.parent == noNode
}

// IsAncestorOf reports whether n is a proper ancestor of other.
func (n Node) IsAncestorOf(other Node) bool {
	if !n.Valid() || !other.Valid() || n.model != other.model {
		return false
	}
	return n.model.tree.isAncestor(n.id, other.id)
}

// Depth returns the number of edges between the node and its root.
func (n Node) Depth() int {
	if !n.Valid() {
		return 0
	}
	depth := 0
	for p := n.model.tree.nodes[n.id].parent; p != noNode; p = n.model.tree.nodes[p].parent {
		depth++
	}
	return depth
}

// Index returns the node's position among its siblings, or among the roots.
func (n Node) Index() int {
	if !n.Valid() {
		return -1
	}
	return n.model.tree.position(n.id)
}

// Root returns the root of the tree containing n.
func (n Node) Root() Node {
	for {
		p, ok := n.Parent()
		if !ok {
			return n
		}
		n = p
	}
}

// Walk visits n and its descendants in pre-order. Returning false stops the walk.
func (n Node) Walk(fn func(Node) bool) {
	if !n.Valid() {
		return
	}
	n.model.tree.walk(n.id, func(id nodeID) bool { return fn(n.handle(id)) })
}

// String returns the feature name, or "<stale>" for a stale handle.
func (n Node) String() string {
	if f := n.Feature(); f != nil {
		return f.Name()
	}
	return "<stale>"
}

func (n Node) check() (*nodeRecord, error) {
	rec := n.rec()
	if rec == nil {
		return nil, fmt.Errorf("%w: stale node handle", ErrNodeNotFound)
	}
	return rec, nil
}

func (n Node) checkSameModel(other Node) (*nodeRecord, error) {
	rec, err := other.check()
	if err != nil {
		return nil, err
	}
	if other.model != n.model {
		return nil, fmt.Errorf("%w: node %q", ErrForeignEntity, other)
	}
	return rec, nil
}
