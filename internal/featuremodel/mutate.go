package featuremodel

import (
	"fmt"
	"slices"
)

// AttachBelow places f as a child of n at index among n's children, in the
// group groupID of n. index may equal the number of children to append.
func (n Node) AttachBelow(f *Feature, index, groupID int) (Node, error) {
	rec, err := n.check()
	if err != nil {
		return Node{}, err
	}
	if err := n.model.checkUnbound(f); err != nil {
		return Node{}, err
	}
	if index < 0 || index > len(rec.children) {
		return Node{}, fmt.Errorf("%w: index %d below %q with %d children", ErrInvalidPosition, index, n, len(rec.children))
	}
	if err := checkGroupID(n, rec, groupID); err != nil {
		return Node{}, err
	}

	id := n.model.tree.alloc(f)
	n.model.tree.link(id, n.id, index, groupID)
	n.model.publish(ChangeTreeUpdated, f.id)
	return n.handle(id), nil
}

// AddChild appends f as the last child of n in group 0.
func (n Node) AddChild(f *Feature) (Node, error) {
	return n.AttachBelow(f, n.NumberOfChildren(), 0)
}

// AttachAbove inserts f between n and n's parent. The new node takes n's
// position and group, and n becomes its only child in group 0. When n is a
// root the new node replaces it as root.
func (n Node) AttachAbove(f *Feature) (Node, error) {
	rec, err := n.check()
	if err != nil {
		return Node{}, err
	}
	if err := n.model.checkUnbound(f); err != nil {
		return Node{}, err
	}

	t := &n.model.tree
	pos := t.position(n.id)
	siblings := t.siblings(n.id)
	id := t.alloc(f)
	above := t.nodes[id]
	above.parent = rec.parent
	above.groupIndex = rec.groupIndex
	above.children = []nodeID{n.id}
	siblings[pos] = id
	rec.parent = id
	rec.groupIndex = 0

	n.model.publish(ChangeTreeUpdated, f.id)
	return n.handle(id), nil
}

// Detach removes n from the tree and promotes its children into its place.
// The groups of n are appended to the parent's groups and each promoted child
// keeps its grouping, its group index shifted by the parent's previous group
// count. Children of a detached root become roots. The feature stays in the
// model, unbound, and n becomes stale.
func (n Node) Detach() error {
	rec, err := n.check()
	if err != nil {
		return err
	}

	t := &n.model.tree
	pos := t.position(n.id)
	if p := t.get(rec.parent); p != nil {
		offset := len(p.groups)
		p.groups = append(p.groups, rec.groups...)
		for _, c := range rec.children {
			t.nodes[c].parent = rec.parent
			t.nodes[c].groupIndex += offset
		}
		p.children = slices.Replace(p.children, pos, pos+1, rec.children...)
	} else {
		for _, c := range rec.children {
			t.nodes[c].parent = noNode
			t.nodes[c].groupIndex = 0
		}
		t.roots = slices.Replace(t.roots, pos, pos+1, rec.children...)
	}

	f := rec.feature
	t.free(n.id)
	n.model.publish(ChangeTreeUpdated, f.id)
	return nil
}

// MoveTo makes n, with its subtree, the last child of newParent in group 0.
func (n Node) MoveTo(newParent Node) error {
	count := newParent.NumberOfChildren()
	if p, ok := n.Parent(); ok && p == newParent {
		count--
	}
	return n.MoveToPosition(newParent, count, 0)
}

// MoveToPosition makes n, with its subtree, a child of newParent at index in
// group groupID. index counts the children of newParent without n. Fails with
// ErrCyclicMove when newParent is n or one of its descendants.
func (n Node) MoveToPosition(newParent Node, index, groupID int) error {
	rec, err := n.check()
	if err != nil {
		return err
	}
	prec, err := n.checkSameModel(newParent)
	if err != nil {
		return err
	}
	t := &n.model.tree
	if newParent.id == n.id || t.isAncestor(n.id, newParent.id) {
		return fmt.Errorf("%w: %q cannot be moved below %q", ErrCyclicMove, n, newParent)
	}
	if err := checkGroupID(newParent, prec, groupID); err != nil {
		return err
	}
	count := len(prec.children)
	if rec.parent == newParent.id {
		count--
	}
	if index < 0 || index > count {
		return fmt.Errorf("%w: index %d below %q with %d other children", ErrInvalidPosition, index, newParent, count)
	}

	t.unlink(n.id)
	t.link(n.id, newParent.id, index, groupID)
	n.model.publish(ChangeTreeUpdated, rec.feature.id)
	return nil
}

// Swap exchanges the positions of n and other. Each keeps its subtree and takes
// over the other's parent, index and group index. Roots cannot be swapped, and
// neither node may be an ancestor of the other.
func (n Node) Swap(other Node) error {
	rec, err := n.check()
	if err != nil {
		return err
	}
	orec, err := n.checkSameModel(other)
	if err != nil {
		return err
	}
	if n.id == other.id {
		return nil
	}
	if rec.parent == noNode {
		return fmt.Errorf("%w: cannot swap root %q", ErrNodeNotFound, n)
	}
	if orec.parent == noNode {
		return fmt.Errorf("%w: cannot swap root %q", ErrNodeNotFound, other)
	}
	t := &n.model.tree
	if t.isAncestor(n.id, other.id) || t.isAncestor(other.id, n.id) {
		return fmt.Errorf("%w: %q and %q are on one path", ErrCyclicSwap, n, other)
	}

	ia, ib := t.position(n.id), t.position(other.id)
	pa, pb := t.nodes[rec.parent], t.nodes[orec.parent]
	pa.children[ia], pb.children[ib] = other.id, n.id
	rec.parent, orec.parent = orec.parent, rec.parent
	rec.groupIndex, orec.groupIndex = orec.groupIndex, rec.groupIndex

	n.model.publish(ChangeTreeUpdated, rec.feature.id)
	n.model.publish(ChangeTreeUpdated, orec.feature.id)
	return nil
}

// SetGroupRange replaces the cardinality of n's group groupID.
func (n Node) SetGroupRange(groupID, lower, upper int) error {
	rec, err := n.check()
	if err != nil {
		return err
	}
	if err := checkGroupID(n, rec, groupID); err != nil {
		return err
	}
	g, err := NewGroup(lower, upper)
	if err != nil {
		return err
	}
	rec.groups[groupID] = g
	n.model.publish(ChangeTreeUpdated, rec.feature.id)
	return nil
}

// AddGroup appends a group to n and returns its index.
func (n Node) AddGroup(g Group) (int, error) {
	rec, err := n.check()
	if err != nil {
		return 0, err
	}
	if err := g.Validate(); err != nil {
		return 0, err
	}
	rec.groups = append(rec.groups, g)
	n.model.publish(ChangeTreeUpdated, rec.feature.id)
	return len(rec.groups) - 1, nil
}

// SetGroups replaces all of n's groups. Every child's group index must remain
// valid.
func (n Node) SetGroups(groups []Group) error {
	rec, err := n.check()
	if err != nil {
		return err
	}
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	for _, c := range rec.children {
		if gi := n.model.tree.nodes[c].groupIndex; gi >= len(groups) {
			return fmt.Errorf("%w: child %q uses group %d of %q, only %d groups given",
				ErrInvalidGroupIndex, n.handle(c), gi, n, len(groups))
		}
	}
	rec.groups = append([]Group(nil), groups...)
	n.model.publish(ChangeTreeUpdated, rec.feature.id)
	return nil
}

// RemoveGroup deletes n's group groupID. The group must have no members.
// Children of later groups have their index shifted down by one.
func (n Node) RemoveGroup(groupID int) error {
	rec, err := n.check()
	if err != nil {
		return err
	}
	if err := checkGroupID(n, rec, groupID); err != nil {
		return err
	}
	t := &n.model.tree
	for _, c := range rec.children {
		if t.nodes[c].groupIndex == groupID {
			return fmt.Errorf("%w: group %d of %q still contains %q", ErrInvalidGroupIndex, groupID, n, n.handle(c))
		}
	}
	rec.groups = slices.Delete(rec.groups, groupID, groupID+1)
	for _, c := range rec.children {
		if t.nodes[c].groupIndex > groupID {
			t.nodes[c].groupIndex--
		}
	}
	n.model.publish(ChangeTreeUpdated, rec.feature.id)
	return nil
}

// SetGroupID moves n into its parent's group groupID.
func (n Node) SetGroupID(groupID int) error {
	rec, err := n.check()
	if err != nil {
		return err
	}
	if rec.parent == noNode {
		return fmt.Errorf("%w: %q is a root", ErrNoParent, n)
	}
	parent := n.handle(rec.parent)
	if err := checkGroupID(parent, n.model.tree.nodes[rec.parent], groupID); err != nil {
		return err
	}
	rec.groupIndex = groupID
	n.model.publish(ChangeTreeUpdated, rec.feature.id)
	return nil
}

// SetFeatureRange replaces the selection range of n's feature.
func (n Node) SetFeatureRange(lower, upper int) error {
	rec, err := n.check()
	if err != nil {
		return err
	}
	r, err := NewRange(lower, upper)
	if err != nil {
		return err
	}
	rec.featureRange = r
	n.model.publish(ChangeTreeUpdated, rec.feature.id)
	return nil
}

// SetMandatory raises the lower bound of the feature range to 1. A range with
// upper bound 0 becomes [1..1].
func (n Node) SetMandatory() error {
	rec, err := n.check()
	if err != nil {
		return err
	}
	switch {
	case rec.featureRange.Upper == 0:
		rec.featureRange = Range{Lower: 1, Upper: 1}
	case rec.featureRange.Lower == 0:
		rec.featureRange.Lower = 1
	}
	n.model.publish(ChangeTreeUpdated, rec.feature.id)
	return nil
}

// SetOptional lowers the lower bound of the feature range to 0.
func (n Node) SetOptional() error {
	rec, err := n.check()
	if err != nil {
		return err
	}
	rec.featureRange.Lower = 0
	n.model.publish(ChangeTreeUpdated, rec.feature.id)
	return nil
}

func checkGroupID(n Node, rec *nodeRecord, groupID int) error {
	if groupID < 0 || groupID >= len(rec.groups) {
		return fmt.Errorf("%w: group %d of %q, which has %d groups", ErrInvalidGroupIndex, groupID, n, len(rec.groups))
	}
	return nil
}
