package featuremodel

import "slices"

type nodeID int

const noNode nodeID = -1

// nodeRecord is one arena slot. Links between records are arena indices.
type nodeRecord struct {
	feature      *Feature
	parent       nodeID
	children     []nodeID
	groups       []Group
	groupIndex   int
	featureRange Range
}

// forest is the arena holding every tree of a model. Freed slots are set to nil
// and never reused, so a stale Node handle can always be detected.
type forest struct {
	nodes []*nodeRecord
	roots []nodeID
}

func (t *forest) get(id nodeID) *nodeRecord {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// alloc creates a detached node for f with the default [0..1] feature range
// and a single and-group.
func (t *forest) alloc(f *Feature) nodeID {
	id := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, &nodeRecord{
		feature:      f,
		parent:       noNode,
		groups:       []Group{AndGroup()},
		featureRange: Range{Lower: 0, Upper: 1},
	})
	f.node = id
	return id
}

func (t *forest) free(id nodeID) {
	if rec := t.get(id); rec != nil {
		rec.feature.node = noNode
		t.nodes[id] = nil
	}
}

// siblings returns the slice holding id: its parent's children, or the roots.
func (t *forest) siblings(id nodeID) []nodeID {
	if p := t.get(t.nodes[id].parent); p != nil {
		return p.children
	}
	return t.roots
}

func (t *forest) setSiblings(id nodeID, s []nodeID) {
	if p := t.get(t.nodes[id].parent); p != nil {
		p.children = s
	} else {
		t.roots = s
	}
}

// position returns the index of id among its siblings.
func (t *forest) position(id nodeID) int {
	return slices.Index(t.siblings(id), id)
}

// unlink removes id from its siblings and clears its parent.
func (t *forest) unlink(id nodeID) {
	t.setSiblings(id, slices.DeleteFunc(slices.Clone(t.siblings(id)), func(c nodeID) bool { return c == id }))
	t.nodes[id].parent = noNode
}

// link inserts id below parent at index. parent noNode inserts a root.
func (t *forest) link(id, parent nodeID, index, groupIndex int) {
	rec := t.nodes[id]
	rec.parent = parent
	rec.groupIndex = groupIndex
	if p := t.get(parent); p != nil {
		p.children = slices.Insert(p.children, index, id)
		return
	}
	rec.groupIndex = 0
	t.roots = slices.Insert(t.roots, index, id)
}

// isAncestor reports whether a is a proper ancestor of d, walking up from d.
func (t *forest) isAncestor(a, d nodeID) bool {
	for p := t.nodes[d].parent; p != noNode; p = t.nodes[p].parent {
		if p == a {
			return true
		}
	}
	return false
}

// walk visits the subtree of id in pre-order until fn returns false.
func (t *forest) walk(id nodeID, fn func(nodeID) bool) bool {
	if !fn(id) {
		return false
	}
	for _, c := range t.nodes[id].children {
		if !t.walk(c, fn) {
			return false
		}
	}
	return true
}
