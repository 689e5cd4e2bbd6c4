// Package featuremodel implements the feature model aggregate: features, the
// feature tree with its cardinality groups, and propositional constraints
// bound to the features they mention.
//
// The package is pure domain code. It performs no I/O and does not log; codecs,
// persistence and presentation live in sibling packages and only use the
// exported API.
//
// # Core Types
//
// Model is the aggregate root. It owns every Feature, the ordered list of tree
// roots and the ordered list of Constraints. All mutations go through a Model,
// a Node handle or a Constraint.
//
// Feature is a named entity with an identifier and an attribute store. A
// feature has at most one position in the tree at a time; Feature.Tree reports
// it.
//
// Node is a value handle to one position in the tree. Nodes live in an arena
// owned by the model and refer to each other by index, so parent and child links
// never form pointer cycles. A handle becomes stale once its node is detached;
// mutations on a stale handle fail with ErrNodeNotFound.
//
// Group is a cardinality range over the children of a node that share a group
// index. And, Or and Alternative groups are the common special cases.
//
// Constraint holds a formula.Formula and caches the features its variables
// resolve to. The cache is rebuilt from scratch whenever the formula changes.
//
// # Mutation Semantics
//
// Every mutation validates its preconditions before touching any state, so a
// rejected call leaves the model exactly as it was. Lookups report misses with a
// boolean instead of an error.
//
// A Model is not safe for concurrent mutation. Callers that share one across
// goroutines must serialize writers themselves.
package featuremodel
