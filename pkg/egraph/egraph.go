// Package egraph defines the e-graph capability surface the extraction
// engine is built against: the minimal read-only view of an equivalence
// graph needed to search for a high-utility term, plus the Utility and
// Assignment value types shared across the engine.
//
// The e-graph itself, the scoring function behind EgraphTotalCost, and any
// calling driver are external collaborators. This package only describes the
// shape the engine expects from them.
package egraph

import (
	"math"

	"github.com/mctsextract/pkg/collections"
)

// Egraph is the read-only capability an e-graph must expose for extraction.
// ClassID identifies an equivalence class, NodeID identifies an e-node
// belonging to some class. Both must be comparable so they can key maps and
// sets throughout the engine.
type Egraph[ClassID comparable, NodeID comparable] interface {
	// Members returns the e-nodes belonging to class, in a deterministic
	// (caller-defined) order. May be empty: an empty class is unextractable.
	Members(class ClassID) []NodeID

	// Children returns the child e-classes of node, in positional order.
	Children(node NodeID) []ClassID
}

// EgraphTotalCost extends Egraph with the ability to score a *complete*
// assignment. AssignmentUtility may assume the assignment is complete
// (every class reachable from the root is a key); behavior is undefined
// otherwise, so callers must only ever pass complete assignments.
type EgraphTotalCost[ClassID comparable, NodeID comparable] interface {
	Egraph[ClassID, NodeID]

	// AssignmentUtility scores a complete assignment. Higher is better.
	AssignmentUtility(assignment *Assignment[ClassID, NodeID]) Utility
}

// Assignment is an ordered mapping from ClassID to NodeID with unique keys.
// Insertion order is preserved so it can be truncated back to a prior
// length, which is how the extraction engine implements snapshot/restore.
type Assignment[ClassID comparable, NodeID comparable] struct {
	entries *collections.OrderedMap[ClassID, NodeID]
}

// NewAssignment returns an empty assignment.
func NewAssignment[ClassID comparable, NodeID comparable]() *Assignment[ClassID, NodeID] {
	return &Assignment[ClassID, NodeID]{entries: collections.NewOrderedMap[ClassID, NodeID]()}
}

// Len returns the number of committed class -> node entries.
func (a *Assignment[ClassID, NodeID]) Len() int {
	if a == nil {
		return 0
	}
	return a.entries.Len()
}

// Get returns the node chosen for class, if any.
func (a *Assignment[ClassID, NodeID]) Get(class ClassID) (NodeID, bool) {
	return a.entries.Get(class)
}

// ContainsKey reports whether class has a committed node.
func (a *Assignment[ClassID, NodeID]) ContainsKey(class ClassID) bool {
	return a.entries.ContainsKey(class)
}

// Insert commits class -> node. Existing keys keep their original position.
func (a *Assignment[ClassID, NodeID]) Insert(class ClassID, node NodeID) {
	a.entries.Insert(class, node)
}

// Truncate rolls the assignment back to its first n entries (in insertion
// order).
func (a *Assignment[ClassID, NodeID]) Truncate(n int) {
	a.entries.Truncate(n)
}

// Iter calls fn for every class -> node entry in insertion order.
func (a *Assignment[ClassID, NodeID]) Iter(fn func(class ClassID, node NodeID) bool) {
	a.entries.Iter(fn)
}

// Clone returns a deep copy of the assignment.
func (a *Assignment[ClassID, NodeID]) Clone() *Assignment[ClassID, NodeID] {
	return &Assignment[ClassID, NodeID]{entries: a.entries.Clone()}
}

// Utility is a 32-bit floating-point score; higher is better. The
// zero value (0) is the value contributed by a failed rollout. Utility is
// never allowed to be NaN; arithmetic that would produce NaN is caught at
// construction time via NewUtility.
type Utility float32

// NewUtility validates v and returns it as a Utility, rejecting NaN. +/-Inf
// is accepted: a scoring function that wants to express "never pick this"
// can use negative infinity.
func NewUtility(v float32) (Utility, error) {
	if math.IsNaN(float64(v)) {
		return 0, errNaNUtility
	}
	return Utility(v), nil
}

// MustUtility is like NewUtility but panics on an invalid value. Intended
// for use with compile-time-known constants.
func MustUtility(v float32) Utility {
	u, err := NewUtility(v)
	if err != nil {
		panic(err)
	}
	return u
}

var errNaNUtility = utilityError("egraph: utility must not be NaN")

type utilityError string

func (e utilityError) Error() string { return string(e) }
