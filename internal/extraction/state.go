// Package extraction maintains the incremental partial assignment of
// e-nodes to e-classes used by the MCTS search tree and the rollout
// estimator. Extraction proceeds top-down from a root class: each class
// discovered along the way is queued, assigned an e-node, and that choice's
// children are queued in turn. A class only becomes part of the final
// (committed) assignment once every one of its chosen node's children has
// itself resolved — tracked via a single-watch dependency index so that a
// class resolving only has to revisit the pending nodes watching it,
// instead of rescanning every outstanding pending node.
//
// Top-down extraction can wander down paths that turn out to be cyclic
// (MCTS is relied on to steer away from those in practice); bottom-up
// extraction would rule cycles out more eagerly but can't reuse whole-term
// cost information the way this package's caller does. See spec.md §9 for
// the full tradeoff discussion.
package extraction

import (
	"github.com/mctsextract/pkg/egraph"

	"github.com/mctsextract/internal/queue"
)

// State is the incremental partial-assignment state machine described in
// spec.md §4.2. It is not safe for concurrent use.
type State[ClassID comparable, NodeID comparable] struct {
	assign    *egraph.Assignment[ClassID, NodeID]
	pending   pendingState[ClassID, NodeID]
	snapshots []stateSnapshot
}

type pendingState[ClassID comparable, NodeID comparable] struct {
	// provisionalAssign holds classes already dispatched for resolution;
	// it may still contain entries whose children haven't all resolved.
	// It never shrinks except via Reset, and assign is a subset of it
	// (by key) once resolution completes.
	provisionalAssign *egraph.Assignment[ClassID, NodeID]
	// nRemaining counts provisional entries not yet fully resolved.
	nRemaining int
	deps       *depIndex[ClassID, NodeID]
	toVisit    *queue.BacktrackQueue[ClassID]
	toVisitSet map[ClassID]struct{}
}

type pendingSnapshot struct {
	assignLen  int
	nRemaining int
	toVisit    queue.Snapshot
}

type stateSnapshot struct {
	assignLen int
	pending   pendingSnapshot
}

// New creates an ExtractionState rooted at root: the to-visit queue and set
// start containing only root, and an initial snapshot is taken immediately
// so the caller can always Reset back to the state's creation point.
func New[ClassID comparable, NodeID comparable](root ClassID) *State[ClassID, NodeID] {
	s := &State[ClassID, NodeID]{
		assign: egraph.NewAssignment[ClassID, NodeID](),
		pending: pendingState[ClassID, NodeID]{
			provisionalAssign: egraph.NewAssignment[ClassID, NodeID](),
			deps:              newDepIndex[ClassID, NodeID](),
			toVisit:           queue.New[ClassID](),
			toVisitSet:        make(map[ClassID]struct{}),
		},
	}
	s.pending.pushToVisit(root)
	s.PushSnapshot()
	return s
}

func (p *pendingState[ClassID, NodeID]) pushToVisit(class ClassID) {
	if p.provisionalAssign.ContainsKey(class) {
		return
	}
	if _, already := p.toVisitSet[class]; already {
		return
	}
	p.toVisitSet[class] = struct{}{}
	p.toVisit.PushBack(class)
}

func (p *pendingState[ClassID, NodeID]) saveSnapshot() pendingSnapshot {
	return pendingSnapshot{
		assignLen:  p.provisionalAssign.Len(),
		nRemaining: p.nRemaining,
		toVisit:    p.toVisit.Snap(),
	}
}

// restore rebuilds pending state from snap. fullAssign is the (already
// truncated) committed assignment; restore re-derives the dependency index
// by replaying every surviving provisional entry not already committed in
// fullAssign, and asserts that doing so never produces a brand-new
// committed entry (committed entries were already retained by
// fullAssign.Truncate, so a replay that commits something is a bug).
func (p *pendingState[ClassID, NodeID]) restore(snap pendingSnapshot, fullAssign *egraph.Assignment[ClassID, NodeID], eg egraph.Egraph[ClassID, NodeID]) {
	p.provisionalAssign.Truncate(snap.assignLen)
	p.nRemaining = snap.nRemaining
	p.toVisit.Restore(snap.toVisit)

	for k := range p.toVisitSet {
		delete(p.toVisitSet, k)
	}
	p.toVisit.Iter(func(c ClassID) bool {
		p.toVisitSet[c] = struct{}{}
		return true
	})

	p.deps.clear()
	p.provisionalAssign.Iter(func(class ClassID, node NodeID) bool {
		if fullAssign.ContainsKey(class) {
			return true
		}
		if committed := p.deps.trackPendingAssignment(node, class, fullAssign, eg.Children(node)); committed != 0 {
			panic("extraction: rehydration committed a new entry, invariant violated")
		}
		return true
	})
}

// PushSnapshot records the current state so a later Reset can roll back to
// exactly this point.
func (s *State[ClassID, NodeID]) PushSnapshot() {
	s.snapshots = append(s.snapshots, stateSnapshot{
		assignLen: s.assign.Len(),
		pending:   s.pending.saveSnapshot(),
	})
}

// PopSnapshot discards the most recent snapshot without mutating any other
// state.
func (s *State[ClassID, NodeID]) PopSnapshot() {
	if len(s.snapshots) == 0 {
		return
	}
	s.snapshots = s.snapshots[:len(s.snapshots)-1]
}

// Reset rewinds assign, the provisional assignment, the to-visit queue/set,
// and the dependency index to the state recorded in the *top* snapshot,
// without popping it — repeated Reset/PopSnapshot cycles can reuse the same
// snapshot to try and rewind as many times as needed.
func (s *State[ClassID, NodeID]) Reset(eg egraph.Egraph[ClassID, NodeID]) {
	if len(s.snapshots) == 0 {
		return
	}
	top := s.snapshots[len(s.snapshots)-1]
	s.assign.Truncate(top.assignLen)
	s.pending.restore(top.pending, s.assign, eg)
}

// CompleteAssignment returns the committed assignment and true if the
// completion predicate holds (spec.md §3, §8 P4): nRemaining is 0 and the
// to-visit set is empty. Otherwise returns nil, false.
func (s *State[ClassID, NodeID]) CompleteAssignment() (*egraph.Assignment[ClassID, NodeID], bool) {
	if s.pending.nRemaining == 0 && len(s.pending.toVisitSet) == 0 {
		return s.assign, true
	}
	return nil, false
}

// Handle borrows a State mutably for the duration of a single class -> node
// assignment. It must be consumed (via Assign) before the State is touched
// again.
type Handle[ClassID comparable, NodeID comparable] struct {
	state *State[ClassID, NodeID]
}

// Class returns the e-class this handle is offering an assignment for.
func (h Handle[ClassID, NodeID]) Class() ClassID {
	c, ok := h.state.pending.toVisit.Front()
	if !ok {
		panic("extraction: Handle.Class called with empty to-visit queue")
	}
	return c
}

// Assign commits node as the chosen e-node for this handle's class, running
// the provisional-assignment algorithm described in spec.md §4.2.
func (h Handle[ClassID, NodeID]) Assign(node NodeID, eg egraph.Egraph[ClassID, NodeID]) {
	class, ok := h.state.pending.toVisit.PopFront()
	if !ok {
		panic("extraction: Handle.Assign called with empty to-visit queue")
	}
	h.state.provisionalAssign(class, node, eg)
}

// StartNextAssign peeks the front of the to-visit queue and returns a
// Handle for it, or false if nothing is queued.
func (s *State[ClassID, NodeID]) StartNextAssign() (Handle[ClassID, NodeID], bool) {
	if _, ok := s.pending.toVisit.Front(); !ok {
		return Handle[ClassID, NodeID]{}, false
	}
	return Handle[ClassID, NodeID]{state: s}, true
}

func (s *State[ClassID, NodeID]) provisionalAssign(class ClassID, node NodeID, eg egraph.Egraph[ClassID, NodeID]) {
	delete(s.pending.toVisitSet, class)
	s.pending.provisionalAssign.Insert(class, node)
	s.pending.nRemaining++

	children := eg.Children(node)
	committed := s.pending.deps.trackPendingAssignment(node, class, s.assign, children)
	// committed counts the node itself (if fully resolved) plus any
	// cascaded commits; subtracting it here nets to zero when the node
	// resolved immediately, matching the +1/-1 bookkeeping in spec.md §4.2
	// step 5.
	s.pending.nRemaining -= committed

	for _, child := range children {
		if !s.assign.ContainsKey(child) {
			s.pending.pushToVisit(child)
		}
	}
}
