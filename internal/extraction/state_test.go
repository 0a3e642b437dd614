package extraction

import (
	"testing"

	"github.com/mctsextract/pkg/egraph"
)

// chainEgraph is a tiny fixture: node i has children childLists[i]; class c's
// only member is node c (one node per class, keeps the fixture legible).
type chainEgraph struct {
	children [][]int
}

func (g *chainEgraph) Members(class int) []int {
	if class < 0 || class >= len(g.children) {
		return nil
	}
	return []int{class}
}

func (g *chainEgraph) Children(node int) []int {
	if node < 0 || node >= len(g.children) {
		return nil
	}
	return g.children[node]
}

var _ egraph.Egraph[int, int] = (*chainEgraph)(nil)

// assignAll walks s to completion using the single member each class/node
// has in eg, i.e. no real choice is involved. Used by tests that only care
// about the bookkeeping, not about search.
func assignAll(t *testing.T, s *State[int, int], eg *chainEgraph) {
	t.Helper()
	for {
		h, ok := s.StartNextAssign()
		if !ok {
			return
		}
		class := h.Class()
		members := eg.Members(class)
		if len(members) == 0 {
			t.Fatalf("class %d has no members", class)
		}
		h.Assign(members[0], eg)
	}
}

func TestState_LinearChainCompletes(t *testing.T) {
	// 0 -> 1 -> 2 (leaf)
	eg := &chainEgraph{children: [][]int{{1}, {2}, {}}}
	s := New[int, int](0)

	assignAll(t, s, eg)

	assign, ok := s.CompleteAssignment()
	if !ok {
		t.Fatal("expected assignment to complete")
	}
	for class := 0; class <= 2; class++ {
		node, ok := assign.Get(class)
		if !ok || node != class {
			t.Fatalf("class %d: expected node %d, got %d (ok=%v)", class, class, node, ok)
		}
	}
}

func TestState_DiamondResolvesOnSharedDescendant(t *testing.T) {
	// 0 depends on 1 and 2, both of which depend on 3 (leaf). Node 0 must
	// stay pending until both 1 and 2 commit, exercising the multi-dependency
	// watch-list path in trackPendingAssignment/resolveDep.
	eg := &chainEgraph{children: [][]int{
		{1, 2}, // 0
		{3},    // 1
		{3},    // 2
		{},     // 3
	}}
	s := New[int, int](0)
	assignAll(t, s, eg)

	assign, ok := s.CompleteAssignment()
	if !ok {
		t.Fatal("expected diamond assignment to complete")
	}
	if assign.Len() != 4 {
		t.Fatalf("expected 4 committed classes, got %d", assign.Len())
	}
}

func TestState_CycleNeverCompletes(t *testing.T) {
	// 0 -> 1 -> 0: neither class can ever have all dependencies resolved.
	eg := &chainEgraph{children: [][]int{{1}, {0}}}
	s := New[int, int](0)
	assignAll(t, s, eg)

	if _, ok := s.CompleteAssignment(); ok {
		t.Fatal("expected cyclic assignment to never complete")
	}
}

func TestState_ResetRewindsToSnapshot(t *testing.T) {
	eg := &chainEgraph{children: [][]int{{1}, {2}, {}}}
	s := New[int, int](0)

	// Assign class 0 only, then take a snapshot and push further.
	h, ok := s.StartNextAssign()
	if !ok {
		t.Fatal("expected a handle for the root class")
	}
	h.Assign(0, eg)
	s.PushSnapshot()

	h2, ok := s.StartNextAssign()
	if !ok {
		t.Fatal("expected a handle for class 1")
	}
	h2.Assign(1, eg)

	if _, ok := s.CompleteAssignment(); ok {
		t.Fatal("did not expect completion before class 2 is assigned")
	}

	s.Reset(eg)

	// After reset, class 0 should still be provisionally assigned (it
	// predates the snapshot) while waiting on class 1, and class 1 should be
	// back in the to-visit queue rather than assigned.
	if _, complete := s.CompleteAssignment(); complete {
		t.Fatal("expected reset to roll back class 1's assignment")
	}

	h3, ok := s.StartNextAssign()
	if !ok {
		t.Fatal("expected to-visit to be replayed after reset")
	}
	if h3.Class() != 1 {
		t.Fatalf("expected to revisit class 1 after reset, got %d", h3.Class())
	}
}

func TestState_PopSnapshotDoesNotMutate(t *testing.T) {
	s := New[int, int](0)
	before := s.pending.toVisit.Len()
	s.PushSnapshot()
	s.PopSnapshot()
	if s.pending.toVisit.Len() != before {
		t.Fatalf("expected PopSnapshot to leave live state untouched, len changed from %d to %d", before, s.pending.toVisit.Len())
	}
}
