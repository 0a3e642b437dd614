// Package search implements the Monte-Carlo search tree: selection via UCT,
// expansion of one new node per playout, random-rollout simulation (via
// internal/rollout), and backpropagation of the resulting utility along the
// selection path. One playout descends exactly as far as the real extraction
// state would if the choices made during selection were committed; a round
// runs a configured number of playouts and then commits the single most-
// visited choice at the root, advancing the real extraction state by one
// class before the next round begins.
//
// Grounded on search_tree.rs (TreeNode, SearchTree, SearchState, uct_score,
// pick_node, run_playout).
package search

import (
	"math"
	"math/rand/v2"

	"github.com/mctsextract/internal/extraction"
	"github.com/mctsextract/internal/rollout"
	"github.com/mctsextract/pkg/egraph"
)

// NodeIndex identifies a node within a Tree's arena. The root is always
// allocated first, at index 0, so the zero value refers to the root; callers
// should still treat NodeIndex as opaque.
type NodeIndex uint32

type treeNode[ClassID comparable, NodeID comparable] struct {
	class        ClassID
	nVisits      int
	totalUtility float64
	children     map[NodeID]NodeIndex
}

// Tree is an arena of search nodes. Nodes are never removed individually;
// Reroot replaces the whole arena with just the surviving subtree so memory
// doesn't grow unbounded across an entire extraction run.
type Tree[ClassID comparable, NodeID comparable] struct {
	nodes []treeNode[ClassID, NodeID]
	root  NodeIndex
}

// NewTree returns a Tree with a single unvisited root standing for class.
func NewTree[ClassID comparable, NodeID comparable](rootClass ClassID) *Tree[ClassID, NodeID] {
	t := &Tree[ClassID, NodeID]{}
	t.root = t.newNode(rootClass)
	return t
}

func (t *Tree[ClassID, NodeID]) newNode(class ClassID) NodeIndex {
	idx := NodeIndex(len(t.nodes))
	t.nodes = append(t.nodes, treeNode[ClassID, NodeID]{class: class, children: make(map[NodeID]NodeIndex)})
	return idx
}

func (t *Tree[ClassID, NodeID]) node(idx NodeIndex) *treeNode[ClassID, NodeID] {
	return &t.nodes[idx]
}

// Root returns the tree's current root index and the class it stands for.
func (t *Tree[ClassID, NodeID]) Root() (NodeIndex, ClassID) {
	return t.root, t.node(t.root).class
}

// RootVisits reports how many playouts have passed through the root.
func (t *Tree[ClassID, NodeID]) RootVisits() int {
	return t.node(t.root).nVisits
}

// Reroot replaces the tree with just the subtree reachable from the child
// chosen for move at the current root, re-indexing it into a fresh arena
// (the old arena, including every entry outside that subtree, is dropped).
// If no such child exists yet (the move was never explored), the tree is
// replaced by a fresh single-node tree for nextClass instead.
func (t *Tree[ClassID, NodeID]) Reroot(move NodeID, nextClass ClassID, hasNext bool) {
	oldRoot := t.node(t.root)
	childIdx, ok := oldRoot.children[move]
	if !ok || !hasNext {
		*t = Tree[ClassID, NodeID]{}
		if hasNext {
			t.root = t.newNode(nextClass)
		} else {
			t.root = t.newNode(oldRoot.class) // placeholder; extraction is complete, tree unused from here
		}
		return
	}

	fresh := &Tree[ClassID, NodeID]{}
	remap := make(map[NodeIndex]NodeIndex)
	fresh.root = cloneSubtree(t, childIdx, fresh, remap)
	*t = *fresh
}

func cloneSubtree[ClassID comparable, NodeID comparable](src *Tree[ClassID, NodeID], from NodeIndex, dst *Tree[ClassID, NodeID], remap map[NodeIndex]NodeIndex) NodeIndex {
	if existing, ok := remap[from]; ok {
		return existing
	}
	srcNode := src.node(from)
	newIdx := dst.newNode(srcNode.class)
	remap[from] = newIdx
	dst.nodes[newIdx].nVisits = srcNode.nVisits
	dst.nodes[newIdx].totalUtility = srcNode.totalUtility
	for move, childIdx := range srcNode.children {
		dst.nodes[newIdx].children[move] = cloneSubtree(src, childIdx, dst, remap)
	}
	return newIdx
}

// uctScore implements score(child) = avg_utility(child) + c*sqrt(ln(parent_visits)/max(child_visits,1)).
// An unvisited child always scores +Inf so every child is tried once before
// exploitation kicks in.
func uctScore(childVisits int, childTotalUtility float64, parentVisits int, explorationConstant float64) float64 {
	if childVisits == 0 {
		return math.Inf(1)
	}
	avg := childTotalUtility / float64(childVisits)
	p := parentVisits
	if p < 1 {
		p = 1
	}
	return avg + explorationConstant*math.Sqrt(math.Log(float64(p))/float64(childVisits))
}

// Search couples a Tree with the extraction state and egraph it is
// searching over.
type Search[ClassID comparable, NodeID comparable] struct {
	tree                *Tree[ClassID, NodeID]
	state               *extraction.State[ClassID, NodeID]
	eg                  egraph.EgraphTotalCost[ClassID, NodeID]
	rng                 *rand.Rand
	explorationConstant float64
	rolloutCfg          rollout.Config
}

// New returns a Search rooted at root, ready to run playouts.
func New[ClassID comparable, NodeID comparable](
	eg egraph.EgraphTotalCost[ClassID, NodeID],
	root ClassID,
	rng *rand.Rand,
	explorationConstant float64,
	rolloutCfg rollout.Config,
) *Search[ClassID, NodeID] {
	return &Search[ClassID, NodeID]{
		tree:                NewTree[ClassID, NodeID](root),
		state:               extraction.New[ClassID, NodeID](root),
		eg:                  eg,
		rng:                 rng,
		explorationConstant: explorationConstant,
		rolloutCfg:          rolloutCfg,
	}
}

// pickNode restricts candidates to eg.Members(class) — i.e. it never
// considers a choice that isn't actually valid for the class currently
// being decided. This is the fix for the upstream pick_node bug (it used to
// iterate the full child map without filtering by the peeked class, and
// could select a stale entry from a different decision path).
func (s *Search[ClassID, NodeID]) pickNode(idx NodeIndex, candidates []NodeID) (NodeID, NodeIndex, bool) {
	node := s.tree.node(idx)

	var bestScore float64 = math.Inf(-1)
	var ties []int
	for i, cand := range candidates {
		childVisits, childTotalUtility := 0, 0.0
		if childIdx, ok := node.children[cand]; ok {
			child := s.tree.node(childIdx)
			childVisits, childTotalUtility = child.nVisits, child.totalUtility
		}
		score := uctScore(childVisits, childTotalUtility, node.nVisits, s.explorationConstant)
		switch {
		case score > bestScore:
			bestScore = score
			ties = ties[:0]
			ties = append(ties, i)
		case score == bestScore:
			ties = append(ties, i)
		}
	}

	chosenIdx := ties[0]
	if len(ties) > 1 {
		chosenIdx = ties[s.rng.IntN(len(ties))]
	}
	move := candidates[chosenIdx]
	childIdx, exists := node.children[move]
	return move, childIdx, exists
}

// Playout runs one selection/expansion/simulation/backpropagation cycle and
// returns the utility it backpropagated.
func (s *Search[ClassID, NodeID]) Playout() egraph.Utility {
	s.state.PushSnapshot()
	defer func() {
		s.state.Reset(s.eg)
		s.state.PopSnapshot()
	}()

	path := []NodeIndex{s.tree.root}
	curIdx := s.tree.root

	for {
		handle, ok := s.state.StartNextAssign()
		if !ok {
			// Extraction completed purely by descending through already-
			// expanded tree nodes; no rollout needed.
			assign, complete := s.state.CompleteAssignment()
			var utility egraph.Utility
			if complete {
				utility = s.eg.AssignmentUtility(assign)
			}
			s.backprop(path, float64(utility))
			return utility
		}

		class := handle.Class()
		candidates := s.eg.Members(class)
		if len(candidates) == 0 {
			s.backprop(path, 0)
			return 0
		}

		move, childIdx, exists := s.pickNode(curIdx, candidates)
		handle.Assign(move, s.eg)

		if exists {
			curIdx = childIdx
			path = append(path, curIdx)
			continue
		}

		// Expansion: allocate the child node lazily once we know whether
		// there is a next class to decide, then push it onto the path and
		// fall through to rollout.
		var newIdx NodeIndex
		if nextHandle, more := s.state.StartNextAssign(); more {
			newIdx = s.tree.newNode(nextHandle.Class())
		} else {
			newIdx = s.tree.newNode(class)
		}
		s.tree.node(curIdx).children[move] = newIdx
		path = append(path, newIdx)

		utility := rollout.Estimate[ClassID, NodeID](s.eg, s.state, s.rng, s.rolloutCfg)
		s.backprop(path, float64(utility))
		return utility
	}
}

func (s *Search[ClassID, NodeID]) backprop(path []NodeIndex, utility float64) {
	for _, idx := range path {
		n := s.tree.node(idx)
		n.nVisits++
		n.totalUtility += utility
	}
}

// CommitRound advances the real extraction state by one class: it picks the
// most-visited child of the current root (ties broken by total utility,
// then by order in eg.Members), assigns it for real, and rebuilds the tree
// around the resulting subtree. Returns ok=false when nothing is left to
// visit (the state is complete, or every remaining class waits on a cycle)
// or when the class being decided has no members.
func (s *Search[ClassID, NodeID]) CommitRound() (class ClassID, chosen NodeID, ok bool) {
	handle, has := s.state.StartNextAssign()
	if !has {
		return class, chosen, false
	}
	class = handle.Class()
	root := s.tree.node(s.tree.root)

	// Iterate candidates in eg.Members order (not map order) so that ties
	// resolve the same way for the same egraph and rng seed every run.
	bestVisits := -1
	var bestUtility float64
	for _, move := range s.eg.Members(class) {
		childIdx, ok := root.children[move]
		if !ok {
			continue
		}
		child := s.tree.node(childIdx)
		if child.nVisits > bestVisits || (child.nVisits == bestVisits && child.totalUtility > bestUtility) {
			bestVisits = child.nVisits
			bestUtility = child.totalUtility
			chosen = move
		}
	}
	if bestVisits < 0 {
		// No playout ever explored a child (playouts_per_round == 0, or
		// every attempt failed before expanding): fall back to the first
		// member so the extraction still makes forward progress.
		members := s.eg.Members(class)
		if len(members) == 0 {
			return class, chosen, false
		}
		chosen = members[0]
	}

	handle.Assign(chosen, s.eg)
	nextHandle, hasNext := s.state.StartNextAssign()
	if hasNext {
		s.tree.Reroot(chosen, nextHandle.Class(), true)
	} else {
		var zero ClassID
		s.tree.Reroot(chosen, zero, false)
	}
	return class, chosen, true
}

// RootStats summarizes the current root's visit count and average utility,
// for driver-side progress reporting between rounds.
func (s *Search[ClassID, NodeID]) RootStats() RoundStats {
	return roundStatsFromRoot(s.tree)
}

// CompleteAssignment exposes the underlying extraction state's completion
// check for the caller (pkg/mcts) to poll between rounds.
func (s *Search[ClassID, NodeID]) CompleteAssignment() (*egraph.Assignment[ClassID, NodeID], bool) {
	return s.state.CompleteAssignment()
}
