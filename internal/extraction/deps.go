package extraction

import "github.com/mctsextract/pkg/egraph"

// pendingNode is a provisionally-assigned e-node still waiting on some of
// its children to resolve.
type pendingNode[ClassID comparable, NodeID comparable] struct {
	node NodeID
	class ClassID
	deps  []ClassID
}

// depIndex implements the single-watch dependency scheme described in
// spec.md §4.2: each pending node is filed under exactly one of its
// still-unresolved dependency classes (the first one, by iteration order),
// analogous to two-watched-literals in DPLL SAT solving. When that class
// commits, only the pending nodes filed under it are revisited, instead of
// rescanning every pending node's full dependency list.
type depIndex[ClassID comparable, NodeID comparable] struct {
	data map[ClassID][]pendingNode[ClassID, NodeID]
}

func newDepIndex[ClassID comparable, NodeID comparable]() *depIndex[ClassID, NodeID] {
	return &depIndex[ClassID, NodeID]{data: make(map[ClassID][]pendingNode[ClassID, NodeID])}
}

func (d *depIndex[ClassID, NodeID]) clear() {
	for k := range d.data {
		delete(d.data, k)
	}
}

// resolveDep revisits every pending node watching class (now committed in
// assign) and either re-files it under a new unresolved dependency or, if
// none remain, commits it to assign and cascades. Returns the number of
// newly-committed entries (including nested cascades).
func (d *depIndex[ClassID, NodeID]) resolveDep(class ClassID, assign *egraph.Assignment[ClassID, NodeID]) int {
	// Iterative cascade via an explicit work stack: term depth can exceed
	// the call stack, so this avoids recursion per spec.md §9.
	committed := 0
	stack := []ClassID{class}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		pending, ok := d.data[cur]
		if !ok {
			continue
		}
		delete(d.data, cur)

		for _, pn := range pending {
			remaining := pn.deps[:0]
			for _, dep := range pn.deps {
				if !assign.ContainsKey(dep) {
					remaining = append(remaining, dep)
				}
			}
			pn.deps = remaining
			if len(pn.deps) > 0 {
				watch := pn.deps[0]
				d.data[watch] = append(d.data[watch], pn)
				continue
			}
			assign.Insert(pn.class, pn.node)
			committed++
			stack = append(stack, pn.class)
		}
	}
	return committed
}

// trackPendingAssignment registers node (chosen for class) in the
// dependency index. deps is the full, unfiltered child list of node; any
// child already committed in assign is dropped before filing.
//
// If no dependency remains, node is committed to assign immediately and the
// watch cascade runs; the return value is the number of newly committed
// entries (at least 1). Otherwise the pending node is filed under its first
// unresolved dependency and 0 is returned.
func (d *depIndex[ClassID, NodeID]) trackPendingAssignment(
	node NodeID,
	class ClassID,
	assign *egraph.Assignment[ClassID, NodeID],
	children []ClassID,
) int {
	deps := make([]ClassID, 0, len(children))
	for _, c := range children {
		if !assign.ContainsKey(c) {
			deps = append(deps, c)
		}
	}
	if len(deps) == 0 {
		assign.Insert(class, node)
		return d.resolveDep(class, assign) + 1
	}
	watch := deps[0]
	d.data[watch] = append(d.data[watch], pendingNode[ClassID, NodeID]{node: node, class: class, deps: deps})
	return 0
}
