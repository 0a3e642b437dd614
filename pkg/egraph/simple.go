package egraph

// SimpleEgraph is a minimal in-memory e-graph keyed by integer class and
// node ids, with a pluggable scoring function. It implements no congruence
// closure or any other e-graph maintenance algorithm; it exists purely as a
// concrete Egraph/EgraphTotalCost implementation for tests, examples, and
// the CLI's JSON e-graph file format.
//
// Nodes[n] lists the child classes of node n; Classes[c] lists the member
// nodes of class c.
type SimpleEgraph struct {
	Nodes   [][]int
	Classes [][]int
	ScoreFn func(assignment *Assignment[int, int]) Utility
}

// Members returns the e-nodes belonging to class.
func (g *SimpleEgraph) Members(class int) []int {
	if class < 0 || class >= len(g.Classes) {
		return nil
	}
	return g.Classes[class]
}

// Children returns the child e-classes of node.
func (g *SimpleEgraph) Children(node int) []int {
	if node < 0 || node >= len(g.Nodes) {
		return nil
	}
	return g.Nodes[node]
}

// AssignmentUtility scores a complete assignment using ScoreFn. Assumes the
// assignment is complete; behavior is undefined otherwise.
func (g *SimpleEgraph) AssignmentUtility(assignment *Assignment[int, int]) Utility {
	if g.ScoreFn == nil {
		return 0
	}
	return g.ScoreFn(assignment)
}

var (
	_ Egraph[int, int]          = (*SimpleEgraph)(nil)
	_ EgraphTotalCost[int, int] = (*SimpleEgraph)(nil)
)
