// Package egraphio loads e-graphs for the CLI from a small JSON file format:
// a flat node list (each with its cost and child-class indices) plus a class
// list (each a list of member node indices), rooted at one class. It exists
// purely as CLI plumbing around pkg/egraph.SimpleEgraph — the engine itself
// never imports this package.
package egraphio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mctsextract/pkg/egraph"
)

// Node is one e-node: its cost and the classes of its children, in
// positional order.
type Node struct {
	Cost     float64 `json:"cost"`
	Children []int   `json:"children"`
}

// File is the on-disk representation of an e-graph plus the class to
// extract from.
type File struct {
	Root    int     `json:"root"`
	Nodes   []Node  `json:"nodes"`
	Classes [][]int `json:"classes"`
}

// Load reads and validates a File from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("egraphio: read %s: %w", path, err)
	}
	return parse(data)
}

// LoadFromReader reads and validates a File from r.
func LoadFromReader(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("egraphio: read: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("egraphio: decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks that every index the file refers to (root, class members,
// node children) is actually in range.
func (f *File) Validate() error {
	if f.Root < 0 || f.Root >= len(f.Classes) {
		return fmt.Errorf("egraphio: root class %d out of range (have %d classes)", f.Root, len(f.Classes))
	}
	for ci, members := range f.Classes {
		for _, n := range members {
			if n < 0 || n >= len(f.Nodes) {
				return fmt.Errorf("egraphio: class %d references out-of-range node %d", ci, n)
			}
		}
	}
	for ni, node := range f.Nodes {
		for _, c := range node.Children {
			if c < 0 || c >= len(f.Classes) {
				return fmt.Errorf("egraphio: node %d references out-of-range class %d", ni, c)
			}
		}
	}
	return nil
}

// Build converts f into a SimpleEgraph. The scoring function sums the cost
// of every node in a complete assignment and returns its negation (Utility
// is higher-is-better; this file format's cost is lower-is-better), so MCTS
// extraction naturally searches for a minimum-cost term.
func (f *File) Build() *egraph.SimpleEgraph {
	nodes := make([][]int, len(f.Nodes))
	costs := make([]float64, len(f.Nodes))
	for i, n := range f.Nodes {
		nodes[i] = n.Children
		costs[i] = n.Cost
	}

	return &egraph.SimpleEgraph{
		Nodes:   nodes,
		Classes: f.Classes,
		ScoreFn: func(assignment *egraph.Assignment[int, int]) egraph.Utility {
			var total float64
			assignment.Iter(func(_ int, node int) bool {
				total += costs[node]
				return true
			})
			return egraph.Utility(-total)
		},
	}
}
