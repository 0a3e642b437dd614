package mcts

import (
	"context"
	"testing"

	"github.com/mctsextract/pkg/egraph"
)

// scoreHighUtilPath mirrors the original engine's test fixture score
// function: the single term {0:1, 2:4, 3:5} is worth 1.0, everything else 0.
func scoreHighUtilPath(assign *egraph.Assignment[int, int]) egraph.Utility {
	n0, ok0 := assign.Get(0)
	n2, ok2 := assign.Get(2)
	n3, ok3 := assign.Get(3)
	if ok0 && n0 == 1 && ok2 && n2 == 4 && ok3 && n3 == 5 {
		return 1
	}
	return 0
}

func TestExtract_FindsHighUtilityTerm(t *testing.T) {
	eg := &egraph.SimpleEgraph{
		Nodes: [][]int{
			{2, 1},
			{2, 2},
			{2, 3},
			{3},
			{3, 3},
			{},
		},
		Classes: [][]int{
			{0, 1},
			{2, 3},
			{4},
			{5},
		},
		ScoreFn: scoreHighUtilPath,
	}

	cfg := MctsConfig{PlayoutsPerRound: 4, TermsToSample: 4}
	assign, ok := Extract[int, int](context.Background(), eg, 0, cfg)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if assign.Len() != 3 {
		t.Fatalf("expected 3 committed classes, got %d", assign.Len())
	}
	if n, _ := assign.Get(0); n != 1 {
		t.Fatalf("expected class 0 -> node 1, got %d", n)
	}
	if n, _ := assign.Get(2); n != 4 {
		t.Fatalf("expected class 2 -> node 4, got %d", n)
	}
	if n, _ := assign.Get(3); n != 5 {
		t.Fatalf("expected class 3 -> node 5, got %d", n)
	}
}

func TestExtract_FailsOnUnextractableGraph(t *testing.T) {
	eg := &egraph.SimpleEgraph{
		Nodes: [][]int{
			{0, 1},
			{2, 2},
			{3, 2},
			{0, 3},
			{1, 0},
			{2, 3, 1},
		},
		Classes: [][]int{
			{0, 1},
			{2, 3},
			{4},
			{5},
		},
		ScoreFn: scoreHighUtilPath,
	}

	cfg := MctsConfig{PlayoutsPerRound: 4, TermsToSample: 4}
	_, ok := Extract[int, int](context.Background(), eg, 0, cfg)
	if ok {
		t.Fatal("expected extraction of a fully cyclic egraph to fail")
	}
}

func TestExtract_EmptyRootClassFails(t *testing.T) {
	eg := &egraph.SimpleEgraph{
		Nodes:   [][]int{},
		Classes: [][]int{{}},
		ScoreFn: func(*egraph.Assignment[int, int]) egraph.Utility { return 0 },
	}

	cfg := MctsConfig{PlayoutsPerRound: 4, TermsToSample: 1}
	_, ok := Extract[int, int](context.Background(), eg, 0, cfg)
	if ok {
		t.Fatal("expected extraction from an empty root class to fail")
	}
}

func TestExtract_SingleNodeChainCompletesImmediately(t *testing.T) {
	eg := &egraph.SimpleEgraph{
		Nodes:   [][]int{{}},
		Classes: [][]int{{0}},
		ScoreFn: func(*egraph.Assignment[int, int]) egraph.Utility { return 1 },
	}

	cfg := MctsConfig{PlayoutsPerRound: 1, TermsToSample: 1}
	assign, ok := Extract[int, int](context.Background(), eg, 0, cfg)
	if !ok {
		t.Fatal("expected single-leaf extraction to succeed")
	}
	if n, _ := assign.Get(0); n != 0 {
		t.Fatalf("expected class 0 -> node 0, got %d", n)
	}
}

func TestExtract_InvalidConfigFails(t *testing.T) {
	eg := &egraph.SimpleEgraph{
		Nodes:   [][]int{{}},
		Classes: [][]int{{0}},
	}
	_, ok := Extract[int, int](context.Background(), eg, 0, MctsConfig{PlayoutsPerRound: 0})
	if ok {
		t.Fatal("expected invalid config (playouts_per_round=0) to fail")
	}
}
