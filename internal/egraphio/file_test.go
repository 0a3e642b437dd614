package egraphio

import (
	"strings"
	"testing"

	"github.com/mctsextract/pkg/egraph"
)

const validDoc = `{
	"root": 0,
	"nodes": [
		{"cost": 1.0, "children": [1]},
		{"cost": 2.0, "children": []},
		{"cost": 5.0, "children": []}
	],
	"classes": [
		[0],
		[1, 2]
	]
}`

func TestLoadFromReader_Valid(t *testing.T) {
	f, err := LoadFromReader(strings.NewReader(validDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Root != 0 {
		t.Fatalf("expected root 0, got %d", f.Root)
	}
	if len(f.Nodes) != 3 || len(f.Classes) != 2 {
		t.Fatalf("unexpected shape: %+v", f)
	}
}

func TestLoadFromReader_RootOutOfRange(t *testing.T) {
	doc := `{"root": 5, "nodes": [], "classes": [[0]]}`
	if _, err := LoadFromReader(strings.NewReader(doc)); err == nil {
		t.Fatal("expected an error for out-of-range root")
	}
}

func TestLoadFromReader_ClassReferencesBadNode(t *testing.T) {
	doc := `{"root": 0, "nodes": [{"cost":1,"children":[]}], "classes": [[5]]}`
	if _, err := LoadFromReader(strings.NewReader(doc)); err == nil {
		t.Fatal("expected an error for class referencing an out-of-range node")
	}
}

func TestLoadFromReader_NodeReferencesBadClass(t *testing.T) {
	doc := `{"root": 0, "nodes": [{"cost":1,"children":[9]}], "classes": [[0]]}`
	if _, err := LoadFromReader(strings.NewReader(doc)); err == nil {
		t.Fatal("expected an error for node referencing an out-of-range class")
	}
}

func TestBuild_PrefersLowerCostAssignment(t *testing.T) {
	f, err := LoadFromReader(strings.NewReader(validDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eg := f.Build()

	cheap := egraph.NewAssignment[int, int]()
	cheap.Insert(0, 0)
	cheap.Insert(1, 1)

	expensive := egraph.NewAssignment[int, int]()
	expensive.Insert(0, 0)
	expensive.Insert(1, 2)

	if u := eg.AssignmentUtility(cheap); u <= eg.AssignmentUtility(expensive) {
		t.Fatalf("expected cheaper assignment to score higher utility, got cheap=%v expensive=%v",
			u, eg.AssignmentUtility(expensive))
	}
}
