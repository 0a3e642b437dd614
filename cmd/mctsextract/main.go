// Command mctsextract runs MCTS-based e-graph term extraction from the
// command line: a single JSON e-graph file in, the extracted term's
// assignment out.
package main

import "github.com/mctsextract/cmd/mctsextract/cmd"

func main() {
	cmd.Execute()
}
