package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mctsextract/internal/egraphio"
	"github.com/mctsextract/pkg/mcts"
	"github.com/mctsextract/pkg/parallel"
)

var (
	batchDir     string
	batchOutDir  string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract every e-graph *.json file in a directory concurrently",
	Example: `  mctsextract batch -d ./graphs -o ./results
  mctsextract batch -d ./graphs -o ./results --workers 4`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchDir, "dir", "d", "", "Directory of *.json e-graph files (required)")
	batchCmd.Flags().StringVarP(&batchOutDir, "output", "o", "./batch-output", "Output directory for per-file assignment results")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Max concurrent extractions (default: number of CPUs, clamped to 2..8)")
	batchCmd.MarkFlagRequired("dir")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	entries, err := os.ReadDir(batchDir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", batchDir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(batchDir, e.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		log.Warn("no *.json files found in %s", batchDir)
		return nil
	}

	if err := os.MkdirAll(batchOutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	poolCfg := parallel.DefaultPoolConfig().WithMetrics()
	if batchWorkers > 0 {
		poolCfg = poolCfg.WithWorkers(batchWorkers)
	}
	pool := parallel.NewWorkerPool[string, AssignmentOutput](poolCfg)

	// An extraction that finds no complete assignment is folded into its own
	// AssignmentOutput (Extracted=false) rather than returned as a task
	// error, and every task runs independently, so one bad e-graph never
	// keeps the rest of the batch's results from being written.
	// TaskResult.Error is only ever the egraphio load failure, and no result
	// file is written for such an input.
	results := pool.ExecuteFunc(cmd.Context(), files, extractOne)

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Error != nil {
			log.Error("%s: %v", r.Input, r.Error)
			failed++
			continue
		}
		outPath := filepath.Join(batchOutDir, r.Result.RunID+".json")
		if err := writeAssignmentOutput(r.Result, outPath); err != nil {
			log.Error("%s: failed to write result: %v", r.Input, err)
			failed++
			continue
		}
		if r.Result.Extracted {
			succeeded++
		} else {
			failed++
		}
	}

	metrics := pool.Metrics()
	log.Info("batch complete: %d succeeded, %d failed, results in %s (wall time %s)",
		succeeded, failed, batchOutDir, metrics.TotalDuration)
	return nil
}

func extractOne(ctx context.Context, path string) (AssignmentOutput, error) {
	runID := uuid.NewString()

	file, err := egraphio.Load(path)
	if err != nil {
		return AssignmentOutput{}, fmt.Errorf("load: %w", err)
	}
	eg := file.Build()

	cfg := mctsConfigFromFlags()
	assign, ok := mcts.Extract[int, int](ctx, eg, file.Root, cfg)

	out := AssignmentOutput{RunID: runID, Source: path, Extracted: ok}
	if ok {
		out.Assignment = make(map[int]int, assign.Len())
		assign.Iter(func(class, node int) bool {
			out.Assignment[class] = node
			return true
		})
	}
	return out, nil
}
