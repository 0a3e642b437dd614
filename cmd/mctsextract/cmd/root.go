package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mctsextract/pkg/config"
	"github.com/mctsextract/pkg/telemetry"
	"github.com/mctsextract/pkg/utils"
)

var (
	// Global flags
	verbose   bool
	cfgFile   string
	logger    utils.Logger
	appConfig *config.Config
	otelStop  func(ctx context.Context) error
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "mctsextract",
	Short: "Monte-Carlo tree search extraction for e-graphs",
	Long: `mctsextract searches an e-graph for a high-utility acyclic term.

It runs selection/expansion/simulation/backpropagation rounds (UCT-guided
Monte-Carlo tree search) against a JSON-described e-graph, committing one
class's assignment per round until a complete term is extracted or the
graph turns out to be unextractable.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg

		shutdown, err := telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("telemetry init failed, continuing without tracing: %v", err)
			shutdown = func(context.Context) error { return nil }
		}
		otelStop = shutdown

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if otelStop != nil {
			return otelStop(cmd.Context())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (defaults to ./config.yaml, /etc/mctsextract/config.yaml)")

	binName := BinName()
	rootCmd.Example = `  # Extract the best term from an e-graph file
  ` + binName + ` extract -i ./graph.json

  # Extract with a fixed rng seed for reproducibility
  ` + binName + ` extract -i ./graph.json --seed1 42 --seed2 7

  # Extract from every *.json e-graph in a directory, concurrently
  ` + binName + ` batch -d ./graphs -o ./results`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return appConfig
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
