// Package mcts is the public entry point for MCTS-based e-graph term
// extraction: given an e-graph, a root class, and a MctsConfig, Extract
// searches for a high-utility acyclic assignment of e-nodes to every class
// reachable from the root.
//
// Grounded on lib.rs's mcts_extract; the per-round loop and span-per-round
// tracing follow the teacher's telemetry idiom (pkg/telemetry).
package mcts

import (
	"context"
	"math"
	"math/rand/v2"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mctsextract/internal/rollout"
	"github.com/mctsextract/internal/search"
	"github.com/mctsextract/pkg/egraph"
	appErrors "github.com/mctsextract/pkg/errors"
)

var tracer = otel.Tracer("mctsextract")

// DefaultExplorationConstant is sqrt(2), the constant the original engine
// hardcodes; MctsConfig.ExplorationConstant defaults to this when left at
// its zero value.
const DefaultExplorationConstant = math.Sqrt2

// MctsConfig tunes one extraction run.
type MctsConfig struct {
	// PlayoutsPerRound is how many playouts run before a round commits its
	// most-visited root child and advances to the next class. Must be >=1.
	PlayoutsPerRound int
	// TermsToSample is how many random rollouts are averaged into the
	// utility estimate at each freshly-expanded node. <=0 means 1.
	TermsToSample int
	// ExplorationConstant is the UCT c term. <=0 means DefaultExplorationConstant.
	ExplorationConstant float64
	// MaxRolloutResamples caps retries of a single failed rollout sample.
	// <=0 means rollout.DefaultMaxResamples.
	MaxRolloutResamples int
	// Seed1, Seed2 seed the rng (math/rand/v2's PCG source takes two
	// uint64 seeds). Both zero means an arbitrary fixed seed is used,
	// which is deterministic but not varied run-to-run — callers that want
	// fresh randomness should supply their own seeds.
	Seed1, Seed2 uint64
}

func (c MctsConfig) explorationConstant() float64 {
	if c.ExplorationConstant <= 0 {
		return DefaultExplorationConstant
	}
	return c.ExplorationConstant
}

func (c MctsConfig) rolloutConfig() rollout.Config {
	return rollout.Config{
		MaxResamples: c.MaxRolloutResamples,
		Samples:      c.TermsToSample,
	}
}

// Validate reports whether c is usable, wrapping failures in
// errors.ErrInvalidConfig.
func (c MctsConfig) Validate() error {
	if c.PlayoutsPerRound < 1 {
		return appErrors.Wrap(appErrors.CodeInvalidConfig, "playouts_per_round must be at least 1", nil)
	}
	return nil
}

// Extract searches eg for a complete acyclic assignment of nodes to every
// class reachable from root, running cfg.PlayoutsPerRound playouts per
// round until the extraction state completes or no round can make further
// progress (every remaining candidate leads into a cycle or an empty
// class). Returns the assignment and true on success, or nil and false if
// no complete assignment was ever reached.
func Extract[ClassID comparable, NodeID comparable](
	ctx context.Context,
	eg egraph.EgraphTotalCost[ClassID, NodeID],
	root ClassID,
	cfg MctsConfig,
) (*egraph.Assignment[ClassID, NodeID], bool) {
	if err := cfg.Validate(); err != nil {
		return nil, false
	}

	rng := rand.New(rand.NewPCG(cfg.Seed1, cfg.Seed2))
	s := search.New[ClassID, NodeID](eg, root, rng, cfg.explorationConstant(), cfg.rolloutConfig())

	round := 0
	for {
		if assign, complete := s.CompleteAssignment(); complete {
			return assign, true
		}

		_, span := tracer.Start(ctx, "mcts.round", attribute.Int("round", round))
		for i := 0; i < cfg.PlayoutsPerRound; i++ {
			s.Playout()
		}
		stats := s.RootStats()
		span.SetAttributes(
			attribute.Int("root_visits", stats.RootVisits),
			attribute.Float64("avg_utility", stats.AvgUtility),
		)

		_, _, ok := s.CommitRound()
		if !ok {
			span.SetStatus(codes.Error, "no progress possible")
			span.End()
			return nil, false
		}
		span.End()
		round++
	}
}
