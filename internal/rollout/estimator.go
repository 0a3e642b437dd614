// Package rollout implements the simulation step of the search: given a
// partially-assigned extraction state, it completes the assignment with
// uniformly random node choices and scores the result, giving the search
// tree a cheap utility estimate for a candidate it hasn't explored yet.
//
// Grounded on random_cost_estimate in extraction_state.rs. The original
// comments that a rollout landing on an empty class or a cycle and
// "resampling from zero is probably wrong"; this package resolves that by
// resetting the state to the frontier it captured itself on entry and
// retrying with a fresh set of random choices, up to MaxResamples times,
// before giving up and reporting the zero-value Utility.
package rollout

import (
	"math/rand/v2"

	"github.com/mctsextract/internal/extraction"
	"github.com/mctsextract/pkg/egraph"
)

// DefaultMaxResamples is used when a Config leaves MaxResamples unset (<=0).
const DefaultMaxResamples = 10

// Config tunes the rollout estimator.
type Config struct {
	// MaxResamples caps how many times a failed rollout (one that hits an
	// empty class or never completes because of a cycle) is retried before
	// the estimator gives up and returns the zero Utility. <=0 means
	// DefaultMaxResamples.
	MaxResamples int
	// Samples is how many independent rollouts (each with its own resample
	// budget) are averaged into the returned Utility. <=0 means 1,
	// corresponding to MctsConfig.terms_to_sample in the original engine.
	Samples int
}

func (c Config) maxResamples() int {
	if c.MaxResamples <= 0 {
		return DefaultMaxResamples
	}
	return c.MaxResamples
}

func (c Config) samples() int {
	if c.Samples <= 0 {
		return 1
	}
	return c.Samples
}

// Estimate completes state with uniformly random node choices and scores the
// result via eg.AssignmentUtility, averaging cfg.Samples independent
// rollouts, every one of them starting from the same frontier (the partial
// assignment as of the call to Estimate). Estimate pushes its own snapshot
// at entry and pops it before returning, so every sample's and every
// resample's state.Reset rewinds to that frontier rather than whatever
// snapshot an outer caller (internal/search.Search.Playout) happened to have
// on top of the stack. The last sample is rewound too, so state is returned
// exactly as Estimate found it.
//
// A sample that exhausts its resample budget without reaching a complete
// assignment contributes the zero Utility to the average.
func Estimate[ClassID comparable, NodeID comparable](
	eg egraph.EgraphTotalCost[ClassID, NodeID],
	state *extraction.State[ClassID, NodeID],
	rng *rand.Rand,
	cfg Config,
) egraph.Utility {
	state.PushSnapshot()
	defer state.PopSnapshot()

	n := cfg.samples()
	var total float64
	for i := 0; i < n; i++ {
		total += float64(estimateOne(eg, state, rng, cfg))
		state.Reset(eg)
	}
	return egraph.Utility(total / float64(n))
}

// estimateOne runs a single sample's resample loop.
func estimateOne[ClassID comparable, NodeID comparable](
	eg egraph.EgraphTotalCost[ClassID, NodeID],
	state *extraction.State[ClassID, NodeID],
	rng *rand.Rand,
	cfg Config,
) egraph.Utility {
	max := cfg.maxResamples()
	for attempt := 0; attempt < max; attempt++ {
		if u, ok := randomPlayout(eg, state, rng); ok {
			return u
		}
		if attempt != max-1 {
			state.Reset(eg)
		}
	}
	return 0
}

// randomPlayout drives state to completion (or failure) via one pass of
// uniformly random node choices.
func randomPlayout[ClassID comparable, NodeID comparable](
	eg egraph.EgraphTotalCost[ClassID, NodeID],
	state *extraction.State[ClassID, NodeID],
	rng *rand.Rand,
) (egraph.Utility, bool) {
	for {
		if assign, complete := state.CompleteAssignment(); complete {
			return eg.AssignmentUtility(assign), true
		}

		handle, ok := state.StartNextAssign()
		if !ok {
			// Nothing left to visit but still incomplete: every remaining
			// class is stuck waiting on a dependency that never resolves,
			// i.e. a cycle. Not recoverable within this attempt.
			return 0, false
		}

		members := eg.Members(handle.Class())
		if len(members) == 0 {
			return 0, false
		}
		node := members[rng.IntN(len(members))]
		handle.Assign(node, eg)
	}
}
