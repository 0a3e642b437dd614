package search

import (
	"github.com/mctsextract/pkg/collections"
)

// RoundStats is one round's summary: the root's visit count and average
// utility at the moment a commit was made.
type RoundStats struct {
	RootVisits int
	AvgUtility float64
}

// History keeps a bounded sliding window of recent RoundStats, backed by
// collections.RingBuffer, for driver-side progress reporting without
// retaining every round for the lifetime of a long extraction. No other
// package in this module creates or records into a History.
type History struct {
	buf *collections.RingBuffer[RoundStats]
}

// NewHistory returns a History retaining at most capacity rounds.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{buf: collections.NewRingBuffer[RoundStats](capacity)}
}

// Record appends stats, evicting the oldest entry first if the window is
// already full.
func (h *History) Record(stats RoundStats) {
	if h.buf.IsFull() {
		h.buf.Pop()
	}
	h.buf.Push(stats)
}

// Recent returns the retained rounds, oldest first.
func (h *History) Recent() []RoundStats {
	n := h.buf.Len()
	out := make([]RoundStats, 0, n)
	for i := 0; i < n; i++ {
		v, _ := h.buf.Pop()
		out = append(out, v)
		h.buf.Push(v)
	}
	return out
}

// roundStatsFromRoot summarizes a tree's root node right before it is
// rerooted by CommitRound.
func roundStatsFromRoot[ClassID comparable, NodeID comparable](t *Tree[ClassID, NodeID]) RoundStats {
	root := t.node(t.root)
	avg := 0.0
	if root.nVisits > 0 {
		avg = root.totalUtility / float64(root.nVisits)
	}
	return RoundStats{RootVisits: root.nVisits, AvgUtility: avg}
}
