package engine

import "github.com/hailam/reversicore/internal/evaluator"

// ScoreInf is the saturating score bound used for search windows, the
// same convention the transposition table's clampInt8 enforces on stored
// bounds: plain Othello scores never reach it, so it is safe as a
// sentinel for "no disc advantage possible" in either direction.
const ScoreInf = 127

// SearchEngine bundles everything one search call needs: the shared
// transposition table, the position evaluator, the current MPC
// selectivity level, and running node counters. A Solver owns exactly one
// SearchEngine; search through it is single-threaded.
type SearchEngine struct {
	TT          *TranspositionTable
	Eval        *evaluator.Evaluator
	Selectivity int

	EvalNodes     uint64
	EvalLeafNodes uint64

	PerfectNodes     uint64
	PerfectLeafNodes uint64
}

// NewSearchEngine builds a SearchEngine with a fresh transposition table
// and no selectivity (exact search).
func NewSearchEngine(ev *evaluator.Evaluator) *SearchEngine {
	return &SearchEngine{
		TT:          NewTranspositionTable(),
		Eval:        ev,
		Selectivity: NoMPC,
	}
}

// ClearNodeCounts zeroes the per-call node counters; called once at the
// start of every top-level Solve.
func (se *SearchEngine) ClearNodeCounts() {
	se.EvalNodes = 0
	se.EvalLeafNodes = 0
	se.PerfectNodes = 0
	se.PerfectLeafNodes = 0
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
