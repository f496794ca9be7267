// Package solver implements the Solver driver of spec section 4.I: the
// collaborator-facing entry point that chooses between evaluation search
// and endgame perfect search by (level, empties), runs iterative deepening
// with aspiration windows, and maintains root candidate ordering across
// iterations.
package solver

import (
	"github.com/hailam/reversicore/internal/bitboard"
	"github.com/hailam/reversicore/internal/engine"
	"github.com/hailam/reversicore/internal/evaluator"
)

// SolverResult is the collaborator-facing outcome of one Solve call (spec
// section 6.1).
type SolverResult struct {
	BestMove          uint8 // 0..63, or 0 if the position had no legal move
	Eval              int32
	Type              Config
	SearchedNodes     uint64
	SearchedLeafNodes uint64
}

// Solver wraps a SearchEngine with the root-candidate deque and driver
// logic described in spec section 9's "Cyclic dependency" design note: no
// cycle, a single owned aggregate.
type Solver struct {
	engine *engine.SearchEngine
}

// New constructs a Solver with an owned transposition table and the given
// evaluator.
func New(ev *evaluator.Evaluator) *Solver {
	return &Solver{engine: engine.NewSearchEngine(ev)}
}

// Solve implements the state machine of spec section 4.I: pass handling
// at the root, candidate construction, classification into an Eval or
// Perfect configuration, the corresponding iterative-deepening driver, and
// table aging before returning.
func (s *Solver) Solve(pos bitboard.Position, level int) SolverResult {
	se := s.engine
	se.ClearNodeCounts()
	defer se.TT.SetOld()

	if pos.Moves() == 0 {
		if pos.OpponentMoves() == 0 {
			return SolverResult{
				BestMove:          0,
				Eval:              int32(pos.FinalScore()),
				Type:              Config{Kind: KindEval, Selectivity: exactSelectivity},
				SearchedNodes:     1,
				SearchedLeafNodes: 1,
			}
		}
		inner := s.Solve(pos.Swapped(), level)
		inner.BestMove = 0
		inner.Eval = -inner.Eval
		return inner
	}

	candidates := buildCandidates(pos)
	cfg := GetConfig(pos.Empties(), level)
	se.Selectivity = cfg.Selectivity

	var score int32
	switch cfg.Kind {
	case KindPerfect:
		score = s.iterDeepenPerfect(candidates, pos, level, cfg.Selectivity)
	default:
		score = s.iterDeepenEval(candidates, pos, cfg.Depth)
	}

	return SolverResult{
		BestMove:          candidates[0].Square,
		Eval:              score,
		Type:              cfg,
		SearchedNodes:     se.EvalNodes + se.PerfectNodes,
		SearchedLeafNodes: se.EvalLeafNodes + se.PerfectLeafNodes,
	}
}

// evalDepthSequence returns the iterative-deepening schedule for
// evaluation search (spec section 4.I): L mod 4, L mod 4 + 4, ..., L. A
// schedule that would start at depth 0 instead starts at 4 (a depth-0 pass
// is a bare evaluator call with no ordering value, so running one serves
// no purpose the spec's continuity guarantee needs); see DESIGN.md.
func evalDepthSequence(level int) []int {
	start := level % 4
	if start == 0 {
		start = 4
	}
	var seq []int
	for d := start; d <= level; d += 4 {
		seq = append(seq, d)
	}
	if len(seq) == 0 || seq[len(seq)-1] != level {
		seq = append(seq, level)
	}
	return seq
}

func (s *Solver) iterDeepenEval(candidates []Candidate, pos bitboard.Position, level int) int32 {
	se := s.engine
	pvs := func(p bitboard.Position, alpha, beta int32, d int) int32 { return engine.PVSEval(se, p, alpha, beta, d) }
	nws := func(p bitboard.Position, alpha int32, d int) int32 { return engine.NWSEval(se, p, alpha, d) }

	score := int32(se.Eval.Evaluate(pos))
	for _, d := range evalDepthSequence(level) {
		score = aspirationSearch(candidates, score, d, evalInitialWidth(d), pvs, nws)
	}
	return score
}

// perfectWarmupDepth bounds the evaluation-search sweep that primes the
// transposition table and candidate order before a perfect-search pass
// (spec section 4.I): min(empties-7-(2-selectivity/2), 24, level).
func perfectWarmupDepth(empties, selectivity, level int) int {
	d := empties - 7 - (2 - selectivity/2)
	if d > 24 {
		d = 24
	}
	if d > level {
		d = level
	}
	if d < 0 {
		d = 0
	}
	return d
}

func (s *Solver) iterDeepenPerfect(candidates []Candidate, pos bitboard.Position, level, targetSelectivity int) int32 {
	se := s.engine
	empties := pos.Empties()

	pvsEval := func(p bitboard.Position, alpha, beta int32, d int) int32 { return engine.PVSEval(se, p, alpha, beta, d) }
	nwsEval := func(p bitboard.Position, alpha int32, d int) int32 { return engine.NWSEval(se, p, alpha, d) }
	pvsPerfect := func(p bitboard.Position, alpha, beta int32, e int) int32 { return engine.PVSPerfect(se, p, alpha, beta, e) }
	nwsPerfect := func(p bitboard.Position, alpha int32, e int) int32 { return engine.NWSPerfect(se, p, alpha, e) }

	warmupDepth := perfectWarmupDepth(empties, targetSelectivity, level)
	predict := int32(se.Eval.Evaluate(pos))
	if warmupDepth > 0 {
		se.Selectivity = exactSelectivity
		for _, d := range evalDepthSequence(warmupDepth) {
			predict = aspirationSearch(candidates, predict, d, evalInitialWidth(d), pvsEval, nwsEval)
		}
	}

	if level >= 18 && targetSelectivity > 5 {
		intermediate := targetSelectivity - 4
		if intermediate < 0 {
			intermediate = 0
		}
		se.Selectivity = intermediate
		predict = aspirationSearch(candidates, predict, empties, perfectInitialWidth(empties, predict), pvsPerfect, nwsPerfect)
	}

	se.Selectivity = targetSelectivity
	return aspirationSearch(candidates, predict, empties, perfectInitialWidth(empties, predict), pvsPerfect, nwsPerfect)
}
