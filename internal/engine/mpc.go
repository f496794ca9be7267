package engine

import (
	"math"

	"github.com/hailam/reversicore/internal/bitboard"
)

// numSelectivity is the count of MPC confidence levels, 0..6 (spec
// section 4.F). NoMPC is the "exact" level: probing is skipped and full
// search always runs.
const (
	numSelectivity = 7
	NoMPC          = 6
)

// selectivityT holds the one-sided confidence multiplier per selectivity
// level, following the spec's own t = {inf, 1.5, 2.0, 2.2, 2.6, 3.3, inf}
// sequence. Level 6 (and, per this sequence, level 0) never cut: margin is
// infinite so the shifted probe windows are never reached.
//
// The original engine keeps these thresholds in a separate mpc.rs module
// that was not present in the retrieved source pack (lib.rs/solver.rs
// reference it, but it was filtered out upstream); this table is
// transcribed directly from the spec's own literal sequence rather than
// invented, per spec section 9's instruction that this data must be
// copied, not reinvented, wherever the source is available. See DESIGN.md.
var selectivityT = [numSelectivity]float64{
	math.Inf(1), 1.5, 2.0, 2.2, 2.6, 3.3, math.Inf(1),
}

// mpcMinDepthEval and mpcMinDepthPerfect gate how deep a node must be
// before an MPC probe is worth its own shallow search.
const (
	mpcMinDepthEval    = 5
	mpcMinDepthPerfect = 8
)

// sigmaEval and sigmaPerfect model the standard deviation of (shallow
// probe score - full-depth score) as a function of full depth, probe
// depth, and move-phase. The canonical tables are trained data the
// original engine loads from mpc.rs, which this retrieval pack did not
// include (see selectivityT's comment above); in these closed-form
// stand-ins the uncertainty shrinks as the probe gets closer to full
// depth and grows with the phase's distance from mid-game (phase 15),
// without claiming to reproduce the trained constants exactly.
func sigmaEval(depth, probeDepth, phase int) float64 {
	diff := float64(depth - probeDepth)
	sigma := 2.0 + 0.4*diff
	mid := phase - 15
	if mid < 0 {
		mid = -mid
	}
	sigma *= 1.0 + 0.01*float64(mid)
	if sigma < 1.0 {
		sigma = 1.0
	}
	return sigma
}

func sigmaPerfect(empties, probeEmpties, phase int) float64 {
	diff := float64(empties - probeEmpties)
	sigma := 1.5 + 0.3*diff
	mid := phase - 15
	if mid < 0 {
		mid = -mid
	}
	sigma *= 1.0 + 0.008*float64(mid)
	if sigma < 0.75 {
		sigma = 0.75
	}
	return sigma
}

// probeDepthEval picks the reduced depth for an MPC probe in evaluation
// search: roughly half the remaining depth, matching the source's pattern
// of probing at a coarse fraction of the full search.
func probeDepthEval(depth int) int {
	return depth / 2
}

func probeDepthPerfect(empties int) int {
	return empties / 2
}

// mpcMargin rounds t*sigma to the nearest integer score unit, with a floor
// of 1 so a zero-sigma degenerate case still defines a usable window.
func mpcMargin(t, sigma float64) int32 {
	if math.IsInf(t, 1) {
		return math.MaxInt32
	}
	m := int32(t*sigma + 0.5)
	if m < 1 {
		m = 1
	}
	return m
}

// probeEval runs the evaluation-search MPC probe described in spec section
// 4.F: a shallow search at a reduced depth, windowed symmetrically around
// beta and alpha by margin = t*sigma. A fail-high against the upper window
// cuts to beta; a fail-low against the lower window cuts to alpha.
func probeEval(se *SearchEngine, pos bitboard.Position, alpha, beta int32, depth int) (int32, bool) {
	if se.Selectivity >= NoMPC || depth < mpcMinDepthEval {
		return 0, false
	}
	t := selectivityT[se.Selectivity]
	if math.IsInf(t, 1) {
		return 0, false
	}
	pd := probeDepthEval(depth)
	if pd < 1 || pd >= depth {
		return 0, false
	}
	phase := pos.MoveCount() / 2
	margin := mpcMargin(t, sigmaEval(depth, pd, phase))
	if margin == math.MaxInt32 {
		return 0, false
	}

	if int64(beta)+int64(margin) <= ScoreInf {
		probeAlpha := beta + margin - 1
		probeBeta := beta + margin
		score := NegaAlphaEval(se, pos, probeAlpha, probeBeta, pd)
		if score >= probeBeta {
			return beta, true
		}
	}
	if int64(alpha)-int64(margin) >= -ScoreInf {
		probeAlpha := alpha - margin
		probeBeta := alpha - margin + 1
		score := NegaAlphaEval(se, pos, probeAlpha, probeBeta, pd)
		if score <= probeAlpha {
			return alpha, true
		}
	}
	return 0, false
}

// probePerfect is probeEval's endgame counterpart: the window bounds are
// exact disc scores, and the shallow probe is a reduced-depth heuristic
// search whose output is already on the same disc scale, so the sigma
// table absorbs both the depth reduction and the evaluator's own error
// against the exact result.
func probePerfect(se *SearchEngine, pos bitboard.Position, alpha, beta int32, empties int) (int32, bool) {
	if se.Selectivity >= NoMPC || empties < mpcMinDepthPerfect {
		return 0, false
	}
	t := selectivityT[se.Selectivity]
	if math.IsInf(t, 1) {
		return 0, false
	}
	pd := probeDepthPerfect(empties)
	if pd < 1 || pd >= empties {
		return 0, false
	}
	phase := pos.MoveCount() / 2
	margin := mpcMargin(t, sigmaPerfect(empties, pd, phase))
	if margin == math.MaxInt32 {
		return 0, false
	}

	if int64(beta)+int64(margin) <= ScoreInf {
		probeAlpha := beta + margin - 1
		probeBeta := beta + margin
		score := NegaAlphaEvalOrdered(se, pos, probeAlpha, probeBeta, pd)
		if score >= probeBeta {
			return beta, true
		}
	}
	if int64(alpha)-int64(margin) >= -ScoreInf {
		probeAlpha := alpha - margin
		probeBeta := alpha - margin + 1
		score := NegaAlphaEvalOrdered(se, pos, probeAlpha, probeBeta, pd)
		if score <= probeAlpha {
			return alpha, true
		}
	}
	return 0, false
}
