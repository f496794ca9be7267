package solver

import (
	"math"

	"github.com/hailam/reversicore/internal/bitboard"
)

// ScoreMax is the solver's output clamp (spec section 4.I: "Clamp to
// [-SCORE_MAX, SCORE_MAX]"), matching the evaluator's own disc-count
// output range and the exact perfect-search score range (disc difference
// plus/minus remaining empties never exceeds a full board either way).
const ScoreMax = 64

// pvsFunc and nwsFunc abstract over the eval-search and perfect-search
// PVS/NWS entry points so the root driver and the aspiration loop are
// written once and reused by both (spec section 9's "two code paths
// sharing helpers" guidance, extended one level further up to the
// driver).
type pvsFunc func(pos bitboard.Position, alpha, beta int32, depthOrEmpties int) int32
type nwsFunc func(pos bitboard.Position, alpha int32, depthOrEmpties int) int32

func clampScore(v int32) int32 {
	if v > ScoreMax {
		return ScoreMax
	}
	if v < -ScoreMax {
		return -ScoreMax
	}
	return v
}

// rootSearchOnce runs one alpha-beta pass over every root candidate (spec
// section 4.I "Root search"): the first candidate gets the full window,
// later candidates a null window with a full-window re-search on a
// fail-high inside (alpha, beta). A fail-high against the root window
// itself (score >= beta) stops scanning immediately and moves the
// offending candidate to the front, so a subsequent, wider-window
// re-search from the aspiration driver tries it first. On a clean
// completion the best-scoring candidate is moved to the front instead,
// giving iterative deepening move continuity across depths.
func rootSearchOnce(candidates []Candidate, alpha, beta int32, depthOrEmpties int, pvs pvsFunc, nws nwsFunc) int32 {
	best := int32(-ScoreMax - 1)
	bestIdx := 0

	for i := range candidates {
		var score int32
		if i == 0 {
			score = -pvs(candidates[i].Position, -beta, -alpha, depthOrEmpties-1)
		} else {
			score = -nws(candidates[i].Position, -alpha-1, depthOrEmpties-1)
			if score > alpha && score < beta {
				score = -pvs(candidates[i].Position, -beta, -score, depthOrEmpties-1)
			}
		}
		if score > best {
			best = score
			bestIdx = i
			if best > alpha {
				alpha = best
			}
		}
		if alpha >= beta {
			moveToFront(candidates, i)
			return best
		}
	}
	moveToFront(candidates, bestIdx)
	return best
}

// widen grows one side of the aspiration window following spec section
// 4.I: a linear step (the window's own initial half-width) on an odd
// expansion, and a super-linear n*log2(n)+2 step on an even one, so
// repeated fail-highs/fail-lows against a badly mispredicted score don't
// take forever to escape but a single near-miss doesn't overshoot wildly
// either.
func widen(iteration int, initial, current int32) int32 {
	if iteration%2 == 1 {
		return current + initial
	}
	n := float64(iteration)
	return current + int32(n*math.Log2(n)) + 2
}

// aspirationSearch runs rootSearchOnce repeatedly with a window centered
// on predict, widening whichever side fails until the result lands
// strictly inside the window (an exact score) or the window has already
// been pushed out to the solver's score bounds (the result is then itself
// the exact bound).
func aspirationSearch(candidates []Candidate, predict int32, depthOrEmpties int, initialWidth int32, pvs pvsFunc, nws nwsFunc) int32 {
	left, right := initialWidth, initialWidth
	alpha := clampScore(predict - left)
	beta := clampScore(predict + right)
	iteration := 0

	for {
		score := rootSearchOnce(candidates, alpha, beta, depthOrEmpties, pvs, nws)
		if score >= beta && beta < ScoreMax {
			iteration++
			right = widen(iteration, initialWidth, right)
			beta = clampScore(predict + right)
			continue
		}
		if score <= alpha && alpha > -ScoreMax {
			iteration++
			left = widen(iteration, initialWidth, left)
			alpha = clampScore(predict - left)
			continue
		}
		return score
	}
}

// evalInitialWidth picks the aspiration half-width for evaluation search:
// wider below depth 16, where the evaluator is more likely to be off by a
// larger margin, narrower above it.
func evalInitialWidth(depth int) int32 {
	if depth < 16 {
		return 6
	}
	return 2
}

// perfectInitialWidth picks the aspiration half-width for perfect search:
// wider far from the end (more uncertainty in the warmup prediction),
// narrowing to a small constant plus the prediction's parity bit as the
// board fills up, per spec section 4.I.
func perfectInitialWidth(empties int, predict int32) int32 {
	w := int32(10 - empties)
	floor := int32(2) + int32(predict&1)
	if floor < 0 {
		floor = 2
	}
	if w < floor {
		w = floor
	}
	return w
}
