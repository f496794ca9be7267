package engine

import "github.com/hailam/reversicore/internal/bitboard"

// Level thresholds controlling which tier of evaluation search handles a
// given depth, mirroring the original engine's switch constants.
const (
	switchNegaAlphaSearchLevel = 4 // below this, the ordered tiers delegate to the unordered base case NegaAlphaEval
	switchSimpleSearchLevel    = 6 // below this, the TT-backed routines delegate to their *Simple siblings
)

// NegaAlphaEval is the unordered, TT-free base case of evaluation search:
// plain fail-soft negamax over the evaluator, used at shallow depth where
// move ordering and a transposition probe would cost more than they save.
func NegaAlphaEval(se *SearchEngine, pos bitboard.Position, alpha, beta int32, depth int) int32 {
	se.EvalNodes++

	legal := pos.Moves()
	if legal == 0 {
		if pos.OpponentMoves() == 0 {
			se.EvalLeafNodes++
			return int32(pos.FinalScore())
		}
		return -NegaAlphaEval(se, pos.Swapped(), -beta, -alpha, depth)
	}
	if depth <= 0 {
		se.EvalLeafNodes++
		return int32(se.Eval.Evaluate(pos))
	}

	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, legal, buf[:0])

	best := int32(-ScoreInf)
	for i := range children {
		score := -NegaAlphaEval(se, children[i].Position, -beta, -maxI32(alpha, best), depth-1)
		if score > best {
			best = score
		}
		if best >= beta {
			return best
		}
	}
	return best
}

// NegaAlphaEvalOrdered sits one tier above NegaAlphaEval: it generates and
// scores the full move list with a shallow probe before searching, so the
// strongest-looking replies are tried first. Below switchNegaAlphaSearchLevel
// it falls back to the unordered base case directly.
func NegaAlphaEvalOrdered(se *SearchEngine, pos bitboard.Position, alpha, beta int32, depth int) int32 {
	if depth < switchNegaAlphaSearchLevel {
		return NegaAlphaEval(se, pos, alpha, beta, depth)
	}
	se.EvalNodes++

	legal := pos.Moves()
	if legal == 0 {
		if pos.OpponentMoves() == 0 {
			se.EvalLeafNodes++
			return int32(pos.FinalScore())
		}
		return -NegaAlphaEvalOrdered(se, pos.Swapped(), -beta, -alpha, depth)
	}

	if score, ok := probeEval(se, pos, alpha, beta, depth); ok {
		return score
	}

	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, legal, buf[:0])
	scoreChildrenEval(se, children, alpha, depth)
	SortTop7(children)

	best := int32(-ScoreInf)
	for i := range children {
		score := -NegaAlphaEvalOrdered(se, children[i].Position, -beta, -maxI32(alpha, best), depth-1)
		if score > best {
			best = score
		}
		if best >= beta {
			return best
		}
	}
	return best
}

// scoreChildrenEval fills each unskipped child's Score with a shallow
// probe plus an opponent-mobility ordering term, following set_move_eval
// in the original engine: below reductionDepthEval's floor the probe is a
// bare evaluator call on the child itself.
func scoreChildrenEval(se *SearchEngine, children []MoveBoard, alpha int32, depth int) {
	reduceDepth := reductionDepthEval(depth)
	for i := range children {
		if children[i].Skip {
			continue
		}
		var probe int32
		if reduceDepth < 1 {
			probe = -int32(se.Eval.Evaluate(children[i].Position))
		} else {
			windowAlpha := maxI32(-alpha-6, -ScoreInf)
			windowBeta := minI32(-alpha+16, ScoreInf)
			probe = -NegaAlphaEvalOrdered(se, children[i].Position, windowAlpha, windowBeta, reduceDepth)
		}
		children[i].Score = probe + mobilityOrderingTerm(children[i].Position.Moves())
	}
}

// NWSEvalSimple is a null-window (alpha, alpha+1) search with ordering
// but no transposition table, the tier used between
// switchNegaAlphaSearchLevel and switchSimpleSearchLevel.
func NWSEvalSimple(se *SearchEngine, pos bitboard.Position, alpha int32, depth int) int32 {
	beta := alpha + 1
	if depth < switchNegaAlphaSearchLevel {
		return NegaAlphaEval(se, pos, alpha, beta, depth)
	}
	se.EvalNodes++

	legal := pos.Moves()
	if legal == 0 {
		if pos.OpponentMoves() == 0 {
			se.EvalLeafNodes++
			return int32(pos.FinalScore())
		}
		return -NWSEvalSimple(se, pos.Swapped(), -beta, depth)
	}

	if score, ok := probeEval(se, pos, alpha, beta, depth); ok {
		return score
	}

	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, legal, buf[:0])
	scoreChildrenEval(se, children, alpha, depth)
	SortTop7(children)

	best := int32(-ScoreInf)
	for i := range children {
		score := -NWSEvalSimple(se, children[i].Position, -beta, depth-1)
		if score > best {
			best = score
		}
		if best >= beta {
			return best
		}
	}
	return best
}

// PVSEvalSimple is NWSEvalSimple's full-window sibling: the first (best
// ordered) child is searched with the full window, later children with a
// null window and re-searched only if that window's result falls inside
// (alpha, beta).
func PVSEvalSimple(se *SearchEngine, pos bitboard.Position, alpha, beta int32, depth int) int32 {
	if depth < switchNegaAlphaSearchLevel {
		return NegaAlphaEval(se, pos, alpha, beta, depth)
	}
	se.EvalNodes++

	legal := pos.Moves()
	if legal == 0 {
		if pos.OpponentMoves() == 0 {
			se.EvalLeafNodes++
			return int32(pos.FinalScore())
		}
		return -PVSEvalSimple(se, pos.Swapped(), -beta, -alpha, depth)
	}

	if score, ok := probeEval(se, pos, alpha, beta, depth); ok {
		return score
	}

	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, legal, buf[:0])
	scoreChildrenEval(se, children, alpha, depth)
	SortTop7(children)

	best := int32(-ScoreInf)
	for i := range children {
		var score int32
		if i == 0 {
			score = -PVSEvalSimple(se, children[i].Position, -beta, -alpha, depth-1)
		} else {
			score = -NWSEvalSimple(se, children[i].Position, -alpha-1, depth-1)
			if score > alpha && score < beta {
				score = -PVSEvalSimple(se, children[i].Position, -beta, -score, depth-1)
			}
		}
		if score > best {
			best = score
			if best > alpha {
				alpha = best
			}
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// NWSEval is the top-tier null-window search: transposition probe and
// write, Enhanced Transposition Cutoff, and MPC, delegating to
// NWSEvalSimple below switchSimpleSearchLevel.
func NWSEval(se *SearchEngine, pos bitboard.Position, alpha int32, depth int) int32 {
	if depth < switchSimpleSearchLevel {
		return NWSEvalSimple(se, pos, alpha, depth)
	}
	beta := alpha + 1
	se.EvalNodes++

	legal := pos.Moves()
	if legal == 0 {
		if pos.OpponentMoves() == 0 {
			se.EvalLeafNodes++
			return int32(pos.FinalScore())
		}
		return -NWSEval(se, pos.Swapped(), -beta, depth)
	}

	entry, ok := se.TT.Get(pos.Player, pos.Opponent)
	a, b := alpha, beta
	if score, hit := CutOff(entry, ok, &a, &b, depth, se.Selectivity); hit {
		return score
	}
	alpha, beta = a, b

	if score, hit := probeEval(se, pos, alpha, beta, depth); hit {
		return score
	}

	var ttMoves [2]uint8
	if ok {
		ttMoves = entry.bestMoves
	} else {
		ttMoves = [2]uint8{NoCoord, NoCoord}
	}

	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, excludeTTMoves(legal, ttMoves), buf[:0])
	scoreChildrenEval(se, children, alpha, depth)
	SortTop7(children)
	ttChildren := GenerateTTMoves(pos, ttMoves)
	ordered := append(ttChildren, children...)

	if depth >= etcMinDepthEval {
		if score, hit := applyETC(se, ordered, alpha, beta, depth-1, se.Selectivity); hit {
			return score
		}
	}

	best := int32(-ScoreInf)
	bestMove := uint8(NoCoord)
	for i := range ordered {
		if ordered[i].Skip {
			continue
		}
		score := -NWSEval(se, ordered[i].Position, -beta, depth-1)
		if score > best {
			best = score
			bestMove = ordered[i].Square
		}
		if best >= beta {
			se.TT.Add(pos.Player, pos.Opponent, int32(best), ScoreInf, depth, se.Selectivity, bestMove)
			return best
		}
	}
	if best == -ScoreInf {
		// Every child was skipped by ETC: each is already proven unable
		// to raise alpha, so the node itself fails low at alpha.
		return alpha
	}
	se.TT.Add(pos.Player, pos.Opponent, -ScoreInf, int32(best), depth, se.Selectivity, bestMove)
	return best
}

// PVSEval is the top-level evaluation-search entry point used once the
// Solver's remaining depth budget reaches switchSimpleSearchLevel or
// above: full PVS with a transposition table, ETC, and MPC.
func PVSEval(se *SearchEngine, pos bitboard.Position, alpha, beta int32, depth int) int32 {
	if depth < switchSimpleSearchLevel {
		return PVSEvalSimple(se, pos, alpha, beta, depth)
	}
	se.EvalNodes++

	legal := pos.Moves()
	if legal == 0 {
		if pos.OpponentMoves() == 0 {
			se.EvalLeafNodes++
			return int32(pos.FinalScore())
		}
		return -PVSEval(se, pos.Swapped(), -beta, -alpha, depth)
	}

	entry, ok := se.TT.Get(pos.Player, pos.Opponent)
	a, b := alpha, beta
	if score, hit := CutOff(entry, ok, &a, &b, depth, se.Selectivity); hit {
		return score
	}
	alpha, beta = a, b

	if score, hit := probeEval(se, pos, alpha, beta, depth); hit {
		return score
	}

	var ttMoves [2]uint8
	if ok {
		ttMoves = entry.bestMoves
	} else {
		ttMoves = [2]uint8{NoCoord, NoCoord}
	}

	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, excludeTTMoves(legal, ttMoves), buf[:0])
	scoreChildrenEval(se, children, alpha, depth)
	SortTop7(children)
	ttChildren := GenerateTTMoves(pos, ttMoves)
	ordered := append(ttChildren, children...)

	if depth >= etcMinDepthEval {
		if score, hit := applyETC(se, ordered, alpha, beta, depth-1, se.Selectivity); hit {
			return score
		}
	}

	origAlpha := alpha
	best := int32(-ScoreInf)
	bestMove := uint8(NoCoord)
	for i := range ordered {
		if ordered[i].Skip {
			continue
		}
		var score int32
		if i == 0 {
			score = -PVSEval(se, ordered[i].Position, -beta, -alpha, depth-1)
		} else {
			score = -NWSEval(se, ordered[i].Position, -alpha-1, depth-1)
			if score > alpha && score < beta {
				score = -PVSEval(se, ordered[i].Position, -beta, -score, depth-1)
			}
		}
		if score > best {
			best = score
			bestMove = ordered[i].Square
			if best > alpha {
				alpha = best
			}
		}
		if alpha >= beta {
			break
		}
	}

	if best == -ScoreInf {
		return alpha
	}

	switch {
	case best >= beta:
		se.TT.Add(pos.Player, pos.Opponent, int32(best), ScoreInf, depth, se.Selectivity, bestMove)
	case best > origAlpha:
		se.TT.Add(pos.Player, pos.Opponent, int32(best), int32(best), depth, se.Selectivity, bestMove)
	default:
		se.TT.Add(pos.Player, pos.Opponent, -ScoreInf, int32(best), depth, se.Selectivity, bestMove)
	}
	return best
}
