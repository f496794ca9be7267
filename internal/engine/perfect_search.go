package engine

import (
	"math/bits"

	"github.com/hailam/reversicore/internal/bitboard"
)

// Empties thresholds controlling which tier of perfect search handles a
// given node, mirroring the original engine's switch constants.
const (
	switchEmptiesNegaAlpha = 5  // below this, ordering is skipped entirely
	switchEmptiesSimpleNWS = 10 // below this, the TT-backed routines delegate to their *Simple siblings
)

// solveScore0Empties resolves a completely full board: no search needed,
// the result is the final disc count.
func solveScore0Empties(pos bitboard.Position) int32 {
	return int32(pos.FinalScore())
}

// solveScore1Empties resolves the single remaining empty square directly
// from the last-flip counter: if the side to move can play it, that's
// the only move; otherwise the opponent either plays it or the game is
// already over. The disc arithmetic avoids applying the move at all:
// with 63 discs down, the mover finishing with n flips lands on
// 2*popcount(P) - 64 + 2 + 2n, and the opponent finishing with m flips
// on 2*popcount(P) - 64 - 2m.
func solveScore1Empties(pos bitboard.Position) int32 {
	sq := bits.TrailingZeros64(pos.EmptiesMask())
	base := 2*bits.OnesCount64(pos.Player) - 64

	if n := bitboard.LastFlipCount(sq, pos.Player, pos.Opponent); n > 0 {
		return int32(base + 2 + 2*n)
	}
	if m := bitboard.LastFlipCount(sq, pos.Opponent, pos.Player); m > 0 {
		return int32(base - 2*m)
	}
	return int32(pos.FinalScore())
}

// solveScore2Empties resolves the last two empty squares directly (spec
// section 4.H): a square is only considered playable if it has at least
// one opponent-occupied neighbor (the precomputed bitboard.NeighborMask),
// avoiding a full FlipBit bracket search on squares that plainly cannot
// bracket anything. Recurses into solveScore1Empties for each candidate
// move, and handles the pass/terminal cases directly rather than
// re-deriving them from the generic move list.
func solveScore2Empties(se *SearchEngine, pos bitboard.Position, alpha, beta int32) int32 {
	se.PerfectNodes++
	empties := pos.EmptiesMask()
	sq1 := bits.TrailingZeros64(empties)
	sq2 := bits.TrailingZeros64(empties &^ (uint64(1) << uint(sq1)))

	var playable []int
	for _, sq := range [2]int{sq1, sq2} {
		if bitboard.NeighborMask(sq)&pos.Opponent == 0 {
			continue
		}
		move := uint64(1) << uint(sq)
		if pos.Flip(move) != 0 {
			playable = append(playable, sq)
		}
	}

	if len(playable) == 0 {
		if pos.OpponentMoves() == 0 {
			se.PerfectLeafNodes++
			return int32(pos.FinalScore())
		}
		return -solveScore2Empties(se, pos.Swapped(), -beta, -alpha)
	}

	best := int32(-ScoreInf)
	for _, sq := range playable {
		child := pos.Put(uint64(1) << uint(sq))
		score := -solveScore1Empties(child)
		if score > best {
			best = score
		}
		if best >= beta {
			return best
		}
	}
	return best
}

// NegaAlphaPerfect is the unordered, TT-free exact search used below
// switchEmptiesNegaAlpha, where move ordering and table probes cost more
// than the tiny remaining tree they would prune.
func NegaAlphaPerfect(se *SearchEngine, pos bitboard.Position, alpha, beta int32, empties int) int32 {
	if empties == 0 {
		se.PerfectNodes++
		se.PerfectLeafNodes++
		return solveScore0Empties(pos)
	}
	if empties == 1 {
		se.PerfectNodes++
		se.PerfectLeafNodes++
		return solveScore1Empties(pos)
	}
	if empties == 2 {
		return solveScore2Empties(se, pos, alpha, beta)
	}
	se.PerfectNodes++

	legal := pos.Moves()
	if legal == 0 {
		if pos.OpponentMoves() == 0 {
			se.PerfectLeafNodes++
			return int32(pos.FinalScore())
		}
		return -NegaAlphaPerfect(se, pos.Swapped(), -beta, -alpha, empties)
	}

	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, legal, buf[:0])

	best := int32(-ScoreInf)
	for i := range children {
		score := -NegaAlphaPerfect(se, children[i].Position, -beta, -maxI32(alpha, best), empties-1)
		if score > best {
			best = score
		}
		if best >= beta {
			return best
		}
	}
	return best
}

// orderPerfectChildren generates and orders the unexplored children of
// pos (after the remembered TT moves, generated separately and prefixed),
// following reductionDepthPerfect's choice between a shallow heuristic
// search probe and the cheaper parity ordering used deep in the endgame
// where even a reduced-depth probe is too expensive.
func orderPerfectChildren(se *SearchEngine, pos bitboard.Position, ttMoves [2]uint8, legal uint64, alpha int32, empties int) []MoveBoard {
	ttChildren := GenerateTTMoves(pos, ttMoves)
	remaining := excludeTTMoves(legal, ttMoves)
	reduceDepth := reductionDepthPerfect(empties)

	if reduceDepth < 1 {
		order := ParityOrder(remaining, pos.EmptiesMask())
		children := make([]MoveBoard, 0, len(order))
		for _, m := range order {
			children = append(children, MoveBoard{
				Position: pos.Put(m),
				Square:   uint8(bits.TrailingZeros64(m)),
			})
		}
		return append(ttChildren, children...)
	}

	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, remaining, buf[:0])
	for i := range children {
		windowAlpha := maxI32(-alpha-6, -ScoreInf)
		windowBeta := minI32(-alpha+16, ScoreInf)
		probe := -NegaAlphaEvalOrdered(se, children[i].Position, windowAlpha, windowBeta, reduceDepth)
		children[i].Score = probe + mobilityOrderingTerm(children[i].Position.Moves())
	}
	SortTop7(children)
	return append(ttChildren, children...)
}

// NWSPerfectSimple is a null-window exact search with fast-first-search
// ordering but no transposition table, the tier used between
// switchEmptiesNegaAlpha and switchEmptiesSimpleNWS.
func NWSPerfectSimple(se *SearchEngine, pos bitboard.Position, alpha int32, empties int) int32 {
	beta := alpha + 1
	if empties < switchEmptiesNegaAlpha {
		return NegaAlphaPerfect(se, pos, alpha, beta, empties)
	}
	se.PerfectNodes++

	legal := pos.Moves()
	if legal == 0 {
		if pos.OpponentMoves() == 0 {
			se.PerfectLeafNodes++
			return int32(pos.FinalScore())
		}
		return -NWSPerfectSimple(se, pos.Swapped(), -beta, empties)
	}

	if score, ok := probePerfect(se, pos, alpha, beta, empties); ok {
		return score
	}

	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, legal, buf[:0])
	for i := range children {
		children[i].Score = fastFirstScore(children[i].Position)
	}
	SortTop7(children)

	best := int32(-ScoreInf)
	for i := range children {
		score := -NWSPerfectSimple(se, children[i].Position, -beta, empties-1)
		if score > best {
			best = score
		}
		if best >= beta {
			return best
		}
	}
	return best
}

// PVSPerfectSimple is NWSPerfectSimple's full-window sibling.
func PVSPerfectSimple(se *SearchEngine, pos bitboard.Position, alpha, beta int32, empties int) int32 {
	if empties < switchEmptiesNegaAlpha {
		return NegaAlphaPerfect(se, pos, alpha, beta, empties)
	}
	se.PerfectNodes++

	legal := pos.Moves()
	if legal == 0 {
		if pos.OpponentMoves() == 0 {
			se.PerfectLeafNodes++
			return int32(pos.FinalScore())
		}
		return -PVSPerfectSimple(se, pos.Swapped(), -beta, -alpha, empties)
	}

	if score, ok := probePerfect(se, pos, alpha, beta, empties); ok {
		return score
	}

	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, legal, buf[:0])
	for i := range children {
		children[i].Score = fastFirstScore(children[i].Position)
	}
	SortTop7(children)

	best := int32(-ScoreInf)
	for i := range children {
		var score int32
		if i == 0 {
			score = -PVSPerfectSimple(se, children[i].Position, -beta, -alpha, empties-1)
		} else {
			score = -NWSPerfectSimple(se, children[i].Position, -alpha-1, empties-1)
			if score > alpha && score < beta {
				score = -PVSPerfectSimple(se, children[i].Position, -beta, -score, empties-1)
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

// NWSPerfect is the top-tier null-window exact search: transposition
// probe and write, ETC, and MPC, delegating to NWSPerfectSimple below
// switchEmptiesSimpleNWS.
func NWSPerfect(se *SearchEngine, pos bitboard.Position, alpha int32, empties int) int32 {
	if empties < switchEmptiesSimpleNWS {
		return NWSPerfectSimple(se, pos, alpha, empties)
	}
	beta := alpha + 1
	se.PerfectNodes++

	legal := pos.Moves()
	if legal == 0 {
		if pos.OpponentMoves() == 0 {
			se.PerfectLeafNodes++
			return int32(pos.FinalScore())
		}
		return -NWSPerfect(se, pos.Swapped(), -beta, empties)
	}

	entry, ok := se.TT.Get(pos.Player, pos.Opponent)
	a, b := alpha, beta
	if score, hit := CutOff(entry, ok, &a, &b, DepthExact, se.Selectivity); hit {
		return score
	}
	alpha, beta = a, b

	if score, hit := probePerfect(se, pos, alpha, beta, empties); hit {
		return score
	}

	var ttMoves [2]uint8
	if ok {
		ttMoves = entry.bestMoves
	} else {
		ttMoves = [2]uint8{NoCoord, NoCoord}
	}
	ordered := orderPerfectChildren(se, pos, ttMoves, legal, alpha, empties)

	if empties >= etcMinDepthPerfect {
		if score, hit := applyETC(se, ordered, alpha, beta, DepthExact, se.Selectivity); hit {
			return score
		}
	}

	best := int32(-ScoreInf)
	bestMove := uint8(NoCoord)
	for i := range ordered {
		if ordered[i].Skip {
			continue
		}
		score := -NWSPerfect(se, ordered[i].Position, -beta, empties-1)
		if score > best {
			best = score
			bestMove = ordered[i].Square
		}
		if best >= beta {
			se.TT.Add(pos.Player, pos.Opponent, int32(best), ScoreInf, DepthExact, se.Selectivity, bestMove)
			return best
		}
	}
	if best == -ScoreInf {
		// Every child skipped by ETC: the node is proven unable to raise
		// alpha, so fail low without storing a fabricated bound.
		return alpha
	}
	se.TT.Add(pos.Player, pos.Opponent, -ScoreInf, int32(best), DepthExact, se.Selectivity, bestMove)
	return best
}

// PVSPerfect is the top-level exact-search entry point: full PVS with a
// transposition table, ETC, and MPC.
func PVSPerfect(se *SearchEngine, pos bitboard.Position, alpha, beta int32, empties int) int32 {
	if empties < switchEmptiesSimpleNWS {
		return PVSPerfectSimple(se, pos, alpha, beta, empties)
	}
	se.PerfectNodes++

	legal := pos.Moves()
	if legal == 0 {
		if pos.OpponentMoves() == 0 {
			se.PerfectLeafNodes++
			return int32(pos.FinalScore())
		}
		return -PVSPerfect(se, pos.Swapped(), -beta, -alpha, empties)
	}

	entry, ok := se.TT.Get(pos.Player, pos.Opponent)
	a, b := alpha, beta
	if score, hit := CutOff(entry, ok, &a, &b, DepthExact, se.Selectivity); hit {
		return score
	}
	alpha, beta = a, b

	if score, hit := probePerfect(se, pos, alpha, beta, empties); hit {
		return score
	}

	var ttMoves [2]uint8
	if ok {
		ttMoves = entry.bestMoves
	} else {
		ttMoves = [2]uint8{NoCoord, NoCoord}
	}
	ordered := orderPerfectChildren(se, pos, ttMoves, legal, alpha, empties)

	if empties >= etcMinDepthPerfect {
		if score, hit := applyETC(se, ordered, alpha, beta, DepthExact, se.Selectivity); hit {
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
			score = -PVSPerfect(se, ordered[i].Position, -beta, -alpha, empties-1)
		} else {
			score = -NWSPerfect(se, ordered[i].Position, -alpha-1, empties-1)
			if score > alpha && score < beta {
				score = -PVSPerfect(se, ordered[i].Position, -beta, -score, empties-1)
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
		se.TT.Add(pos.Player, pos.Opponent, int32(best), ScoreInf, DepthExact, se.Selectivity, bestMove)
	case best > origAlpha:
		se.TT.Add(pos.Player, pos.Opponent, int32(best), int32(best), DepthExact, se.Selectivity, bestMove)
	default:
		se.TT.Add(pos.Player, pos.Opponent, -ScoreInf, int32(best), DepthExact, se.Selectivity, bestMove)
	}
	return best
}
