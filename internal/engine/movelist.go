package engine

import (
	"math/bits"

	"github.com/hailam/reversicore/internal/bitboard"
)

// maxMoves upper-bounds Reversi's branching factor (33, per the known
// result that no reachable position has more legal moves).
const maxMoves = 33

// cornerMask picks out the four corner squares, used by both move
// ordering's corner-accessibility penalty and fast-first-search scoring.
const cornerMask = uint64(0x8100000000000081)

// quadrantMasks split the board into four 4x4 corners, used by the
// parity-aware endgame ordering.
var quadrantMasks = [4]uint64{
	0x000000000f0f0f0f,
	0x00000000f0f0f0f0,
	0xf0f0f0f000000000,
	0x0f0f0f0f00000000,
}

// MoveBoard is one expanded child of a search node: the resulting
// position, the square played to reach it, an ordering score filled in
// by the caller, and a skip flag ETC can set to mark it already
// resolved.
type MoveBoard struct {
	Position bitboard.Position
	Square   uint8
	Score    int32
	Skip     bool
}

// GenerateMoves expands every bit of legalMoves into a child MoveBoard,
// LSB-first, appending into a fixed-capacity buffer the caller owns.
func GenerateMoves(pos bitboard.Position, legalMoves uint64, out []MoveBoard) []MoveBoard {
	out = out[:0]
	for legalMoves != 0 {
		m := legalMoves & -legalMoves
		legalMoves ^= m
		out = append(out, MoveBoard{
			Position: pos.Put(m),
			Square:   uint8(bits.TrailingZeros64(m)),
		})
	}
	return out
}

// GenerateTTMoves builds up to two MoveBoards from a transposition
// entry's remembered best moves, skipping a NoCoord slot. Used so the
// search tries TT-recommended moves before falling back to the scored
// move list.
func GenerateTTMoves(pos bitboard.Position, ttMoves [2]uint8) []MoveBoard {
	out := make([]MoveBoard, 0, 2)
	for _, sq := range ttMoves {
		if sq == NoCoord {
			continue
		}
		out = append(out, MoveBoard{
			Position: pos.Put(uint64(1) << sq),
			Square:   sq,
		})
	}
	return out
}

// excludeTTMoves removes the bits of any remembered TT best-moves from
// a legal-move mask, so they are not generated twice.
func excludeTTMoves(legalMoves uint64, ttMoves [2]uint8) uint64 {
	for _, sq := range ttMoves {
		if sq != NoCoord {
			legalMoves &^= uint64(1) << sq
		}
	}
	return legalMoves
}

// SortTop7 fully orders the top 7 children by descending Score,
// following the spec's partial-sort requirement: a selection pass picks
// the top 7 (or fewer), then those are insertion-sorted; the tail is
// left in whatever order GenerateMoves produced.
func SortTop7(list []MoveBoard) {
	const topN = 7
	n := len(list)
	if n <= topN {
		insertionSortByScore(list)
		return
	}
	for i := 0; i < topN; i++ {
		maxIdx := i
		for j := i + 1; j < n; j++ {
			if list[j].Score > list[maxIdx].Score {
				maxIdx = j
			}
		}
		list[i], list[maxIdx] = list[maxIdx], list[i]
	}
	insertionSortByScore(list[:topN])
}

func insertionSortByScore(list []MoveBoard) {
	for i := 1; i < len(list); i++ {
		v := list[i]
		j := i - 1
		for j >= 0 && list[j].Score < v.Score {
			list[j+1] = list[j]
			j--
		}
		list[j+1] = v
	}
}

// reductionDepthEval returns the shallow-search depth used to score
// children during evaluation-search move ordering: a flat 2 plies for
// level >= 3 (below that, ordering falls back to a single evaluator
// call, handled by the caller).
func reductionDepthEval(level int) int {
	if level < 3 {
		return 0
	}
	return 2
}

// reductionDepthPerfect returns the shallow-search depth used during
// perfect-search move ordering, scaling down as the endgame approaches:
// a third of the remaining empties past 24 of them, 1-2 plies in the
// 13-23 range, and 0 below that (the caller then orders by parity
// instead of probing).
func reductionDepthPerfect(empties int) int {
	switch {
	case empties >= 24:
		return empties / 3
	case empties >= 20:
		return 2
	case empties >= 13:
		return 1
	default:
		return 0
	}
}

// mobilityOrderingTerm scores a child by its own opponent's mobility:
// fewer replies and fewer corner replies for the opponent makes the
// move that led here more attractive, following
// score += -2*|moves| - |moves & corners|.
func mobilityOrderingTerm(childMoves uint64) int32 {
	n := bits.OnesCount64(childMoves)
	nCorner := bits.OnesCount64(childMoves & cornerMask)
	return int32(-2*n - nCorner)
}

// fastFirstScore scores a child purely by its own reply count, corner
// replies counted twice, following set_move_eval_ffs in the original
// engine. Used by the simplified perfect-search ordering near the
// endgame where a full shallow probe is too costly.
func fastFirstScore(child bitboard.Position) int32 {
	m := child.Moves()
	return int32(-bits.OnesCount64(m) - bits.OnesCount64(m&cornerMask))
}

// ParityQuadrants splits a legal-move mask into (oddMoves, evenMoves)
// buckets by the empty-square parity of the 4x4 quadrant each move's
// square belongs to, the input to the endgame parity-aware ordering.
func ParityQuadrants(legalMoves uint64, empties uint64) (odd, even uint64) {
	for _, mask := range quadrantMasks {
		if legalMoves&mask == 0 {
			continue
		}
		if bits.OnesCount64(empties&mask)%2 == 1 {
			odd |= legalMoves & mask
		} else {
			even |= legalMoves & mask
		}
	}
	return odd, even
}

// ParityOrder yields legal moves in corner-odd, odd, corner-even, even
// order: used only to affect iteration order at endgame nodes that
// fall through the transposition table without a cutoff.
func ParityOrder(legalMoves, empties uint64) []uint64 {
	corner := legalMoves & cornerMask
	other := legalMoves &^ cornerMask
	cornerOdd, cornerEven := ParityQuadrants(corner, empties)
	oddMoves, evenMoves := ParityQuadrants(other, empties)

	out := make([]uint64, 0, bits.OnesCount64(legalMoves))
	for _, bucket := range []uint64{cornerOdd, oddMoves, cornerEven, evenMoves} {
		for bucket != 0 {
			m := bucket & -bucket
			bucket ^= m
			out = append(out, m)
		}
	}
	return out
}
