package solver

import (
	"math/bits"

	"github.com/hailam/reversicore/internal/bitboard"
)

// Candidate is one entry of the root candidate deque (spec section 3): a
// legal child of the position being solved, paired with the square played
// to reach it.
type Candidate struct {
	Position bitboard.Position
	Square   uint8
}

// buildCandidates expands every legal move of pos into a root Candidate,
// LSB-first, the same enumeration order GenerateMoves uses for internal
// nodes.
func buildCandidates(pos bitboard.Position) []Candidate {
	legal := pos.Moves()
	out := make([]Candidate, 0, bits.OnesCount64(legal))
	for legal != 0 {
		m := legal & -legal
		legal ^= m
		out = append(out, Candidate{
			Position: pos.Put(m),
			Square:   uint8(bits.TrailingZeros64(m)),
		})
	}
	return out
}

// moveToFront relocates candidates[i] to the head of the slice in place,
// preserving the relative order of every other entry. This is the
// mechanism spec section 4.I relies on for best-move continuity across
// iterative-deepening passes: whichever candidate proves best is moved to
// the front, so the next (deeper) iteration searches it first.
func moveToFront(c []Candidate, i int) {
	if i <= 0 {
		return
	}
	item := c[i]
	copy(c[1:i+1], c[:i])
	c[0] = item
}
