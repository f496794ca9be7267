package evaluator

import (
	"math/bits"

	"github.com/hailam/reversicore/internal/bitboard"
)

// scoreRate and scoreMax implement the final disc-count scaling the
// original engine applies: raw pattern/mobility/bias sums are in units
// of 1/128th of a disc, rounded away from zero and clamped to a plain
// Othello score range.
const (
	scoreRate = 128
	scoreMax  = 64
)

// Evaluator scores positions from a trained set of pattern, mobility,
// and bias weights. It is not safe for concurrent use: Evaluate
// overwrites the feature scratch held in the Evaluator itself. The search
// in internal/engine is single-threaded and calls one Evaluator at a time.
type Evaluator struct {
	weights *Weights

	// featureIndex[pattern][rotation] is the ternary digit string for
	// that pattern's rotated image, recomputed by ComputeFeatures before
	// every Evaluate call.
	featureIndex [NumPatterns][numRotations]int
}

// New wraps a loaded or freshly built Weights set for evaluation.
func New(w *Weights) *Evaluator {
	return &Evaluator{weights: w}
}

// ReadFile builds an Evaluator from a trained weight file on disk.
func ReadFile(path string) (*Evaluator, error) {
	w, err := LoadWeights(path)
	if err != nil {
		return nil, err
	}
	return New(w), nil
}

// ReadString builds an Evaluator from a trained weight document already
// held in memory.
func ReadString(doc string) (*Evaluator, error) {
	w, err := LoadWeightsString(doc)
	if err != nil {
		return nil, err
	}
	return New(w), nil
}

// ComputeFeatures derives the ternary feature index of every pattern
// rotation from the raw player/opponent masks: each square contributes a
// base-3 digit, 0 for empty, 1 for opponent, 2 for player, accumulated
// most-significant-square-first exactly as the original engine's
// clac_features does.
func (e *Evaluator) ComputeFeatures(player, opponent uint64) {
	for pat := 0; pat < NumPatterns; pat++ {
		n := patternLayouts[pat].numSquares
		for rot := 0; rot < numRotations; rot++ {
			idx := 0
			for i := 0; i < n; i++ {
				sq := featureCoord[pat][rot][i]
				color := 2*((player>>uint(sq))&1) + ((opponent >> uint(sq)) & 1)
				idx = idx*3 + int(color)
			}
			e.featureIndex[pat][rot] = idx
		}
	}
}

// RawScore sums the pattern, mobility, and bias terms for pos at its
// already-computed feature index, without the final /128 scaling. The
// phase bucket is move_count/2 (0..30); the parity bucket is
// empties%2, matching the original engine's choice of indexing the
// weight table by empties parity rather than side to move.
func (e *Evaluator) RawScore(pos bitboard.Position) int {
	phase := pos.MoveCount() / 2
	if phase >= numPhases {
		phase = numPhases - 1
	}
	parity := pos.Empties() % 2
	scores := &e.weights.Eval[parity][phase]

	total := 0
	for pat := 0; pat < NumPatterns; pat++ {
		table := scores.PatternEval[pat]
		for rot := 0; rot < numRotations; rot++ {
			total += int(table[e.featureIndex[pat][rot]])
		}
	}

	mobility := numMobilitySlots/2 + bits.OnesCount64(pos.Moves()) - bits.OnesCount64(pos.OpponentMoves())
	total += int(scores.MobilityEval[mobility])
	total += int(scores.ConstEval)
	return total
}

// Evaluate returns the position's heuristic score from the side to
// move's perspective, scaled to a disc-count range and clamped to
// [-scoreMax, scoreMax].
func (e *Evaluator) Evaluate(pos bitboard.Position) int {
	e.ComputeFeatures(pos.Player, pos.Opponent)
	score := e.RawScore(pos)

	if score > 0 {
		score += scoreRate / 2
	} else if score < 0 {
		score -= scoreRate / 2
	}
	score /= scoreRate

	if score > scoreMax {
		score = scoreMax
	} else if score < -scoreMax {
		score = -scoreMax
	}
	return score
}
