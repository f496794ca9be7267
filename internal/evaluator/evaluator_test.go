package evaluator

import (
	"testing"

	"github.com/hailam/reversicore/internal/bitboard"
)

// TestZeroWeightsEvaluateToZero checks that a freshly built all-zero
// weight set scores every position as 0, from the starting position
// through a few plies of forced play.
func TestZeroWeightsEvaluateToZero(t *testing.T) {
	ev := New(NewWeights())
	pos := bitboard.NewGame()
	for ply := 0; ply < 6; ply++ {
		if got := ev.Evaluate(pos); got != 0 {
			t.Fatalf("ply %d: Evaluate() = %d, want 0 for zero weights", ply, got)
		}
		mv := pos.Moves()
		if mv == 0 {
			pos = pos.Swapped()
			continue
		}
		pos = pos.Put(mv & -mv)
	}
}

// TestFeatureIndexInRange checks that every computed feature index is
// within the bounds of its pattern's weight table.
func TestFeatureIndexInRange(t *testing.T) {
	ev := New(NewWeights())
	pos := bitboard.NewGame()
	ev.ComputeFeatures(pos.Player, pos.Opponent)
	for pat := 0; pat < NumPatterns; pat++ {
		for rot := 0; rot < numRotations; rot++ {
			idx := ev.featureIndex[pat][rot]
			if idx < 0 || idx >= numFeaturePositions[pat] {
				t.Errorf("pattern %d rotation %d: feature index %d out of range [0,%d)", pat, rot, idx, numFeaturePositions[pat])
			}
		}
	}
}

// TestNonZeroWeightMovesScore checks that a single non-zero pattern
// weight, placed at the feature index the starting position actually
// hits, changes Evaluate's output in the expected direction.
func TestNonZeroWeightMovesScore(t *testing.T) {
	w := NewWeights()
	ev := New(w)
	pos := bitboard.NewGame()
	ev.ComputeFeatures(pos.Player, pos.Opponent)

	phase := pos.MoveCount() / 2
	parity := pos.Empties() % 2
	idx0 := ev.featureIndex[0][0]
	w.Eval[parity][phase].PatternEval[0][idx0] = int16(4 * scoreRate)

	got := ev.Evaluate(pos)
	if got <= 0 {
		t.Fatalf("Evaluate() = %d after a positive pattern weight, want > 0", got)
	}
}

// TestMobilitySlotInRange checks the mobility index stays inside its
// 128-entry table at every position along the first plies of a forced
// game walk.
func TestMobilitySlotInRange(t *testing.T) {
	ev := New(NewWeights())
	pos := bitboard.NewGame()
	for ply := 0; ply < 10; ply++ {
		mv := pos.Moves()
		if mv == 0 {
			if pos.OpponentMoves() == 0 {
				break
			}
			pos = pos.Swapped()
			continue
		}
		ev.ComputeFeatures(pos.Player, pos.Opponent)
		_ = ev.RawScore(pos) // panics on out-of-range index
		pos = pos.Put(mv & -mv)
	}
}
