package solver

import (
	"testing"

	"github.com/hailam/reversicore/internal/bitboard"
	"github.com/hailam/reversicore/internal/evaluator"
)

func newTestSolver() *Solver {
	return New(evaluator.New(evaluator.NewWeights()))
}

// TestSolveStartingPositionReturnsLegalMove checks that solving the
// initial position at a shallow eval level returns one of the four
// classical opening squares.
func TestSolveStartingPositionReturnsLegalMove(t *testing.T) {
	s := newTestSolver()
	pos := bitboard.NewGame()
	result := s.Solve(pos, 3)

	legal := pos.Moves()
	if legal&(uint64(1)<<result.BestMove) == 0 {
		t.Fatalf("Solve returned illegal move %s", bitboard.Square(result.BestMove))
	}
	if result.Type.Kind != KindEval {
		t.Errorf("level 3 should classify as Eval, got %v", result.Type.Kind)
	}
	if result.SearchedNodes == 0 {
		t.Errorf("expected a positive node count")
	}
}

// TestSolveDeterministic checks scenario S5/S6: two Solve calls on the
// same position and level return identical best move and eval, since the
// Zobrist table is fixed and node counters are reset each call.
func TestSolveDeterministic(t *testing.T) {
	s := newTestSolver()
	pos := bitboard.NewGame()

	r1 := s.Solve(pos, 5)
	r2 := s.Solve(pos, 5)

	if r1.BestMove != r2.BestMove {
		t.Errorf("best move differs across calls: %d vs %d", r1.BestMove, r2.BestMove)
	}
	if r1.Eval != r2.Eval {
		t.Errorf("eval differs across calls: %d vs %d", r1.Eval, r2.Eval)
	}
}

// TestSolveBothSidesPass checks the boundary behavior from spec section 8:
// a terminal position (neither side can move) returns best_move=0 and the
// exact terminal score, counting exactly one node.
func TestSolveBothSidesPass(t *testing.T) {
	s := newTestSolver()
	// A full board: 32 discs for each side, no empties.
	var player, opponent uint64
	for sq := 0; sq < 64; sq++ {
		if sq%2 == 0 {
			player |= uint64(1) << uint(sq)
		} else {
			opponent |= uint64(1) << uint(sq)
		}
	}
	pos := bitboard.Position{Player: player, Opponent: opponent}

	result := s.Solve(pos, 10)
	if result.BestMove != 0 {
		t.Errorf("BestMove = %d, want 0 for a terminal position", result.BestMove)
	}
	if result.Eval != int32(pos.FinalScore()) {
		t.Errorf("Eval = %d, want %d", result.Eval, pos.FinalScore())
	}
	if result.SearchedNodes != 1 {
		t.Errorf("SearchedNodes = %d, want 1", result.SearchedNodes)
	}
}

// TestGetConfigLowLevel checks the literal level<=10 rule: Perfect once
// within 2*level empties of the end, Eval otherwise.
func TestGetConfigLowLevel(t *testing.T) {
	cfg := GetConfig(20, 10)
	if cfg.Kind != KindPerfect {
		t.Errorf("empties=20, level=10: want Perfect, got %v", cfg.Kind)
	}
	cfg = GetConfig(21, 10)
	if cfg.Kind != KindEval || cfg.Depth != 10 {
		t.Errorf("empties=21, level=10: want Eval(depth=10), got %v depth=%d", cfg.Kind, cfg.Depth)
	}
}

// TestGetConfigLevel60AlwaysExactPerfect checks level 60 forces exact
// Perfect search regardless of empties.
func TestGetConfigLevel60AlwaysExactPerfect(t *testing.T) {
	for _, empties := range []int{1, 20, 40, 60} {
		cfg := GetConfig(empties, 60)
		if cfg.Kind != KindPerfect || cfg.Selectivity != exactSelectivity {
			t.Errorf("empties=%d, level=60: want exact Perfect, got %+v", empties, cfg)
		}
	}
}

// TestGetConfigSelectivityMonotone checks that selectivity never increases
// as empties grows at a fixed high level, matching the "stepping from 6
// down to 1" requirement.
func TestGetConfigSelectivityMonotone(t *testing.T) {
	level := 40
	prev := exactSelectivity + 1
	for empties := 1; empties <= 60; empties++ {
		cfg := GetConfig(empties, level)
		if cfg.Selectivity > prev {
			t.Fatalf("selectivity increased as empties grew: empties=%d sel=%d prev=%d", empties, cfg.Selectivity, prev)
		}
		prev = cfg.Selectivity
		if cfg.Selectivity < 1 || cfg.Selectivity > exactSelectivity {
			t.Fatalf("selectivity %d out of range at empties=%d", cfg.Selectivity, empties)
		}
	}
}

// TestCandidateMoveToFront checks the deque operation used for
// best-move continuity: moving index i to the front preserves the
// relative order of the remaining entries.
func TestCandidateMoveToFront(t *testing.T) {
	c := []Candidate{{Square: 0}, {Square: 1}, {Square: 2}, {Square: 3}}
	moveToFront(c, 2)
	want := []uint8{2, 0, 1, 3}
	for i, w := range want {
		if c[i].Square != w {
			t.Fatalf("after moveToFront(2): c[%d].Square = %d, want %d", i, c[i].Square, w)
		}
	}
}

// TestEvalDepthSequenceEndsAtLevel checks that the iterative-deepening
// schedule always ends exactly at the requested level.
func TestEvalDepthSequenceEndsAtLevel(t *testing.T) {
	for level := 1; level <= 20; level++ {
		seq := evalDepthSequence(level)
		if len(seq) == 0 {
			t.Fatalf("level %d: empty schedule", level)
		}
		if seq[len(seq)-1] != level {
			t.Fatalf("level %d: schedule %v does not end at level", level, seq)
		}
		for i := 1; i < len(seq); i++ {
			if seq[i] <= seq[i-1] {
				t.Fatalf("level %d: schedule %v not strictly increasing", level, seq)
			}
		}
	}
}
