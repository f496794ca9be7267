package engine

import (
	"math/bits"
	"testing"

	"github.com/hailam/reversicore/internal/bitboard"
	"github.com/hailam/reversicore/internal/evaluator"
)

// mobilityEvaluator builds a weight set whose only non-zero term is the
// mobility table, scoring a position as (own moves - opponent moves)
// discs. Gives the search family non-trivial, cheap-to-predict scores.
func mobilityEvaluator() *evaluator.Evaluator {
	w := evaluator.NewWeights()
	for parity := range w.Eval {
		for phase := range w.Eval[parity] {
			for i := range w.Eval[parity][phase].MobilityEval {
				w.Eval[parity][phase].MobilityEval[i] = int16((i - 64) * 128)
			}
		}
	}
	return evaluator.New(w)
}

func newTestEngine() *SearchEngine {
	return NewSearchEngine(mobilityEvaluator())
}

// lcg is a tiny deterministic generator for picking moves in the game
// walks below; tests must not depend on the process clock.
type lcg struct{ state uint64 }

func (l *lcg) next() uint64 {
	l.state = l.state*6364136223846793005 + 1442695040888963407
	return l.state >> 33
}

// playUntil walks a game from the start, picking among legal moves with
// rng, until the position has at most wantEmpties empty squares. Returns
// ok=false if the game ended (both sides passing) first.
func playUntil(rng *lcg, wantEmpties int) (bitboard.Position, bool) {
	pos := bitboard.NewGame()
	for pos.Empties() > wantEmpties {
		mv := pos.Moves()
		if mv == 0 {
			if pos.OpponentMoves() == 0 {
				return pos, false
			}
			pos = pos.Swapped()
			continue
		}
		n := bits.OnesCount64(mv)
		pick := int(rng.next()) % n
		for i := 0; i < pick; i++ {
			mv &= mv - 1
		}
		pos = pos.Put(mv & -mv)
	}
	return pos, pos.Empties() == wantEmpties
}

// refPerfect is a straightforward full-window negamax used as the
// reference result for the specialized endgame solvers.
func refPerfect(pos bitboard.Position) int32 {
	mv := pos.Moves()
	if mv == 0 {
		if pos.OpponentMoves() == 0 {
			return int32(pos.FinalScore())
		}
		return -refPerfect(pos.Swapped())
	}
	best := int32(-ScoreInf)
	for mv != 0 {
		m := mv & -mv
		mv ^= m
		if s := -refPerfect(pos.Put(m)); s > best {
			best = s
		}
	}
	return best
}

// TestTableRoundTrip checks the transposition-table round-trip property:
// Add followed by Get returns the stored bounds, depth, selectivity, and
// best move, and updating the same position promotes the previous best
// move into the second slot.
func TestTableRoundTrip(t *testing.T) {
	tt := NewTranspositionTable()
	pos := bitboard.NewGame()

	tt.Add(pos.Player, pos.Opponent, -4, 10, 8, 6, 19)
	entry, ok := tt.Get(pos.Player, pos.Opponent)
	if !ok {
		t.Fatal("Get missed a position just added")
	}
	if entry.lower != -4 || entry.upper != 10 || entry.depth != 8 || entry.selectivity != 6 {
		t.Fatalf("entry = %+v, want lower=-4 upper=10 depth=8 selectivity=6", entry)
	}
	if entry.bestMoves[0] != 19 || entry.bestMoves[1] != NoCoord {
		t.Fatalf("bestMoves = %v, want [19, NoCoord]", entry.bestMoves)
	}

	tt.Add(pos.Player, pos.Opponent, 2, 2, 10, 6, 26)
	entry, _ = tt.Get(pos.Player, pos.Opponent)
	if entry.bestMoves[0] != 26 || entry.bestMoves[1] != 19 {
		t.Fatalf("after promotion bestMoves = %v, want [26, 19]", entry.bestMoves)
	}

	// Re-adding the same best move must not duplicate it into both slots.
	tt.Add(pos.Player, pos.Opponent, 2, 2, 10, 6, 26)
	entry, _ = tt.Get(pos.Player, pos.Opponent)
	if entry.bestMoves[0] != 26 || entry.bestMoves[1] != 19 {
		t.Fatalf("re-adding the newest move changed bestMoves to %v", entry.bestMoves)
	}
}

// TestTableNeverStoresNoCoord checks a NoCoord best move leaves both
// slots untouched (an all-node store carries no move).
func TestTableNeverStoresNoCoord(t *testing.T) {
	tt := NewTranspositionTable()
	pos := bitboard.NewGame()
	tt.Add(pos.Player, pos.Opponent, -ScoreInf, 3, 8, 6, NoCoord)
	entry, ok := tt.Get(pos.Player, pos.Opponent)
	if !ok {
		t.Fatal("Get missed")
	}
	if entry.bestMoves[0] != NoCoord || entry.bestMoves[1] != NoCoord {
		t.Fatalf("bestMoves = %v, want both NoCoord", entry.bestMoves)
	}
}

// TestTableAging checks aging monotonicity: SetOld marks entries stale
// without discarding them, and an update of the same position revives it.
func TestTableAging(t *testing.T) {
	tt := NewTranspositionTable()
	pos := bitboard.NewGame()
	tt.Add(pos.Player, pos.Opponent, 0, 0, 8, 6, 19)
	tt.SetOld()

	entry, ok := tt.Get(pos.Player, pos.Opponent)
	if !ok {
		t.Fatal("aged entry should still be readable")
	}
	if !entry.aged {
		t.Fatal("SetOld did not mark the entry stale")
	}

	tt.Add(pos.Player, pos.Opponent, 1, 1, 9, 6, 26)
	entry, _ = tt.Get(pos.Player, pos.Opponent)
	if entry.aged {
		t.Fatal("updating an entry should clear its aged flag")
	}
}

// TestCutOffRule exercises the table cutoff contract: exact-match bounds
// cut or tighten the window; a depth mismatch never cuts.
func TestCutOffRule(t *testing.T) {
	entry := tableEntry{lower: 5, upper: 20, depth: 8, selectivity: 6, occupied: true}

	// upper <= alpha: fail low at the stored upper bound.
	a, b := int32(30), int32(40)
	if score, hit := CutOff(entry, true, &a, &b, 8, 6); !hit || score != 20 {
		t.Fatalf("upper<=alpha: got (%d, %v), want (20, true)", score, hit)
	}

	// lower >= beta: fail high at the stored lower bound.
	a, b = int32(-10), int32(2)
	if score, hit := CutOff(entry, true, &a, &b, 8, 6); !hit || score != 5 {
		t.Fatalf("lower>=beta: got (%d, %v), want (5, true)", score, hit)
	}

	// Overlapping window: no cut, but both bounds tighten.
	a, b = int32(0), int32(30)
	if _, hit := CutOff(entry, true, &a, &b, 8, 6); hit {
		t.Fatal("overlapping window should not cut")
	}
	if a != 5 || b != 20 {
		t.Fatalf("window after tightening = [%d, %d], want [5, 20]", a, b)
	}

	// Depth mismatch: never cuts, never tightens.
	a, b = int32(30), int32(40)
	if _, hit := CutOff(entry, true, &a, &b, 9, 6); hit {
		t.Fatal("depth mismatch must not cut")
	}
	if a != 30 || b != 40 {
		t.Fatalf("depth mismatch must not tighten, got [%d, %d]", a, b)
	}

	// Pinned value: upper == lower returns it regardless of the window.
	pinned := tableEntry{lower: 7, upper: 7, depth: 8, selectivity: 6, occupied: true}
	a, b = int32(0), int32(30)
	if score, hit := CutOff(pinned, true, &a, &b, 8, 6); !hit || score != 7 {
		t.Fatalf("pinned value: got (%d, %v), want (7, true)", score, hit)
	}
}

// TestApplyETC checks both Enhanced Transposition Cutoff outcomes: a
// child whose stored bounds already prove the parent fails high returns
// immediately, and a child proven unable to raise alpha is skipped.
func TestApplyETC(t *testing.T) {
	se := newTestEngine()
	pos := bitboard.NewGame()

	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, pos.Moves(), buf[:0])
	if len(children) != 4 {
		t.Fatalf("expected 4 opening children, got %d", len(children))
	}

	// children[0] proven <= -6 from its own side: worth >= 6 here.
	c0 := children[0].Position
	se.TT.Add(c0.Player, c0.Opponent, -ScoreInf, -6, 12, 6, NoCoord)
	score, hit := applyETC(se, children, 0, 5, 12, 6)
	if !hit || score != 6 {
		t.Fatalf("applyETC = (%d, %v), want fail-high (6, true)", score, hit)
	}

	// With beta out of reach, the same child is instead worth at most 2
	// from here (bounds [-2, 10] on its side), so alpha=3 proves it
	// redundant.
	se = newTestEngine()
	children = GenerateMoves(pos, pos.Moves(), buf[:0])
	c0 = children[0].Position
	se.TT.Add(c0.Player, c0.Opponent, -2, 10, 12, 6, NoCoord)
	_, hit = applyETC(se, children, 3, 20, 12, 6)
	if hit {
		t.Fatal("applyETC cut when the child only proved a skip")
	}
	if !children[0].Skip {
		t.Fatal("child proven unable to raise alpha was not skipped")
	}
	if children[1].Skip || children[2].Skip || children[3].Skip {
		t.Fatal("children without table entries must not be skipped")
	}
}

// TestGenerateMovesOrder checks LSB-first enumeration and the resulting
// child positions against Put.
func TestGenerateMovesOrder(t *testing.T) {
	pos := bitboard.NewGame()
	legal := pos.Moves()
	var buf [maxMoves]MoveBoard
	children := GenerateMoves(pos, legal, buf[:0])

	want := legal
	for i := range children {
		m := want & -want
		want ^= m
		if children[i].Square != uint8(bits.TrailingZeros64(m)) {
			t.Fatalf("child %d square = %d, want %d (LSB-first)", i, children[i].Square, bits.TrailingZeros64(m))
		}
		if children[i].Position != pos.Put(m) {
			t.Fatalf("child %d position does not match Put", i)
		}
	}
}

// TestSortTop7 checks the partial sort: the leading 7 entries come out in
// descending score order and no entry is lost.
func TestSortTop7(t *testing.T) {
	scores := []int32{3, -5, 12, 0, 7, -1, 9, 4, 11, 2}
	list := make([]MoveBoard, len(scores))
	for i, s := range scores {
		list[i] = MoveBoard{Square: uint8(i), Score: s}
	}
	SortTop7(list)

	for i := 1; i < 7; i++ {
		if list[i].Score > list[i-1].Score {
			t.Fatalf("top 7 not descending at %d: %d > %d", i, list[i].Score, list[i-1].Score)
		}
	}
	seen := make(map[uint8]bool)
	for _, mb := range list {
		seen[mb.Square] = true
	}
	if len(seen) != len(scores) {
		t.Fatalf("partial sort lost entries: %d distinct of %d", len(seen), len(scores))
	}
	// The global maximum must surface at the front.
	if list[0].Score != 12 {
		t.Fatalf("list[0].Score = %d, want 12", list[0].Score)
	}
}

// TestParityOrder checks the endgame iteration order: odd-quadrant
// corners first, then odd-quadrant squares, then the even buckets, and
// that every input move appears exactly once.
func TestParityOrder(t *testing.T) {
	// Empties: 3 squares in the A1 quadrant (odd), 2 in the H8 quadrant
	// (even). Legal moves: corner A1 (odd quadrant), B2 (odd), corner H8
	// (even quadrant), G7 (even).
	a1 := uint64(1) << 0
	b2 := uint64(1) << 9
	c3 := uint64(1) << 18
	h8 := uint64(1) << 63
	g7 := uint64(1) << 54
	empties := a1 | b2 | c3 | h8 | g7
	legal := a1 | b2 | h8 | g7

	order := ParityOrder(legal, empties)
	if len(order) != 4 {
		t.Fatalf("ParityOrder returned %d moves, want 4", len(order))
	}
	want := []uint64{a1, b2, h8, g7}
	for i, m := range want {
		if order[i] != m {
			t.Fatalf("order[%d] = %s, want %s", i, bitboard.PositionBitToStr(order[i]), bitboard.PositionBitToStr(m))
		}
	}
}

// TestEndgameLeavesAgree checks that the specialized 1- and 2-empty leaf
// solvers agree with a plain negamax reference across a spread of
// deterministic game walks (spec section 8, invariant 8).
func TestEndgameLeavesAgree(t *testing.T) {
	se := newTestEngine()
	checked := 0
	for seed := uint64(1); seed <= 40 && checked < 12; seed++ {
		for _, empties := range []int{1, 2} {
			rng := &lcg{state: seed}
			pos, ok := playUntil(rng, empties)
			if !ok {
				continue
			}
			want := refPerfect(pos)
			var got int32
			if empties == 1 {
				got = solveScore1Empties(pos)
			} else {
				got = solveScore2Empties(se, pos, -ScoreInf, ScoreInf)
			}
			if got != want {
				t.Errorf("seed %d, %d empties: leaf solver = %d, reference = %d", seed, empties, got, want)
			}
			if na := NegaAlphaPerfect(se, pos, -ScoreInf, ScoreInf, empties); na != want {
				t.Errorf("seed %d, %d empties: NegaAlphaPerfect = %d, reference = %d", seed, empties, na, want)
			}
			checked++
		}
	}
	if checked == 0 {
		t.Fatal("no game walk reached a 1- or 2-empty position")
	}
}

// TestPerfectSearchTiersAgree checks that the full PVS/NWS perfect search
// (transposition table, ETC, ordering) returns the same exact score as
// the plain unordered search at no-MPC selectivity.
func TestPerfectSearchTiersAgree(t *testing.T) {
	for seed := uint64(1); seed <= 6; seed++ {
		rng := &lcg{state: seed}
		pos, ok := playUntil(rng, 11)
		if !ok {
			continue
		}
		se1 := newTestEngine()
		plain := NegaAlphaPerfect(se1, pos, -64, 64, pos.Empties())
		se2 := newTestEngine()
		pvs := PVSPerfect(se2, pos, -64, 64, pos.Empties())
		if plain != pvs {
			t.Errorf("seed %d: NegaAlphaPerfect = %d, PVSPerfect = %d", seed, plain, pvs)
		}
		return
	}
	t.Fatal("no game walk reached an 11-empty position")
}

// TestEvalSearchTiersAgree checks invariant 9: at selectivity 6 (no MPC)
// and a full window, the PVS tier with its transposition table and
// ordering returns the same minimax value as the plain NegaAlpha tier.
func TestEvalSearchTiersAgree(t *testing.T) {
	positions := []bitboard.Position{bitboard.NewGame()}
	rng := &lcg{state: 7}
	if pos, ok := playUntil(rng, 50); ok {
		positions = append(positions, pos)
	}

	for pi, pos := range positions {
		for _, depth := range []int{2, 4, 6, 7} {
			se1 := newTestEngine()
			plain := NegaAlphaEval(se1, pos, -64, 64, depth)
			se2 := newTestEngine()
			pvs := PVSEval(se2, pos, -64, 64, depth)
			if plain != pvs {
				t.Errorf("position %d depth %d: NegaAlphaEval = %d, PVSEval = %d", pi, depth, plain, pvs)
			}
		}
	}
}

// TestEvalSearchWindowBound checks the fail-soft window contract: with a
// window that excludes the true value, the search returns a bound on the
// correct side.
func TestEvalSearchWindowBound(t *testing.T) {
	pos := bitboard.NewGame()
	depth := 6
	se := newTestEngine()
	exact := NegaAlphaEval(se, pos, -64, 64, depth)

	se = newTestEngine()
	if got := PVSEval(se, pos, exact+2, exact+4, depth); got > exact+2 {
		t.Errorf("window above the true value: result %d should fail low (<= alpha %d)", got, exact+2)
	}
	se = newTestEngine()
	if got := PVSEval(se, pos, exact-4, exact-2, depth); got < exact-2 {
		t.Errorf("window below the true value: result %d should fail high (>= beta %d)", got, exact-2)
	}
}

// TestPerfectEntriesDistinctFromEvalEntries checks that an evaluation
// entry whose depth happens to equal the position's empty count can
// never satisfy a perfect-search lookup: perfect entries are stored at
// the exact-depth code. The position is one ply past the start, since at
// the start's 60 empties the empty count is the exact-depth code itself.
func TestPerfectEntriesDistinctFromEvalEntries(t *testing.T) {
	tt := NewTranspositionTable()
	pos := bitboard.NewGame()
	pos = pos.Put(pos.Moves() & -pos.Moves())
	tt.Add(pos.Player, pos.Opponent, 3, 3, pos.Empties(), 6, NoCoord)

	entry, ok := tt.Get(pos.Player, pos.Opponent)
	a, b := int32(-64), int32(64)
	if _, hit := CutOff(entry, ok, &a, &b, DepthExact, 6); hit {
		t.Fatal("a heuristic entry cut a perfect-search lookup")
	}
}
