package book

import (
	"math/bits"
	"testing"

	"github.com/hailam/reversicore/internal/bitboard"
)

func openTestBook(t *testing.T) *Book {
	t.Helper()
	b, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestAddAndProbe(t *testing.T) {
	b := openTestBook(t)
	pos := bitboard.NewGame()

	if err := b.Add(pos, 19, 10); err != nil { // D3
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add(pos, 26, 1); err != nil { // C4
		t.Fatalf("Add: %v", err)
	}

	sq, ok, err := b.Probe(pos)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !ok {
		t.Fatalf("Probe found no entry for a position that was just added")
	}
	if sq != 19 && sq != 26 {
		t.Errorf("Probe returned square %d, want 19 or 26", sq)
	}
}

func TestProbeMissReturnsNotOK(t *testing.T) {
	b := openTestBook(t)
	_, ok, err := b.Probe(bitboard.NewGame())
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if ok {
		t.Fatalf("Probe on an empty book should report ok=false")
	}
}

func TestAddOverwritesSameSquareWeight(t *testing.T) {
	b := openTestBook(t)
	pos := bitboard.NewGame()

	if err := b.Add(pos, 19, 5); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add(pos, 19, 50); err != nil {
		t.Fatalf("Add: %v", err)
	}

	entries, err := b.ProbeAll(pos)
	if err != nil {
		t.Fatalf("ProbeAll: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ProbeAll returned %d entries, want 1", len(entries))
	}
	if entries[0].Weight != 50 {
		t.Errorf("weight = %d, want 50 (the later Add should win)", entries[0].Weight)
	}
}

func TestSizeCountsDistinctPositions(t *testing.T) {
	b := openTestBook(t)
	pos := bitboard.NewGame()
	next := pos.Put(pos.Moves() & -pos.Moves())

	if err := b.Add(pos, 19, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add(next, 18, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}

	n, err := b.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if n != 2 {
		t.Errorf("Size() = %d, want 2", n)
	}
}

// TestProbeSharedAcrossSymmetries checks the canonical-frame reduction:
// a line recorded in one orientation must be found from any mirrored
// orientation, with the returned square mapped back so it is legal (and
// leads to the same canonical child) in the probing frame.
func TestProbeSharedAcrossSymmetries(t *testing.T) {
	b := openTestBook(t)

	pos := bitboard.NewGame()
	d3, err := bitboard.PositionStrToBit("D3")
	if err != nil {
		t.Fatalf("PositionStrToBit: %v", err)
	}
	pos = pos.Put(d3) // break the start position's symmetry
	move := pos.Moves() & -pos.Moves()
	sq := uint8(bits.TrailingZeros64(move))
	if err := b.Add(pos, sq, 10); err != nil {
		t.Fatalf("Add: %v", err)
	}

	mirror := bitboard.Position{
		Player:   bitboard.HorizontalMirror(pos.Player),
		Opponent: bitboard.HorizontalMirror(pos.Opponent),
	}
	got, ok, err := b.Probe(mirror)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !ok {
		t.Fatal("a mirrored position should hit the same book record")
	}
	if uint64(1)<<got&mirror.Moves() == 0 {
		t.Fatalf("probed square %d is not legal in the mirrored frame", got)
	}
	want := bitboard.Canonical(pos.Put(move))
	if bitboard.Canonical(mirror.Put(uint64(1)<<got)) != want {
		t.Fatal("mirrored probe leads to a different canonical child")
	}
}
