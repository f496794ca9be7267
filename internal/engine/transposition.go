// Package engine implements the search core: a two-probe transposition
// table, move ordering with Enhanced Transposition Cutoffs, Multi-ProbCut
// forward pruning, and the PVS/NWS search routines for both heuristic
// (evaluation) and exact (perfect) search, following the structure of
// the teacher's internal/engine package adapted to Reversi's
// negamax-family search instead of a chess engine's.
package engine

import "github.com/hailam/reversicore/internal/bitboard"

// tableSize is the slot count of the transposition table: 1<<22, per the
// size the search core is specified to use (roughly 96 MiB at ~24 bytes
// per occupied slot).
const tableSize = 1 << 22

// NoCoord marks an absent best-move slot, mirroring bitboard.NoCoord.
const NoCoord = uint8(bitboard.NoCoord)

// DepthExact is the depth code stored for perfect-search entries: 60
// means "exact to game end", so heuristic entries (whose depth never
// reaches it) can never satisfy a perfect-search lookup, and vice versa.
const DepthExact = 60

// tableEntry is one transposition record: a position's search result at
// a given (depth, selectivity), with up to two remembered best moves.
type tableEntry struct {
	player, opponent uint64
	lower, upper     int8
	depth            uint8
	selectivity      uint8
	bestMoves        [2]uint8
	aged             bool
	occupied         bool
}

func (e *tableEntry) matches(player, opponent uint64) bool {
	return e.occupied && e.player == player && e.opponent == opponent
}

// TranspositionTable is the two-probe Zobrist-hashed position cache
// shared by every search call against one SearchEngine. It is retained
// across Solver.Solve calls; SetOld marks every slot stale so the next
// pass of writes preferentially replaces them while older bounds and
// best-moves remain usable for cutoffs and ordering until overwritten.
type TranspositionTable struct {
	slots [tableSize]tableEntry
}

// NewTranspositionTable allocates an empty table.
func NewTranspositionTable() *TranspositionTable {
	return &TranspositionTable{}
}

func primaryIndex(player, opponent uint64) uint32 {
	return bitboard.Hash(player, opponent) % tableSize
}

// Get returns the matching entry for (player, opponent), checking the
// primary slot then the secondary (primary+1 mod size), or ok=false if
// neither holds this exact position.
func (t *TranspositionTable) Get(player, opponent uint64) (tableEntry, bool) {
	i := primaryIndex(player, opponent)
	if t.slots[i].matches(player, opponent) {
		return t.slots[i], true
	}
	j := (i + 1) % tableSize
	if t.slots[j].matches(player, opponent) {
		return t.slots[j], true
	}
	return tableEntry{}, false
}

// Add records a search result, following the write rule: an exact match
// in the primary slot is updated in place; otherwise an empty or aged
// primary slot is claimed; otherwise the secondary slot is inspected
// under the same rule, except a secondary slot holding a different
// live position with a strictly better (depth, selectivity) is left
// untouched rather than evicted.
func (t *TranspositionTable) Add(player, opponent uint64, lower, upper int32, depth, selectivity int, bestMove uint8) {
	i := primaryIndex(player, opponent)
	if t.slots[i].matches(player, opponent) {
		t.writeInto(&t.slots[i], player, opponent, lower, upper, depth, selectivity, bestMove)
		return
	}
	if !t.slots[i].occupied || t.slots[i].aged {
		t.claim(&t.slots[i], player, opponent, lower, upper, depth, selectivity, bestMove)
		return
	}
	j := (i + 1) % tableSize
	if t.slots[j].matches(player, opponent) {
		t.writeInto(&t.slots[j], player, opponent, lower, upper, depth, selectivity, bestMove)
		return
	}
	if t.slots[j].occupied && !t.slots[j].aged {
		other := &t.slots[j]
		if int(other.depth) > depth || (int(other.depth) == depth && int(other.selectivity) > selectivity) {
			return
		}
	}
	t.claim(&t.slots[j], player, opponent, lower, upper, depth, selectivity, bestMove)
}

func (t *TranspositionTable) claim(slot *tableEntry, player, opponent uint64, lower, upper int32, depth, selectivity int, bestMove uint8) {
	*slot = tableEntry{
		player:      player,
		opponent:    opponent,
		lower:       clampInt8(lower),
		upper:       clampInt8(upper),
		depth:       uint8(depth),
		selectivity: uint8(selectivity),
		occupied:    true,
	}
	slot.bestMoves[0] = NoCoord
	slot.bestMoves[1] = NoCoord
	promoteBestMove(slot, bestMove)
}

func (t *TranspositionTable) writeInto(slot *tableEntry, player, opponent uint64, lower, upper int32, depth, selectivity int, bestMove uint8) {
	slot.lower = clampInt8(lower)
	slot.upper = clampInt8(upper)
	slot.depth = uint8(depth)
	slot.selectivity = uint8(selectivity)
	slot.aged = false
	promoteBestMove(slot, bestMove)
}

// promoteBestMove shifts the slot's most recent best move into the
// second slot and records m as the newest, unless m is already the
// newest or is NoCoord (never stored as a best move).
func promoteBestMove(slot *tableEntry, m uint8) {
	if m == NoCoord || m == slot.bestMoves[0] {
		return
	}
	slot.bestMoves[1] = slot.bestMoves[0]
	slot.bestMoves[0] = m
}

func clampInt8(v int32) int8 {
	const maxI8 = int32(127)
	const minI8 = int32(-128)
	if v > maxI8 {
		return int8(maxI8)
	}
	if v < minI8 {
		return int8(minI8)
	}
	return int8(v)
}

// SetOld marks every occupied slot stale. Called once per top-level
// Solve call so the next call's writes preferentially evict it.
func (t *TranspositionTable) SetOld() {
	for i := range t.slots {
		if t.slots[i].occupied {
			t.slots[i].aged = true
		}
	}
}

// CutOff applies the transposition-table cutoff rule at an exact
// (depth, selectivity) match: a proven upper/lower bound short-circuits
// the caller's search; otherwise alpha/beta are tightened in place.
// Mismatched depth/selectivity entries never cut (the caller should
// still use their best-moves for ordering).
func CutOff(entry tableEntry, ok bool, alpha, beta *int32, depth, selectivity int) (int32, bool) {
	if !ok || int(entry.depth) != depth || int(entry.selectivity) != selectivity {
		return 0, false
	}
	lower, upper := int32(entry.lower), int32(entry.upper)
	if upper <= *alpha {
		return upper, true
	}
	if lower >= *beta {
		return lower, true
	}
	if upper == lower {
		return upper, true
	}
	if lower > *alpha {
		*alpha = lower
	}
	if upper < *beta {
		*beta = upper
	}
	return 0, false
}
