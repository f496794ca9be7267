// Package book implements a persistent opening-book lookup, the
// out-of-scope collaborator named in spec section 1 ("consumes only
// solve(), bitboard move/flip primitives, and evaluator weight loading").
// It is adapted from the teacher's internal/book package, which loads a
// Polyglot book into an in-memory (Move, Weight) map; this version stores
// the same shape of entry but keyed by the Zobrist hash of the position's
// canonical symmetry image (bitboard.Canonical, the get_unique_board
// reduction the original opening book applies before every lookup), and
// persists to BadgerDB instead of holding a one-shot in-memory map,
// following internal/storage's use of badger for the teacher's own
// persistent data.
package book

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/bits"
	"math/rand"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/reversicore/internal/bitboard"
)

// Entry is one remembered (move, weight) pair for a position, mirroring
// the teacher's book.BookEntry.
type Entry struct {
	Square uint8  `json:"square"`
	Weight uint16 `json:"weight"`
}

// Book is a read-mostly opening book: positions (keyed by Zobrist hash)
// map to a small set of weighted candidate moves. Search itself never
// touches a Book; only the Solver's caller does, before invoking Solve,
// exactly as spec section 1 describes it as a collaborator that merely
// consumes the core's primitives.
type Book struct {
	db *badger.DB
}

// Open opens (creating if absent) a Book backed by a BadgerDB directory.
func Open(dir string) (*Book, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("book: open %s: %w", dir, err)
	}
	return &Book{db: db}, nil
}

// Close releases the underlying database handle.
func (b *Book) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// bookKey is the database key for a canonical position's bucket: its
// 32-bit Zobrist hash. Callers pass positions already reduced by
// bitboard.Canonical, so all 8 symmetric images of a position share one
// record. Two different canonical positions can still share a key (the
// hash is not collision free); bucket stores disambiguate by the full
// (player, opponent) pair, the same two-level approach the
// transposition table uses for its own hash collisions.
func bookKey(pos bitboard.Position) []byte {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], pos.Hash())
	return key[:]
}

// bucket is one stored record: the exact position plus its weighted
// moves, chained under bookKey with any other position sharing the same
// hash.
type bucket struct {
	Player   uint64  `json:"player"`
	Opponent uint64  `json:"opponent"`
	Entries  []Entry `json:"entries"`
}

// Add records (or merges into) the book entry for a position. The
// position and move are reduced to the canonical symmetry frame before
// storing, so a line learned in one orientation serves all 8 symmetric
// images, the same reduction the original opening book applies via
// get_unique_board before every store. An existing entry for the same
// square has its weight overwritten rather than summed, so repeated
// training passes over the same game converge instead of compounding.
func (b *Book) Add(pos bitboard.Position, square uint8, weight uint16) error {
	cpos, sym := bitboard.CanonicalSymmetry(pos)
	square = transformSquare(square, sym)

	buckets, err := b.loadBuckets(cpos)
	if err != nil {
		return err
	}

	idx := -1
	for i := range buckets {
		if buckets[i].Player == cpos.Player && buckets[i].Opponent == cpos.Opponent {
			idx = i
			break
		}
	}
	if idx < 0 {
		buckets = append(buckets, bucket{Player: cpos.Player, Opponent: cpos.Opponent})
		idx = len(buckets) - 1
	}

	replaced := false
	for i := range buckets[idx].Entries {
		if buckets[idx].Entries[i].Square == square {
			buckets[idx].Entries[i].Weight = weight
			replaced = true
			break
		}
	}
	if !replaced {
		buckets[idx].Entries = append(buckets[idx].Entries, Entry{Square: square, Weight: weight})
	}
	return b.storeBuckets(cpos, buckets)
}

// transformSquare carries a square into symmetry frame sym, and
// inverseTransformSquare back out of it.
func transformSquare(sq uint8, sym int) uint8 {
	return uint8(bits.TrailingZeros64(bitboard.TransformMask(uint64(1)<<sq, sym)))
}

func inverseTransformSquare(sq uint8, sym int) uint8 {
	return uint8(bits.TrailingZeros64(bitboard.InverseTransformMask(uint64(1)<<sq, sym)))
}

// Probe returns a move for pos chosen by weighted random selection among
// its book entries, following the teacher's book.Probe. The lookup runs
// in the canonical symmetry frame and the chosen square is mapped back
// into pos's own frame before returning, so the result is playable as
// is. ok is false if the position has no book entry.
func (b *Book) Probe(pos bitboard.Position) (square uint8, ok bool, err error) {
	cpos, sym := bitboard.CanonicalSymmetry(pos)
	entries, err := b.entriesFor(cpos)
	if err != nil {
		return 0, false, err
	}
	if len(entries) == 0 {
		return 0, false, nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Weight > entries[j].Weight })

	var total uint32
	for _, e := range entries {
		total += uint32(e.Weight)
	}
	if total == 0 {
		return inverseTransformSquare(entries[0].Square, sym), true, nil
	}

	r := uint32(rand.Int31()) % total
	var cumulative uint32
	for _, e := range entries {
		cumulative += uint32(e.Weight)
		if r < cumulative {
			return inverseTransformSquare(e.Square, sym), true, nil
		}
	}
	return inverseTransformSquare(entries[0].Square, sym), true, nil
}

// ProbeAll returns every book entry for pos, sorted by descending weight,
// with each square mapped back into pos's own frame.
func (b *Book) ProbeAll(pos bitboard.Position) ([]Entry, error) {
	cpos, sym := bitboard.CanonicalSymmetry(pos)
	entries, err := b.entriesFor(cpos)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Weight > entries[j].Weight })
	for i := range entries {
		entries[i].Square = inverseTransformSquare(entries[i].Square, sym)
	}
	return entries, nil
}

// entriesFor finds a canonical position's own bucket among whichever
// positions share its hash, returning nil if it was never recorded.
func (b *Book) entriesFor(pos bitboard.Position) ([]Entry, error) {
	buckets, err := b.loadBuckets(pos)
	if err != nil {
		return nil, err
	}
	for _, bk := range buckets {
		if bk.Player == pos.Player && bk.Opponent == pos.Opponent {
			return bk.Entries, nil
		}
	}
	return nil, nil
}

func (b *Book) loadBuckets(pos bitboard.Position) ([]bucket, error) {
	var buckets []bucket
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bookKey(pos))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &buckets)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("book: load: %w", err)
	}
	return buckets, nil
}

func (b *Book) storeBuckets(pos bitboard.Position, buckets []bucket) error {
	data, err := json.Marshal(buckets)
	if err != nil {
		return fmt.Errorf("book: marshal: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bookKey(pos), data)
	})
	if err != nil {
		return fmt.Errorf("book: store: %w", err)
	}
	return nil
}

// Size returns the number of distinct positions recorded in the book.
func (b *Book) Size() (int, error) {
	n := 0
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("book: size: %w", err)
	}
	return n, nil
}
