package bitboard

import "errors"

// ErrInvalidMove is returned by Board.Put when the requested square is not
// a member of the current side-to-move's legal-move mask (spec section 7).
var ErrInvalidMove = errors.New("bitboard: invalid move")

// Board is the collaborator-facing wrapper around Position (spec section
// 6.1): it validates moves and reports errors instead of the bare,
// unchecked bit twiddling Position itself exposes to the search core. The
// search core (internal/engine) talks to Position directly, never Board,
// since a validity check on every node would be wasted work when the
// caller already enumerated the legal moves.
type Board struct {
	pos Position
}

// NewBoard wraps the standard Reversi starting position.
func NewBoard() *Board {
	return &Board{pos: NewGame()}
}

// NewBoardFromPosition wraps an already-built Position, e.g. one parsed
// from an FFO problem file.
func NewBoardFromPosition(pos Position) *Board {
	return &Board{pos: pos}
}

// Position returns the board's underlying (player, opponent) pair.
func (b *Board) Position() Position {
	return b.pos
}

// Moves returns the legal-move mask for the side to move.
func (b *Board) Moves() uint64 {
	return b.pos.Moves()
}

// Put applies a move, given as a single-bit mask, validating it against
// Moves() first. It returns ErrInvalidMove without mutating the board if
// the square is not legal.
func (b *Board) Put(squareBit uint64) error {
	if squareBit&b.pos.Moves() == 0 {
		return ErrInvalidMove
	}
	b.pos = b.pos.Put(squareBit)
	return nil
}

// Pass swaps the side to move without placing a disc. The caller is
// responsible for only calling this when Moves() == 0.
func (b *Board) Pass() {
	b.pos = b.pos.Swapped()
}

// EmptiesCount returns the number of empty squares remaining.
func (b *Board) EmptiesCount() int {
	return b.pos.Empties()
}

// MoveCount returns the number of moves played so far.
func (b *Board) MoveCount() int {
	return b.pos.MoveCount()
}
