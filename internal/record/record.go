// Package record implements the file-format collaborators spec section 1
// excludes from the core ("problem-file readers", "game-record
// serialization") but section 6.2 still specifies the exact syntax for:
// FFO problem positions and move-record strings. It is grounded on the
// teacher's internal/board/fen.go, which parses an external serialized
// position format (FEN) the same way: field-by-field validation returning
// a wrapped error, no partial-position side effects on failure.
package record

import (
	"fmt"

	"github.com/hailam/reversicore/internal/bitboard"
)

// ErrParseFFO reports a malformed FFO problem line.
type ErrParseFFO struct {
	Line string
	Why  string
}

func (e *ErrParseFFO) Error() string {
	return fmt.Sprintf("record: parse FFO line %q: %s", e.Line, e.Why)
}

// ErrParseRecord reports a malformed move-record string (spec section 6.2:
// "non-ASCII bytes, odd length, or unparseable square").
type ErrParseRecord struct {
	Record string
	Why    string
}

func (e *ErrParseRecord) Error() string {
	return fmt.Sprintf("record: parse record %q: %s", e.Record, e.Why)
}

// ParseFFO parses one FFO problem line: 64 board characters (X/B = black,
// O/W = white, -/_ = empty), whitespace, then the side-to-move character
// (X or O). The returned position always has the side to move as player,
// per spec section 6.2.
func ParseFFO(line string) (bitboard.Position, error) {
	fields := splitFields(line)
	if len(fields) < 2 {
		return bitboard.Position{}, &ErrParseFFO{Line: line, Why: "expected a 64-character board and a side-to-move field"}
	}
	board := fields[0]
	sideField := fields[1]

	if len(board) != 64 {
		return bitboard.Position{}, &ErrParseFFO{Line: line, Why: fmt.Sprintf("board has %d characters, want 64", len(board))}
	}

	var black, white uint64
	for i := 0; i < 64; i++ {
		bit := uint64(1) << uint(i)
		switch board[i] {
		case 'X', 'B':
			black |= bit
		case 'O', 'W':
			white |= bit
		case '-', '_':
			// empty
		default:
			return bitboard.Position{}, &ErrParseFFO{Line: line, Why: fmt.Sprintf("unrecognized board character %q at index %d", board[i], i)}
		}
	}

	if len(sideField) == 0 {
		return bitboard.Position{}, &ErrParseFFO{Line: line, Why: "missing side-to-move field"}
	}
	switch sideField[0] {
	case 'X':
		return bitboard.Position{Player: black, Opponent: white}, nil
	case 'O':
		return bitboard.Position{Player: white, Opponent: black}, nil
	default:
		return bitboard.Position{}, &ErrParseFFO{Line: line, Why: fmt.Sprintf("side-to-move must be X or O, got %q", sideField)}
	}
}

func splitFields(s string) []string {
	var fields []string
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' || s[i] == '\r' || s[i] == '\n' {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}

// Move is one ply of a replayed record: the square played, or PASS when
// the side to move had no legal move.
type Move struct {
	Square bitboard.Square
}

// Replay parses and replays a move-record string (spec section 6.2): a
// sequence of 2-character algebraic square tokens in played order, ASCII,
// no separators, with pass moves omitted from the string but inserted
// automatically whenever the side to move has no legal reply. It returns
// the final position and the full move list actually played, including
// the passes the record itself omitted.
func Replay(rec string) (final bitboard.Position, moves []Move, err error) {
	for i := 0; i < len(rec); i++ {
		if rec[i] > 0x7f {
			return bitboard.Position{}, nil, &ErrParseRecord{Record: rec, Why: "contains a non-ASCII byte"}
		}
	}
	if len(rec)%2 != 0 {
		return bitboard.Position{}, nil, &ErrParseRecord{Record: rec, Why: "odd length"}
	}

	pos := bitboard.NewGame()
	for i := 0; i+2 <= len(rec); i += 2 {
		if pos.Moves() == 0 {
			if pos.OpponentMoves() == 0 {
				return bitboard.Position{}, nil, &ErrParseRecord{Record: rec, Why: "more moves follow a position where neither side can move"}
			}
			pos = pos.Swapped()
			moves = append(moves, Move{Square: bitboard.PASS})
		}

		sq, perr := bitboard.ParseSquare(rec[i : i+2])
		if perr != nil {
			return bitboard.Position{}, nil, &ErrParseRecord{Record: rec, Why: fmt.Sprintf("token %q at offset %d: %v", rec[i:i+2], i, perr)}
		}

		bit := uint64(1) << sq
		if bit&pos.Moves() == 0 {
			return bitboard.Position{}, nil, &ErrParseRecord{Record: rec, Why: fmt.Sprintf("%s is not a legal move at ply %d", sq, len(moves)+1)}
		}
		pos = pos.Put(bit)
		moves = append(moves, Move{Square: sq})
	}

	for pos.Moves() == 0 && pos.OpponentMoves() != 0 {
		pos = pos.Swapped()
		moves = append(moves, Move{Square: bitboard.PASS})
	}

	return pos, moves, nil
}
