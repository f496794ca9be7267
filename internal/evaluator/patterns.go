package evaluator

import "github.com/hailam/reversicore/internal/bitboard"

// Pattern layout, from the original engine's eval.rs (reproduced as a
// comment there as an ASCII diagram per pattern; square letters below
// follow the same A1..H8 numbering as internal/bitboard). Pattern 1 is
// the edge row without its C-squares plus the middle four squares of the
// second row, 2 is the full edge row plus the two X-squares, 3 is both
// corners plus the full second row, 4/5 are the third and fourth rows,
// 6 is the 3x3 corner block, 7 is the corner
// triangle, 8 is the edge-plus-diagonal shape, 9/10/11 are the three
// long diagonals of length 6, 7 and 8.
const (
	maxPatternSquares = 10
	numRotations      = 4
	NumPatterns       = 11
)

// P3 holds powers of 3, 3^0..3^10, used to size each pattern's feature
// table (one ternary digit per square: empty/player/opponent).
var P3 = [11]int{1, 3, 9, 27, 81, 243, 729, 2187, 6561, 19683, 59049}

// patternLayout names the up-to-10 squares of one pattern's 4 rotated
// images, using "--" for an unused slot in shorter patterns.
type patternLayout struct {
	numSquares int
	rotations  [numRotations][maxPatternSquares]string
}

var patternLayouts = [NumPatterns]patternLayout{
	{ // 1: edge row without B1/G1, plus C2..F2
		numSquares: 10,
		rotations: [4][10]string{
			{"A1", "C1", "D1", "E1", "F1", "H1", "C2", "D2", "E2", "F2"},
			{"A8", "A6", "A5", "A4", "A3", "A1", "B6", "B5", "B4", "B3"},
			{"H8", "F8", "E8", "D8", "C8", "A8", "F7", "E7", "D7", "C7"},
			{"H1", "H3", "H4", "H5", "H6", "H8", "G3", "G4", "G5", "G6"},
		},
	},
	{ // 2: full edge row plus the two X-squares
		numSquares: 10,
		rotations: [4][10]string{
			{"A1", "B1", "C1", "D1", "E1", "F1", "G1", "H1", "B2", "G2"},
			{"A8", "A7", "A6", "A5", "A4", "A3", "A2", "A1", "B7", "B2"},
			{"H8", "G8", "F8", "E8", "D8", "C8", "B8", "A8", "G7", "B7"},
			{"H1", "H2", "H3", "H4", "H5", "H6", "H7", "H8", "G2", "G7"},
		},
	},
	{ // 3: both corners plus the second row
		numSquares: 10,
		rotations: [4][10]string{
			{"A1", "H1", "A2", "B2", "C2", "D2", "E2", "F2", "G2", "H2"},
			{"A8", "A1", "B8", "B7", "B6", "B5", "B4", "B3", "B2", "B1"},
			{"H8", "A8", "H7", "G7", "F7", "E7", "D7", "C7", "B7", "A7"},
			{"H1", "H8", "G1", "G2", "G3", "G4", "G5", "G6", "G7", "G8"},
		},
	},
	{ // 4: third row/column
		numSquares: 8,
		rotations: [4][10]string{
			{"A3", "B3", "C3", "D3", "E3", "F3", "G3", "H3", "", ""},
			{"C8", "C7", "C6", "C5", "C4", "C3", "C2", "C1", "", ""},
			{"H6", "G6", "F6", "E6", "D6", "C6", "B6", "A6", "", ""},
			{"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "", ""},
		},
	},
	{ // 5: middle row/column
		numSquares: 8,
		rotations: [4][10]string{
			{"A4", "B4", "C4", "D4", "E4", "F4", "G4", "H4", "", ""},
			{"D8", "D7", "D6", "D5", "D4", "D3", "D2", "D1", "", ""},
			{"H5", "G5", "F5", "E5", "D5", "C5", "B5", "A5", "", ""},
			{"E1", "E2", "E3", "E4", "E5", "E6", "E7", "E8", "", ""},
		},
	},
	{ // 6: 3x3 corner block
		numSquares: 9,
		rotations: [4][10]string{
			{"A1", "B1", "C1", "A2", "B2", "C2", "A3", "B3", "C3", ""},
			{"A8", "A7", "A6", "B8", "B7", "B6", "C8", "C7", "C6", ""},
			{"H8", "G8", "F8", "H7", "G7", "F7", "H6", "G6", "F6", ""},
			{"H1", "H2", "H3", "G1", "G2", "G3", "F1", "F2", "F3", ""},
		},
	},
	{ // 7: corner staircase
		numSquares: 10,
		rotations: [4][10]string{
			{"A1", "B1", "C1", "D1", "A2", "B2", "C2", "A3", "B3", "A4"},
			{"A8", "A7", "A6", "A5", "B8", "B7", "B6", "C8", "C7", "D8"},
			{"H8", "G8", "F8", "E8", "H7", "G7", "F7", "H6", "G6", "H5"},
			{"H1", "H2", "H3", "H4", "G1", "G2", "G3", "F1", "F2", "E1"},
		},
	},
	{ // 8: corner-plus-diagonal shape
		numSquares: 9,
		rotations: [4][10]string{
			{"A1", "B1", "E1", "A2", "B2", "D2", "C3", "B4", "A5", ""},
			{"A8", "A7", "A4", "B8", "B7", "B5", "C6", "D7", "E8", ""},
			{"H8", "G8", "D8", "H7", "G7", "E7", "F6", "G5", "H4", ""},
			{"H1", "H2", "H5", "G1", "G2", "G4", "F3", "E2", "D1", ""},
		},
	},
	{ // 9: short diagonal (length 6)
		numSquares: 6,
		rotations: [4][10]string{
			{"F1", "E2", "D3", "C4", "B5", "A6", "", "", "", ""},
			{"A3", "B4", "C5", "D6", "E7", "F8", "", "", "", ""},
			{"C8", "D7", "E6", "F5", "G4", "H3", "", "", "", ""},
			{"H6", "G5", "F4", "E3", "D2", "C1", "", "", "", ""},
		},
	},
	{ // 10: medium diagonal (length 7)
		numSquares: 7,
		rotations: [4][10]string{
			{"G1", "F2", "E3", "D4", "C5", "B6", "A7", "", "", ""},
			{"A2", "B3", "C4", "D5", "E6", "F7", "G8", "", "", ""},
			{"B8", "C7", "D6", "E5", "F4", "G3", "H2", "", "", ""},
			{"H7", "G6", "F5", "E4", "D3", "C2", "B1", "", "", ""},
		},
	},
	{ // 11: main diagonal (length 8)
		numSquares: 8,
		rotations: [4][10]string{
			{"H1", "G2", "F3", "E4", "D5", "C6", "B7", "A8", "", ""},
			{"A1", "B2", "C3", "D4", "E5", "F6", "G7", "H8", "", ""},
			{"A8", "B7", "C6", "D5", "E4", "F3", "G2", "H1", "", ""},
			{"H8", "G7", "F6", "E5", "D4", "C3", "B2", "A1", "", ""},
		},
	},
}

// featureCoord[pattern][rotation][i] is the bit index of the i-th square
// of that pattern's rotated image, or -1 for an unused slot.
var featureCoord [NumPatterns][numRotations][maxPatternSquares]int

// numFeaturePositions[pattern] is 3^numSquares, the size of that
// pattern's feature-weight table.
var numFeaturePositions [NumPatterns]int

func init() {
	for pat, layout := range patternLayouts {
		numFeaturePositions[pat] = P3[layout.numSquares]
		for rot := 0; rot < numRotations; rot++ {
			for i := 0; i < maxPatternSquares; i++ {
				name := layout.rotations[rot][i]
				if name == "" {
					featureCoord[pat][rot][i] = -1
					continue
				}
				sq, err := bitboard.ParseSquare(name)
				if err != nil {
					panic("evaluator: bad pattern square " + name)
				}
				featureCoord[pat][rot][i] = int(sq)
			}
		}
	}
}
