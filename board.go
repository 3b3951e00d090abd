package connect4

import (
	"fmt"

	"github.com/samber/lo"
)

type (
	// Board tracks the tokens dropped into each column, bottom to top. The
	// zero value is an empty board
	Board struct {
		columns [NumColumns][]Token
	}

	// BoardState maps every column to its tokens, bottom to top
	BoardState map[Column][]Token

	cell struct {
		col int
		row int
	}
)

const (
	NumColumns = 7
	NumRows    = 6
	WinLength  = 4
)

// Every diagonal long enough to hold a winning line. Forward diagonals rise
// to the right, backward diagonals fall to the right
var (
	forwardDiagonals = [][]cell{
		diagonal(0, 2, 4, 1),
		diagonal(0, 1, 5, 1),
		diagonal(0, 0, 6, 1),
		diagonal(1, 0, 6, 1),
		diagonal(2, 0, 5, 1),
		diagonal(3, 0, 4, 1),
	}

	backwardDiagonals = [][]cell{
		diagonal(0, 3, 4, -1),
		diagonal(0, 4, 5, -1),
		diagonal(0, 5, 6, -1),
		diagonal(1, 5, 6, -1),
		diagonal(2, 5, 5, -1),
		diagonal(3, 5, 4, -1),
	}
)

// NewBoard returns an empty Board
func NewBoard() *Board {
	return &Board{}
}

// NewBoardFromState builds a Board from an existing BoardState. Columns that
// are missing from the state are empty
func NewBoardFromState(state BoardState) (*Board, error) {
	b := NewBoard()
	for col, tokens := range state {
		if !col.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, string(col))
		}
		for _, tok := range tokens {
			if !tok.Valid() {
				return nil, fmt.Errorf("%w: %q", ErrInvalidToken, string(tok))
			}
			if err := b.AddMove(col, tok); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// AddMove drops a token into the column
func (b *Board) AddMove(col Column, tok Token) error {
	idx := col.Index()
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, string(col))
	}
	if len(b.columns[idx]) >= NumRows {
		return fmt.Errorf("%w: %s", ErrColumnFull, col)
	}
	b.columns[idx] = append(b.columns[idx], tok)
	return nil
}

// HasCapacity reports whether the column can receive another token
func (b *Board) HasCapacity(col Column) bool {
	idx := col.Index()
	return idx >= 0 && len(b.columns[idx]) < NumRows
}

// Height returns the number of tokens in the column
func (b *Board) Height(col Column) int {
	idx := col.Index()
	if idx < 0 {
		return 0
	}
	return len(b.columns[idx])
}

// IsFull reports whether no column can receive another token
func (b *Board) IsFull() bool {
	return lo.NoneBy(Columns, b.HasCapacity)
}

// Result returns the outcome if the board is in a terminal state. A four in
// a row wins; a full board without one is a tie
func (b *Board) Result() (GameResult, bool) {
	if winner, ok := b.Winner(); ok {
		return resultFor(winner), true
	}
	if b.IsFull() {
		return Tied, true
	}
	return "", false
}

// Winner returns the token that has four in a row, if any. Columns are
// scanned first, then rows, then forward and backward diagonals
func (b *Board) Winner() (Token, bool) {
	grid := b.padded()
	for _, seq := range grid {
		if tok, ok := winningToken(seq[:]); ok {
			return tok, true
		}
	}
	for _, seq := range transpose(grid) {
		if tok, ok := winningToken(seq[:]); ok {
			return tok, true
		}
	}
	for _, diags := range [][][]cell{forwardDiagonals, backwardDiagonals} {
		for _, diag := range diags {
			seq := lo.Map(diag, func(c cell, _ int) Token {
				return grid[c.col][c.row]
			})
			if tok, ok := winningToken(seq); ok {
				return tok, true
			}
		}
	}
	return NoToken, false
}

// State returns a deep copy of the board, keyed by column
func (b *Board) State() BoardState {
	res := make(BoardState, NumColumns)
	for i, col := range Columns {
		res[col] = append([]Token{}, b.columns[i]...)
	}
	return res
}

// Clone returns an independent copy of the board
func (b *Board) Clone() *Board {
	res := &Board{}
	for i, tokens := range b.columns {
		if len(tokens) > 0 {
			res.columns[i] = append(make([]Token, 0, NumRows), tokens...)
		}
	}
	return res
}

// padded returns every column filled up to NumRows with NoToken
func (b *Board) padded() [NumColumns][NumRows]Token {
	var grid [NumColumns][NumRows]Token
	for i, tokens := range b.columns {
		copy(grid[i][:], tokens)
	}
	return grid
}

func transpose(grid [NumColumns][NumRows]Token) [NumRows][NumColumns]Token {
	var rows [NumRows][NumColumns]Token
	for c := range NumColumns {
		for r := range NumRows {
			rows[r][c] = grid[c][r]
		}
	}
	return rows
}

// winningToken slides a window of WinLength over the sequence and returns
// the token of the first window whose cells are all equal and non-empty
func winningToken(seq []Token) (Token, bool) {
	for i := 0; i+WinLength <= len(seq); i++ {
		first := seq[i]
		if first == NoToken {
			continue
		}
		if lo.EveryBy(seq[i+1:i+WinLength], func(t Token) bool {
			return t == first
		}) {
			return first, true
		}
	}
	return NoToken, false
}

func diagonal(col, row, length, step int) []cell {
	res := make([]cell, length)
	for i := range length {
		res[i] = cell{col: col + i, row: row + i*step}
	}
	return res
}
