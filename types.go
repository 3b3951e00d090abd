package connect4

import (
	"fmt"
	"strings"
)

type (
	// Token is the disc a player drops into the board
	Token string

	// Column identifies one of the seven board columns, A through G
	Column string

	// GameResult is the final outcome of a game
	GameResult string

	// Status is the lifecycle stage of a Game
	Status string

	// Move is a request by a player to drop a token into a column
	Move struct {
		Player string `json:"player"`
		Column Column `json:"column"`
	}
)

const (
	Red    Token = "RED"
	Yellow Token = "YELLOW"

	// NoToken marks an empty cell during evaluation
	NoToken Token = ""
)

const (
	ColumnA Column = "A"
	ColumnB Column = "B"
	ColumnC Column = "C"
	ColumnD Column = "D"
	ColumnE Column = "E"
	ColumnF Column = "F"
	ColumnG Column = "G"
)

const (
	PlayerOneWon GameResult = "PLAYER_ONE_WON"
	Tied         GameResult = "TIED"
	PlayerTwoWon GameResult = "PLAYER_TWO_WON"
)

const (
	Unstarted  Status = "UNSTARTED"
	InProgress Status = "IN_PROGRESS"
	Finished   Status = "FINISHED"
)

const columnCodes = "ABCDEFG"

// Columns lists every column from left to right
var Columns = []Column{
	ColumnA, ColumnB, ColumnC, ColumnD, ColumnE, ColumnF, ColumnG,
}

// ParseColumn converts a single letter (case-insensitive) into a Column
func ParseColumn(s string) (Column, error) {
	c := Column(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidColumn, s)
	}
	return c, nil
}

// Index returns the zero-based position of the column, or -1 if the column
// is not one of A through G
func (c Column) Index() int {
	if len(c) != 1 {
		return -1
	}
	return strings.IndexByte(columnCodes, c[0])
}

// Valid reports whether the column is one of A through G
func (c Column) Valid() bool {
	return c.Index() >= 0
}

func (c Column) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, string(c))
	}
	return []byte(c), nil
}

func (c *Column) UnmarshalText(b []byte) error {
	col := Column(b)
	if !col.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, string(b))
	}
	*c = col
	return nil
}

// Valid reports whether the token is Red or Yellow
func (t Token) Valid() bool {
	return t == Red || t == Yellow
}

func (t *Token) UnmarshalText(b []byte) error {
	tok := Token(b)
	if !tok.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidToken, string(b))
	}
	*t = tok
	return nil
}

// Valid reports whether the result is one of the three known outcomes
func (r GameResult) Valid() bool {
	switch r {
	case PlayerOneWon, Tied, PlayerTwoWon:
		return true
	default:
		return false
	}
}

func (r *GameResult) UnmarshalText(b []byte) error {
	res := GameResult(b)
	if !res.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidResult, string(b))
	}
	*r = res
	return nil
}

// resultFor maps a winning token to the player that owns it. Red always
// belongs to player one
func resultFor(t Token) GameResult {
	if t == Red {
		return PlayerOneWon
	}
	return PlayerTwoWon
}
