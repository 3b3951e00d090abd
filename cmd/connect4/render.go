package main

import (
	"strings"

	"github.com/gookit/color"

	"github.com/kode4food/connect4"
)

const (
	tokenGlyph = "●"

	columnHeader = "  A   B   C   D   E   F   G"
	topBorder    = "╔═══╦═══╦═══╦═══╦═══╦═══╦═══╗"
	rowSeparator = "╠═══╬═══╬═══╬═══╬═══╬═══╬═══╣"
	bottomBorder = "╚═══╩═══╩═══╩═══╩═══╩═══╩═══╝"
	cellBorder   = "║"
)

// renderBoard draws the board as rows of box-drawing cells, top row first,
// with tokens stacked from the bottom of each column
func renderBoard(state connect4.BoardState) string {
	var grid [connect4.NumRows][connect4.NumColumns]string
	for r := range grid {
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}
	for col, tokens := range state {
		idx := col.Index()
		if idx < 0 {
			continue
		}
		for row, tok := range tokens {
			if row >= connect4.NumRows {
				break
			}
			grid[connect4.NumRows-1-row][idx] = renderToken(tok)
		}
	}

	sep := color.FgBlue.Render(cellBorder)
	lines := []string{
		color.FgLightWhite.Render(columnHeader),
		color.FgBlue.Render(topBorder),
	}
	for r, cells := range grid {
		if r > 0 {
			lines = append(lines, color.FgBlue.Render(rowSeparator))
		}
		lines = append(lines,
			sep+" "+strings.Join(cells[:], " "+sep+" ")+" "+sep,
		)
	}
	lines = append(lines, color.FgBlue.Render(bottomBorder))
	return strings.Join(lines, "\n")
}

func renderToken(tok connect4.Token) string {
	if tok == connect4.Red {
		return color.FgLightRed.Render(tokenGlyph)
	}
	return color.FgLightYellow.Render(tokenGlyph)
}
