package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kode4food/connect4"
)

// session drives one interactive game over a pair of text streams
type session struct {
	app *connect4.App
	in  *bufio.Scanner
	out io.Writer
}

func newSession(app *connect4.App, in io.Reader, out io.Writer) *session {
	return &session{
		app: app,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// newGame asks for the two player names until the game can be created
func (s *session) newGame(ctx context.Context) (string, error) {
	s.println("Please enter the name of the players.")
	for {
		playerOne, err := s.prompt("Player 1: ")
		if err != nil {
			return "", err
		}
		playerTwo, err := s.prompt("Player 2: ")
		if err != nil {
			return "", err
		}

		id, err := s.app.CreateGame(ctx, playerOne, playerTwo)
		if errors.Is(err, connect4.ErrInvalidPlayers) {
			s.println("Players need two different, non-empty names.")
			continue
		}
		if err != nil {
			return "", err
		}
		s.printf("Started a new game between %s and %s.\n", playerOne, playerTwo)
		s.printf("Game id: %s\n", id)
		return id, nil
	}
}

// play takes turns until the game is finished
func (s *session) play(ctx context.Context, gameID string) error {
	state, err := s.app.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	for !state.IsFinished {
		s.println(renderBoard(state.Board))
		s.printf("Next player: %s\n", state.NextPlayer)

		col, err := s.readColumn()
		if err != nil {
			return err
		}

		next, err := s.app.MakeMove(ctx, gameID, connect4.Move{
			Player: state.NextPlayer,
			Column: col,
		})
		if errors.Is(err, connect4.ErrInvalidMove) {
			s.printf("%v. Please try again.\n", err)
			// another writer may have moved in the meantime
			if state, err = s.app.GetGame(ctx, gameID); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		state = next
	}

	s.println(renderBoard(state.Board))
	s.println("The game has finished!")
	switch state.Result {
	case connect4.PlayerOneWon:
		s.printf("%s has won!\n", state.PlayerOne)
	case connect4.PlayerTwoWon:
		s.printf("%s has won!\n", state.PlayerTwo)
	case connect4.Tied:
		s.println("It's a tie!")
	}
	s.println("Thank you for playing Connect Four!")
	return nil
}

func (s *session) readColumn() (connect4.Column, error) {
	for {
		line, err := s.prompt("Select column (A-G): ")
		if err != nil {
			return "", err
		}
		col, err := connect4.ParseColumn(line)
		if err == nil {
			return col, nil
		}
		s.println("Invalid column. Please try again.")
	}
}

// prompt returns the next trimmed input line, or io.EOF when the input is
// exhausted
func (s *session) prompt(label string) (string, error) {
	_, _ = io.WriteString(s.out, label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *session) println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *session) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}
