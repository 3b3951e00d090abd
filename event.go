package connect4

import (
	"encoding/json"
	"time"
)

type (
	// EventType names a domain event on the wire
	EventType string

	// Event is the persisted envelope of a domain event. Data holds the
	// JSON body of the variant named by Type
	Event struct {
		Timestamp time.Time       `json:"timestamp"`
		Sequence  int64           `json:"sequence"`
		Type      EventType       `json:"type"`
		Stream    string          `json:"stream"`
		Data      json.RawMessage `json:"data"`
	}

	// DomainEvent is the closed set of things that can happen to a Game:
	// GameStarted, MoveMade, and GameEnded
	DomainEvent interface {
		Type() EventType
		AggregateID() string
		domainEvent()
	}

	// GameStarted records the two players of a new game
	GameStarted struct {
		GameID    string `json:"game_id"`
		PlayerOne string `json:"player_one"`
		PlayerTwo string `json:"player_two"`
	}

	// MoveMade records a token dropped by a player
	MoveMade struct {
		GameID   string `json:"game_id"`
		PlayerID string `json:"player_id"`
		Column   Column `json:"column"`
	}

	// GameEnded records the final result of a game
	GameEnded struct {
		GameID string     `json:"game_id"`
		Result GameResult `json:"result"`
	}
)

const (
	GameStartedType EventType = "GameStarted"
	MoveMadeType    EventType = "MoveMade"
	GameEndedType   EventType = "GameEnded"
)

func (GameStarted) Type() EventType { return GameStartedType }
func (MoveMade) Type() EventType    { return MoveMadeType }
func (GameEnded) Type() EventType   { return GameEndedType }

func (e GameStarted) AggregateID() string { return e.GameID }
func (e MoveMade) AggregateID() string    { return e.GameID }
func (e GameEnded) AggregateID() string   { return e.GameID }

func (GameStarted) domainEvent() {}
func (MoveMade) domainEvent()    {}
func (GameEnded) domainEvent()   {}
