package game

import "errors"

var (
	// ErrInvalidMove is returned when a move is not legal for the current state.
	ErrInvalidMove = errors.New("invalid move")
	// ErrConfiguration is returned when a round is set up with unsupported values.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrGameOver is returned when a move is offered after the game has ended.
	ErrGameOver = errors.New("game finished")
	// ErrOutOfTurn is returned when a player moves while it is not their turn.
	ErrOutOfTurn = errors.New("not your turn")
	// ErrNoLegalMove is returned when an opponent is asked to move but cannot.
	ErrNoLegalMove = errors.New("no legal move")
)
