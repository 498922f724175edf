// internal/game/types.go
//
// Shared vocabulary for every game engine in this module.
// Defines:
//   - Player: who made a move, whose turn it is, or who won.
//   - Difficulty: opponent strength tier chosen at round start.
//   - Phase: coarse lifecycle of a round (not started → in progress → over).
//   - Source: the randomness the opponents draw from.

package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Player identifies a participant or an outcome.
// The zero value means "nobody" (e.g. no winner yet).
type Player string

const (
	PlayerNone     Player = ""
	PlayerHuman    Player = "human"
	PlayerComputer Player = "computer"
	PlayerBot      Player = "bot"
	PlayerTie      Player = "tie"
)

// Difficulty governs how often the computer plays its strategic move.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts "easy", "normal" or "hard" (case-insensitive).
// An empty string selects normal, matching the game's default screen.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return d, nil
	case "":
		return DifficultyNormal, nil
	default:
		return "", fmt.Errorf("difficulty %q: %w", s, ErrConfiguration)
	}
}

// Phase is the lifecycle of a round.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseOver       Phase = "over"
)

// Source is the randomness consumed by opponents.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// DefaultSource draws from the math/rand/v2 global generator,
// which is safe for concurrent use.
var DefaultSource Source = globalSource{}

type globalSource struct{}

func (globalSource) IntN(n int) int   { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }
