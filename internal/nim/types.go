// internal/nim/types.go
//
// Types for the subtraction-game family: two players alternately move a
// shared counter by 1, 2 or 3 until it reaches its boundary.
//
// Modes:
//   - sum:       counter starts at 0 and climbs to Target; last mover wins.
//   - countdown: counter starts at Target and falls to 0; last mover wins.
//   - chip:      chip starts at an odd N and falls to 1; the human wins when
//                their own move count is even, whoever moved last.

package nim

import (
	"fmt"
	"strings"

	"github.com/robalobadob/mathgames/internal/game"
)

// Mode selects the rule set of a round.
type Mode string

const (
	ModeSumToTarget Mode = "sum"
	ModeCountdown   Mode = "countdown"
	ModeChip        Mode = "chip"
)

// ParseMode accepts "sum", "countdown" or "chip" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSumToTarget, ModeCountdown, ModeChip:
		return m, nil
	default:
		return "", fmt.Errorf("mode %q: %w", s, game.ErrConfiguration)
	}
}

const (
	// MinMove and MaxMove bound every move magnitude.
	MinMove = 1
	MaxMove = 3

	// DefaultChipStart is the chip position used when none is supplied.
	DefaultChipStart = 15
)

// targets maps difficulty to the sum/countdown target.
var targets = map[game.Difficulty]int{
	game.DifficultyEasy:   15,
	game.DifficultyNormal: 21,
	game.DifficultyHard:   30,
}

// TargetFor returns the sum/countdown target for a difficulty.
func TargetFor(d game.Difficulty) (int, error) {
	t, ok := targets[d]
	if !ok {
		return 0, fmt.Errorf("difficulty %q: %w", d, game.ErrConfiguration)
	}
	return t, nil
}

// Round holds the state of a single subtraction-game round.
type Round struct {
	ID            string          // Unique round identifier (uuid).
	Mode          Mode            // Rule set.
	Difficulty    game.Difficulty // Opponent strength.
	Target        int             // Sum/countdown target, or chip start N.
	Current       int             // Running sum, remaining countdown, or chip position.
	HumanMoves    int             // Moves applied by the human.
	ComputerMoves int             // Moves applied by the computer.
	LastMover     game.Player     // Who made the most recent move.
	Over          bool            // True once a terminal position is reached.
}
