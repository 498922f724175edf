// internal/nim/strategy.go
//
// Computer opponent for subtraction-game rounds.
//
// With moves in {1,2,3}, a position whose remaining distance is a multiple
// of 4 is lost for the player to move. The strategic reply is looked up in
// optimalByMod4 by remaining mod 4. Index 0 (already lost) plays 3.
//
// Difficulty:
//   - hard:   win in one when possible, otherwise the table move.
//   - normal: win in one when possible, otherwise the table move with
//             probability normalOptimalRate, else a uniform legal move.
//   - easy:   uniform legal move.
//
// Chip rounds apply the table to the chip position itself and special-case
// positions 2, 3 and 4, where the outcome hinges on the human's move parity.

package nim

import (
	"github.com/robalobadob/mathgames/internal/game"
)

// normalOptimalRate is how often a normal-difficulty computer plays the
// strategic move instead of a random one.
const normalOptimalRate = 0.7

// optimalByMod4 is the strategic move indexed by distance mod 4.
var optimalByMod4 = [4]int{3, 1, 2, 3}

// OptimalMove returns the table move for a remaining distance.
func OptimalMove(remaining int) int {
	return optimalByMod4[((remaining%4)+4)%4]
}

// ComputerMove chooses the computer's move for r. It does not mutate r.
// A finished round, or one with no legal move, yields ErrNoLegalMove.
func ComputerMove(r *Round, src game.Source) (int, error) {
	legal := r.LegalMoves()
	if len(legal) == 0 {
		return 0, game.ErrNoLegalMove
	}
	if r.Mode == ModeChip {
		return chipMove(r, legal, src), nil
	}

	remaining := r.Remaining()
	switch r.Difficulty {
	case game.DifficultyEasy:
		return randomMove(legal, src), nil
	case game.DifficultyNormal:
		if remaining <= MaxMove {
			return remaining, nil
		}
		if src.Float64() < normalOptimalRate {
			return OptimalMove(remaining), nil
		}
		return randomMove(legal, src), nil
	default:
		if remaining <= MaxMove {
			return remaining, nil
		}
		return OptimalMove(remaining), nil
	}
}

// chipMove picks a move for a chip round.
func chipMove(r *Round, legal []int, src game.Source) int {
	switch r.Difficulty {
	case game.DifficultyEasy:
		return randomMove(legal, src)
	case game.DifficultyNormal:
		if src.Float64() < normalOptimalRate {
			return chipStrategicMove(r.Current, r.HumanMoves)
		}
		return randomMove(legal, src)
	default:
		return chipStrategicMove(r.Current, r.HumanMoves)
	}
}

// chipStrategicMove is the hard-difficulty chip reply. The human wins with an
// even move count, so near the end the computer either finishes the game
// while the human's count is odd or leaves position 2, which forces the
// human to make one more (odd-making) move.
func chipStrategicMove(position, humanMoves int) int {
	humanOdd := humanMoves%2 == 1
	switch position {
	case 2:
		return 1
	case 3:
		if humanOdd {
			return 2
		}
		return 1
	case 4:
		if humanOdd {
			return 3
		}
		return 2
	default:
		return OptimalMove(position)
	}
}

func randomMove(legal []int, src game.Source) int {
	return legal[src.IntN(len(legal))]
}
