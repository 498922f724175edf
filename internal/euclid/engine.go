// internal/euclid/engine.go
//
// Move validation, turn order, terminal detection and the bot for Euclid's
// Game. The human moves first and turns alternate; the bot picks uniformly
// among all legal pairs and makes no attempt at optimal play.

package euclid

import (
	"fmt"

	"github.com/robalobadob/mathgames/internal/game"
)

// IsLegal reports whether a and b are both on the board, differ, and their
// difference is not already present.
func (b *Board) IsLegal(x, y int) bool {
	if x == y || !b.Contains(x) || !b.Contains(y) {
		return false
	}
	return !b.Contains(NewPair(x, y).Difference())
}

// LegalPairs lists every legal pair, ordered by A then B.
func (b *Board) LegalPairs() []Pair {
	nums := b.Numbers()
	var out []Pair
	for i := 0; i < len(nums); i++ {
		for j := i + 1; j < len(nums); j++ {
			if !b.Contains(nums[j] - nums[i]) {
				out = append(out, Pair{A: nums[i], B: nums[j]})
			}
		}
	}
	return out
}

// IsTerminal reports whether no legal pair remains.
func (b *Board) IsTerminal() bool {
	nums := b.Numbers()
	for i := 0; i < len(nums); i++ {
		for j := i + 1; j < len(nums); j++ {
			if !b.Contains(nums[j] - nums[i]) {
				return false
			}
		}
	}
	return true
}

// Turn reports who moves next, or PlayerNone once the game is over.
func (b *Board) Turn() game.Player {
	if b.Over {
		return game.PlayerNone
	}
	if b.PlayerMoves == b.BotMoves {
		return game.PlayerHuman
	}
	return game.PlayerBot
}

// Phase reports the coarse lifecycle stage.
func (b *Board) Phase() game.Phase {
	switch {
	case b.Over:
		return game.PhaseOver
	case b.PlayerMoves+b.BotMoves == 0:
		return game.PhaseNotStarted
	default:
		return game.PhaseInProgress
	}
}

// Apply validates and applies a move by actor, returning the new number.
func (b *Board) Apply(x, y int, actor game.Player) (int, error) {
	if actor != game.PlayerHuman && actor != game.PlayerBot {
		return 0, fmt.Errorf("actor %q: %w", actor, game.ErrInvalidMove)
	}
	if b.Over {
		return 0, game.ErrGameOver
	}
	if b.Turn() != actor {
		return 0, game.ErrOutOfTurn
	}
	if !b.IsLegal(x, y) {
		return 0, fmt.Errorf("pair %d,%d: %w", x, y, game.ErrInvalidMove)
	}

	d := NewPair(x, y).Difference()
	b.numbers[d] = struct{}{}
	if actor == game.PlayerHuman {
		b.PlayerMoves++
	} else {
		b.BotMoves++
	}
	b.Over = b.IsTerminal()
	return d, nil
}

// BotMove picks a uniformly random legal pair. ok is false when none exists.
func (b *Board) BotMove(src game.Source) (p Pair, ok bool) {
	pairs := b.LegalPairs()
	if len(pairs) == 0 {
		return Pair{}, false
	}
	return pairs[src.IntN(len(pairs))], true
}

// ApplyBotMove chooses and applies the bot's move.
func (b *Board) ApplyBotMove(src game.Source) (Pair, error) {
	if b.Over {
		return Pair{}, game.ErrGameOver
	}
	if b.Turn() != game.PlayerBot {
		return Pair{}, game.ErrOutOfTurn
	}
	p, ok := b.BotMove(src)
	if !ok {
		return Pair{}, game.ErrNoLegalMove
	}
	if _, err := b.Apply(p.A, p.B, game.PlayerBot); err != nil {
		return Pair{}, err
	}
	return p, nil
}

// PlayTurn applies the human move and, unless that ended the game, the bot's
// reply. botPair is nil when the bot did not move.
func (b *Board) PlayTurn(x, y int, src game.Source) (d int, botPair *Pair, err error) {
	d, err = b.Apply(x, y, game.PlayerHuman)
	if err != nil {
		return 0, nil, err
	}
	if b.Over {
		return d, nil, nil
	}
	p, err := b.ApplyBotMove(src)
	if err != nil {
		return d, nil, err
	}
	return d, &p, nil
}

// Winner is the side with strictly more moves, a tie on equal counts, or
// PlayerNone while the game is running.
func (b *Board) Winner() game.Player {
	switch {
	case !b.Over:
		return game.PlayerNone
	case b.PlayerMoves > b.BotMoves:
		return game.PlayerHuman
	case b.BotMoves > b.PlayerMoves:
		return game.PlayerBot
	default:
		return game.PlayerTie
	}
}
