// internal/nim/engine.go
//
// Rule engine for a subtraction-game round.
// Responsibilities:
//   - Create rounds from (mode, difficulty) with the fixed target table.
//   - Enumerate legal moves and validate/apply human and computer moves.
//   - Enforce strict alternation (the human always moves first).
//   - Detect the terminal position and name the winner.
//
// Validation always happens before mutation, so a rejected move leaves the
// round untouched.

package nim

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/robalobadob/mathgames/internal/game"
)

// Option customises round construction.
type Option func(*options)

type options struct {
	chipStart int
}

// WithChipStart sets the chip position for chip rounds.
// Even values are forced odd by adding one; values below 3 are rejected.
func WithChipStart(n int) Option {
	return func(o *options) { o.chipStart = n }
}

// New starts a round. Sum and countdown rounds take their target from the
// difficulty table; chip rounds start at DefaultChipStart unless overridden.
func New(mode Mode, difficulty game.Difficulty, opts ...Option) (*Round, error) {
	o := options{chipStart: DefaultChipStart}
	for _, opt := range opts {
		opt(&o)
	}

	target, err := TargetFor(difficulty)
	if err != nil {
		return nil, err
	}

	r := &Round{
		ID:         uuid.NewString(),
		Mode:       mode,
		Difficulty: difficulty,
	}
	switch mode {
	case ModeSumToTarget:
		r.Target, r.Current = target, 0
	case ModeCountdown:
		r.Target, r.Current = target, target
	case ModeChip:
		n := o.chipStart
		if n < 3 {
			return nil, fmt.Errorf("chip start %d: %w", n, game.ErrConfiguration)
		}
		if n%2 == 0 {
			n++
		}
		r.Target, r.Current = n, n
	default:
		return nil, fmt.Errorf("mode %q: %w", mode, game.ErrConfiguration)
	}
	return r, nil
}

// LegalMoves returns the move magnitudes that keep the counter in bounds,
// in ascending order. It is empty once the round is over.
func (r *Round) LegalMoves() []int {
	if r.Over {
		return nil
	}
	out := make([]int, 0, MaxMove)
	for m := MinMove; m <= MaxMove; m++ {
		if r.inBounds(r.next(m)) {
			out = append(out, m)
		}
	}
	return out
}

// IsLegal reports whether m may be played now.
func (r *Round) IsLegal(m int) bool {
	if r.Over || m < MinMove || m > MaxMove {
		return false
	}
	return r.inBounds(r.next(m))
}

// Turn reports who moves next, or PlayerNone once the round is over.
func (r *Round) Turn() game.Player {
	if r.Over {
		return game.PlayerNone
	}
	if r.HumanMoves == r.ComputerMoves {
		return game.PlayerHuman
	}
	return game.PlayerComputer
}

// Phase reports the coarse lifecycle stage.
func (r *Round) Phase() game.Phase {
	switch {
	case r.Over:
		return game.PhaseOver
	case r.HumanMoves+r.ComputerMoves == 0:
		return game.PhaseNotStarted
	default:
		return game.PhaseInProgress
	}
}

// Remaining is the distance from the counter to its terminal value.
func (r *Round) Remaining() int {
	switch r.Mode {
	case ModeSumToTarget:
		return r.Target - r.Current
	case ModeCountdown:
		return r.Current
	default:
		return r.Current - 1
	}
}

// ApplyHumanMove validates and applies the human's move.
func (r *Round) ApplyHumanMove(m int) error {
	return r.apply(m, game.PlayerHuman)
}

// ApplyComputerMove asks the opponent strategy for a move and applies it.
// Returns the magnitude played.
func (r *Round) ApplyComputerMove(src game.Source) (int, error) {
	if r.Over {
		return 0, game.ErrGameOver
	}
	if r.Turn() != game.PlayerComputer {
		return 0, game.ErrOutOfTurn
	}
	m, err := ComputerMove(r, src)
	if err != nil {
		return 0, err
	}
	if err := r.apply(m, game.PlayerComputer); err != nil {
		return 0, err
	}
	return m, nil
}

// PlayTurn applies the human move and, unless that ended the round, the
// computer's reply. The reply is 0 when the computer did not move.
func (r *Round) PlayTurn(m int, src game.Source) (int, error) {
	if err := r.ApplyHumanMove(m); err != nil {
		return 0, err
	}
	if r.Over {
		return 0, nil
	}
	return r.ApplyComputerMove(src)
}

// IsTerminal reports whether the counter has reached (or passed) its boundary.
func (r *Round) IsTerminal() bool {
	switch r.Mode {
	case ModeSumToTarget:
		return r.Current >= r.Target
	case ModeCountdown:
		return r.Current <= 0
	default:
		return r.Current <= 1
	}
}

// overshot reports a counter beyond its boundary. Legal moves never do this.
func (r *Round) overshot() bool {
	switch r.Mode {
	case ModeSumToTarget:
		return r.Current > r.Target
	case ModeCountdown:
		return r.Current < 0
	default:
		return r.Current < 1
	}
}

// Winner names the winner of a finished round, or PlayerNone while playing.
//
// Sum and countdown: the player with more moves made the last move and wins,
// unless that move overshot the boundary. Chip: the human wins exactly when
// their move count is even.
func (r *Round) Winner() game.Player {
	if !r.Over {
		return game.PlayerNone
	}
	if r.Mode == ModeChip {
		if r.HumanMoves%2 == 0 {
			return game.PlayerHuman
		}
		return game.PlayerComputer
	}
	humanLast := r.HumanMoves > r.ComputerMoves
	if r.overshot() {
		humanLast = !humanLast
	}
	if humanLast {
		return game.PlayerHuman
	}
	return game.PlayerComputer
}

// apply validates (turn, legality) and then mutates.
func (r *Round) apply(m int, p game.Player) error {
	if r.Over {
		return game.ErrGameOver
	}
	if r.Turn() != p {
		return game.ErrOutOfTurn
	}
	if !r.IsLegal(m) {
		return fmt.Errorf("move %d at %d (%s): %w", m, r.Current, r.Mode, game.ErrInvalidMove)
	}

	r.Current = r.next(m)
	if p == game.PlayerHuman {
		r.HumanMoves++
	} else {
		r.ComputerMoves++
	}
	r.LastMover = p
	if r.IsTerminal() {
		r.Over = true
	}
	return nil
}

// next returns the counter after playing m, in the mode's direction.
func (r *Round) next(m int) int {
	if r.Mode == ModeSumToTarget {
		return r.Current + m
	}
	return r.Current - m
}

// inBounds reports whether v is a reachable counter value.
func (r *Round) inBounds(v int) bool {
	switch r.Mode {
	case ModeSumToTarget:
		return v <= r.Target
	case ModeCountdown:
		return v >= 0
	default:
		return v >= 1
	}
}
