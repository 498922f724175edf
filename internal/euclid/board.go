// internal/euclid/board.go
//
// Euclid's Game: two numbers start on a shared board. On each turn a player
// picks two board numbers whose positive difference is not yet on the board
// and writes that difference down. The game ends when no such pair remains;
// the player with more moves wins.
//
// Every new number is smaller than the larger number of its pair, so the
// board can only fill in multiples of gcd(seeds) up to max(seeds) and the
// game always terminates.

package euclid

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/robalobadob/mathgames/internal/game"
)

// Range is an inclusive interval of seed values.
type Range struct {
	Min int
	Max int
}

// Default seed ranges: one low, one high, so the seeds are always distinct.
// NewBoard never hands out a pair where the high seed is double the low one
// (30/60 up to 50/100); those boards start with no legal move and are
// redrawn, so those pairs never occur.
var (
	DefaultLow  = Range{Min: 10, Max: 50}
	DefaultHigh = Range{Min: 60, Max: 100}
)

// Pair is an unordered pair of board numbers, stored with A < B.
type Pair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewPair orders a and b.
func NewPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Difference is the number the pair would create.
func (p Pair) Difference() int { return p.B - p.A }

// Board holds the state of one Euclid's Game.
type Board struct {
	ID          string // Unique board identifier (uuid).
	Seeds       [2]int // Starting numbers, low then high.
	PlayerMoves int    // Numbers created by the human.
	BotMoves    int    // Numbers created by the bot.
	Over        bool   // True once no legal pair remains.

	numbers map[int]struct{}
}

// maxSeedDraws bounds redraws in NewBoard.
const maxSeedDraws = 1000

// NewBoard draws one seed from each range. Draws that collide, or where one
// seed is double the other (a board with no opening move), are redrawn.
func NewBoard(low, high Range, src game.Source) (*Board, error) {
	if err := low.validate(); err != nil {
		return nil, err
	}
	if err := high.validate(); err != nil {
		return nil, err
	}
	for i := 0; i < maxSeedDraws; i++ {
		a, b := low.draw(src), high.draw(src)
		if Playable(a, b) {
			return NewBoardFromSeeds(a, b)
		}
	}
	return nil, fmt.Errorf("seed ranges %v and %v yield no playable seeds: %w", low, high, game.ErrConfiguration)
}

// Playable reports whether seeds a and b leave the first player a move.
func Playable(a, b int) bool {
	return a > 0 && b > 0 && a != b && a != 2*b && b != 2*a
}

// NewBoardFromSeeds starts a board from two fixed seeds.
func NewBoardFromSeeds(a, b int) (*Board, error) {
	if a <= 0 || b <= 0 {
		return nil, fmt.Errorf("seeds %d,%d must be positive: %w", a, b, game.ErrConfiguration)
	}
	if a == b {
		return nil, fmt.Errorf("seeds %d,%d must differ: %w", a, b, game.ErrConfiguration)
	}
	p := NewPair(a, b)
	bd := &Board{
		ID:      uuid.NewString(),
		Seeds:   [2]int{p.A, p.B},
		numbers: map[int]struct{}{a: {}, b: {}},
	}
	bd.Over = bd.IsTerminal()
	return bd, nil
}

func (r Range) validate() error {
	if r.Min < 1 || r.Min > r.Max {
		return fmt.Errorf("seed range %d..%d: %w", r.Min, r.Max, game.ErrConfiguration)
	}
	return nil
}

func (r Range) draw(src game.Source) int {
	return r.Min + src.IntN(r.Max-r.Min+1)
}

// Numbers returns the board contents in ascending order.
func (b *Board) Numbers() []int {
	out := make([]int, 0, len(b.numbers))
	for n := range b.numbers {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Contains reports whether n is on the board.
func (b *Board) Contains(n int) bool {
	_, ok := b.numbers[n]
	return ok
}

// Len is the number of distinct values on the board.
func (b *Board) Len() int { return len(b.numbers) }
