package euclid

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/robalobadob/mathgames/internal/game"
)

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func mustSeeds(t *testing.T, a, b int) *Board {
	t.Helper()
	bd, err := NewBoardFromSeeds(a, b)
	if err != nil {
		t.Fatalf("NewBoardFromSeeds(%d,%d): %v", a, b, err)
	}
	return bd
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSeededBoard_10_70(t *testing.T) {
	bd := mustSeeds(t, 70, 10)
	if bd.Seeds != [2]int{10, 70} || bd.Phase() != game.PhaseNotStarted {
		t.Fatalf("seeds=%v phase=%s", bd.Seeds, bd.Phase())
	}
	pairs := bd.LegalPairs()
	if len(pairs) != 1 || pairs[0] != (Pair{A: 10, B: 70}) || pairs[0].Difference() != 60 {
		t.Fatalf("legal pairs=%v", pairs)
	}

	d, err := bd.Apply(70, 10, game.PlayerHuman)
	if err != nil || d != 60 {
		t.Fatalf("Apply: d=%d err=%v", d, err)
	}
	if got := bd.Numbers(); !equalInts(got, []int{10, 60, 70}) {
		t.Fatalf("numbers=%v", got)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for !bd.Over {
		if bd.Turn() == game.PlayerBot {
			if _, err := bd.ApplyBotMove(rng); err != nil {
				t.Fatal(err)
			}
			continue
		}
		p := bd.LegalPairs()[0]
		if _, err := bd.Apply(p.A, p.B, game.PlayerHuman); err != nil {
			t.Fatal(err)
		}
	}
	if got := bd.Numbers(); !equalInts(got, []int{10, 20, 30, 40, 50, 60, 70}) {
		t.Fatalf("final numbers=%v", got)
	}
	if bd.PlayerMoves != 3 || bd.BotMoves != 2 || bd.Winner() != game.PlayerHuman {
		t.Fatalf("moves=%d/%d winner=%s", bd.PlayerMoves, bd.BotMoves, bd.Winner())
	}
}

func TestApply_Rejections(t *testing.T) {
	bd := mustSeeds(t, 12, 30)
	before := bd.Numbers()
	cases := []struct {
		a, b  int
		actor game.Player
		want  error
	}{
		{12, 12, game.PlayerHuman, game.ErrInvalidMove},
		{12, 99, game.PlayerHuman, game.ErrInvalidMove},
		{12, 30, game.PlayerComputer, game.ErrInvalidMove},
		{12, 30, game.PlayerBot, game.ErrOutOfTurn},
	}
	for _, c := range cases {
		if _, err := bd.Apply(c.a, c.b, c.actor); !errors.Is(err, c.want) {
			t.Fatalf("Apply(%d,%d,%s) err=%v want %v", c.a, c.b, c.actor, err, c.want)
		}
	}
	if !equalInts(bd.Numbers(), before) || bd.PlayerMoves != 0 || bd.BotMoves != 0 {
		t.Fatalf("rejected moves mutated board: %v", bd.Numbers())
	}

	if _, err := bd.Apply(12, 30, game.PlayerHuman); err != nil { // adds 18
		t.Fatal(err)
	}
	if _, err := bd.Apply(12, 30, game.PlayerBot); !errors.Is(err, game.ErrInvalidMove) {
		t.Fatalf("duplicate difference err=%v", err)
	}
}

func TestBoardConfiguration(t *testing.T) {
	for _, s := range [][2]int{{0, 5}, {-3, 5}, {7, 7}} {
		if _, err := NewBoardFromSeeds(s[0], s[1]); !errors.Is(err, game.ErrConfiguration) {
			t.Fatalf("seeds %v err=%v", s, err)
		}
	}
	bad := []struct{ low, high Range }{
		{Range{0, 10}, DefaultHigh},
		{Range{20, 10}, DefaultHigh},
		{Range{5, 5}, Range{5, 5}},
		{Range{5, 5}, Range{10, 10}},
	}
	for _, c := range bad {
		if _, err := NewBoard(c.low, c.high, game.DefaultSource); !errors.Is(err, game.ErrConfiguration) {
			t.Fatalf("ranges %v/%v err=%v", c.low, c.high, err)
		}
	}
	if _, err := NewBoard(Range{5, 6}, Range{5, 5}, rand.New(rand.NewPCG(9, 9))); err != nil {
		t.Fatalf("overlapping ranges: %v", err)
	}
}

func TestNewBoard_DefaultRanges(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 2))
	for i := 0; i < 200; i++ {
		bd, err := NewBoard(DefaultLow, DefaultHigh, rng)
		if err != nil {
			t.Fatal(err)
		}
		lo, hi := bd.Seeds[0], bd.Seeds[1]
		if lo < 10 || lo > 50 || hi < 60 || hi > 100 || bd.Len() != 2 {
			t.Fatalf("seeds %d,%d out of range", lo, hi)
		}
		if hi == 2*lo || bd.Over {
			t.Fatalf("seeds %d,%d start terminal", lo, hi)
		}
	}
}

// Every move adds exactly one number smaller than the pair's max, and
// the game ends on the multiples of gcd(seeds) up to max(seeds).
func TestMonotoneDescentAndTermination(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 42))
	for i := 0; i < 100; i++ {
		bd, err := NewBoard(DefaultLow, DefaultHigh, rng)
		if err != nil {
			t.Fatal(err)
		}
		hi := bd.Seeds[1]
		g := gcd(bd.Seeds[0], hi)
		for moves := 0; !bd.Over; moves++ {
			if moves > hi {
				t.Fatalf("seeds %v: more than %d moves", bd.Seeds, hi)
			}
			pairs := bd.LegalPairs()
			p := pairs[rng.IntN(len(pairs))]
			n := bd.Len()
			actor := bd.Turn()
			d, err := bd.Apply(p.A, p.B, actor)
			if err != nil {
				t.Fatal(err)
			}
			if bd.Len() != n+1 || d >= p.B || d <= 0 {
				t.Fatalf("pair %v gave %d, len %d -> %d", p, d, n, bd.Len())
			}
		}
		nums := bd.Numbers()
		if len(nums) != hi/g {
			t.Fatalf("seeds %v: final len %d want %d", bd.Seeds, len(nums), hi/g)
		}
		for k, n := range nums {
			if n != (k+1)*g {
				t.Fatalf("seeds %v: final board %v", bd.Seeds, nums)
			}
		}
		if len(bd.LegalPairs()) != 0 {
			t.Fatal("terminal board still has legal pairs")
		}
	}
}

func TestPlayTurnAndWinner(t *testing.T) {
	bd := mustSeeds(t, 10, 40) // ends on {10,20,30,40}: two moves
	d, bot, err := bd.PlayTurn(10, 40, game.DefaultSource)
	if err != nil || d != 30 || bot == nil {
		t.Fatalf("PlayTurn d=%d bot=%v err=%v", d, bot, err)
	}
	if !bd.Over || bd.Winner() != game.PlayerTie {
		t.Fatalf("over=%v winner=%s", bd.Over, bd.Winner())
	}
	if _, _, err := bd.PlayTurn(10, 20, game.DefaultSource); !errors.Is(err, game.ErrGameOver) {
		t.Fatalf("move after end err=%v", err)
	}
	if _, ok := bd.BotMove(game.DefaultSource); ok {
		t.Fatal("bot found a move on a terminal board")
	}

	bd = mustSeeds(t, 10, 30) // one move ends it
	d, bot, err = bd.PlayTurn(10, 30, game.DefaultSource)
	if err != nil || d != 20 || bot != nil {
		t.Fatalf("PlayTurn d=%d bot=%v err=%v", d, bot, err)
	}
	if bd.Winner() != game.PlayerHuman {
		t.Fatalf("winner=%s", bd.Winner())
	}
}

func TestPlayable(t *testing.T) {
	cases := map[[2]int]bool{
		{10, 70}: true, {30, 60}: false, {60, 30}: false, {7, 7}: false, {0, 4}: false, {12, 30}: true,
	}
	for s, want := range cases {
		if got := Playable(s[0], s[1]); got != want {
			t.Fatalf("Playable(%d,%d)=%v want %v", s[0], s[1], got, want)
		}
	}
}

func TestSeedsAlreadyTerminal(t *testing.T) {
	bd := mustSeeds(t, 10, 20)
	if !bd.Over || bd.Winner() != game.PlayerTie || bd.Turn() != game.PlayerNone {
		t.Fatalf("over=%v winner=%s turn=%s", bd.Over, bd.Winner(), bd.Turn())
	}
}

// drawSource replays IntN results in order.
type drawSource struct{ draws []int }

func (d *drawSource) IntN(int) int {
	v := d.draws[0]
	d.draws = d.draws[1:]
	return v
}
func (d *drawSource) Float64() float64 { return 0 }

func TestNewBoard_RedrawsDoubledSeeds(t *testing.T) {
	// 10+20=30 with 60+0=60 is unplayable; the next draw gives 10/60
	src := &drawSource{draws: []int{20, 0, 0, 0}}
	bd, err := NewBoard(DefaultLow, DefaultHigh, src)
	if err != nil {
		t.Fatal(err)
	}
	if bd.Seeds != [2]int{10, 60} || bd.Over {
		t.Fatalf("seeds=%v over=%v", bd.Seeds, bd.Over)
	}
	if len(src.draws) != 0 {
		t.Fatalf("expected exactly two draws per side, %d left", len(src.draws))
	}
}
