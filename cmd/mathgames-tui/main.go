// cmd/mathgames-tui
//
// Terminal client that plays the subtraction games and Euclid's Game
// locally against the same engines the server uses.
package main

import (
	"flag"
	"math/rand/v2"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mathgames/internal/game"
)

func main() {
	delay := flag.Duration("delay", time.Second, "Pause before the computer replies")
	seed := flag.Uint64("seed", 0, "If > 0, seed the computer's random choices for a reproducible session")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var src game.Source = game.DefaultSource
	if *seed > 0 {
		src = rand.New(rand.NewPCG(*seed, *seed))
	}

	p := tea.NewProgram(initialModel(src, *delay), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal().Err(err).Msg("tui exited")
	}
}
