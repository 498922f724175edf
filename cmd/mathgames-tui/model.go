package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/mathgames/internal/euclid"
	"github.com/robalobadob/mathgames/internal/game"
	"github.com/robalobadob/mathgames/internal/nim"
)

type screen int

const (
	screenMenu screen = iota
	screenDifficulty
	screenPlay
)

// menuItem is one entry of the game menu. mode is empty for Euclid's Game.
type menuItem struct {
	title string
	mode  nim.Mode
}

var menu = []menuItem{
	{"Sum to Target", nim.ModeSumToTarget},
	{"Countdown to Zero", nim.ModeCountdown},
	{"Chip Position", nim.ModeChip},
	{"Euclid's Game", ""},
}

var difficulties = []game.Difficulty{game.DifficultyEasy, game.DifficultyNormal, game.DifficultyHard}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	winStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("120")).Bold(true)
	boardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// replyMsg fires when the computer's thinking pause is over. seq ties it to
// the round that scheduled it; ticks from an abandoned round are dropped.
type replyMsg struct{ seq int }

type model struct {
	screen screen
	cursor int
	item   menuItem
	diff   game.Difficulty

	round *nim.Round
	board *euclid.Board

	input   string
	status  string
	err     string
	waiting bool
	seq     int // bumped by start

	src   game.Source
	delay time.Duration
}

func initialModel(src game.Source, delay time.Duration) model {
	return model{src: src, delay: delay}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) replyCmd() tea.Cmd {
	seq := m.seq
	return tea.Tick(m.delay, func(time.Time) tea.Msg { return replyMsg{seq: seq} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" || key == "q" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenMenu:
			return m.updateMenu(key)
		case screenDifficulty:
			return m.updateDifficulty(key)
		case screenPlay:
			return m.updatePlay(msg)
		}
	case replyMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m.computerReply(), nil
	}
	return m, nil
}

func (m model) updateMenu(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		m.cursor = (m.cursor + len(menu) - 1) % len(menu)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(menu)
	case "enter":
		m.item = menu[m.cursor]
		m.cursor = 1 // normal
		if m.item.mode == "" {
			return m.start(), nil
		}
		m.screen = screenDifficulty
	}
	return m, nil
}

func (m model) updateDifficulty(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		m.cursor = (m.cursor + len(difficulties) - 1) % len(difficulties)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(difficulties)
	case "esc":
		m.screen, m.cursor = screenMenu, 0
	case "enter":
		m.diff = difficulties[m.cursor]
		return m.start(), nil
	}
	return m, nil
}

// start begins a fresh round or board with the current selection.
func (m model) start() model {
	m.screen = screenPlay
	m.seq++
	m.round, m.board = nil, nil
	m.input, m.status, m.err, m.waiting = "", "", "", false

	var err error
	if m.item.mode == "" {
		m.board, err = euclid.NewBoard(euclid.DefaultLow, euclid.DefaultHigh, m.src)
	} else {
		m.round, err = nim.New(m.item.mode, m.diff)
	}
	if err != nil {
		m.err = err.Error()
	}
	return m
}

func (m model) over() bool {
	if m.round != nil {
		return m.round.Over
	}
	return m.board != nil && m.board.Over
}

func (m model) updatePlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc":
		m.screen, m.cursor = screenMenu, 0
		m.round, m.board = nil, nil
		return m, nil
	case "n":
		return m.start(), nil
	}
	if m.waiting || m.over() {
		return m, nil
	}

	if m.round != nil {
		switch key {
		case "1", "2", "3":
			mv, _ := strconv.Atoi(key)
			if err := m.round.ApplyHumanMove(mv); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.err = ""
			m.status = fmt.Sprintf("You played %d.", mv)
			return m.afterHuman()
		}
		return m, nil
	}

	if m.board != nil {
		switch msg.Type {
		case tea.KeyEnter:
			x, y, err := parsePair(m.input)
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			d, err := m.board.Apply(x, y, game.PlayerHuman)
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.input, m.err = "", ""
			m.status = fmt.Sprintf("You wrote %d.", d)
			return m.afterHuman()
		case tea.KeyBackspace:
			if m.input != "" {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				if r >= '0' && r <= '9' || r == ' ' {
					m.input += string(r)
				}
			}
		}
	}
	return m, nil
}

func (m model) afterHuman() (tea.Model, tea.Cmd) {
	if m.over() {
		return m, nil
	}
	m.waiting = true
	return m, m.replyCmd()
}

func (m model) computerReply() model {
	if !m.waiting {
		return m
	}
	m.waiting = false
	switch {
	case m.round != nil:
		mv, err := m.round.ApplyComputerMove(m.src)
		if err != nil {
			m.err = err.Error()
			return m
		}
		m.status += fmt.Sprintf(" Computer played %d.", mv)
	case m.board != nil:
		p, err := m.board.ApplyBotMove(m.src)
		if err != nil {
			m.err = err.Error()
			return m
		}
		m.status += fmt.Sprintf(" Bot picked %d and %d, wrote %d.", p.A, p.B, p.Difference())
	}
	return m
}

// parsePair reads two numbers separated by spaces or a comma.
func parsePair(s string) (int, int, error) {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	if len(f) != 2 {
		return 0, 0, fmt.Errorf("type two numbers, e.g. 10 70")
	}
	x, err := strconv.Atoi(f[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(f[1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Math Games") + "\n\n")

	switch m.screen {
	case screenMenu:
		for i, it := range menu {
			b.WriteString(choice(i == m.cursor, it.title))
		}
		b.WriteString(dimStyle.Render("\n↑/↓ choose • enter select • q quit") + "\n")
	case screenDifficulty:
		b.WriteString(m.item.title + "\n\n")
		for i, d := range difficulties {
			b.WriteString(choice(i == m.cursor, string(d)))
		}
		b.WriteString(dimStyle.Render("\n↑/↓ choose • enter start • esc back • q quit") + "\n")
	case screenPlay:
		b.WriteString(m.viewPlay())
	}
	return b.String()
}

func choice(selected bool, label string) string {
	if selected {
		return cursorStyle.Render("> "+label) + "\n"
	}
	return "  " + label + "\n"
}

func (m model) viewPlay() string {
	var b strings.Builder
	switch {
	case m.round != nil:
		r := m.round
		b.WriteString(fmt.Sprintf("%s (%s)\n", m.item.title, r.Difficulty))
		switch r.Mode {
		case nim.ModeChip:
			b.WriteString(boardStyle.Render(fmt.Sprintf("chip on square %d  •  your moves %d", r.Current, r.HumanMoves)) + "\n")
		default:
			b.WriteString(boardStyle.Render(fmt.Sprintf("current %d  •  target %d  •  remaining %d", r.Current, r.Target, r.Remaining())) + "\n")
		}
	case m.board != nil:
		nums := make([]string, 0, m.board.Len())
		for _, n := range m.board.Numbers() {
			nums = append(nums, strconv.Itoa(n))
		}
		b.WriteString(fmt.Sprintf("Euclid's Game (seeds %d, %d)\n", m.board.Seeds[0], m.board.Seeds[1]))
		b.WriteString(boardStyle.Render(strings.Join(nums, " ")) + "\n")
		b.WriteString(fmt.Sprintf("your moves %d  •  bot moves %d\n", m.board.PlayerMoves, m.board.BotMoves))
	}

	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	if m.err != "" {
		b.WriteString(errStyle.Render(m.err) + "\n")
	}

	switch {
	case m.over():
		b.WriteString(winStyle.Render(outcome(m.winner())) + "\n")
		b.WriteString(dimStyle.Render("n new round • esc menu • q quit") + "\n")
	case m.waiting:
		b.WriteString(dimStyle.Render("computer is thinking…") + "\n")
	case m.board != nil:
		b.WriteString("pair> " + m.input + "\n")
		b.WriteString(dimStyle.Render("type two numbers + enter • n new • esc menu • q quit") + "\n")
	default:
		b.WriteString(dimStyle.Render("1/2/3 move • n new • esc menu • q quit") + "\n")
	}
	return b.String()
}

func (m model) winner() game.Player {
	if m.round != nil {
		return m.round.Winner()
	}
	if m.board != nil {
		return m.board.Winner()
	}
	return game.PlayerNone
}

func outcome(p game.Player) string {
	switch p {
	case game.PlayerHuman:
		return "You win!"
	case game.PlayerTie:
		return "It's a tie."
	default:
		return "The computer wins."
	}
}
