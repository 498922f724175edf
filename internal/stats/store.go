package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/robalobadob/mathgames/internal/game"
)

// Game kinds tracked on the scoreboard.
const (
	GameNim    = "nim"
	GameEuclid = "euclid"
)

// Row is one player's counters for one game kind.
type Row struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username,omitempty"`
	Game     string `json:"game"`
	Played   int    `json:"played"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Ties     int    `json:"ties"`
}

// Store keeps win/loss counters only; individual rounds are never stored.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record bumps the counters for a finished game, seen from the human side.
func (s *Store) Record(ctx context.Context, playerID, kind string, winner game.Player) error {
	var win, loss, tie int
	switch winner {
	case game.PlayerHuman:
		win = 1
	case game.PlayerComputer, game.PlayerBot:
		loss = 1
	case game.PlayerTie:
		tie = 1
	default:
		return fmt.Errorf("record %s for %s: game not finished", kind, playerID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scores (player_id, game, played, wins, losses, ties)
		VALUES (?, ?, 1, ?, ?, ?)
		ON CONFLICT(player_id, game) DO UPDATE SET
			played = played + 1,
			wins   = wins + excluded.wins,
			losses = losses + excluded.losses,
			ties   = ties + excluded.ties`,
		playerID, kind, win, loss, tie,
	)
	return err
}

// ForPlayer returns every game kind the player has counters for.
func (s *Store) ForPlayer(ctx context.Context, playerID string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, game, played, wins, losses, ties
		FROM scores WHERE player_id=? ORDER BY game`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Row{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.PlayerID, &r.Game, &r.Played, &r.Wins, &r.Losses, &r.Ties); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Leaderboard returns the top players for a game kind by wins, then by
// fewest games played. Default limit is 20.
func (s *Store) Leaderboard(ctx context.Context, kind string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.player_id, p.username, s.game, s.played, s.wins, s.losses, s.ties
		FROM scores s JOIN players p ON p.id = s.player_id
		WHERE s.game=?
		ORDER BY s.wins DESC, s.played ASC, p.username ASC
		LIMIT ?`, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Row, 0, limit)
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.PlayerID, &r.Username, &r.Game, &r.Played, &r.Wins, &r.Losses, &r.Ties); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
