package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jason-s-yu/ranked/internal/models"
)

func playerTableDDL() string {
	var b strings.Builder
	b.WriteString(`CREATE TABLE IF NOT EXISTS player_ratings (
		username TEXT PRIMARY KEY,
		global_score INTEGER NOT NULL DEFAULT 500,
	`)
	for _, m := range models.GameModes {
		fmt.Fprintf(&b, "\t%s INTEGER NOT NULL DEFAULT %d,\n", models.RatingColumn(m), models.DefaultRating)
	}
	b.WriteString(`		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		matches_played INTEGER NOT NULL DEFAULT 0,
		peak_rating INTEGER NOT NULL DEFAULT 500,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return b.String()
}

const matchTableDDL = `
	CREATE TABLE IF NOT EXISTS match_history (
		id BIGSERIAL PRIMARY KEY,
		winner TEXT NOT NULL,
		loser TEXT NOT NULL,
		gamemode TEXT NOT NULL,
		winner_old_elo INTEGER NOT NULL,
		loser_old_elo INTEGER NOT NULL,
		winner_elo_change INTEGER NOT NULL,
		loser_elo_change INTEGER NOT NULL,
		winner_new_elo INTEGER NOT NULL,
		loser_new_elo INTEGER NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

var indexDDL = []string{
	`CREATE INDEX IF NOT EXISTS idx_player_ratings_global ON player_ratings (global_score DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_match_history_winner ON match_history (winner, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_match_history_loser ON match_history (loser, id DESC)`,
}

// EnsureSchema creates the rating and history tables if they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := append([]string{playerTableDDL(), matchTableDDL}, indexDDL...)
	for _, q := range stmts {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
