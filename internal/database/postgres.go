package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/ranked/internal/models"
)

// PostgresStore keeps ratings in the player_ratings table and history in
// match_history. Conflicting writes serialize on row locks.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool. The store owns the pool from here on.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var (
	playerColumns = buildPlayerColumns()
	updatePlayerQ = buildUpdatePlayer()
)

func buildPlayerColumns() string {
	cols := []string{"username", "global_score"}
	for _, m := range models.GameModes {
		cols = append(cols, models.RatingColumn(m))
	}
	cols = append(cols, "wins", "losses", "matches_played", "peak_rating", "created_at")
	return strings.Join(cols, ", ")
}

func buildUpdatePlayer() string {
	sets := []string{"global_score = $2"}
	i := 3
	for _, m := range models.GameModes {
		sets = append(sets, fmt.Sprintf("%s = $%d", models.RatingColumn(m), i))
		i++
	}
	for _, c := range []string{"wins", "losses", "matches_played", "peak_rating"} {
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i))
		i++
	}
	return "UPDATE player_ratings SET " + strings.Join(sets, ", ") + " WHERE username = $1"
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	p := &models.Player{Ratings: make(map[string]int, len(models.GameModes))}
	modeVals := make([]int, len(models.GameModes))

	dest := []any{&p.Username, &p.GlobalScore}
	for i := range modeVals {
		dest = append(dest, &modeVals[i])
	}
	dest = append(dest, &p.Wins, &p.Losses, &p.MatchesPlayed, &p.PeakRating, &p.CreatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	for i, m := range models.GameModes {
		p.Ratings[m] = modeVals[i]
	}
	return p, nil
}

func savePlayer(ctx context.Context, tx pgx.Tx, p *models.Player) error {
	args := []any{p.Username, p.GlobalScore}
	for _, m := range models.GameModes {
		args = append(args, p.Rating(m))
	}
	args = append(args, p.Wins, p.Losses, p.MatchesPlayed, p.PeakRating)
	_, err := tx.Exec(ctx, updatePlayerQ, args...)
	return err
}

func (s *PostgresStore) RegisterPlayer(ctx context.Context, username string) (bool, error) {
	q := `INSERT INTO player_ratings (username) VALUES ($1) ON CONFLICT (username) DO NOTHING`
	ct, err := s.pool.Exec(ctx, q, username)
	if err != nil {
		return false, fmt.Errorf("failed to insert player: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *PostgresStore) GetPlayer(ctx context.Context, username string) (*models.Player, error) {
	q := `SELECT ` + playerColumns + ` FROM player_ratings WHERE username = $1`
	p, err := scanPlayer(s.pool.QueryRow(ctx, q, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player %s: %w", username, ErrPlayerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", username, err)
	}
	return p, nil
}

func (s *PostgresStore) TopPlayers(ctx context.Context, mode string, limit int) ([]*models.Player, error) {
	if !validTarget(mode) {
		return nil, fmt.Errorf("%q: %w", mode, ErrUnknownMode)
	}
	orderBy := "global_score"
	if mode != models.GlobalTarget {
		orderBy = models.RatingColumn(mode)
	}
	q := `SELECT ` + playerColumns + ` FROM player_ratings ORDER BY ` + orderBy + ` DESC, username ASC LIMIT $1`

	rows, err := s.pool.Query(ctx, q, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// ApplyMatch locks both rows in username order so two matches touching the
// same pair cannot deadlock, then runs fn and writes everything in one tx.
func (s *PostgresStore) ApplyMatch(ctx context.Context, winner, loser string, fn MatchFunc) (*models.Match, error) {
	var result *models.Match
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `SELECT ` + playerColumns + ` FROM player_ratings
		      WHERE username = ANY($1) ORDER BY username FOR UPDATE`
		rows, err := tx.Query(ctx, q, []string{winner, loser})
		if err != nil {
			return err
		}
		locked := make(map[string]*models.Player, 2)
		for rows.Next() {
			p, err := scanPlayer(rows)
			if err != nil {
				rows.Close()
				return err
			}
			locked[p.Username] = p
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		w, ok := locked[winner]
		if !ok {
			return fmt.Errorf("player %s: %w", winner, ErrPlayerNotFound)
		}
		l, ok := locked[loser]
		if !ok {
			return fmt.Errorf("player %s: %w", loser, ErrPlayerNotFound)
		}

		m, err := fn(w, l)
		if err != nil {
			return err
		}
		if err := savePlayer(ctx, tx, w); err != nil {
			return err
		}
		if err := savePlayer(ctx, tx, l); err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO match_history (
				winner, loser, gamemode,
				winner_old_elo, loser_old_elo,
				winner_elo_change, loser_elo_change,
				winner_new_elo, loser_new_elo
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, timestamp
		`,
			m.Winner, m.Loser, m.GameMode,
			m.WinnerOldElo, m.LoserOldElo,
			m.WinnerEloChange, m.LoserEloChange,
			m.WinnerNewElo, m.LoserNewElo,
		).Scan(&m.ID, &m.Timestamp)
		if err != nil {
			return err
		}
		result = m
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to commit match results: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) OverrideRating(ctx context.Context, username, target string, value int) (*models.Player, error) {
	if !validTarget(target) {
		return nil, fmt.Errorf("%q: %w", target, ErrUnknownMode)
	}
	var updated *models.Player
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `SELECT ` + playerColumns + ` FROM player_ratings WHERE username = $1 FOR UPDATE`
		p, err := scanPlayer(tx.QueryRow(ctx, q, username))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("player %s: %w", username, ErrPlayerNotFound)
		}
		if err != nil {
			return err
		}
		applyOverride(p, target, value)
		if err := savePlayer(ctx, tx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to override rating: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) RecentMatches(ctx context.Context, username string, limit int) ([]models.Match, error) {
	q := `
		SELECT id, winner, loser, gamemode,
		       winner_old_elo, loser_old_elo,
		       winner_elo_change, loser_elo_change,
		       winner_new_elo, loser_new_elo, timestamp
		FROM match_history
		WHERE $1 = '' OR winner = $1 OR loser = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, q, username, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query match history: %w", err)
	}
	defer rows.Close()

	matches := []models.Match{}
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(
			&m.ID, &m.Winner, &m.Loser, &m.GameMode,
			&m.WinnerOldElo, &m.LoserOldElo,
			&m.WinnerEloChange, &m.LoserEloChange,
			&m.WinnerNewElo, &m.LoserNewElo, &m.Timestamp,
		); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
