package database

import (
	"context"
	"errors"

	"github.com/jason-s-yu/ranked/internal/models"
)

// MaxLeaderboardSize caps every leaderboard query.
const MaxLeaderboardSize = 100

var (
	// ErrPlayerNotFound is returned when a username has no record.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrUnknownMode is returned for a rating target outside GameModes.
	ErrUnknownMode = errors.New("unknown gamemode")
)

// MatchFunc receives the current records of both players while they are
// locked for update. It mutates them in place and returns the history row to
// append; ID and Timestamp are filled in by the store. Returning an error
// aborts the whole match with nothing written.
type MatchFunc func(winner, loser *models.Player) (*models.Match, error)

// Store is the durable rating table plus the append-only match history.
type Store interface {
	// RegisterPlayer creates a default record. It reports false without
	// touching the existing row when the username is already registered.
	RegisterPlayer(ctx context.Context, username string) (bool, error)

	// GetPlayer returns the full record or ErrPlayerNotFound.
	GetPlayer(ctx context.Context, username string) (*models.Player, error)

	// TopPlayers returns at most limit players ordered by the given mode's
	// rating, or by global score when mode is models.GlobalTarget. Limit is
	// clamped to MaxLeaderboardSize.
	TopPlayers(ctx context.Context, mode string, limit int) ([]*models.Player, error)

	// ApplyMatch performs the read-modify-write of a single match atomically.
	ApplyMatch(ctx context.Context, winner, loser string, fn MatchFunc) (*models.Match, error)

	// OverrideRating sets one rating column directly and returns the updated
	// record.
	OverrideRating(ctx context.Context, username, target string, value int) (*models.Player, error)

	// RecentMatches returns history newest first. An empty username lists
	// matches for every player.
	RecentMatches(ctx context.Context, username string, limit int) ([]models.Match, error)

	Close()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxLeaderboardSize {
		return MaxLeaderboardSize
	}
	return limit
}

func validTarget(target string) bool {
	return target == models.GlobalTarget || models.IsGameMode(target)
}

// applyOverride writes value into the target column and nothing else. The
// global score only moves when it is the target, so the peak is untouched
// by a mode override.
func applyOverride(p *models.Player, target string, value int) {
	if target == models.GlobalTarget {
		p.SetGlobal(value)
		return
	}
	p.Ratings[target] = value
}
