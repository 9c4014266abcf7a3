// Package ladder applies match results and admin overrides to the rating
// store and announces every committed change.
package ladder

import (
	"context"
	"errors"
	"fmt"

	"github.com/jason-s-yu/ranked/internal/database"
	"github.com/jason-s-yu/ranked/internal/models"
	"github.com/jason-s-yu/ranked/internal/rating"
	"github.com/sirupsen/logrus"
)

var (
	// ErrValidation marks a request the caller must fix.
	ErrValidation = errors.New("invalid request")
	// ErrUnauthorized marks a bad admin credential.
	ErrUnauthorized = errors.New("invalid admin key")
)

// Notifier is told after each committed rating change.
type Notifier interface {
	NotifyRatingsChanged()
}

// MatchPublisher receives every committed match record.
type MatchPublisher interface {
	PublishMatch(ctx context.Context, m *models.Match) error
}

// Verifier checks an admin credential.
type Verifier interface {
	Verify(candidate string) bool
}

// Side is one player's view of a submitted match.
type Side struct {
	Username string `json:"username"`
	Old      int    `json:"old"`
	New      int    `json:"new"`
	Change   int    `json:"change"`
}

// Outcome is the result of a committed match.
type Outcome struct {
	Match  *models.Match `json:"-"`
	Winner Side          `json:"winner"`
	Loser  Side          `json:"loser"`
}

// Processor owns the match-submission and admin-override flows.
type Processor struct {
	store     database.Store
	notifier  Notifier
	publisher MatchPublisher
	admin     Verifier
	logger    *logrus.Logger
}

// Option configures optional Processor collaborators.
type Option func(*Processor)

// WithPublisher forwards committed matches to p.
func WithPublisher(p MatchPublisher) Option {
	return func(pr *Processor) { pr.publisher = p }
}

// NewProcessor wires a processor. notifier may be nil.
func NewProcessor(store database.Store, notifier Notifier, admin Verifier, logger *logrus.Logger, opts ...Option) *Processor {
	p := &Processor{
		store:    store,
		notifier: notifier,
		admin:    admin,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SubmitMatch records that winner beat loser in gamemode. Both players must
// already be registered. All rating, counter, peak and history writes commit
// together or not at all.
func (p *Processor) SubmitMatch(ctx context.Context, winner, loser, gamemode string) (*Outcome, error) {
	if winner == "" || loser == "" || !models.IsGameMode(gamemode) {
		return nil, fmt.Errorf("%w: winner, loser and a valid gamemode are required", ErrValidation)
	}
	if winner == loser {
		return nil, fmt.Errorf("%w: winner and loser must be different players", ErrValidation)
	}

	m, err := p.store.ApplyMatch(ctx, winner, loser, func(w, l *models.Player) (*models.Match, error) {
		return resolveMatch(w, l, gamemode), nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"match_id": m.ID,
		"gamemode": gamemode,
		"winner":   winner,
		"loser":    loser,
		"w_change": m.WinnerEloChange,
		"l_change": m.LoserEloChange,
	}).Info("match committed")

	p.afterCommit()
	if p.publisher != nil {
		if err := p.publisher.PublishMatch(ctx, m); err != nil {
			p.logger.WithError(err).WithField("match_id", m.ID).Warn("failed to publish match to history feed")
		}
	}

	return &Outcome{
		Match:  m,
		Winner: Side{Username: winner, Old: m.WinnerOldElo, New: m.WinnerNewElo, Change: m.WinnerEloChange},
		Loser:  Side{Username: loser, Old: m.LoserOldElo, New: m.LoserNewElo, Change: m.LoserEloChange},
	}, nil
}

// resolveMatch mutates both locked records and returns the history row.
func resolveMatch(w, l *models.Player, mode string) *models.Match {
	wOld, lOld := w.Rating(mode), l.Rating(mode)
	wDelta, lDelta := rating.ComputeDeltas(wOld, lOld)

	w.Ratings[mode] = wOld + wDelta
	w.Wins++
	w.MatchesPlayed++
	w.RecomputeGlobal()

	l.Ratings[mode] = lOld + lDelta
	l.Losses++
	l.MatchesPlayed++
	l.RecomputeGlobal()

	return &models.Match{
		Winner:          w.Username,
		Loser:           l.Username,
		GameMode:        mode,
		WinnerOldElo:    wOld,
		LoserOldElo:     lOld,
		WinnerEloChange: wDelta,
		LoserEloChange:  lDelta,
		WinnerNewElo:    w.Ratings[mode],
		LoserNewElo:     l.Ratings[mode],
	}
}

// OverrideRating lets an admin set a rating column directly. target is a
// game mode or models.GlobalTarget. Win/loss counters are untouched.
func (p *Processor) OverrideRating(ctx context.Context, adminKey, username, target string, value int) (*models.Player, error) {
	if err := p.Authorize(adminKey); err != nil {
		p.logger.WithField("username", username).Warn("rejected admin override with bad key")
		return nil, err
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if target != models.GlobalTarget && !models.IsGameMode(target) {
		return nil, fmt.Errorf("%w: unknown gamemode %q", ErrValidation, target)
	}

	player, err := p.store.OverrideRating(ctx, username, target, value)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"username": username,
		"target":   target,
		"value":    value,
	}).Info("admin rating override")

	p.afterCommit()
	return player, nil
}

// Authorize returns ErrUnauthorized unless adminKey is the admin credential.
func (p *Processor) Authorize(adminKey string) error {
	if !p.admin.Verify(adminKey) {
		return ErrUnauthorized
	}
	return nil
}

func (p *Processor) afterCommit() {
	if p.notifier != nil {
		p.notifier.NotifyRatingsChanged()
	}
}
