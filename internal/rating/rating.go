// Package rating implements the ELO update used for head-to-head matches.
package rating

import (
	"math"

	"github.com/jason-s-yu/ranked/internal/models"
)

const (
	// DefaultKFactor scales every rating change.
	DefaultKFactor = 32.0
	// DefaultFormat is the first-to count a match is played to. A format of
	// 5 yields a neutral format multiplier.
	DefaultFormat = 5.0
	// eloScale is the logistic spread: 400 points means 10:1 expected odds.
	eloScale = 400.0
	// dominanceWeight caps the winner's score-differential bonus at +50%.
	dominanceWeight = 0.5
)

// params holds the tunable inputs to ComputeDeltas.
type params struct {
	winnerScore float64
	loserScore  float64
	format      float64
	k           float64
}

// Option overrides one of the ComputeDeltas defaults.
type Option func(*params)

// WithScores sets the match score, e.g. 5-2. Equal scores (the default) make
// the dominance multiplier 1.
func WithScores(winnerScore, loserScore float64) Option {
	return func(p *params) {
		p.winnerScore = winnerScore
		p.loserScore = loserScore
	}
}

// WithFormat sets the first-to length of the match.
func WithFormat(format float64) Option {
	return func(p *params) { p.format = format }
}

// WithKFactor sets K.
func WithKFactor(k float64) Option {
	return func(p *params) { p.k = k }
}

// Expected returns the probability that a player rated own beats a player
// rated opponent.
func Expected(own, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-own)/eloScale))
}

// ComputeDeltas returns the signed rating changes for the winner and loser of
// a single match.
//
// The winner's change is scaled by both the dominance and the format
// multiplier; the loser's only by the format multiplier. A lopsided score
// therefore amplifies the winner's gain without deepening the loser's loss.
func ComputeDeltas(winnerRating, loserRating int, opts ...Option) (winnerDelta, loserDelta int) {
	p := params{
		winnerScore: 1,
		loserScore:  1,
		format:      DefaultFormat,
		k:           DefaultKFactor,
	}
	for _, opt := range opts {
		opt(&p)
	}

	expectedW := Expected(winnerRating, loserRating)
	expectedL := Expected(loserRating, winnerRating)

	wChange := p.k * (1 - expectedW)
	lChange := p.k * (0 - expectedL)

	wChange *= dominanceMultiplier(p.winnerScore, p.loserScore)

	ft := math.Sqrt(p.format / DefaultFormat)
	wChange *= ft
	lChange *= ft

	return models.RoundHalfUp(wChange), models.RoundHalfUp(lChange)
}

func dominanceMultiplier(winnerScore, loserScore float64) float64 {
	total := winnerScore + loserScore
	if total == 0 {
		return 1
	}
	return 1 + ((winnerScore-loserScore)/total)*dominanceWeight
}
