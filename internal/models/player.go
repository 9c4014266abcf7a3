package models

import (
	"encoding/json"
	"math"
	"time"
)

// Player is the durable per-username rating record.
type Player struct {
	Username      string         `json:"username"`
	GlobalScore   int            `json:"global_score"`
	Ratings       map[string]int `json:"ratings"`
	Wins          int            `json:"wins"`
	Losses        int            `json:"losses"`
	MatchesPlayed int            `json:"matches_played"`
	PeakRating    int            `json:"peak_rating"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewPlayer returns a record with every rating at DefaultRating.
func NewPlayer(username string, createdAt time.Time) *Player {
	p := &Player{
		Username:    username,
		GlobalScore: DefaultRating,
		Ratings:     make(map[string]int, len(GameModes)),
		PeakRating:  DefaultRating,
		CreatedAt:   createdAt,
	}
	for _, m := range GameModes {
		p.Ratings[m] = DefaultRating
	}
	return p
}

// Rating returns the player's rating in mode, falling back to DefaultRating
// for a mode that was never stored.
func (p *Player) Rating(mode string) int {
	if r, ok := p.Ratings[mode]; ok {
		return r
	}
	return DefaultRating
}

// RecomputeGlobal sets GlobalScore to the rounded mean of every mode rating
// and raises PeakRating if the new score exceeds it.
func (p *Player) RecomputeGlobal() {
	sum := 0
	for _, m := range GameModes {
		sum += p.Rating(m)
	}
	p.SetGlobal(RoundHalfUp(float64(sum) / float64(len(GameModes))))
}

// SetGlobal assigns the global score and keeps PeakRating monotonic.
func (p *Player) SetGlobal(score int) {
	p.GlobalScore = score
	if score > p.PeakRating {
		p.PeakRating = score
	}
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Ratings = make(map[string]int, len(p.Ratings))
	for k, v := range p.Ratings {
		cp.Ratings[k] = v
	}
	return &cp
}

// RoundHalfUp rounds to the nearest integer with halves going toward +Inf,
// so -15.5 becomes -15 and 15.5 becomes 16.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// LeaderboardRow is one line of the global leaderboard. It flattens the
// per-mode ratings into "<mode>_elo" keys.
type LeaderboardRow struct {
	Username    string
	GlobalScore int
	Ratings     map[string]int
	Wins        int
	Losses      int
}

func (r LeaderboardRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(GameModes)+4)
	out["username"] = r.Username
	out["global_score"] = r.GlobalScore
	for _, m := range GameModes {
		v, ok := r.Ratings[m]
		if !ok {
			v = DefaultRating
		}
		out[RatingColumn(m)] = v
	}
	out["wins"] = r.Wins
	out["losses"] = r.Losses
	return json.Marshal(out)
}

// ModeRow is one line of a single-mode leaderboard.
type ModeRow struct {
	Username string `json:"username"`
	Elo      int    `json:"elo"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}
