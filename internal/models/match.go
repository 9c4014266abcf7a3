package models

import "time"

// Match is an immutable history row written once per submitted match.
type Match struct {
	ID              int64     `json:"id"`
	Winner          string    `json:"winner"`
	Loser           string    `json:"loser"`
	GameMode        string    `json:"gamemode"`
	WinnerOldElo    int       `json:"winner_old_elo"`
	LoserOldElo     int       `json:"loser_old_elo"`
	WinnerEloChange int       `json:"winner_elo_change"`
	LoserEloChange  int       `json:"loser_elo_change"`
	WinnerNewElo    int       `json:"winner_new_elo"`
	LoserNewElo     int       `json:"loser_new_elo"`
	Timestamp       time.Time `json:"timestamp"`
}
